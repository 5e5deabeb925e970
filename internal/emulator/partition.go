package emulator

import (
	"context"

	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

func (s *Server) partitionOf(collName, partName string) (*collection, *partition, gateway.Status) {
	c, st := s.collection(collName)
	if st.Code != 0 {
		return nil, nil, st
	}
	p, found := c.partitions[partName]
	if !found {
		return c, nil, fail(status.IllegalArgument, "partition %s of collection %s does not exist", partName, collName)
	}
	return c, p, ok()
}

// CreatePartition adds an empty partition.
func (s *Server) CreatePartition(_ context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &st, nil
	}
	if !nameRe.MatchString(req.PartitionName) {
		st = fail(status.IllegalArgument, "invalid partition name: %s", req.PartitionName)
		return &st, nil
	}
	if _, found := c.partitions[req.PartitionName]; found {
		st = fail(status.IllegalArgument, "partition %s already exists", req.PartitionName)
		return &st, nil
	}
	c.addPartition(req.PartitionName, now())
	return &st, nil
}

// DropPartition removes a partition and its rows. The default partition
// cannot be dropped.
func (s *Server) DropPartition(_ context.Context, req *gateway.PartitionRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, _, st := s.partitionOf(req.CollectionName, req.PartitionName)
	if st.Code != 0 {
		return &st, nil
	}
	if req.PartitionName == defaultPartition {
		st = fail(status.IllegalArgument, "default partition cannot be deleted")
		return &st, nil
	}
	c.dropPartition(req.PartitionName)
	return &st, nil
}

// HasPartition reports whether a partition exists.
func (s *Server) HasPartition(_ context.Context, req *gateway.PartitionRequest) (*gateway.BoolResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.BoolResponse{Status: st}, nil
	}
	_, found := c.partitions[req.PartitionName]
	return &gateway.BoolResponse{Value: found}, nil
}

// ShowPartitions lists partitions with their load progress. Every call
// advances partition loads in progress by one step.
func (s *Server) ShowPartitions(
	_ context.Context, req *gateway.ShowPartitionsRequest,
) (*gateway.ShowPartitionsResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.ShowPartitionsResponse{Status: st}, nil
	}

	names := req.PartitionNames
	if len(names) == 0 {
		for _, n := range c.partOrder {
			if req.Type == int32(param.ShowInMemory) && !c.partitions[n].load.requested && !c.load.requested {
				continue
			}
			names = append(names, n)
		}
	}

	resp := &gateway.ShowPartitionsResponse{}
	step := stepOf(s.cfg.LoadSteps)
	for _, n := range names {
		p, found := c.partitions[n]
		if !found {
			return &gateway.ShowPartitionsResponse{
				Status: fail(status.IllegalArgument, "partition %s of collection %s does not exist", n, req.CollectionName),
			}, nil
		}
		p.load.advance(step)
		resp.PartitionNames = append(resp.PartitionNames, n)
		resp.PartitionIDs = append(resp.PartitionIDs, p.id)
		resp.CreatedUTCTimestamps = append(resp.CreatedUTCTimestamps, p.created)
		resp.InMemoryPercentages = append(resp.InMemoryPercentages, max(p.load.percent, c.load.percent))
	}
	return resp, nil
}

// LoadPartitions starts loading partitions. Every partition must exist.
func (s *Server) LoadPartitions(_ context.Context, req *gateway.LoadPartitionsRequest) (*gateway.Status, error) {
	return s.setPartitionsLoad(req.CollectionName, req.PartitionNames, true)
}

// ReleasePartitions unloads partitions.
func (s *Server) ReleasePartitions(_ context.Context, req *gateway.ReleasePartitionsRequest) (*gateway.Status, error) {
	return s.setPartitionsLoad(req.CollectionName, req.PartitionNames, false)
}

func (s *Server) setPartitionsLoad(collName string, names []string, load bool) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(collName)
	if st.Code != 0 {
		return &st, nil
	}
	if len(names) == 0 {
		st = fail(status.IllegalArgument, "partition names cannot be empty")
		return &st, nil
	}
	parts := make([]*partition, 0, len(names))
	for _, n := range names {
		p, found := c.partitions[n]
		if !found {
			st = fail(status.IllegalArgument, "partition %s of collection %s does not exist", n, collName)
			return &st, nil
		}
		parts = append(parts, p)
	}
	for _, p := range parts {
		if load {
			p.load.requested = true
		} else {
			p.load = loadState{}
		}
	}
	return &st, nil
}
