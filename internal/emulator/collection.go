package emulator

import (
	"context"
	"maps"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/db"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// HasCollection reports whether a collection exists.
func (s *Server) HasCollection(_ context.Context, req *gateway.HasCollectionRequest) (*gateway.BoolResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	_, found := s.collections[req.CollectionName]
	return &gateway.BoolResponse{Value: found}, nil
}

// CreateCollection registers a new empty collection with a _default partition.
func (s *Server) CreateCollection(_ context.Context, req *gateway.CreateCollectionRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	name := req.Schema.Name
	if !nameRe.MatchString(name) {
		st := fail(status.IllegalCollectionName, "invalid collection name: %s", name)
		return &st, nil
	}
	if _, found := s.collections[name]; found {
		st := fail(status.IllegalArgument, "collection %s already exists", name)
		return &st, nil
	}
	if len(req.Schema.Fields) == 0 {
		st := fail(status.IllegalArgument, "schema of collection %s has no fields", name)
		return &st, nil
	}
	sch, err := codec.SchemaFromWire(req.Schema)
	if err != nil {
		st := fail(status.IllegalArgument, "%v", err)
		return &st, nil
	}
	shards := req.ShardsNum
	if shards <= 0 {
		shards = 2
	}
	s.collections[name] = newCollection(sch, shards, now())
	s.logger.Debug("Collection created", zap.String("collection", name), zap.Int("fields", len(req.Schema.Fields)))
	st := ok()
	return &st, nil
}

// DropCollection removes a collection and its persisted segments.
func (s *Server) DropCollection(ctx context.Context, req *gateway.CollectionRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	if _, st := s.collection(req.CollectionName); st.Code != 0 {
		return &st, nil
	}
	delete(s.collections, req.CollectionName)

	if s.store != nil {
		keys, err := s.store.Scan(ctx, db.SegmentPattern(s.cfg.KeyPrefix, req.CollectionName))
		if err == nil {
			err = s.store.Del(ctx, keys...)
		}
		if err != nil {
			st := fail(status.CannotDeleteFile, "drop segments of %s: %v", req.CollectionName, err)
			return &st, nil
		}
	}
	st := ok()
	return &st, nil
}

// DescribeCollection returns the schema and metadata of a collection.
func (s *Server) DescribeCollection(
	_ context.Context, req *gateway.CollectionRequest,
) (*gateway.DescribeCollectionResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.DescribeCollectionResponse{Status: st}, nil
	}
	return &gateway.DescribeCollectionResponse{
		Schema:              codec.SchemaToWire(c.schema),
		CollectionID:        c.id,
		ShardsNum:           c.shards,
		CreatedUTCTimestamp: c.created,
	}, nil
}

// LoadCollection starts loading a collection. Progress is reported by
// ShowCollections.
func (s *Server) LoadCollection(_ context.Context, req *gateway.LoadCollectionRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &st, nil
	}
	c.load.requested = true
	return &st, nil
}

// ReleaseCollection unloads a collection and all of its partitions.
func (s *Server) ReleaseCollection(_ context.Context, req *gateway.CollectionRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &st, nil
	}
	c.load = loadState{}
	for _, p := range c.partitions {
		p.load = loadState{}
	}
	return &st, nil
}

// ShowCollections lists collections with their load progress. Every call
// advances loads in progress by one step.
func (s *Server) ShowCollections(
	_ context.Context, req *gateway.ShowCollectionsRequest,
) (*gateway.ShowCollectionsResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	names := req.CollectionNames
	if len(names) == 0 {
		for _, n := range slices.Sorted(maps.Keys(s.collections)) {
			if req.Type == int32(param.ShowInMemory) && !s.collections[n].load.requested {
				continue
			}
			names = append(names, n)
		}
	}

	resp := &gateway.ShowCollectionsResponse{}
	step := stepOf(s.cfg.LoadSteps)
	for _, n := range names {
		c, st := s.collection(n)
		if st.Code != 0 {
			return &gateway.ShowCollectionsResponse{Status: st}, nil
		}
		c.load.advance(step)
		resp.CollectionNames = append(resp.CollectionNames, n)
		resp.CollectionIDs = append(resp.CollectionIDs, c.id)
		resp.CreatedUTCTimestamps = append(resp.CreatedUTCTimestamps, c.created)
		resp.InMemoryPercentages = append(resp.InMemoryPercentages, c.load.percent)
	}
	return resp, nil
}
