package emulator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// CreateIndex registers an index build. The build advances on every
// DescribeIndex call.
func (s *Server) CreateIndex(_ context.Context, req *gateway.CreateIndexRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &st, nil
	}
	f, found := c.schema.FieldByName(req.FieldName)
	if !found {
		st = fail(status.IllegalArgument, "field %s does not exist", req.FieldName)
		return &st, nil
	}

	extra := codec.KVToMap(req.ExtraParams)
	it := schema.IndexType(extra[gateway.KeyIndexType])
	if !schema.VerifyIndexType(it, f) {
		st = fail(status.IllegalIndexType, "index type %s is not supported on field %s", it, f.Name())
		return &st, nil
	}
	if mt := schema.MetricType(extra[gateway.KeyMetricType]); !schema.IsFloatMetric(mt) {
		st = fail(status.IllegalMetricType, "metric type %s is not supported", mt)
		return &st, nil
	}
	nlist, st := checkIndexParams(it, extra[gateway.KeyParams])
	if st.Code != 0 {
		return &st, nil
	}

	name := req.IndexName
	if name == "" {
		name = schema.DefaultIndexName
	}
	if existing, _ := c.findIndex("", name); existing != nil {
		if existing.field != req.FieldName {
			st = fail(status.IllegalArgument, "index %s already exists on field %s", name, existing.field)
		}
		return &st, nil
	}
	if existing, _ := c.findIndex(req.FieldName, ""); existing != nil {
		st = fail(status.IllegalArgument, "field %s already has index %s", req.FieldName, existing.name)
		return &st, nil
	}

	c.indexes = append(c.indexes, &index{
		id:     newID(),
		name:   name,
		field:  req.FieldName,
		params: req.ExtraParams,
		nlist:  nlist,
		state:  gateway.IndexStateUnissued,
	})
	return &st, nil
}

// checkIndexParams applies the range rules of the index kinds that take an
// nlist or M parameter and returns nlist when set.
func checkIndexParams(it schema.IndexType, raw string) (int64, gateway.Status) {
	if raw == "" {
		return 0, ok()
	}
	var params map[string]any
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return 0, fail(status.IllegalArgument, "invalid index params: %v", err)
	}
	switch it {
	case schema.IndexIVFFlat, schema.IndexIVFPQ:
		if v, found := params["nlist"]; found {
			n, isNum := v.(float64)
			if !isNum || n < 1 || n > 65536 {
				return 0, fail(status.IllegalNLIST, "nlist out of range: [1, 65536]")
			}
			return int64(n), ok()
		}
	case schema.IndexHNSW:
		if v, found := params["M"]; found {
			n, isNum := v.(float64)
			if !isNum || n < 4 || n > 64 {
				return 0, fail(status.IllegalArgument, "M out of range: [4, 64]")
			}
		}
	}
	return 0, ok()
}

// DropIndex removes the index of a field.
func (s *Server) DropIndex(_ context.Context, req *gateway.IndexRequest) (*gateway.Status, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &st, nil
	}
	_, i := c.findIndex(req.FieldName, req.IndexName)
	if i < 0 {
		st = fail(status.IndexNotExist, "index doesn't exist on field %s", req.FieldName)
		return &st, nil
	}
	c.indexes = append(c.indexes[:i], c.indexes[i+1:]...)
	return &st, nil
}

// DescribeIndex returns the indexes of a field. Every call advances builds
// in progress by one step.
func (s *Server) DescribeIndex(_ context.Context, req *gateway.IndexRequest) (*gateway.DescribeIndexResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.DescribeIndexResponse{Status: st}, nil
	}

	resp := &gateway.DescribeIndexResponse{}
	for _, idx := range c.indexes {
		if (req.FieldName != "" && idx.field != req.FieldName) || (req.IndexName != "" && idx.name != req.IndexName) {
			continue
		}
		s.advanceIndex(c, idx)
		resp.IndexDescriptions = append(resp.IndexDescriptions, gateway.IndexDescription{
			IndexName:            idx.name,
			IndexID:              idx.id,
			FieldName:            idx.field,
			Params:               idx.params,
			State:                idx.state,
			IndexStateFailReason: idx.failCause,
			IndexedRows:          idx.indexed,
			TotalRows:            idx.total,
		})
	}
	if len(resp.IndexDescriptions) == 0 {
		resp.Status = fail(status.IndexNotExist, "index doesn't exist on field %s", req.FieldName)
	}
	return resp, nil
}

func (s *Server) advanceIndex(c *collection, idx *index) {
	idx.total = int64(len(c.rows))
	if idx.state == gateway.IndexStateFinished || idx.state == gateway.IndexStateFailed {
		return
	}
	idx.polls++
	if idx.total > 0 && idx.nlist > idx.total {
		// k-means cannot train more clusters than there are rows
		idx.state = gateway.IndexStateFailed
		idx.failCause = fmt.Sprintf("nlist %d exceeds row count %d", idx.nlist, idx.total)
		return
	}
	if idx.polls >= s.cfg.IndexSteps {
		idx.state = gateway.IndexStateFinished
		idx.indexed = idx.total
		return
	}
	idx.state = gateway.IndexStateInProgress
	idx.indexed = idx.total * int64(idx.polls) / int64(s.cfg.IndexSteps)
}
