package emulator

import (
	"context"
	"math"
	"sort"
	"strconv"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// Search ranks rows by exact distance to each query item. Text queries are
// embedded with the server's embedder first.
func (s *Server) Search(ctx context.Context, req *gateway.SearchRequest) (*gateway.SearchResponse, error) {
	params := codec.KVToMap(req.SearchParams)
	topK, err := strconv.Atoi(params[gateway.KeyTopK])
	if err != nil || topK <= 0 {
		return &gateway.SearchResponse{Status: fail(status.IllegalTopK, "invalid topk: %q", params[gateway.KeyTopK])}, nil
	}

	var queries [][]float32
	textField, isText := params[gateway.KeyTextField]
	if isText {
		if len(req.PlaceholderGroup.Texts) == 0 {
			return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "target texts cannot be empty")}, nil
		}
		res, err := domain.EmbedAll(ctx, s.embedder, req.PlaceholderGroup.Texts)
		if err != nil {
			return &gateway.SearchResponse{Status: fail(status.UnexpectedError, "embed query texts: %v", err)}, nil
		}
		queries = res.Embeddings
	} else {
		v := req.PlaceholderGroup.Vectors
		if v == nil || len(v.FloatVector) == 0 {
			return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "target vectors cannot be empty")}, nil
		}
		queries, err = codec.Unflatten(v.FloatVector, int(v.Dim))
		if err != nil {
			return &gateway.SearchResponse{Status: fail(status.IllegalDimension, "%v", err)}, nil
		}
	}

	pred, err := parseExpr(req.DSL)
	if err != nil {
		return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "invalid expression: %v", err)}, nil
	}

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.SearchResponse{Status: st}, nil
	}

	target := params[gateway.KeyAnnsField]
	if isText {
		target = textField
	}
	f, found := c.schema.FieldByName(target)
	switch {
	case !found:
		return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "field %s does not exist", target)}, nil
	case isText && !f.IsEmbedded():
		return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "field %s has no embedding model", target)}, nil
	case !isText && !f.IsVector():
		return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "field %s is not a vector field", target)}, nil
	case !isText && len(queries[0]) != f.Dimension():
		return &gateway.SearchResponse{Status: fail(status.IllegalDimension,
			"query dimension %d does not match field dimension %d", len(queries[0]), f.Dimension())}, nil
	}

	metric := schema.MetricType(params[gateway.KeyMetricType])
	if metric == schema.MetricInvalid {
		metric = c.defaultMetric(f, isText)
	}
	if !schema.IsFloatMetric(metric) {
		return &gateway.SearchResponse{Status: fail(status.IllegalMetricType, "metric type %s is not supported", metric)}, nil
	}

	parts, st := c.partitionFilter(req.PartitionNames)
	if st.Code != 0 {
		return &gateway.SearchResponse{Status: st}, nil
	}
	fields, st := c.outputFields(req.OutputFields)
	if st.Code != 0 {
		return &gateway.SearchResponse{Status: st}, nil
	}

	var candidates []row
	for _, r := range c.rows {
		if parts != nil && !parts[r.partition] {
			continue
		}
		hit, err := pred.eval(r.fields)
		if err != nil {
			return &gateway.SearchResponse{Status: fail(status.IllegalArgument, "invalid expression: %v", err)}, nil
		}
		if hit && r.vec != nil {
			candidates = append(candidates, r)
		}
	}

	out := gateway.SearchResultData{NumQueries: int64(len(queries)), TopK: int64(topK), OutputFields: req.OutputFields}
	var hits []row
	for _, q := range queries {
		ranked := rank(candidates, q, metric, topK)
		out.Topks = append(out.Topks, int64(len(ranked)))
		for _, h := range ranked {
			appendID(&out.IDs, h.row.id)
			out.Scores = append(out.Scores, h.score)
			hits = append(hits, h.row)
		}
	}
	if out.Scores == nil {
		out.Scores = []float32{}
	}
	if len(req.OutputFields) > 0 {
		out.FieldsData, err = columns(fields, hits)
		if err != nil {
			return &gateway.SearchResponse{Status: fail(status.UnexpectedError, "%v", err)}, nil
		}
	}
	return &gateway.SearchResponse{Results: out, CollectionName: c.schema.Name()}, nil
}

// defaultMetric uses the metric of the field's index, or L2 for vectors and
// COSINE for embedded text.
func (c *collection) defaultMetric(f schema.Field, isText bool) schema.MetricType {
	if idx, _ := c.findIndex(f.Name(), ""); idx != nil {
		if m := codec.KVToMap(idx.params)[gateway.KeyMetricType]; m != "" {
			return schema.MetricType(m)
		}
	}
	if isText {
		return schema.MetricCosine
	}
	return schema.MetricL2
}

type scored struct {
	row   row
	score float32
}

// rank returns the topK nearest rows. L2 ranks ascending by distance, IP and
// COSINE descending by similarity.
func rank(rows []row, q []float32, metric schema.MetricType, topK int) []scored {
	out := make([]scored, 0, len(rows))
	for _, r := range rows {
		if len(r.vec) != len(q) {
			continue
		}
		out = append(out, scored{row: r, score: distance(metric, q, r.vec)})
	}
	ascending := metric == schema.MetricL2
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].score < out[j].score
		}
		return out[i].score > out[j].score
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

func distance(metric schema.MetricType, a, b []float32) float32 {
	var dot, na, nb, l2 float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
		l2 += (x - y) * (x - y)
	}
	switch metric {
	case schema.MetricIP:
		return float32(dot)
	case schema.MetricCosine:
		if na == 0 || nb == 0 {
			return 0
		}
		return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
	default:
		return float32(l2)
	}
}
