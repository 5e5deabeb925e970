package emulator

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

func timestamp() uint64 { return uint64(time.Now().UnixNano()) }

// Insert appends rows. String fields with an embedding model are vectorised
// on the way in.
func (s *Server) Insert(ctx context.Context, req *gateway.InsertRequest) (*gateway.MutationResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	c, rows, texts, st := s.prepareInsert(req)
	s.end()
	if st.Code != 0 {
		return &gateway.MutationResult{Status: st}, nil
	}

	if texts != nil {
		res, err := domain.EmbedAll(ctx, s.embedder, texts.values)
		if err != nil {
			return &gateway.MutationResult{Status: fail(status.UnexpectedError, "embed field %s: %v", texts.field, err)}, nil
		}
		for i := range rows {
			rows[i].vec = res.Embeddings[i]
		}
	}

	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()
	if s.collections[req.CollectionName] != c {
		return &gateway.MutationResult{
			Status: fail(status.CollectionNotExists, "collection %s was dropped during insert", req.CollectionName),
		}, nil
	}

	resp := &gateway.MutationResult{InsertCnt: int64(len(rows)), Timestamp: timestamp()}
	pk, hasPK := c.schema.PrimaryField()
	for i := range rows {
		if rows[i].id == nil {
			rows[i].id = c.autoID(pk, hasPK)
			if hasPK {
				rows[i].fields[pk.Name()] = rows[i].id
			}
		}
		appendID(&resp.IDs, rows[i].id)
	}
	c.rows = append(c.rows, rows...)
	c.unsealed = append(c.unsealed, rows...)
	return resp, nil
}

type textColumn struct {
	field  string
	values []string
}

// prepareInsert validates the request against the schema and builds rows
// without primary keys for auto-id fields.
func (s *Server) prepareInsert(req *gateway.InsertRequest) (*collection, []row, *textColumn, gateway.Status) {
	partName := req.PartitionName
	if partName == "" {
		partName = defaultPartition
	}
	c, _, st := s.partitionOf(req.CollectionName, partName)
	if st.Code != 0 {
		return nil, nil, nil, st
	}
	n := int(req.NumRows)
	if n == 0 {
		return nil, nil, nil, fail(status.IllegalRowRecord, "row count is zero")
	}

	cols := make(map[string]codec.Column, len(req.FieldsData))
	for _, fd := range req.FieldsData {
		f, found := c.schema.FieldByName(fd.FieldName)
		if !found {
			return nil, nil, nil, fail(status.IllegalArgument, "field %s is not in collection %s", fd.FieldName, c.schema.Name())
		}
		if f.DataType() != schema.DataType(fd.Type) {
			return nil, nil, nil, fail(status.IllegalArgument, "field %s expects %s, got %s",
				f.Name(), f.DataType(), schema.DataType(fd.Type))
		}
		col, err := codec.DecodeColumn(fd)
		if err != nil {
			return nil, nil, nil, fail(status.IllegalRowRecord, "%v", err)
		}
		if col.Len() != n {
			return nil, nil, nil, fail(status.IllegalRowRecord, "field %s has %d rows, expected %d", f.Name(), col.Len(), n)
		}
		if f.IsVector() && fd.Vectors.Dim != int64(f.Dimension()) {
			return nil, nil, nil, fail(status.IllegalDimension, "field %s expects dimension %d, got %d",
				f.Name(), f.Dimension(), fd.Vectors.Dim)
		}
		cols[f.Name()] = col
	}

	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{partition: partName, fields: make(map[string]any, len(cols)+1)}
	}

	var texts *textColumn
	for _, f := range c.schema.Fields() {
		col, found := cols[f.Name()]
		if f.IsAutoID() {
			if found {
				return nil, nil, nil, fail(status.IllegalArgument, "field %s is auto-generated and cannot be inserted", f.Name())
			}
			continue
		}
		if !found {
			return nil, nil, nil, fail(status.IllegalArgument, "field %s is not provided", f.Name())
		}
		if f.DataType() == schema.String && f.MaxLength() > 0 {
			for i, v := range col.Values.([]string) {
				if len(v) > f.MaxLength() {
					return nil, nil, nil, fail(status.IllegalArgument,
						"the no.%d value of field %s exceeds max length %d", i+1, f.Name(), f.MaxLength())
				}
			}
		}
		for i := range rows {
			v := col.At(i)
			rows[i].fields[f.Name()] = v
			if f.IsPrimaryKey() {
				rows[i].id = v
			}
			if f.IsVector() {
				rows[i].vec = v.([]float32)
			}
		}
		if f.IsEmbedded() {
			texts = &textColumn{field: f.Name(), values: slices.Clone(col.Values.([]string))}
		}
	}
	return c, rows, texts, ok()
}

func (c *collection) autoID(pk schema.Field, hasPK bool) any {
	if hasPK && pk.DataType() == schema.String {
		return uuid.NewString()
	}
	id := c.nextAutoID
	c.nextAutoID++
	return id
}

func appendID(ids *gateway.IDs, id any) {
	switch v := id.(type) {
	case string:
		ids.StrID = append(ids.StrID, v)
	case int64:
		ids.IntID = append(ids.IntID, v)
	}
}

// Delete removes rows matching the expression.
func (s *Server) Delete(_ context.Context, req *gateway.DeleteRequest) (*gateway.MutationResult, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.MutationResult{Status: st}, nil
	}
	if req.PartitionName != "" {
		if _, found := c.partitions[req.PartitionName]; !found {
			return &gateway.MutationResult{
				Status: fail(status.IllegalArgument, "partition %s does not exist", req.PartitionName),
			}, nil
		}
	}
	if req.Expr == "" {
		return &gateway.MutationResult{Status: fail(status.IllegalArgument, "expression cannot be empty")}, nil
	}
	pred, err := parseExpr(req.Expr)
	if err != nil {
		return &gateway.MutationResult{Status: fail(status.IllegalArgument, "invalid expression: %v", err)}, nil
	}

	resp := &gateway.MutationResult{Timestamp: timestamp()}
	keep := c.rows[:0]
	for _, r := range c.rows {
		if req.PartitionName == "" || r.partition == req.PartitionName {
			match, err := pred.eval(r.fields)
			if err != nil {
				return &gateway.MutationResult{Status: fail(status.IllegalArgument, "invalid expression: %v", err)}, nil
			}
			if match {
				appendID(&resp.IDs, r.id)
				resp.DeleteCnt++
				continue
			}
		}
		keep = append(keep, r)
	}
	c.rows = keep
	return resp, nil
}

// Query returns the rows matching the expression as columns: the primary key
// first, then the requested output fields.
func (s *Server) Query(_ context.Context, req *gateway.QueryRequest) (*gateway.QueryResponse, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	c, st := s.collection(req.CollectionName)
	if st.Code != 0 {
		return &gateway.QueryResponse{Status: st}, nil
	}
	if req.Expr == "" {
		return &gateway.QueryResponse{Status: fail(status.IllegalArgument, "expression cannot be empty")}, nil
	}
	pred, err := parseExpr(req.Expr)
	if err != nil {
		return &gateway.QueryResponse{Status: fail(status.IllegalArgument, "invalid expression: %v", err)}, nil
	}
	parts, st := c.partitionFilter(req.PartitionNames)
	if st.Code != 0 {
		return &gateway.QueryResponse{Status: st}, nil
	}
	fields, st := c.outputFields(req.OutputFields)
	if st.Code != 0 {
		return &gateway.QueryResponse{Status: st}, nil
	}
	if len(c.rows) == 0 {
		return &gateway.QueryResponse{Status: fail(status.EmptyCollection, "collection %s is empty", c.schema.Name())}, nil
	}

	params := codec.KVToMap(req.QueryParams)
	offset, _ := strconv.Atoi(params[gateway.KeyOffset])
	limit, _ := strconv.Atoi(params[gateway.KeyLimit])

	var matched []row
	for _, r := range c.rows {
		if parts != nil && !parts[r.partition] {
			continue
		}
		hit, err := pred.eval(r.fields)
		if err != nil {
			return &gateway.QueryResponse{Status: fail(status.IllegalArgument, "invalid expression: %v", err)}, nil
		}
		if hit {
			matched = append(matched, r)
		}
	}
	matched = matched[min(offset, len(matched)):]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}

	fds, err := columns(fields, matched)
	if err != nil {
		return &gateway.QueryResponse{Status: fail(status.UnexpectedError, "%v", err)}, nil
	}
	return &gateway.QueryResponse{FieldsData: fds, CollectionName: c.schema.Name()}, nil
}

// partitionFilter returns the allowed partitions, or nil for all of them.
func (c *collection) partitionFilter(names []string) (map[string]bool, gateway.Status) {
	if len(names) == 0 {
		return nil, ok()
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		if _, found := c.partitions[n]; !found {
			return nil, fail(status.IllegalArgument, "partition %s does not exist", n)
		}
		out[n] = true
	}
	return out, ok()
}

// outputFields resolves requested names, putting the primary key first.
func (c *collection) outputFields(names []string) ([]schema.Field, gateway.Status) {
	var out []schema.Field
	seen := map[string]bool{}
	if pk, found := c.schema.PrimaryField(); found {
		out = append(out, pk)
		seen[pk.Name()] = true
	}
	for _, n := range names {
		if seen[n] {
			continue
		}
		f, found := c.schema.FieldByName(n)
		if !found {
			return nil, fail(status.IllegalArgument, "field %s does not exist", n)
		}
		out = append(out, f)
		seen[n] = true
	}
	return out, ok()
}

func columns(fields []schema.Field, rows []row) ([]gateway.FieldData, error) {
	out := make([]gateway.FieldData, 0, len(fields))
	for _, f := range fields {
		vals := make([]any, len(rows))
		for i, r := range rows {
			vals[i] = r.fields[f.Name()]
		}
		fd, err := codec.EncodeColumn(f, vals)
		if err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, nil
}

// sortedNames returns map keys in order.
func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
