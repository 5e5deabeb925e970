package codec

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/response"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/domain/status"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

const emptyCollectionMsg = "empty collection or improper expression"

// StatusError converts a non-success status into a server error. It returns
// nil for success.
func StatusError(op string, st gateway.Status) error {
	if status.Code(st.Code).OK() {
		return nil
	}
	reason := st.Reason
	if reason == "" {
		reason = fmt.Sprintf("error code: %d", st.Code)
	}
	return domain.NewServerError(op, st.Code, reason)
}

func missing(op string) error {
	return &domain.Error{Kind: domain.KindSchemaMismatch, Op: op, Msg: "empty response"}
}

// decode maps a status to a failure result, or runs fn to build the payload.
// Decoding errors are returned as errors so they are never retried.
func decode[T any](op string, st gateway.Status, fn func() (T, error)) (result.Result[T], error) {
	if err := StatusError(op, st); err != nil {
		return result.Failure[T](err), nil
	}
	data, err := fn()
	if err != nil {
		return result.Result[T]{}, domain.WithOp(op, err)
	}
	return result.Success(data), nil
}

// Ack decodes a status-only response.
func Ack(op string, st *gateway.Status) (result.Result[struct{}], error) {
	if st == nil {
		return result.Result[struct{}]{}, missing(op)
	}
	return decode(op, *st, func() (struct{}, error) { return struct{}{}, nil })
}

// Bool decodes a has-style response.
func Bool(op string, resp *gateway.BoolResponse) (result.Result[bool], error) {
	if resp == nil {
		return result.Result[bool]{}, missing(op)
	}
	return decode(op, resp.Status, func() (bool, error) { return resp.Value, nil })
}

// DescribeCollection decodes a collection description.
func DescribeCollection(op string, resp *gateway.DescribeCollectionResponse) (result.Result[response.CollectionInfo], error) {
	if resp == nil {
		return result.Result[response.CollectionInfo]{}, missing(op)
	}
	return decode(op, resp.Status, func() (response.CollectionInfo, error) {
		sch, err := SchemaFromWire(resp.Schema)
		if err != nil {
			return response.CollectionInfo{}, err
		}
		return response.CollectionInfo{
			ID:        resp.CollectionID,
			Schema:    sch,
			ShardsNum: int(resp.ShardsNum),
			CreatedAt: time.UnixMilli(resp.CreatedUTCTimestamp),
		}, nil
	})
}

func loadStatuses(names []string, ids, created, pct []int64) ([]response.LoadStatus, error) {
	if len(pct) != len(names) {
		return nil, domain.NewSchemaMismatch(
			"status response has %d names but %d in-memory percentages", len(names), len(pct))
	}
	if (ids != nil && len(ids) != len(names)) || (created != nil && len(created) != len(names)) {
		return nil, domain.NewSchemaMismatch("status response has inconsistent list lengths")
	}
	out := make([]response.LoadStatus, len(names))
	for i, n := range names {
		out[i] = response.LoadStatus{Name: n, InMemoryPercentage: pct[i]}
		if ids != nil {
			out[i].ID = ids[i]
		}
		if created != nil {
			out[i].CreatedAt = time.UnixMilli(created[i])
		}
	}
	return out, nil
}

// ShowCollections decodes collection load statuses. Parallel lists of
// different lengths are a schema mismatch.
func ShowCollections(op string, resp *gateway.ShowCollectionsResponse) (result.Result[[]response.LoadStatus], error) {
	if resp == nil {
		return result.Result[[]response.LoadStatus]{}, missing(op)
	}
	return decode(op, resp.Status, func() ([]response.LoadStatus, error) {
		return loadStatuses(resp.CollectionNames, resp.CollectionIDs, resp.CreatedUTCTimestamps, resp.InMemoryPercentages)
	})
}

// ShowPartitions decodes partition load statuses.
func ShowPartitions(op string, resp *gateway.ShowPartitionsResponse) (result.Result[[]response.LoadStatus], error) {
	if resp == nil {
		return result.Result[[]response.LoadStatus]{}, missing(op)
	}
	return decode(op, resp.Status, func() ([]response.LoadStatus, error) {
		return loadStatuses(resp.PartitionNames, resp.PartitionIDs, resp.CreatedUTCTimestamps, resp.InMemoryPercentages)
	})
}

// DescribeIndex decodes index descriptions.
func DescribeIndex(op string, resp *gateway.DescribeIndexResponse) (result.Result[[]response.IndexInfo], error) {
	if resp == nil {
		return result.Result[[]response.IndexInfo]{}, missing(op)
	}
	return decode(op, resp.Status, func() ([]response.IndexInfo, error) {
		out := make([]response.IndexInfo, 0, len(resp.IndexDescriptions))
		for _, d := range resp.IndexDescriptions {
			params := KVToMap(d.Params)
			out = append(out, response.IndexInfo{
				IndexName:   d.IndexName,
				Field:       d.FieldName,
				IndexType:   schema.IndexType(params[gateway.KeyIndexType]),
				Metric:      schema.MetricType(params[gateway.KeyMetricType]),
				Params:      params,
				State:       response.IndexState(d.State),
				FailReason:  d.IndexStateFailReason,
				IndexedRows: d.IndexedRows,
				TotalRows:   d.TotalRows,
			})
		}
		return out, nil
	})
}

// Mutation decodes an insert or delete result.
func Mutation(op string, resp *gateway.MutationResult) (result.Result[response.Mutation], error) {
	if resp == nil {
		return result.Result[response.Mutation]{}, missing(op)
	}
	return decode(op, resp.Status, func() (response.Mutation, error) {
		return response.Mutation{
			InsertCount: resp.InsertCnt,
			DeleteCount: resp.DeleteCnt,
			IntIDs:      resp.IDs.IntID,
			StrIDs:      resp.IDs.StrID,
			Timestamp:   resp.Timestamp,
		}, nil
	})
}

// Search decodes ranked hits per query. IDs, scores and output columns must
// all cover the sum of per-query hit counts.
func Search(op string, resp *gateway.SearchResponse) (result.Result[response.SearchResults], error) {
	if resp == nil {
		return result.Result[response.SearchResults]{}, missing(op)
	}
	return decode(op, resp.Status, func() (response.SearchResults, error) {
		return searchResults(resp.Results)
	})
}

func searchResults(r gateway.SearchResultData) (response.SearchResults, error) {
	var total int64
	for _, k := range r.Topks {
		if k < 0 {
			return response.SearchResults{}, domain.NewSchemaMismatch("negative hit count %d", k)
		}
		total += k
	}
	if int64(r.IDs.Len()) != total || int64(len(r.Scores)) != total {
		return response.SearchResults{}, domain.NewSchemaMismatch(
			"search result has %d ids and %d scores for %d hits", r.IDs.Len(), len(r.Scores), total)
	}
	cols, err := decodeColumns(r.FieldsData, int(total))
	if err != nil {
		return response.SearchResults{}, err
	}

	out := response.SearchResults{Queries: make([][]response.Hit, len(r.Topks))}
	offset := 0
	for q, k := range r.Topks {
		hits := make([]response.Hit, k)
		for j := range hits {
			i := offset + j
			hits[j] = response.Hit{ID: idAt(r.IDs, i), Score: r.Scores[i], Fields: rowAt(cols, i)}
		}
		out.Queries[q] = hits
		offset += int(k)
	}
	return out, nil
}

func idAt(ids gateway.IDs, i int) any {
	if ids.StrID != nil {
		return ids.StrID[i]
	}
	return ids.IntID[i]
}

func decodeColumns(fds []gateway.FieldData, rows int) ([]Column, error) {
	cols := make([]Column, 0, len(fds))
	for _, fd := range fds {
		c, err := DecodeColumn(fd)
		if err != nil {
			return nil, err
		}
		if c.Len() != rows {
			return nil, domain.NewSchemaMismatch("field '%s' has %d rows, want %d", c.Name, c.Len(), rows)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func rowAt(cols []Column, i int) map[string]any {
	row := make(map[string]any, len(cols))
	for _, c := range cols {
		row[c.Name] = c.At(i)
	}
	return row
}

// Query decodes matched rows. An EmptyCollection status is reported with a
// friendlier reason.
func Query(op string, resp *gateway.QueryResponse) (result.Result[response.QueryResults], error) {
	if resp == nil {
		return result.Result[response.QueryResults]{}, missing(op)
	}
	st := resp.Status
	if status.Code(st.Code) == status.EmptyCollection {
		st.Reason = emptyCollectionMsg
	}
	return decode(op, st, func() (response.QueryResults, error) {
		rows := 0
		if len(resp.FieldsData) > 0 {
			first, err := DecodeColumn(resp.FieldsData[0])
			if err != nil {
				return response.QueryResults{}, err
			}
			rows = first.Len()
		}
		cols, err := decodeColumns(resp.FieldsData, rows)
		if err != nil {
			return response.QueryResults{}, err
		}
		out := response.QueryResults{Rows: make([]map[string]any, rows)}
		for i := range out.Rows {
			out.Rows[i] = rowAt(cols, i)
		}
		return out, nil
	})
}

// Flush decodes the sealed segment IDs per collection.
func Flush(op string, resp *gateway.FlushResponse) (result.Result[response.FlushResult], error) {
	if resp == nil {
		return result.Result[response.FlushResult]{}, missing(op)
	}
	return decode(op, resp.Status, func() (response.FlushResult, error) {
		segs := make(map[string][]int64, len(resp.CollSegIDs))
		for name, ids := range resp.CollSegIDs {
			segs[name] = ids.Data
		}
		return response.FlushResult{Segments: segs}, nil
	})
}

// FlushState decodes whether every segment is flushed.
func FlushState(op string, resp *gateway.GetFlushStateResponse) (result.Result[bool], error) {
	if resp == nil {
		return result.Result[bool]{}, missing(op)
	}
	return decode(op, resp.Status, func() (bool, error) { return resp.Flushed, nil })
}
