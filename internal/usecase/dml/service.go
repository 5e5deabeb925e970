// Package dml implements the data operations: insert, delete, search and
// query.
package dml

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecsearch/internal/codec"
	"github.com/kailas-cloud/vecsearch/internal/domain/param"
	"github.com/kailas-cloud/vecsearch/internal/domain/response"
	"github.com/kailas-cloud/vecsearch/internal/domain/result"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
	"github.com/kailas-cloud/vecsearch/internal/usecase/rpc"
	"github.com/kailas-cloud/vecsearch/internal/validate"
)

// Operation names.
const (
	OpInsert = "Insert"
	OpDelete = "Delete"
	OpSearch = "Search"
	OpQuery  = "Query"
)

// Service handles data operations.
type Service struct {
	gw  Gateway
	env *rpc.Env
}

// New creates a data service.
func New(gw Gateway, env *rpc.Env) *Service {
	return &Service{gw: gw, env: env}
}

// schemaOf fetches the live schema of a collection under op.
func (s *Service) schemaOf(ctx context.Context, op, collection string) result.Result[schema.Schema] {
	info := rpc.Do(ctx, s.env, op, s.gw.DescribeCollection,
		&gateway.CollectionRequest{CollectionName: collection}, codec.DescribeCollection)
	return result.Map(info, func(ci response.CollectionInfo) schema.Schema { return ci.Schema })
}

// Insert writes a column batch. The batch is validated against the live
// schema and sent in schema field order.
func (s *Service) Insert(ctx context.Context, p param.Insert) result.Result[response.Mutation] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[response.Mutation](OpInsert, err)
	}
	sch := s.schemaOf(ctx, OpInsert, p.Collection)
	if !sch.OK() {
		return result.Propagate[response.Mutation](sch)
	}
	if err := validate.Insert(p, sch.Data()); err != nil {
		return rpc.Fail[response.Mutation](OpInsert, err)
	}
	req, err := codec.InsertRequest(p, sch.Data())
	if err != nil {
		return rpc.Fail[response.Mutation](OpInsert, err)
	}
	s.env.Logger.Debug("inserting rows", zap.String("collection", p.Collection), zap.Int("rows", p.Rows()))
	return rpc.Do(ctx, s.env, OpInsert, s.gw.Insert, req, codec.Mutation)
}

// Delete removes rows matching the expression.
func (s *Service) Delete(ctx context.Context, p param.Delete) result.Result[response.Mutation] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[response.Mutation](OpDelete, err)
	}
	return rpc.Do(ctx, s.env, OpDelete, s.gw.Delete, &gateway.DeleteRequest{
		CollectionName: p.Collection,
		PartitionName:  p.Partition,
		Expr:           p.Expr,
	}, codec.Mutation)
}

// Search runs a vector or text similarity search. Query vectors are checked
// against the target field of the live schema.
func (s *Service) Search(ctx context.Context, p param.Search) result.Result[response.SearchResults] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[response.SearchResults](OpSearch, err)
	}
	sch := s.schemaOf(ctx, OpSearch, p.Collection)
	if !sch.OK() {
		return result.Propagate[response.SearchResults](sch)
	}
	if err := validate.Search(p, sch.Data()); err != nil {
		return rpc.Fail[response.SearchResults](OpSearch, err)
	}
	req, err := codec.SearchRequest(p)
	if err != nil {
		return rpc.Fail[response.SearchResults](OpSearch, err)
	}
	return rpc.Do(ctx, s.env, OpSearch, s.gw.Search, req, codec.Search)
}

// Query fetches rows matching the expression.
func (s *Service) Query(ctx context.Context, p param.Query) result.Result[response.QueryResults] {
	if err := p.Validate(); err != nil {
		return rpc.Fail[response.QueryResults](OpQuery, err)
	}
	return rpc.Do(ctx, s.env, OpQuery, s.gw.Query, codec.QueryRequest(p), codec.Query)
}
