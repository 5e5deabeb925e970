// Package vecsearch provides a Go client for a remote vector search service.
//
// Every operation validates its parameters locally, sends one remote call
// under a retry policy and returns a Result. Operations that start
// asynchronous work on the server (LoadCollection, LoadPartitions,
// CreateIndex, Flush) can wait for completion with a Sync value; a wait that
// times out still succeeds and carries a Warning.
//
//	client, _ := vecsearch.New(vecsearch.WithAddress("localhost", 19530))
//	defer client.Close()
//
//	id, _ := vecsearch.NewField("id", vecsearch.Int64, vecsearch.PrimaryKey())
//	vec, _ := vecsearch.NewField("vec", vecsearch.FloatVector, vecsearch.WithDimension(8))
//	sch, _ := vecsearch.NewSchema("docs", "", []vecsearch.Field{id, vec})
//	p, _ := vecsearch.NewCreateCollectionParam(sch, 2)
//	if res := client.CreateCollection(ctx, p); !res.OK() {
//	    log.Fatal(res.Message())
//	}
//
//	sp, _ := vecsearch.NewSearchParam(vecsearch.SearchParam{
//	    Collection:  "docs",
//	    VectorField: "vec",
//	    TopK:        10,
//	    Vectors:     [][]float32{query},
//	})
//	hits := client.Search(ctx, sp).Data().Queries[0]
//
// Failures are classified. Match them with errors.Is on res.Err(), e.g.
// ErrInvalidParam for parameters rejected before any remote call.
package vecsearch
