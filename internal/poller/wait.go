package poller

import (
	"context"
	"slices"

	"github.com/kailas-cloud/vecsearch/internal/domain/response"
)

// MissingPartition decides what a partition absent from a load status means.
type MissingPartition int

const (
	// Continue keeps polling; the partition may not have started loading.
	Continue MissingPartition = iota
	// Abort fails the wait.
	Abort
)

// LoadFetcher returns load statuses.
type LoadFetcher func(ctx context.Context) ([]response.LoadStatus, error)

func find(statuses []response.LoadStatus, name string) (response.LoadStatus, bool) {
	for _, s := range statuses {
		if s.Name == name {
			return s, true
		}
	}
	return response.LoadStatus{}, false
}

// WaitCollectionLoaded waits until the entry named name is fully loaded.
// Entries for other collections are ignored.
func WaitCollectionLoaded(ctx context.Context, p Policy, name string, fetch LoadFetcher) Outcome[[]response.LoadStatus] {
	return Poll[[]response.LoadStatus](ctx, p, fetch, func(ss []response.LoadStatus) bool {
		s, ok := find(ss, name)
		return ok && s.Loaded()
	}, nil)
}

// WaitPartitionsLoaded waits until every named partition is fully loaded.
func WaitPartitionsLoaded(
	ctx context.Context, p Policy, names []string, missing MissingPartition, fetch LoadFetcher,
) Outcome[[]response.LoadStatus] {
	return Poll[[]response.LoadStatus](ctx, p, fetch,
		func(ss []response.LoadStatus) bool {
			for _, n := range names {
				s, ok := find(ss, n)
				if !ok || !s.Loaded() {
					return false
				}
			}
			return true
		},
		func(ss []response.LoadStatus) bool {
			return missing == Abort && len(MissingNames(ss, names)) > 0
		},
	)
}

// MissingNames returns the names absent from statuses.
func MissingNames(statuses []response.LoadStatus, names []string) []string {
	var out []string
	for _, n := range names {
		if _, ok := find(statuses, n); !ok {
			out = append(out, n)
		}
	}
	return out
}

// IndexFetcher returns index descriptions.
type IndexFetcher func(ctx context.Context) ([]response.IndexInfo, error)

// MatchIndex returns the description for field and index name. An empty
// indexName matches any index on the field.
func MatchIndex(infos []response.IndexInfo, field, indexName string) (response.IndexInfo, bool) {
	for _, in := range infos {
		if in.Field == field && (indexName == "" || in.IndexName == indexName) {
			return in, true
		}
	}
	return response.IndexInfo{}, false
}

// WaitIndexBuilt waits until the matching index is Finished. Failed ends the
// wait at once.
func WaitIndexBuilt(ctx context.Context, p Policy, field, indexName string, fetch IndexFetcher) Outcome[[]response.IndexInfo] {
	state := func(infos []response.IndexInfo) response.IndexState {
		in, ok := MatchIndex(infos, field, indexName)
		if !ok {
			return response.IndexStateNone
		}
		return in.State
	}
	return Poll[[]response.IndexInfo](ctx, p, fetch,
		func(infos []response.IndexInfo) bool { return state(infos) == response.IndexStateFinished },
		func(infos []response.IndexInfo) bool { return state(infos) == response.IndexStateFailed },
	)
}

// FlushFetcher reports whether every segment in ids is flushed.
type FlushFetcher func(ctx context.Context, ids []int64) (bool, error)

// FlushOutcome aggregates per-collection flush waits.
type FlushOutcome struct {
	Flushed []string
	Pending []string
	Err     error
}

// WaitFlushed waits for each collection's segments independently, each with
// its own budget. A pending collection does not stop the others; a fetch
// error ends the wait and reports every unchecked collection as pending.
func WaitFlushed(ctx context.Context, p Policy, segments map[string][]int64, fetch FlushFetcher) FlushOutcome {
	var out FlushOutcome
	names := make([]string, 0, len(segments))
	for n := range segments {
		names = append(names, n)
	}
	slices.Sort(names)

	for i, name := range names {
		ids := segments[name]
		if len(ids) == 0 {
			out.Flushed = append(out.Flushed, name)
			continue
		}
		o := Poll(ctx, p,
			func(ctx context.Context) (bool, error) { return fetch(ctx, ids) },
			func(flushed bool) bool { return flushed },
			nil,
		)
		switch o.State {
		case Done:
			out.Flushed = append(out.Flushed, name)
		case Error:
			out.Err = o.Err
			out.Pending = append(out.Pending, names[i:]...)
			return out
		default:
			out.Pending = append(out.Pending, name)
		}
	}
	return out
}
