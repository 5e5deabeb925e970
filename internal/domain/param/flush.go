package param

import "github.com/kailas-cloud/vecsearch/internal/domain"

// Flush seals in-memory data of the listed collections into segments.
type Flush struct {
	Collections []string
	Sync        Sync
}

// NewFlush validates and creates Flush params.
func NewFlush(collections []string, sync Sync) (Flush, error) {
	p := Flush{Collections: cloneStrings(collections), Sync: sync}
	if err := p.Validate(); err != nil {
		return Flush{}, err
	}
	return p, nil
}

// Validate checks names and sync overrides.
func (p Flush) Validate() error {
	if len(p.Collections) == 0 {
		return domain.NewParamError("collection names cannot be empty")
	}
	if err := checkNames("collection name", p.Collections); err != nil {
		return err
	}
	return p.Sync.Validate()
}

// GetFlushState asks whether every listed segment is flushed.
type GetFlushState struct {
	SegmentIDs []int64
}

// NewGetFlushState validates and creates GetFlushState params.
func NewGetFlushState(ids ...int64) (GetFlushState, error) {
	cp := make([]int64, len(ids))
	copy(cp, ids)
	p := GetFlushState{SegmentIDs: cp}
	if err := p.Validate(); err != nil {
		return GetFlushState{}, err
	}
	return p, nil
}

// Validate requires at least one segment ID.
func (p GetFlushState) Validate() error {
	if len(p.SegmentIDs) == 0 {
		return domain.NewParamError("segment ids cannot be empty")
	}
	return nil
}
