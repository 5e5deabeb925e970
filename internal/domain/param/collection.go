package param

import (
	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
)

// CreateCollection creates a collection from a validated schema.
type CreateCollection struct {
	Schema    schema.Schema
	ShardsNum int
}

// NewCreateCollection validates and creates CreateCollection params.
func NewCreateCollection(s schema.Schema, shards int) (CreateCollection, error) {
	p := CreateCollection{Schema: s, ShardsNum: shards}
	if err := p.Validate(); err != nil {
		return CreateCollection{}, err
	}
	return p, nil
}

// Validate checks the schema is populated and the shard count is not negative.
func (p CreateCollection) Validate() error {
	if err := domain.CheckName("collection name", p.Schema.Name()); err != nil {
		return err
	}
	if len(p.Schema.Fields()) == 0 {
		return domain.NewParamError("collection '%s' must have at least one field", p.Schema.Name())
	}
	if p.ShardsNum < 0 {
		return domain.NewParamError("shards number cannot be negative")
	}
	return nil
}

// Collection names a collection for has, drop, describe and release.
type Collection struct {
	Name string
}

// NewCollection validates and creates Collection params.
func NewCollection(name string) (Collection, error) {
	p := Collection{Name: name}
	if err := p.Validate(); err != nil {
		return Collection{}, err
	}
	return p, nil
}

// Validate checks the collection name.
func (p Collection) Validate() error {
	return domain.CheckName("collection name", p.Name)
}

// LoadCollection loads a collection into memory.
type LoadCollection struct {
	Collection string
	Replicas   int
	Sync       Sync
}

// NewLoadCollection validates and creates LoadCollection params. A zero
// replica count defaults to one.
func NewLoadCollection(collection string, replicas int, sync Sync) (LoadCollection, error) {
	if replicas == 0 {
		replicas = 1
	}
	p := LoadCollection{Collection: collection, Replicas: replicas, Sync: sync}
	if err := p.Validate(); err != nil {
		return LoadCollection{}, err
	}
	return p, nil
}

// Validate checks the name, replica count and sync overrides.
func (p LoadCollection) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if p.Replicas < 0 {
		return domain.NewParamError("replica number cannot be negative")
	}
	return p.Sync.Validate()
}

// ShowCollections lists collections, optionally filtered by name and load state.
type ShowCollections struct {
	Names []string
	Kind  ShowKind
}

// NewShowCollections validates and creates ShowCollections params. Filtering
// by in-memory state implies the listed names.
func NewShowCollections(kind ShowKind, names ...string) (ShowCollections, error) {
	p := ShowCollections{Names: cloneStrings(names), Kind: kind}
	if err := p.Validate(); err != nil {
		return ShowCollections{}, err
	}
	return p, nil
}

// Validate checks every listed name.
func (p ShowCollections) Validate() error {
	if p.Kind != ShowAll && p.Kind != ShowInMemory {
		return domain.NewParamError("invalid show type %d", p.Kind)
	}
	return checkNames("collection name", p.Names)
}
