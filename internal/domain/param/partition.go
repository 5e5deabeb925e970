package param

import "github.com/kailas-cloud/vecsearch/internal/domain"

// Partition names one partition for create, drop and has.
type Partition struct {
	Collection string
	Partition  string
}

// NewPartition validates and creates Partition params.
func NewPartition(collection, partition string) (Partition, error) {
	p := Partition{Collection: collection, Partition: partition}
	if err := p.Validate(); err != nil {
		return Partition{}, err
	}
	return p, nil
}

// Validate checks both names.
func (p Partition) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	return domain.CheckName("partition name", p.Partition)
}

// ShowPartitions lists the partitions of a collection.
type ShowPartitions struct {
	Collection string
	Names      []string
	Kind       ShowKind
}

// NewShowPartitions validates and creates ShowPartitions params.
func NewShowPartitions(collection string, kind ShowKind, names ...string) (ShowPartitions, error) {
	p := ShowPartitions{Collection: collection, Names: cloneStrings(names), Kind: kind}
	if err := p.Validate(); err != nil {
		return ShowPartitions{}, err
	}
	return p, nil
}

// Validate checks the collection and partition names.
func (p ShowPartitions) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if p.Kind != ShowAll && p.Kind != ShowInMemory {
		return domain.NewParamError("invalid show type %d", p.Kind)
	}
	return checkNames("partition name", p.Names)
}

// LoadPartitions loads a set of partitions into memory.
type LoadPartitions struct {
	Collection string
	Partitions []string
	Replicas   int
	Sync       Sync
}

// NewLoadPartitions validates and creates LoadPartitions params. A zero
// replica count defaults to one.
func NewLoadPartitions(collection string, partitions []string, replicas int, sync Sync) (LoadPartitions, error) {
	if replicas == 0 {
		replicas = 1
	}
	p := LoadPartitions{
		Collection: collection,
		Partitions: cloneStrings(partitions),
		Replicas:   replicas,
		Sync:       sync,
	}
	if err := p.Validate(); err != nil {
		return LoadPartitions{}, err
	}
	return p, nil
}

// Validate checks names, replica count and sync overrides.
func (p LoadPartitions) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if len(p.Partitions) == 0 {
		return domain.NewParamError("partition names cannot be empty")
	}
	if err := checkNames("partition name", p.Partitions); err != nil {
		return err
	}
	if p.Replicas < 0 {
		return domain.NewParamError("replica number cannot be negative")
	}
	return p.Sync.Validate()
}

// ReleasePartitions releases a set of partitions from memory.
type ReleasePartitions struct {
	Collection string
	Partitions []string
}

// NewReleasePartitions validates and creates ReleasePartitions params.
func NewReleasePartitions(collection string, partitions ...string) (ReleasePartitions, error) {
	p := ReleasePartitions{Collection: collection, Partitions: cloneStrings(partitions)}
	if err := p.Validate(); err != nil {
		return ReleasePartitions{}, err
	}
	return p, nil
}

// Validate checks names.
func (p ReleasePartitions) Validate() error {
	if err := domain.CheckName("collection name", p.Collection); err != nil {
		return err
	}
	if len(p.Partitions) == 0 {
		return domain.NewParamError("partition names cannot be empty")
	}
	return checkNames("partition name", p.Partitions)
}
