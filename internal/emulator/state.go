package emulator

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

const defaultPartition = "_default"

type loadState struct {
	requested bool
	percent   int64
}

// advance moves a requested load one step closer to completion.
func (l *loadState) advance(step int64) {
	if l.requested && l.percent < 100 {
		l.percent = min(100, l.percent+step)
	}
}

type partition struct {
	id      int64
	created int64
	load    loadState
}

type index struct {
	id        int64
	name      string
	field     string
	params    []gateway.KeyValuePair
	nlist     int64
	polls     int
	state     int32
	indexed   int64
	total     int64
	failCause string
}

type row struct {
	id        any
	partition string
	fields    map[string]any
	vec       []float32
}

type segment struct {
	id        int64
	remaining int
}

type collection struct {
	id         int64
	schema     schema.Schema
	shards     int32
	created    int64
	load       loadState
	partitions map[string]*partition
	partOrder  []string
	indexes    []*index
	rows       []row
	unsealed   []row
	segments   []*segment
	nextAutoID int64
}

func newCollection(s schema.Schema, shards int32, created int64) *collection {
	c := &collection{
		id:         newID(),
		schema:     s,
		shards:     shards,
		created:    created,
		partitions: map[string]*partition{},
		nextAutoID: 1,
	}
	c.addPartition(defaultPartition, created)
	return c
}

func (c *collection) addPartition(name string, created int64) {
	c.partitions[name] = &partition{id: newID(), created: created}
	c.partOrder = append(c.partOrder, name)
}

func (c *collection) dropPartition(name string) {
	delete(c.partitions, name)
	for i, n := range c.partOrder {
		if n == name {
			c.partOrder = append(c.partOrder[:i], c.partOrder[i+1:]...)
			break
		}
	}
	keep := c.rows[:0]
	for _, r := range c.rows {
		if r.partition != name {
			keep = append(keep, r)
		}
	}
	c.rows = keep
}

// findIndex returns the index on field, optionally restricted to name.
func (c *collection) findIndex(field, name string) (*index, int) {
	for i, idx := range c.indexes {
		if (field == "" || idx.field == field) && (name == "" || idx.name == name) {
			return idx, i
		}
	}
	return nil, -1
}

// newID derives a positive int64 identifier from a random UUID.
func newID() int64 {
	u := uuid.New()
	return int64(binary.BigEndian.Uint64(u[:8]) &^ (1 << 63))
}
