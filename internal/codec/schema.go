package codec

import (
	"maps"
	"slices"

	"github.com/kailas-cloud/vecsearch/internal/domain"
	"github.com/kailas-cloud/vecsearch/internal/domain/schema"
	"github.com/kailas-cloud/vecsearch/internal/gateway"
)

// SchemaToWire converts a schema into its wire form, preserving field order.
func SchemaToWire(s schema.Schema) gateway.CollectionSchema {
	fields := s.Fields()
	out := gateway.CollectionSchema{
		Name:        s.Name(),
		Description: s.Description(),
		Fields:      make([]gateway.FieldSchema, 0, len(fields)),
	}
	for _, f := range fields {
		out.Fields = append(out.Fields, gateway.FieldSchema{
			Name:           f.Name(),
			Description:    f.Description(),
			DataType:       int32(f.DataType()),
			IsPrimaryKey:   f.IsPrimaryKey(),
			IsPartitionKey: f.IsPartitionKey(),
			AutoID:         f.IsAutoID(),
			Model:          string(f.Model()),
			TypeParams:     AssembleKV(f.TypeParams()),
		})
	}
	return out
}

// SchemaFromWire rebuilds a schema from its wire form without re-running
// creation rules; the server is authoritative.
func SchemaFromWire(w gateway.CollectionSchema) (schema.Schema, error) {
	fields := make([]schema.Field, 0, len(w.Fields))
	for _, fs := range w.Fields {
		dt := schema.DataType(fs.DataType)
		if !dt.IsValid() {
			return schema.Schema{}, domain.NewSchemaMismatch("field '%s' has unknown data type %d", fs.Name, fs.DataType)
		}
		opts := schema.FromTypeParams(KVToMap(fs.TypeParams))
		opts = append(opts, schema.WithDescription(fs.Description))
		if fs.Model != "" {
			opts = append(opts, schema.WithEmbedding(schema.ModelType(fs.Model)))
		}
		if fs.IsPrimaryKey {
			opts = append(opts, schema.PrimaryKey())
		}
		if fs.IsPartitionKey {
			opts = append(opts, schema.PartitionKey())
		}
		if fs.AutoID {
			opts = append(opts, schema.AutoID())
		}
		fields = append(fields, schema.Reconstruct(fs.Name, dt, opts...))
	}
	return schema.ReconstructSchema(w.Name, w.Description, fields), nil
}

// AssembleKV converts a map into key/value pairs sorted by key.
func AssembleKV(m map[string]string) []gateway.KeyValuePair {
	if len(m) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(m))
	out := make([]gateway.KeyValuePair, 0, len(keys))
	for _, k := range keys {
		out = append(out, gateway.KeyValuePair{Key: k, Value: m[k]})
	}
	return out
}

// KVToMap converts key/value pairs into a map. Later keys win.
func KVToMap(kvs []gateway.KeyValuePair) map[string]string {
	m := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}
	return m
}
