package schema

import "fmt"

// DataType is the semantic type of a field.
type DataType int32

// Data type constants. Values match the wire enumeration.
const (
	None        DataType = 0
	Bool        DataType = 1
	Int32       DataType = 4
	Int64       DataType = 5
	Float       DataType = 10
	Double      DataType = 11
	String      DataType = 20
	FloatVector DataType = 101
)

var dataTypeNames = map[DataType]string{
	None:        "None",
	Bool:        "Bool",
	Int32:       "Int32",
	Int64:       "Int64",
	Float:       "Float",
	Double:      "Double",
	String:      "String",
	FloatVector: "FloatVector",
}

func (t DataType) String() string {
	if n, ok := dataTypeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("DataType(%d)", int32(t))
}

// IsValid reports whether t is a supported, non-None type.
func (t DataType) IsValid() bool {
	_, ok := dataTypeNames[t]
	return ok && t != None
}

// ParseDataType resolves a type by name.
func ParseDataType(name string) (DataType, error) {
	for t, n := range dataTypeNames {
		if n == name && t != None {
			return t, nil
		}
	}
	return None, fmt.Errorf("unknown data type %q", name)
}

// ModelType tags a String field with the embedding model the server uses to
// derive its vector. Empty means the field is a plain scalar.
type ModelType string

// Known embedding models.
const (
	ModelNone   ModelType = ""
	ModelSimCSE ModelType = "SIMCSE"
)

// ConsistencyLevel controls read visibility for search and query.
type ConsistencyLevel int32

// Consistency levels. Session is not offered by the service.
const (
	ConsistencyStrong     ConsistencyLevel = 0
	ConsistencyBounded    ConsistencyLevel = 2
	ConsistencyEventually ConsistencyLevel = 3
)

func (c ConsistencyLevel) String() string {
	switch c {
	case ConsistencyStrong:
		return "Strong"
	case ConsistencyBounded:
		return "Bounded"
	case ConsistencyEventually:
		return "Eventually"
	default:
		return fmt.Sprintf("ConsistencyLevel(%d)", int32(c))
	}
}

// IsValid reports whether c is offered by the service.
func (c ConsistencyLevel) IsValid() bool {
	return c == ConsistencyStrong || c == ConsistencyBounded || c == ConsistencyEventually
}

// Type param keys carried on the wire.
const (
	ParamDim            = "dim"
	ParamMaxLength      = "max_length"
	ParamBatchNormalize = "batch_normalize"
)
