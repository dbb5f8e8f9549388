package warpcol

import "unsafe"

// DType identifies a column element type. The set is sealed: operations
// dispatch with an exhaustive switch, so every supported type is enumerable
// at compile time.
type DType uint8

const (
	// Bool elements occupy one byte (0 = false, nonzero = true).
	Bool DType = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64

	// String is variable-width. It participates in the type system but is
	// rejected by fixed-width operations such as Transpose.
	String
)

// Size returns the element byte width, or 0 for variable-width types.
func (t DType) Size() int {
	switch t {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// FixedWidth reports whether elements have a constant byte width.
func (t DType) FixedWidth() bool {
	return t.Size() > 0
}

func (t DType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Element constrains the Go types storable in fixed-width columns.
type Element interface {
	~bool | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// dtypeOf maps a Go element type to its DType tag.
func dtypeOf[T Element]() DType {
	switch any(*new(T)).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float32:
		return Float32
	case float64:
		return Float64
	default:
		// Named types with an Element underlying type share its layout;
		// classify by size.
		switch size := int(unsafe.Sizeof(*new(T))); size {
		case 1:
			return Int8
		case 2:
			return Int16
		case 4:
			return Int32
		default:
			return Int64
		}
	}
}
