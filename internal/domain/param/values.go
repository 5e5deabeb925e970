package param

// AsSlice returns values as []E when it is a []E or a []any whose elements
// are all exactly E. bad is the index of the first mismatching []any element,
// -1 when the container type itself is wrong.
func AsSlice[E any](values any) (out []E, bad int, ok bool) {
	switch v := values.(type) {
	case []E:
		return v, 0, true
	case []any:
		out = make([]E, len(v))
		for i, x := range v {
			e, ok := x.(E)
			if !ok {
				return nil, i, false
			}
			out[i] = e
		}
		return out, 0, true
	default:
		return nil, -1, false
	}
}

// AsInt32s accepts []int32, []int16, or []any of int32/int16 elements.
func AsInt32s(values any) (out []int32, bad int, ok bool) {
	switch v := values.(type) {
	case []int32:
		return v, 0, true
	case []int16:
		out = make([]int32, len(v))
		for i, x := range v {
			out[i] = int32(x)
		}
		return out, 0, true
	case []any:
		out = make([]int32, len(v))
		for i, x := range v {
			switch n := x.(type) {
			case int32:
				out[i] = n
			case int16:
				out[i] = int32(n)
			default:
				return nil, i, false
			}
		}
		return out, 0, true
	default:
		return nil, -1, false
	}
}
