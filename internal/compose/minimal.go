package compose

import (
	"reflect"
)

// CheckMinimalOutput reports whether v respects the minimal output
// principle: one value per invocation. Slices and arrays (other than byte
// strings) and sets (maps whose values are empty structs) are rejected.
// Scalars, records, renderables, channels and iterator functions pass.
//
// When v is rejected, the returned string names its type.
func CheckMinimalOutput(v any) (string, bool) {
	if v == nil {
		return "", true
	}
	t := reflect.TypeOf(v)
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return "", true
		}
		return t.String(), false
	case reflect.Map:
		if isEmptyStruct(t.Elem()) {
			return t.String(), false
		}
	}
	return "", true
}

func isEmptyStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && t.NumField() == 0
}
