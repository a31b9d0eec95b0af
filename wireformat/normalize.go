package wireformat

import (
	"fmt"
	"reflect"
)

// normalizeInto rewrites map[any]any values produced by the CBOR decoder
// for dynamically typed fields into map[string]any, so both codecs hand
// the same shapes to callers.
func normalizeInto(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	normalizeValue(rv.Elem())
}

func normalizeValue(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() || !rv.CanSet() {
			return
		}
		rv.Set(reflect.ValueOf(normalize(rv.Interface())))
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if rv.Type().Field(i).IsExported() {
				normalizeValue(rv.Field(i))
			}
		}
	case reflect.Map:
		if rv.Type().Elem().Kind() != reflect.Interface {
			return
		}
		for _, key := range rv.MapKeys() {
			val := rv.MapIndex(key).Interface()
			if val == nil {
				continue
			}
			rv.SetMapIndex(key, reflect.ValueOf(normalize(val)))
		}
	}
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
