package cadence

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// PropertyAccessor lets a target expose tweenable properties without
// reflection. GetProperty reports false for unknown names.
type PropertyAccessor interface {
	GetProperty(name string) (any, bool)
	SetProperty(name string, value any)
}

// accessor reads and writes one property of one target.
type accessor struct {
	get func() any
	set func(v any)
}

// resolveAccessor finds how to read and write prop on target. Targets may be
// a PropertyAccessor, a map[string]any or map[string]float64, a value with
// X()/SetX or GetX()/SetX method pairs, or a pointer to a struct with an
// exported field X (property "x" matches field "X").
func resolveAccessor(target any, prop string) (*accessor, bool) {
	if prop == "" || target == nil {
		return nil, false
	}
	if pa, ok := target.(PropertyAccessor); ok {
		if _, ok := pa.GetProperty(prop); !ok {
			return nil, false
		}
		return &accessor{
			get: func() any {
				v, _ := pa.GetProperty(prop)
				return v
			},
			set: func(v any) { pa.SetProperty(prop, v) },
		}, true
	}

	switch m := target.(type) {
	case map[string]any:
		if _, ok := m[prop]; !ok {
			return nil, false
		}
		return &accessor{
			get: func() any { return m[prop] },
			set: func(v any) { m[prop] = convertLike(m[prop], v) },
		}, true
	case map[string]float64:
		if _, ok := m[prop]; !ok {
			return nil, false
		}
		return &accessor{
			get: func() any { return m[prop] },
			set: func(v any) {
				if f, ok := toFloat(v); ok {
					m[prop] = f
				}
			},
		}, true
	}

	rv := reflect.ValueOf(target)
	name := exportName(prop)
	if name == "" {
		return nil, false
	}

	if set := rv.MethodByName("Set" + name); set.IsValid() && set.Type().NumIn() == 1 {
		get := rv.MethodByName(name)
		if !isGetter(get) {
			get = rv.MethodByName("Get" + name)
		}
		if isGetter(get) {
			in := set.Type().In(0)
			return &accessor{
				get: func() any { return get.Call(nil)[0].Interface() },
				set: func(v any) {
					if arg, ok := convertTo(v, in); ok {
						set.Call([]reflect.Value{arg})
					}
				},
			}, true
		}
	}

	if rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		f := rv.Elem().FieldByName(name)
		if f.IsValid() && f.CanSet() && tweenableKind(f.Kind()) {
			return &accessor{
				get: func() any { return f.Interface() },
				set: func(v any) {
					if arg, ok := convertTo(v, f.Type()); ok {
						f.Set(arg)
					}
				},
			}, true
		}
	}
	return nil, false
}

func exportName(prop string) string {
	r, size := utf8.DecodeRuneInString(prop)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r)) + prop[size:]
}

func isGetter(m reflect.Value) bool {
	return m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1
}

func tweenableKind(k reflect.Kind) bool {
	switch k {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.String, reflect.Bool, reflect.Interface:
		return true
	}
	return false
}

// convertTo converts an interpolated value to type t. Integers are rounded
// and clamped to the range of t.
func convertTo(v any, t reflect.Type) (reflect.Value, bool) {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		f, ok := toFloat(v)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(f).Convert(t), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok := toFloat(v)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(clampInt(f, t.Bits())).Convert(t), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f, ok := toFloat(v)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(clampUint(f, t.Bits())).Convert(t), true
	case reflect.String:
		return reflect.ValueOf(formatValue(v)).Convert(t), true
	case reflect.Bool:
		b, ok := toBool(v)
		if !ok {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(b).Convert(t), true
	case reflect.Interface:
		if v == nil {
			return reflect.Zero(t), true
		}
		rv := reflect.ValueOf(v)
		if rv.Type().AssignableTo(t) {
			return rv, true
		}
	}
	return reflect.Value{}, false
}

func clampInt(f float64, bits int) int64 {
	lo := int64(-1) << (bits - 1)
	hi := int64(1)<<(bits-1) - 1
	r := math.Round(f)
	switch {
	case math.IsNaN(r):
		return 0
	case r <= float64(lo):
		return lo
	case r >= float64(hi):
		return hi
	}
	return int64(r)
}

func clampUint(f float64, bits int) uint64 {
	hi := uint64(1)<<bits - 1
	r := math.Round(f)
	switch {
	case math.IsNaN(r) || r <= 0:
		return 0
	case r >= float64(hi):
		return hi
	}
	return uint64(r)
}

// convertLike converts v to the dynamic type of prev for map targets, so an
// int entry stays an int.
func convertLike(prev, v any) any {
	switch prev.(type) {
	case int:
		if f, ok := toFloat(v); ok {
			return int(clampInt(f, strconv.IntSize))
		}
	case int64:
		if f, ok := toFloat(v); ok {
			return clampInt(f, 64)
		}
	case float32:
		if f, ok := toFloat(v); ok {
			return float32(f)
		}
	}
	return v
}

// toFloat reads a number from numeric kinds, bools, and strings that parse
// fully as a float.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		p, err := strconv.ParseBool(b)
		return p, err == nil
	}
	if f, ok := toFloat(v); ok {
		return f != 0, true
	}
	return false, false
}

// formatValue renders a value the way complex strings are written back.
func formatValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}
