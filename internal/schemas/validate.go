package schemas

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"repodoctor/internal/doctor"
)

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

type fieldRules struct {
	required bool
	enum     []string
	min      *int64
	max      *int64
	def      string
	hasDef   bool
}

func parseRules(tag string) fieldRules {
	var r fieldRules
	if tag == "" {
		return r
	}
	for _, part := range strings.Split(tag, ",") {
		key, val, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "required":
			r.required = true
		case "enum":
			r.enum = strings.Split(val, "|")
		case "min":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				r.min = &n
			}
		case "max":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				r.max = &n
			}
		case "default":
			r.def = val
			r.hasDef = true
		}
	}
	return r
}

// elementRules keeps the value constraints of a container field for its elements.
func (r fieldRules) elementRules() fieldRules {
	return fieldRules{enum: r.enum, min: r.min, max: r.max}
}

type walker struct {
	errs []doctor.FieldError
}

func (w *walker) fail(loc, format string, args ...any) {
	w.errs = append(w.errs, doctor.FieldError{Loc: loc, Msg: fmt.Sprintf(format, args...)})
}

func join(loc, name string) string {
	if loc == "" {
		return name
	}
	return loc + "." + name
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// object validates m against struct type t, normalizing values in place.
// It returns the set of keys the struct declares.
func (w *walker) object(loc string, t reflect.Type, m map[string]any) map[string]bool {
	known := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "-" {
			continue
		}
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			for k := range w.object(loc, f.Type, m) {
				known[k] = true
			}
			continue
		}
		if name == "" {
			name = f.Name
		}
		known[name] = true

		r := parseRules(f.Tag.Get("schema"))
		v, present := m[name]
		if !present || (v == nil && f.Type.Kind() != reflect.Pointer) {
			switch {
			case r.required:
				w.fail(join(loc, name), "field required")
			case r.hasDef:
				m[name] = defaultValue(f.Type, r.def)
			case f.Type.Kind() == reflect.Slice:
				m[name] = []any{}
			case f.Type.Kind() == reflect.Map:
				m[name] = map[string]any{}
			case present:
				delete(m, name)
			}
			continue
		}
		m[name] = w.value(join(loc, name), f.Type, v, r)
	}
	return known
}

func defaultValue(t reflect.Type, def string) any {
	switch t.Kind() {
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		return b
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.Number(def)
	default:
		return def
	}
}

func asInt(v any) (int64, bool) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	default:
		return 0, false
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// value validates v against type t and returns the normalized value.
func (w *walker) value(loc string, t reflect.Type, v any, r fieldRules) any {
	if v == nil {
		if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
			return nil
		}
		w.fail(loc, "must not be null")
		return v
	}
	if t.Kind() == reflect.Pointer {
		return w.value(loc, t.Elem(), v, r)
	}
	if t.Implements(unmarshalerType) || reflect.PointerTo(t).Implements(unmarshalerType) {
		return v
	}

	switch t.Kind() {
	case reflect.Interface:
		return v

	case reflect.String:
		s, ok := v.(string)
		if !ok {
			w.fail(loc, "expected string")
			return v
		}
		if len(r.enum) > 0 {
			for _, e := range r.enum {
				if s == e {
					return v
				}
			}
			w.fail(loc, "must be one of %s", strings.Join(r.enum, ", "))
		}
		return v

	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			w.fail(loc, "expected boolean")
		}
		return v

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := asInt(v)
		if !ok {
			w.fail(loc, "expected integer")
			return v
		}
		if (r.min != nil && n < *r.min) || (r.max != nil && n > *r.max) {
			w.fail(loc, "must be between %s and %s", bound(r.min), bound(r.max))
		}
		return json.Number(strconv.FormatInt(n, 10))

	case reflect.Float32, reflect.Float64:
		switch n := v.(type) {
		case json.Number:
			if _, err := n.Float64(); err != nil {
				w.fail(loc, "expected number")
			}
		case float64:
		default:
			w.fail(loc, "expected number")
		}
		return v

	case reflect.Slice, reflect.Array:
		arr, ok := v.([]any)
		if !ok {
			w.fail(loc, "expected array")
			return v
		}
		if t.Kind() == reflect.Array && len(arr) != t.Len() {
			w.fail(loc, "expected %d items", t.Len())
			return v
		}
		er := r.elementRules()
		for i := range arr {
			arr[i] = w.value(join(loc, strconv.Itoa(i)), t.Elem(), arr[i], er)
		}
		return arr

	case reflect.Map:
		obj, ok := v.(map[string]any)
		if !ok {
			w.fail(loc, "expected object")
			return v
		}
		er := r.elementRules()
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			obj[k] = w.value(join(loc, k), t.Elem(), obj[k], er)
		}
		return obj

	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			w.fail(loc, "expected object")
			return v
		}
		w.object(loc, t, obj)
		return obj
	}

	return v
}

func bound(n *int64) string {
	if n == nil {
		return "any"
	}
	return strconv.FormatInt(*n, 10)
}

func structType(target any) (reflect.Type, error) {
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema target must be a pointer to a struct, got %T", target)
	}
	return t.Elem(), nil
}

// Name returns the schema name of target, e.g. "DietOutput".
func Name(target any) string {
	t, err := structType(target)
	if err != nil {
		return fmt.Sprintf("%T", target)
	}
	return t.Name()
}

// Check validates decoded JSON against target's rules. data is normalized in
// place: defaults are filled in and absent lists become empty. The returned
// map holds root keys target does not declare.
func Check(data any, target any) ([]doctor.FieldError, map[string]any, error) {
	t, err := structType(target)
	if err != nil {
		return nil, nil, err
	}

	w := &walker{}
	root, ok := data.(map[string]any)
	if !ok {
		w.fail("", "expected object")
		return w.errs, nil, nil
	}

	if out, ok := target.(Output); ok {
		if c, present := root["command"]; !present || c == nil {
			root["command"] = out.CommandName()
		}
	}

	known := w.object("", t, root)
	var extra map[string]any
	for k, v := range root {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return w.errs, extra, nil
}

// Decode validates data and, when valid, stores it in target. Violations are
// returned as a schema validation error naming the target type.
func Decode(data any, target any) error {
	fieldErrs, extra, err := Check(data, target)
	if err != nil {
		return err
	}
	if len(fieldErrs) > 0 {
		return doctor.SchemaValidation(
			fmt.Sprintf("Output doesn't match expected schema %s", Name(target)),
			fieldErrs,
		)
	}

	normalized, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to re-encode validated output: %w", err)
	}
	if err := json.Unmarshal(normalized, target); err != nil {
		return doctor.SchemaValidation(
			fmt.Sprintf("Output doesn't match expected schema %s", Name(target)),
			[]doctor.FieldError{{Msg: err.Error()}},
		)
	}

	if len(extra) > 0 {
		if s, ok := target.(interface{ SetExtra(map[string]any) }); ok {
			s.SetExtra(extra)
		}
	}
	return nil
}
