package rt

import (
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/kilianc/hbx/pkg/vdom"
)

// Kind is the shape of a Value. It is decided once, when data enters the
// engine through ValueOf.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindHTML
	KindRecord
	KindList
	KindNodes
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindHTML:   "html",
	KindRecord: "record",
	KindList:   "list",
	KindNodes:  "nodes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// HTML is trusted markup. Values of this type are injected without escaping.
type HTML string

// Record is a structured value with named fields.
type Record interface {
	Get(key string) (Value, bool)
	Keys() []string
}

// List is an ordered sequence of values.
type List interface {
	Len() int
	At(i int) Value
}

// Value is a template datum. The zero Value is null.
type Value struct {
	kind Kind
	v    any
}

// Null is the null value. Missing data resolves to Null.
var Null = Value{}

// ValueOf classifies x. Maps with string keys and structs become records,
// slices and arrays become lists, pointers are followed. Values that have no
// template representation (funcs, channels, complex numbers) become Null.
func ValueOf(x any) Value {
	v, _ := valueOf(x)
	return v
}

func valueOf(x any) (Value, bool) {
	switch t := x.(type) {
	case nil:
		return Null, true
	case Value:
		return t, true
	case bool:
		return Value{KindBool, t}, true
	case string:
		return Value{KindString, t}, true
	case HTML:
		return Value{KindHTML, string(t)}, true
	case int:
		return Value{KindNumber, int64(t)}, true
	case int8:
		return Value{KindNumber, int64(t)}, true
	case int16:
		return Value{KindNumber, int64(t)}, true
	case int32:
		return Value{KindNumber, int64(t)}, true
	case int64:
		return Value{KindNumber, t}, true
	case uint:
		return uintValue(uint64(t)), true
	case uint8:
		return Value{KindNumber, int64(t)}, true
	case uint16:
		return Value{KindNumber, int64(t)}, true
	case uint32:
		return Value{KindNumber, int64(t)}, true
	case uint64:
		return uintValue(t), true
	case float32:
		return Value{KindNumber, float64(t)}, true
	case float64:
		return Value{KindNumber, t}, true
	case vdom.Node:
		return Value{KindNodes, []vdom.Node{t}}, true
	case []vdom.Node:
		return Value{KindNodes, t}, true
	case Record:
		return Value{KindRecord, t}, true
	case List:
		return Value{KindList, t}, true
	case map[string]any:
		return Value{KindRecord, mapRecord(t)}, true
	case []any:
		return Value{KindList, anyList(t)}, true
	case []Value:
		return Value{KindList, valueList(t)}, true
	}
	return reflectValue(reflect.ValueOf(x))
}

func uintValue(u uint64) Value {
	if u > math.MaxInt64 {
		return Value{KindNumber, float64(u)}
	}
	return Value{KindNumber, int64(u)}
}

func reflectValue(rv reflect.Value) (Value, bool) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null, true
		}
		return valueOf(rv.Elem().Interface())
	case reflect.Bool:
		return Value{KindBool, rv.Bool()}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{KindNumber, rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintValue(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return Value{KindNumber, rv.Float()}, true
	case reflect.String:
		return Value{KindString, rv.String()}, true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Null, false
		}
		if rv.IsNil() {
			return Null, true
		}
		return Value{KindRecord, reflectMap{rv}}, true
	case reflect.Struct:
		return Value{KindRecord, structRecord{rv, fieldsOf(rv.Type())}}, true
	case reflect.Slice:
		if rv.IsNil() {
			return Null, true
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Value{KindString, string(rv.Bytes())}, true
		}
		return Value{KindList, reflectList{rv}}, true
	case reflect.Array:
		return Value{KindList, reflectList{rv}}, true
	}
	return Null, false
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Truthy reports whether v counts as true for conditional helpers. Null,
// false, zero, NaN, the empty string and empty lists are falsy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.v.(bool)
	case KindNumber:
		switch n := v.v.(type) {
		case int64:
			return n != 0
		case float64:
			return n != 0 && !math.IsNaN(n)
		}
	case KindString, KindHTML:
		return v.v.(string) != ""
	case KindRecord:
		return true
	case KindList:
		return v.v.(List).Len() > 0
	case KindNodes:
		return len(v.v.([]vdom.Node)) > 0
	}
	return false
}

// String returns the text form of v used for interpolation.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.v.(bool))
	case KindNumber:
		return formatNumber(v.v)
	case KindString, KindHTML:
		return v.v.(string)
	case KindList:
		l := v.v.(List)
		parts := make([]string, l.Len())
		for i := range parts {
			parts[i] = l.At(i).String()
		}
		return strings.Join(parts, ",")
	case KindNodes:
		return vdom.TextContent(v.v.([]vdom.Node)...)
	}
	return ""
}

func formatNumber(n any) string {
	switch n := n.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		if math.Abs(n) < 1e21 {
			return strconv.FormatFloat(n, 'f', -1, 64)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return ""
}

// Number returns v as a float64 if it is a number.
func (v Value) Number() (float64, bool) {
	switch n := v.v.(type) {
	case int64:
		return float64(n), v.kind == KindNumber
	case float64:
		return n, v.kind == KindNumber
	}
	return 0, false
}

// Record returns the record held by v.
func (v Value) Record() (Record, bool) {
	r, ok := v.v.(Record)
	return r, ok && v.kind == KindRecord
}

// List returns the list held by v.
func (v Value) List() (List, bool) {
	l, ok := v.v.(List)
	return l, ok && v.kind == KindList
}

// Nodes returns the element sub-trees held by v.
func (v Value) Nodes() ([]vdom.Node, bool) {
	n, ok := v.v.([]vdom.Node)
	return n, ok && v.kind == KindNodes
}

// Interface returns the Go form of v: nil, bool, int64, float64, string,
// HTML, Record, List or []vdom.Node.
func (v Value) Interface() any {
	if v.kind == KindHTML {
		return HTML(v.v.(string))
	}
	return v.v
}

// Get reads the property key of v. Lists and strings expose length, lists
// can be indexed with a decimal segment. Anything else reads as Null.
func (v Value) Get(key string) Value {
	switch v.kind {
	case KindRecord:
		if r, ok := v.v.(Record).Get(key); ok {
			return r
		}
	case KindList:
		l := v.v.(List)
		if key == "length" {
			return Value{KindNumber, int64(l.Len())}
		}
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < l.Len() {
			return l.At(i)
		}
	case KindString, KindHTML:
		if key == "length" {
			return Value{KindNumber, int64(utf8.RuneCountInString(v.v.(string)))}
		}
	}
	return Null
}

// trusted marks v as markup that is injected without escaping.
func (v Value) trusted() Value {
	switch v.kind {
	case KindNull, KindHTML, KindNodes:
		return v
	}
	return Value{KindHTML, v.String()}
}

type mapRecord map[string]any

func (m mapRecord) Get(key string) (Value, bool) {
	x, ok := m[key]
	if !ok {
		return Null, false
	}
	return ValueOf(x), true
}

func (m mapRecord) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type reflectMap struct{ rv reflect.Value }

func (m reflectMap) Get(key string) (Value, bool) {
	k := reflect.ValueOf(key).Convert(m.rv.Type().Key())
	x := m.rv.MapIndex(k)
	if !x.IsValid() {
		return Null, false
	}
	return ValueOf(x.Interface()), true
}

func (m reflectMap) Keys() []string {
	keys := make([]string, 0, m.rv.Len())
	for _, k := range m.rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return keys
}

type structRecord struct {
	rv     reflect.Value
	fields *structFields
}

func (r structRecord) Get(key string) (Value, bool) {
	idx, ok := r.fields.index[key]
	if !ok {
		return Null, false
	}
	f, err := r.rv.FieldByIndexErr(idx)
	if err != nil {
		// nil embedded pointer
		return Null, true
	}
	return ValueOf(f.Interface()), true
}

func (r structRecord) Keys() []string { return r.fields.names }

type structFields struct {
	names []string
	index map[string][]int
}

var fieldCache sync.Map // reflect.Type -> *structFields

func fieldsOf(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	sf := &structFields{index: map[string][]int{}}
	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous || !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		sf.names = append(sf.names, name)
		sf.index[name] = f.Index
		if _, taken := sf.index[f.Name]; !taken {
			sf.index[f.Name] = f.Index
		}
	}
	f, _ := fieldCache.LoadOrStore(t, sf)
	return f.(*structFields)
}

// object is an insertion-ordered record built by the engine itself.
type object struct {
	keys []string
	vals map[string]Value
}

// Object returns a record holding pairs in order. A repeated name keeps its
// first position and its last value.
func Object(pairs ...NamedArg) Value {
	o := &object{vals: make(map[string]Value, len(pairs))}
	for _, p := range pairs {
		o.set(p.Name, p.Value)
	}
	return Value{KindRecord, o}
}

func (o *object) set(key string, v Value) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

func (o *object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

func (o *object) Keys() []string { return o.keys }

type anyList []any

func (l anyList) Len() int       { return len(l) }
func (l anyList) At(i int) Value { return ValueOf(l[i]) }

type valueList []Value

func (l valueList) Len() int       { return len(l) }
func (l valueList) At(i int) Value { return l[i] }

type reflectList struct{ rv reflect.Value }

func (l reflectList) Len() int       { return l.rv.Len() }
func (l reflectList) At(i int) Value { return ValueOf(l.rv.Index(i).Interface()) }

// Merge returns a new record with the fields of every record in values;
// later values override earlier ones. Non-record values are skipped and no
// input is modified.
func Merge(values ...Value) Value {
	o := &object{vals: map[string]Value{}}
	for _, v := range values {
		r, ok := v.Record()
		if !ok {
			continue
		}
		for _, k := range r.Keys() {
			x, _ := r.Get(k)
			o.set(k, x)
		}
	}
	return Value{KindRecord, o}
}
