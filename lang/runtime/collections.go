package runtime

import (
	"fmt"
	"strings"

	"github.com/dolthub/swiss"

	"github.com/jaccomoc/jactl-sub011/lang/types"
)

// List is a mutable, dynamically sized sequence of Values, the LIST type.
type List struct {
	elems []Value
}

// NewList returns a List containing elems. The caller must not modify elems
// afterward; NewList takes ownership of the backing array.
func NewList(elems []Value) *List { return &List{elems: elems} }

func (l *List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range l.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s, ok := e.(Str); ok {
			sb.WriteByte('\'')
			sb.WriteString(string(s))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(e.String())
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
func (l *List) Kind() types.Kind { return types.LIST }
func (l *List) Truth() bool      { return len(l.elems) > 0 }
func (l *List) Len() int         { return len(l.elems) }

func (l *List) Index(i int) (Value, error) {
	idx := normalizeIndex(i, len(l.elems))
	if idx < 0 || idx >= len(l.elems) {
		return nil, fmt.Errorf("index %d out of bounds for List of size %d", i, len(l.elems))
	}
	return l.elems[idx], nil
}

func (l *List) SetIndex(i int, v Value) error {
	idx := normalizeIndex(i, len(l.elems))
	if idx < 0 {
		return fmt.Errorf("index %d out of bounds for List of size %d", i, len(l.elems))
	}
	for idx >= len(l.elems) {
		l.elems = append(l.elems, Value(Null{}))
	}
	l.elems[idx] = v
	return nil
}

func (l *List) Append(v Value) { l.elems = append(l.elems, v) }

func (l *List) Elems() []Value { return l.elems }

func (l *List) Iterate() Iterator {
	i := 0
	return iteratorFunc(func() (Value, bool, error) {
		if i >= len(l.elems) {
			return nil, false, nil
		}
		v := l.elems[i]
		i++
		return v, true, nil
	})
}

func normalizeIndex(i, n int) int {
	if i < 0 {
		return n + i
	}
	return i
}

// entry is a single insertion-ordered key/value pair of a Map.
type entry struct {
	key Str
	val Value
}

// Map is a mutable, insertion-ordered, string-keyed mapping, the MAP type.
// Lookup uses a swiss-table index for O(1) amortized access; a parallel
// slice of keys preserves the insertion order that Jactl's "%v" string
// conversion and `.each{}` iteration rely on.
type Map struct {
	index *swiss.Map[string, int] // key -> index into order
	order []entry                 // insertion-ordered entries; tombstones leave val == nil
}

// NewMap returns an empty Map with initial capacity for at least size
// entries.
func NewMap(size int) *Map {
	if size < 1 {
		size = 1
	}
	return &Map{index: swiss.NewMap[string, int](uint32(size))}
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for _, e := range m.order {
		if e.val == nil {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(string(e.key))
		sb.WriteByte(':')
		if s, ok := e.val.(Str); ok {
			sb.WriteByte('\'')
			sb.WriteString(string(s))
			sb.WriteByte('\'')
		} else {
			sb.WriteString(e.val.String())
		}
	}
	if first {
		sb.WriteByte(':')
	}
	sb.WriteByte(']')
	return sb.String()
}

func (m *Map) Kind() types.Kind { return types.MAP }
func (m *Map) Truth() bool      { return m.Len() > 0 }

func (m *Map) Len() int {
	n := 0
	for _, e := range m.order {
		if e.val != nil {
			n++
		}
	}
	return n
}

func (m *Map) Get(key Value) (Value, bool, error) {
	k, ok := key.(Str)
	if !ok {
		return nil, false, fmt.Errorf("Map keys must be String, got %s", key.Kind())
	}
	i, found := m.index.Get(string(k))
	if !found || m.order[i].val == nil {
		return nil, false, nil
	}
	return m.order[i].val, true, nil
}

func (m *Map) Set(key Value, v Value) error {
	k, ok := key.(Str)
	if !ok {
		return fmt.Errorf("Map keys must be String, got %s", key.Kind())
	}
	if i, found := m.index.Get(string(k)); found {
		m.order[i].val = v
		return nil
	}
	m.index.Put(string(k), len(m.order))
	m.order = append(m.order, entry{key: k, val: v})
	return nil
}

// Delete removes key from the map, leaving a tombstone in the order slice
// so previously captured indices stay valid.
func (m *Map) Delete(key string) {
	if i, found := m.index.Get(key); found {
		m.order[i].val = nil
		m.index.Delete(key)
	}
}

func (m *Map) Field(name string) (Value, error) {
	v, found, err := m.Get(Str(name))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, NoSuchFieldError(name)
	}
	return v, nil
}

func (m *Map) SetField(name string, v Value) error { return m.Set(Str(name), v) }

func (m *Map) FieldNames() []string {
	names := make([]string, 0, len(m.order))
	for _, e := range m.order {
		if e.val != nil {
			names = append(names, string(e.key))
		}
	}
	return names
}

func (m *Map) Iterate() Iterator {
	i := 0
	return iteratorFunc(func() (Value, bool, error) {
		for i < len(m.order) {
			e := m.order[i]
			i++
			if e.val != nil {
				return NewList([]Value{e.key, e.val}), true, nil
			}
		}
		return nil, false, nil
	})
}

// Instance is a value of a user-declared class: a named bundle of fields
// backed by the same insertion-ordered storage as Map, since Jactl allows
// freely converting between a Map and a matching class INSTANCE with `as`.
type Instance struct {
	ClassName string
	Fields    *Map
}

func NewInstance(className string, fieldCount int) *Instance {
	return &Instance{ClassName: className, Fields: NewMap(fieldCount)}
}

func (i *Instance) String() string   { return i.ClassName + i.Fields.String() }
func (i *Instance) Kind() types.Kind { return types.INSTANCE }
func (i *Instance) Truth() bool      { return true }
func (i *Instance) Field(name string) (Value, error) { return i.Fields.Field(name) }
func (i *Instance) SetField(name string, v Value) error { return i.Fields.SetField(name, v) }
func (i *Instance) FieldNames() []string                { return i.Fields.FieldNames() }
