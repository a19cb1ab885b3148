package reactive

import (
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Store is a reactive view over a map or slice. Reads inside a scope register
// per-path dependencies; writes notify only the scopes that read the changed
// path. Nested maps and slices are wrapped in child stores on first read.
//
// A store takes ownership of the value it wraps: mutate it only through the
// store so notifications are never bypassed.
type Store struct {
	rt       *Runtime
	parent   *Store
	key      any // string in a map parent, int in a slice parent
	isArray  bool
	obj      map[string]any
	arr      []any
	cells    map[any]*dependency
	shape    dependency // key set for maps, length for slices
	children map[any]*Store
	orphan   bool
}

// NewStore wraps initial in a root store on the default runtime.
func NewStore(initial any) *Store {
	return defaultRuntime.NewStore(initial)
}

// NewStore wraps initial in a root store. Maps with string keys and slices
// are wrapped directly (other map and slice types are converted); any other
// value is boxed under the "value" key.
func (rt *Runtime) NewStore(initial any) *Store {
	if st, ok := initial.(*Store); ok {
		return st
	}
	s := &Store{rt: rt}
	if v, ok := container(initial); ok {
		s.load(v)
	} else {
		s.obj = map[string]any{"value": initial}
	}
	return s
}

func (s *Store) load(v any) {
	switch t := v.(type) {
	case map[string]any:
		s.isArray = false
		s.obj, s.arr = t, nil
	case []any:
		s.isArray = true
		s.obj, s.arr = nil, t
	}
}

// Runtime returns the runtime the store notifies.
func (s *Store) Runtime() *Runtime {
	return s.rt
}

// IsArray reports whether the store wraps a slice.
func (s *Store) IsArray() bool {
	return s.isArray
}

// Get reads a map key. Nested maps and slices are returned as *Store.
// On a slice store, numeric keys index and "length" returns Len.
func (s *Store) Get(key string) any {
	if s.isArray {
		if key == "length" {
			return s.Len()
		}
		i, err := strconv.Atoi(key)
		if err != nil {
			return nil
		}
		return s.Index(i)
	}
	s.track(key)
	v, ok := s.obj[key]
	if !ok {
		return nil
	}
	return s.wrap(key, v)
}

// Index reads a slice element. Out-of-range reads return nil but still
// register the dependency, so a later append is observed.
func (s *Store) Index(i int) any {
	if !s.isArray {
		return s.Get(strconv.Itoa(i))
	}
	s.track(i)
	if i < 0 || i >= len(s.arr) {
		return nil
	}
	return s.wrap(i, s.arr[i])
}

// Len returns the slice length or the number of map keys.
func (s *Store) Len() int {
	s.rt.track(&s.shape)
	if s.isArray {
		return len(s.arr)
	}
	return len(s.obj)
}

// Keys returns the sorted map keys, or nil for a slice store.
func (s *Store) Keys() []string {
	s.rt.track(&s.shape)
	if s.isArray {
		return nil
	}
	keys := make([]string, 0, len(s.obj))
	for k := range s.obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Items reads every element of a slice store, registering the length and
// each index.
func (s *Store) Items() []any {
	n := s.Len()
	if !s.isArray {
		return nil
	}
	out := make([]any, n)
	for i := range n {
		out[i] = s.Index(i)
	}
	return out
}

// Path reads a dotted path such as "todos.3.title". Every prefix along the
// way is read, so the scope depends on each step.
func (s *Store) Path(path string) any {
	var cur any = s
	for _, seg := range strings.Split(path, ".") {
		st, ok := cur.(*Store)
		if !ok {
			return nil
		}
		cur = st.Get(seg)
	}
	return cur
}

// Raw returns the wrapped map or slice without tracking.
func (s *Store) Raw() any {
	if s.isArray {
		return s.arr
	}
	return s.obj
}

// Snapshot returns a deep copy of the wrapped value without tracking.
func (s *Store) Snapshot() any {
	return deepCopy(s.Raw())
}

// Set writes a map key. Writing a value equal to the current one is a no-op.
func (s *Store) Set(key string, v any) {
	if s.isArray {
		if i, err := strconv.Atoi(key); err == nil {
			s.SetIndex(i, v)
		}
		return
	}
	v = unwrap(v)
	old, existed := s.obj[key]
	if existed && Same(old, v) {
		return
	}
	s.obj[key] = v
	s.dropChild(key)
	s.notify(key)
	if !existed {
		s.rt.trigger(&s.shape)
	}
}

// Delete removes a map key.
func (s *Store) Delete(key string) {
	if s.isArray {
		return
	}
	if _, ok := s.obj[key]; !ok {
		return
	}
	delete(s.obj, key)
	s.dropChild(key)
	s.notify(key)
	s.rt.trigger(&s.shape)
}

// SetIndex writes a slice element, growing the slice with nils when i is
// past the end. Negative indices are ignored.
func (s *Store) SetIndex(i int, v any) {
	if !s.isArray {
		s.Set(strconv.Itoa(i), v)
		return
	}
	if i < 0 {
		return
	}
	v = unwrap(v)
	if i < len(s.arr) {
		if Same(s.arr[i], v) {
			return
		}
		s.arr[i] = v
		s.dropChild(i)
		s.notify(i)
		return
	}
	old := s.arr
	next := make([]any, i+1)
	copy(next, old)
	next[i] = v
	s.replaceArray(old, next, len(old))
}

// Append adds elements to a slice store.
func (s *Store) Append(values ...any) {
	if !s.isArray || len(values) == 0 {
		return
	}
	old := s.arr
	next := make([]any, len(old), len(old)+len(values))
	copy(next, old)
	for _, v := range values {
		next = append(next, unwrap(v))
	}
	s.replaceArray(old, next, len(old))
}

// Splice removes deleteCount elements at start, inserts items in their place,
// and returns the removed elements. A negative start counts from the end.
func (s *Store) Splice(start, deleteCount int, items ...any) []any {
	if !s.isArray {
		return nil
	}
	old := s.arr
	n := len(old)
	if start < 0 {
		start = max(n+start, 0)
	}
	start = min(start, n)
	deleteCount = min(max(deleteCount, 0), n-start)

	removed := slices.Clone(old[start : start+deleteCount])
	next := make([]any, 0, n-deleteCount+len(items))
	next = append(next, old[:start]...)
	for _, v := range items {
		next = append(next, unwrap(v))
	}
	next = append(next, old[start+deleteCount:]...)
	s.replaceArray(old, next, start)
	return removed
}

// Move relocates the element at from to index to, shifting the elements between.
func (s *Store) Move(from, to int) {
	if !s.isArray || from == to || from < 0 || to < 0 || from >= len(s.arr) || to >= len(s.arr) {
		return
	}
	old := s.arr
	next := slices.Clone(old)
	v := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, v)
	s.replaceArray(old, next, min(from, to))
}

// Swap exchanges two slice elements.
func (s *Store) Swap(i, j int) {
	if !s.isArray || i == j || i < 0 || j < 0 || i >= len(s.arr) || j >= len(s.arr) {
		return
	}
	old := s.arr
	next := slices.Clone(old)
	next[i], next[j] = next[j], next[i]
	s.replaceArray(old, next, min(i, j))
}

// Replace swaps the whole wrapped value. On a child store the write goes
// through the parent, which detaches this store from it.
func (s *Store) Replace(v any) {
	v = unwrap(v)
	if s.parent != nil && !s.orphan {
		switch k := s.key.(type) {
		case string:
			s.parent.Set(k, v)
		case int:
			s.parent.SetIndex(k, v)
		}
		return
	}
	next, ok := container(v)
	if !ok {
		next = map[string]any{"value": v}
	}
	for key := range s.children {
		s.dropChild(key)
	}
	s.load(next)
	for key := range s.cells {
		s.notify(key)
	}
	s.rt.trigger(&s.shape)
}

// replaceArray installs next as the slice, notifying every index from `from`
// whose element changed and the length when it changed.
func (s *Store) replaceArray(old, next []any, from int) {
	s.arr = next
	if s.parent != nil && !s.orphan {
		s.parent.rawSet(s.key, next)
	}
	hi := max(len(old), len(next))
	for i := from; i < hi; i++ {
		if i < len(old) && i < len(next) && Same(old[i], next[i]) {
			continue
		}
		s.dropChild(i)
		s.notify(i)
	}
	if len(old) != len(next) {
		s.rt.trigger(&s.shape)
	}
}

// rawSet stores v under key without notifying; used when a child store
// replaces its own slice header.
func (s *Store) rawSet(key any, v any) {
	switch k := key.(type) {
	case string:
		if !s.isArray {
			s.obj[k] = v
		}
	case int:
		if s.isArray && k >= 0 && k < len(s.arr) {
			s.arr[k] = v
		}
	}
}

func (s *Store) track(key any) {
	if !s.rt.Tracking() {
		return
	}
	if s.cells == nil {
		s.cells = make(map[any]*dependency)
	}
	d, ok := s.cells[key]
	if !ok {
		d = &dependency{}
		s.cells[key] = d
	}
	s.rt.track(d)
}

func (s *Store) notify(key any) {
	if d, ok := s.cells[key]; ok {
		s.rt.trigger(d)
	}
}

func (s *Store) wrap(key any, v any) any {
	if child, ok := s.children[key]; ok {
		return child
	}
	c, ok := container(v)
	if !ok {
		return v
	}
	if !Same(c, v) {
		s.rawSet(key, c)
	}
	child := &Store{rt: s.rt, parent: s, key: key}
	child.load(c)
	if s.children == nil {
		s.children = make(map[any]*Store)
	}
	s.children[key] = child
	return child
}

func (s *Store) dropChild(key any) {
	if child, ok := s.children[key]; ok {
		child.orphan = true
		delete(s.children, key)
	}
}

func unwrap(v any) any {
	if st, ok := v.(*Store); ok {
		return st.Raw()
	}
	return v
}

// container normalizes v to map[string]any or []any when it is a map with
// string keys or a slice other than []byte.
func container(v any) (any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return map[string]any{}, true
		}
		return t, true
	case []any:
		return t, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v, false
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m, true
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return v, false
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	}
	if c, ok := container(v); ok {
		return deepCopy(c)
	}
	return v
}

// Get reads a dotted path and asserts it to T, returning the zero value when
// the path is missing or holds another type.
func Get[T any](s *Store, path string) T {
	v, _ := s.Path(path).(T)
	return v
}

// At reads a slice element and asserts it to T.
func At[T any](s *Store, i int) T {
	v, _ := s.Index(i).(T)
	return v
}
