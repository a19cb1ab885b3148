package reactive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStore_NestedReadsAreFineGrained(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore(map[string]any{
		"user": map[string]any{"name": "ada", "age": 36},
	})

	nameRuns, ageRuns := 0, 0
	rt.Effect(func() { nameRuns++; Get[string](s, "user.name") })
	rt.Effect(func() { ageRuns++; Get[int](s, "user.age") })

	user := s.Get("user").(*Store)
	user.Set("age", 37)
	rt.Flush()

	if nameRuns != 1 || ageRuns != 2 {
		t.Errorf("nameRuns=%d ageRuns=%d, want 1 and 2", nameRuns, ageRuns)
	}
	if got := Get[int](s, "user.age"); got != 37 {
		t.Errorf("user.age = %d, want 37", got)
	}
}

func TestStore_ChildStoreIsStable(t *testing.T) {
	s := NewRuntime().NewStore(map[string]any{"list": []any{1, 2}})
	a := s.Get("list")
	b := s.Get("list")
	if a != b {
		t.Error("repeated reads returned different child stores")
	}
}

func TestStore_ReplacingParentPathNotifiesReaders(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore(map[string]any{"user": map[string]any{"name": "ada"}})
	var names []string
	rt.Effect(func() { names = append(names, Get[string](s, "user.name")) })

	s.Set("user", map[string]any{"name": "grace"})
	rt.Flush()

	if diff := cmp.Diff([]string{"ada", "grace"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SameValueWriteIsNoop(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore(map[string]any{"v": "x"})
	runs := 0
	rt.Effect(func() { runs++; s.Get("v") })
	s.Set("v", "x")
	if rt.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", rt.Pending())
	}
	rt.Flush()
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
}

func TestStore_NewKeyTriggersShape(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore(map[string]any{"a": 1})
	var keys [][]string
	rt.Effect(func() { keys = append(keys, s.Keys()) })

	s.Set("b", 2)
	rt.Flush()
	s.Set("b", 3) // existing key: shape unchanged
	rt.Flush()
	s.Delete("a")
	rt.Flush()

	want := [][]string{{"a"}, {"a", "b"}, {"b"}}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ArrayAppendNotifiesLength(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore([]any{"a", "b"})

	lengths := []int{}
	firstRuns := 0
	rt.Effect(func() { lengths = append(lengths, s.Len()) })
	rt.Effect(func() { firstRuns++; s.Index(0) })

	s.Append("c", "d")
	rt.Flush()

	if diff := cmp.Diff([]int{2, 4}, lengths); diff != "" {
		t.Errorf("lengths mismatch (-want +got):\n%s", diff)
	}
	if firstRuns != 1 {
		t.Errorf("append re-ran reader of index 0: runs = %d", firstRuns)
	}
}

func TestStore_ArraySpliceNotifiesShiftedIndices(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore([]any{"a", "b", "c", "d"})

	runs := make([]int, 4)
	for i := range runs {
		rt.Effect(func() { runs[i]++; s.Index(i) })
	}

	removed := s.Splice(1, 1)
	rt.Flush()

	if diff := cmp.Diff([]any{"b"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 2, 2, 2}, runs); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"a", "c", "d"}, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ArrayOperations(t *testing.T) {
	tests := []struct {
		name string
		op   func(s *Store)
		want []any
	}{
		{"append", func(s *Store) { s.Append(4) }, []any{1, 2, 3, 4}},
		{"splice insert", func(s *Store) { s.Splice(1, 0, 9) }, []any{1, 9, 2, 3}},
		{"splice negative", func(s *Store) { s.Splice(-1, 1) }, []any{1, 2}},
		{"move", func(s *Store) { s.Move(0, 2) }, []any{2, 3, 1}},
		{"swap", func(s *Store) { s.Swap(0, 2) }, []any{3, 2, 1}},
		{"set index grows", func(s *Store) { s.SetIndex(4, 5) }, []any{1, 2, 3, nil, 5}},
		{"set by string key", func(s *Store) { s.Set("1", 7) }, []any{1, 7, 3}},
		{"replace", func(s *Store) { s.Replace([]int{8}) }, []any{8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRuntime().NewStore([]any{1, 2, 3})
			tt.op(s)
			if diff := cmp.Diff(tt.want, s.Snapshot()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStore_NestedArrayWritesReachRoot(t *testing.T) {
	s := NewRuntime().NewStore(map[string]any{"todos": []any{"a"}})
	todos := s.Get("todos").(*Store)
	todos.Append("b")

	want := map[string]any{"todos": []any{"a", "b"}}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_OrphanedChildDoesNotWriteBack(t *testing.T) {
	s := NewRuntime().NewStore(map[string]any{"items": []any{1}})
	old := s.Get("items").(*Store)
	s.Set("items", []any{2})
	old.Append(3)

	if got := s.Get("items").(*Store).Len(); got != 1 {
		t.Errorf("len(items) = %d, want 1", got)
	}
}

func TestStore_LengthKeyOnArray(t *testing.T) {
	s := NewRuntime().NewStore(map[string]any{"xs": []any{1, 2, 3}})
	if got := s.Path("xs.length"); got != 3 {
		t.Errorf("xs.length = %v, want 3", got)
	}
	if got := Get[int](s, "xs.1"); got != 2 {
		t.Errorf("xs.1 = %v, want 2", got)
	}
}

func TestStore_ScalarBoxedUnderValue(t *testing.T) {
	s := NewRuntime().NewStore(42)
	if got := s.Get("value"); got != 42 {
		t.Errorf("value = %v, want 42", got)
	}
}

func TestStore_ConvertsTypedContainers(t *testing.T) {
	s := NewRuntime().NewStore(map[string]any{"tags": []string{"x", "y"}})
	tags := s.Get("tags").(*Store)
	if got := At[string](tags, 1); got != "y" {
		t.Errorf("tags[1] = %q, want y", got)
	}
}

func TestStore_ReadsOutsideScopeAllocateNoCells(t *testing.T) {
	s := NewRuntime().NewStore(map[string]any{"v": 1})
	s.Get("v")
	if s.cells != nil {
		t.Error("untracked read allocated a dependency cell")
	}
}

func TestStore_RootReplaceNotifiesReaders(t *testing.T) {
	rt := NewRuntime()
	s := rt.NewStore(map[string]any{"v": 1})
	var seen []any
	rt.Effect(func() { seen = append(seen, s.Get("v")) })
	s.Replace(map[string]any{"v": 2})
	rt.Flush()
	if diff := cmp.Diff([]any{1, 2}, seen); diff != "" {
		t.Errorf("seen mismatch (-want +got):\n%s", diff)
	}
}

func TestSame(t *testing.T) {
	m := map[string]any{}
	xs := []any{1}
	p := new(int)
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 0, false},
		{"ints", 1, 1, true},
		{"int vs int64", 1, int64(1), false},
		{"strings", "a", "b", false},
		{"same map", m, m, true},
		{"distinct maps", map[string]any{}, map[string]any{}, false},
		{"same slice", xs, xs, true},
		{"resliced", xs, xs[:0], false},
		{"same pointer", p, p, true},
		{"funcs", TestSame, TestSame, false},
		{"struct with slice field", struct{ v any }{[]int{1}}, struct{ v any }{[]int{1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Same(tt.a, tt.b); got != tt.want {
				t.Errorf("Same(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
