package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/dom/memdom"
)

// UpdateSnapshotsEnv names the environment variable that makes MatchesFile
// rewrite snapshot files instead of comparing them.
const UpdateSnapshotsEnv = "FILAMENT_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the structure of the mounted host tree.
type Snapshot struct {
	Nodes []*SnapshotNode `json:"nodes"`
	// Live is the number of tree nodes, virtual ones included.
	Live int `json:"live"`
}

// SnapshotNode is one host node. Text nodes carry only Text.
type SnapshotNode struct {
	Tag        string            `json:"tag,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
	Properties map[string]any    `json:"props,omitempty"`
	Listeners  []string          `json:"listeners,omitempty"`
	Text       string            `json:"text,omitempty"`
	Children   []*SnapshotNode   `json:"children,omitempty"`
}

// snapshotProperties lists the live properties recorded per tag.
var snapshotProperties = map[string][]string{
	"input":    {"value", "checked"},
	"textarea": {"value"},
	"select":   {"value"},
	"option":   {"selected"},
}

// snapshotEvents lists the event types whose listener presence is recorded.
var snapshotEvents = []string{"click", "input", "change", "submit", "keydown"}

// CaptureSnapshot captures the current host tree under the container.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{Live: t.NodeCount()}
	for c := t.container.FirstChild(); c != nil; c = c.NextSibling() {
		snap.Nodes = append(snap.Nodes, captureNode(c))
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// FILAMENT_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a diff from other to this snapshot. Returns the empty string
// if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, errA := normalize(s)
	b, errB := normalize(other)
	if errA != nil || errB != nil {
		return cmp.Diff(other, s)
	}
	return cmp.Diff(b, a)
}

// --- Internal ---

func captureNode(n dom.Node) *SnapshotNode {
	el, ok := n.(*memdom.Element)
	if !ok {
		if txt, ok := n.(dom.Text); ok {
			return &SnapshotNode{Text: txt.Data()}
		}
		return &SnapshotNode{Text: fmt.Sprintf("%v", n)}
	}
	node := &SnapshotNode{Tag: el.TagName()}
	for _, a := range el.Attributes() {
		if node.Attrs == nil {
			node.Attrs = make(map[string]string)
		}
		node.Attrs[a.Key] = a.Val
	}
	for _, name := range snapshotProperties[node.Tag] {
		if v, ok := el.Property(name); ok {
			if node.Properties == nil {
				node.Properties = make(map[string]any)
			}
			node.Properties[name] = v
		}
	}
	for _, ev := range snapshotEvents {
		if el.ListenerCount(ev) > 0 {
			node.Listeners = append(node.Listeners, ev)
		}
	}
	for c := el.FirstChild(); c != nil; c = c.NextSibling() {
		node.Children = append(node.Children, captureNode(c))
	}
	return node
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

// normalize round-trips s through JSON so captured and loaded snapshots
// compare property values of the same types.
func normalize(s *Snapshot) (*Snapshot, error) {
	data, err := marshalSnapshot(s)
	if err != nil {
		return nil, err
	}
	var out Snapshot
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
