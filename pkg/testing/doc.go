// Package testing provides a component testing harness for filament.
//
// # Quick Start
//
// Create a tester, mount a tree, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := filtest.NewTesterWithT(t)
//	    state := tester.Runtime().NewStore(map[string]any{"n": 0})
//	    tester.Mount(core.E("button", core.Attrs{
//	        "onclick": func() { state.Set("n", state.Get("n").(int)+1) },
//	    }, func() any { return state.Get("n") }))
//
//	    tester.Click(filtest.ByTag("button"))
//
//	    if !tester.Find(filtest.ByText("1")).Exists() {
//	        t.Errorf("expected count 1, got %s", tester.HTML())
//	    }
//	}
//
// Event handlers flush their writes when they return. Writes made directly
// from the test outside a handler are applied by Flush.
//
// # Snapshot Testing
//
// Capture and compare the mounted host tree:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	FILAMENT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import filtest "github.com/go-drift/filament/pkg/testing"
package testing
