package testing

import (
	"fmt"
	"strings"

	"github.com/go-drift/filament/pkg/dom"
	"github.com/go-drift/filament/pkg/dom/memdom"
)

// Finder locates elements in the mounted host tree.
type Finder interface {
	// Evaluate returns all matching elements under root, root excluded, in
	// document order.
	Evaluate(root dom.Element) []dom.Element
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderError reports a finder that matched nothing.
type FinderError struct {
	Op     string
	Finder Finder
}

func (e *FinderError) Error() string {
	return fmt.Sprintf("%s: finder matched no elements: %s", e.Op, e.Finder.Description())
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	elements []dom.Element
	finder   Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() dom.Element {
	if len(r.elements) == 0 {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder found no elements: %s", desc))
	}
	return r.elements[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() dom.Element {
	if len(r.elements) == 0 {
		return nil
	}
	return r.elements[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) dom.Element {
	if index < 0 || index >= len(r.elements) {
		desc := "unknown"
		if r.finder != nil {
			desc = r.finder.Description()
		}
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.elements), desc))
	}
	return r.elements[index]
}

// All returns all matches in document order.
func (r FinderResult) All() []dom.Element {
	return r.elements
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.elements)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.elements) > 0
}

// Text returns the text content of the first match. Panics if no matches.
func (r FinderResult) Text() string {
	return memdom.TextContent(r.First())
}

// Texts returns the text content of every match.
func (r FinderResult) Texts() []string {
	out := make([]string, len(r.elements))
	for i, el := range r.elements {
		out[i] = memdom.TextContent(el)
	}
	return out
}

// --- Concrete finders ---

// predicateFinder matches elements satisfying a predicate.
type predicateFinder struct {
	fn   func(dom.Element) bool
	desc string
}

func (f *predicateFinder) Evaluate(root dom.Element) []dom.Element {
	return memdom.QueryAll(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByTag returns a finder that matches elements by tag name.
func ByTag(tag string) Finder {
	return &predicateFinder{fn: memdom.ByTag(tag), desc: fmt.Sprintf("ByTag(%q)", tag)}
}

// ByText returns a finder that matches elements whose whole text content
// equals text. Ancestors of the element carrying the text match only when
// they contain nothing else.
func ByText(text string) Finder {
	return &predicateFinder{fn: memdom.ByText(text), desc: fmt.Sprintf("ByText(%q)", text)}
}

// ByTextContaining returns a finder that matches elements whose text
// content contains substring.
func ByTextContaining(substring string) Finder {
	return &predicateFinder{
		fn:   func(el dom.Element) bool { return strings.Contains(memdom.TextContent(el), substring) },
		desc: fmt.Sprintf("ByTextContaining(%q)", substring),
	}
}

// ByAttr returns a finder that matches elements whose attribute name
// equals value.
func ByAttr(name, value string) Finder {
	return &predicateFinder{fn: memdom.ByAttr(name, value), desc: fmt.Sprintf("ByAttr(%s=%q)", name, value)}
}

// ByID returns a finder that matches the element with the given id.
func ByID(id string) Finder {
	return &predicateFinder{fn: memdom.ByID(id), desc: fmt.Sprintf("ByID(%q)", id)}
}

// ByPredicate returns a finder that matches elements satisfying fn.
func ByPredicate(fn func(dom.Element) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds elements matching 'matching' that are descendants
// of elements matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root dom.Element) []dom.Element {
	var results []dom.Element
	seen := make(map[dom.Element]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		for _, match := range f.matching.Evaluate(ancestor) {
			if !seen[match] {
				seen[match] = true
				results = append(results, match)
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches elements satisfying 'matching'
// that are descendants of elements matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds elements matching 'matching' that are ancestors
// of elements matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root dom.Element) []dom.Element {
	descendants := f.of.Evaluate(root)
	if len(descendants) == 0 {
		return nil
	}
	var results []dom.Element
	for _, candidate := range f.matching.Evaluate(root) {
		for _, d := range descendants {
			if isAncestorOf(candidate, d) {
				results = append(results, candidate)
				break
			}
		}
	}
	return results
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches elements satisfying 'matching'
// that are ancestors of elements matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

// isAncestorOf returns true if ancestor strictly contains descendant.
func isAncestorOf(ancestor, descendant dom.Element) bool {
	for p := descendant.ParentNode(); p != nil; p = p.ParentNode() {
		if p == ancestor {
			return true
		}
	}
	return false
}
