// Package query answers lookups over a finished symbol forest: exact and
// fuzzy name search, outgoing and incoming references, and summary counts.
package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/codenodes/internal/symbols"
)

const (
	// DefaultLimit caps Search results when the caller gives no limit
	DefaultLimit = 10
	// MinScore is the lowest similarity Search returns
	MinScore = 0.75
)

// Index is a read-only view of a forest. Build it after the run that
// filled the forest has finished.
type Index struct {
	forest *symbols.Forest

	byDisplay map[string][]symbols.Handle
	byLocal   map[string][]symbols.Handle
	incoming  [][]symbols.Handle
	edges     int
}

// Match is one Search result
type Match struct {
	Symbol *symbols.Symbol
	Score  float64
}

// Stats summarizes a forest
type Stats struct {
	Symbols    int
	Edges      int
	Incomplete int
	ByKind     map[string]int
}

// New indexes f
func New(f *symbols.Forest) *Index {
	ix := &Index{
		forest:    f,
		byDisplay: make(map[string][]symbols.Handle),
		byLocal:   make(map[string][]symbols.Handle),
		incoming:  make([][]symbols.Handle, f.Len()+1),
	}

	for sym := range f.All() {
		if sym.Handle != f.RootHandle() {
			ix.byDisplay[sym.DisplayName] = append(ix.byDisplay[sym.DisplayName], sym.Handle)
			for _, name := range localNames(sym) {
				ix.byLocal[name] = append(ix.byLocal[name], sym.Handle)
			}
		}

		seen := make(map[symbols.Handle]struct{})
		for _, ref := range sym.References() {
			if f.Get(ref) == nil {
				continue
			}
			ix.edges++
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			ix.incoming[ref] = append(ix.incoming[ref], sym.Handle)
		}
	}
	return ix
}

// localNames are the names a symbol is found under besides its display
// name: its own name, and for functions the name without the signature.
func localNames(sym *symbols.Symbol) []string {
	names := []string{sym.Name}
	if i := strings.IndexByte(sym.Name, '('); i > 0 {
		names = append(names, sym.Name[:i])
	}
	return names
}

// Forest returns the indexed forest
func (ix *Index) Forest() *symbols.Forest {
	return ix.forest
}

// Find returns the symbols whose qualified or local name is exactly name.
// Qualified matches come first.
func (ix *Index) Find(name string) []*symbols.Symbol {
	name = strings.TrimSpace(name)
	if name == symbols.RootDisplayName {
		return []*symbols.Symbol{ix.forest.Root()}
	}
	name = strings.TrimPrefix(name, symbols.Separator)

	var out []*symbols.Symbol
	seen := make(map[symbols.Handle]struct{})
	for _, hs := range [][]symbols.Handle{ix.byDisplay[name], ix.byLocal[name]} {
		for _, h := range hs {
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			out = append(out, ix.forest.Get(h))
		}
	}
	return out
}

// Search ranks symbols by similarity of their local name to q. Names
// containing q rank above pure edit-distance matches.
func (ix *Index) Search(q string, limit int) []Match {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	var matches []Match
	for sym := range ix.forest.All() {
		if sym.Handle == ix.forest.RootHandle() {
			continue
		}
		best := 0.0
		for _, name := range append(localNames(sym), sym.DisplayName) {
			best = max(best, score(q, strings.ToLower(name)))
		}
		if best >= MinScore {
			matches = append(matches, Match{Symbol: sym, Score: best})
		}
	}

	slices.SortFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Symbol.DisplayName, b.Symbol.DisplayName)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func score(q, name string) float64 {
	switch {
	case q == name:
		return 1
	case strings.HasPrefix(name, q):
		return 0.9 + 0.05*float64(len(q))/float64(len(name))
	case strings.Contains(name, q):
		return 0.8 + 0.05*float64(len(q))/float64(len(name))
	}
	s, err := edlib.StringsSimilarity(q, name, edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	// keep pure similarity below substring matches
	return min(float64(s), 0.8)
}

// Outgoing returns the distinct symbols h references, in reference order
func (ix *Index) Outgoing(h symbols.Handle) []*symbols.Symbol {
	sym := ix.forest.Get(h)
	if sym == nil {
		return nil
	}
	var out []*symbols.Symbol
	seen := make(map[symbols.Handle]struct{})
	for _, ref := range sym.References() {
		target := ix.forest.Get(ref)
		if target == nil {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, target)
	}
	return out
}

// Incoming returns the symbols that reference h, in creation order
func (ix *Index) Incoming(h symbols.Handle) []*symbols.Symbol {
	if int(h) >= len(ix.incoming) {
		return nil
	}
	out := make([]*symbols.Symbol, 0, len(ix.incoming[h]))
	for _, from := range ix.incoming[h] {
		out = append(out, ix.forest.Get(from))
	}
	return out
}

// Stats counts symbols by kind keyword
func (ix *Index) Stats() Stats {
	st := Stats{Edges: ix.edges, ByKind: make(map[string]int)}
	for sym := range ix.forest.All() {
		st.Symbols++
		st.ByKind[sym.KindName()]++
		if !sym.Complete() {
			st.Incomplete++
		}
	}
	return st
}
