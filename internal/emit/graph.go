// Package emit writes a finished symbol forest as a graph document.
package emit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/standardbeagle/codenodes/internal/symbols"
	"github.com/standardbeagle/codenodes/internal/version"
)

// ErrEmptyForest is returned when there is no global namespace to start from
var ErrEmptyForest = errors.New("symbol forest has no root namespace")

// Format selects the document type
type Format string

const (
	FormatGraphML Format = "graphml"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// Formats lists the supported formats, default first
func Formats() []Format {
	return []Format{FormatGraphML, FormatJSON, FormatYAML}
}

// ParseFormat accepts a format name case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return FormatGraphML, nil
	}
	for _, known := range Formats() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Node is one emitted symbol. ID is the fully qualified display name.
type Node struct {
	ID       string `json:"id" yaml:"id"`
	Kind     string `json:"kind" yaml:"kind"`
	USR      string `json:"usr,omitempty" yaml:"usr,omitempty"`
	Complete bool   `json:"complete" yaml:"complete"`
}

// Edge is one outgoing reference between two display names
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Graph is the flattened forest in emission order
type Graph struct {
	// Build identifies the binary that produced the graph
	Build string `json:"build,omitempty" yaml:"build,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Collect walks the forest depth first from the global namespace. Every
// symbol becomes exactly one node, and every outgoing reference one edge.
// The edge is recorded before its target's subtree is walked, so cycles
// terminate on the visited set.
//
// Symbols not reachable from the root are emitted afterwards in creation
// order.
func Collect(f *symbols.Forest) (*Graph, error) {
	if f == nil || f.Root() == nil {
		return nil, ErrEmptyForest
	}

	w := &walker{
		forest:  f,
		visited: make([]bool, f.Len()+1),
		graph:   &Graph{Build: version.BuildID(), Nodes: make([]Node, 0, f.Len())},
	}
	w.visit(f.Root())
	for sym := range f.All() {
		w.visit(sym)
	}
	return w.graph, nil
}

type walker struct {
	forest  *symbols.Forest
	visited []bool
	graph   *Graph
}

func (w *walker) visit(sym *symbols.Symbol) {
	if sym == nil || w.visited[sym.Handle] {
		return
	}
	w.visited[sym.Handle] = true

	w.graph.Nodes = append(w.graph.Nodes, Node{
		ID:       sym.DisplayName,
		Kind:     sym.KindName(),
		USR:      sym.USR,
		Complete: sym.Complete(),
	})

	for i := 0; i < sym.NumReferences(); i++ {
		target := w.forest.Get(sym.ReferenceAt(i))
		if target == nil {
			continue
		}
		w.graph.Edges = append(w.graph.Edges, Edge{Source: sym.DisplayName, Target: target.DisplayName})
		w.visit(target)
	}
}
