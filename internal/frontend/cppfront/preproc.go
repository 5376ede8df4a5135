package cppfront

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

// maxSyntaxErrors bounds the syntax diagnostics reported per file
const maxSyntaxErrors = 10

// include parses an included file into the current declaration context.
// Every file is parsed at most once per translation unit, which stands in
// for include guards.
func (w *walker) include(n *tree_sitter.Node, dc declCtx) {
	pathNode := n.ChildByFieldName("path")
	if pathNode == nil {
		return
	}

	var name string
	angled := false
	switch pathNode.Kind() {
	case "string_literal":
		name = strings.Trim(w.text(pathNode), `"`)
	case "system_lib_string":
		name = strings.Trim(w.text(pathNode), "<>")
		angled = true
		if !w.b.opts.FollowSystemIncludes {
			return
		}
	default:
		// computed includes need macro expansion
		return
	}

	path, ok := w.b.findInclude(name, angled, filepath.Dir(w.path))
	if !ok {
		sev := frontend.SeverityError
		if angled {
			sev = frontend.SeverityWarning
		}
		w.diagnose(sev, pathNode, fmt.Sprintf("'%s' file not found", name))
		return
	}

	key := includeKey(path)
	if _, done := w.b.seen[key]; done {
		return
	}
	if w.depth+1 > w.b.opts.MaxIncludeDepth {
		w.diagnose(frontend.SeverityWarning, pathNode,
			fmt.Sprintf("#include nested depth %d exceeds maximum of %d", w.depth+1, w.b.opts.MaxIncludeDepth))
		return
	}
	w.b.seen[key] = struct{}{}

	src, err := w.b.validator.ReadSource(path)
	if err != nil {
		w.diagnose(frontend.SeverityError, pathNode, fmt.Sprintf("cannot read '%s': %v", name, err))
		return
	}
	if w.b.ctx.Err() != nil {
		return
	}
	w.b.parseFile(path, src, w.depth+1, dc)
}

// conditional walks the first branch of #if, #ifdef and #ifndef blocks.
// Conditions are not evaluated, so #else branches are skipped.
func (w *walker) conditional(n *tree_sitter.Node, dc declCtx) {
	skip := []*tree_sitter.Node{
		n.ChildByFieldName("condition"),
		n.ChildByFieldName("name"),
		n.ChildByFieldName("alternative"),
	}
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if w.b.ctx.Err() != nil {
			return
		}
		ch := n.NamedChild(i)
		if containsNode(skip, ch) {
			continue
		}
		w.item(ch, dc)
	}
}

func containsNode(nodes []*tree_sitter.Node, n *tree_sitter.Node) bool {
	for _, m := range nodes {
		if m != nil && m.StartByte() == n.StartByte() && m.EndByte() == n.EndByte() && m.Kind() == n.Kind() {
			return true
		}
	}
	return false
}

// syntaxErrors reports missing tokens and unparsable regions
func (w *walker) syntaxErrors(root *tree_sitter.Node) {
	if !root.HasError() {
		return
	}
	reported := 0
	var walk func(n *tree_sitter.Node)
	walk = func(n *tree_sitter.Node) {
		if reported >= maxSyntaxErrors {
			return
		}
		switch {
		case n.IsMissing():
			w.diagnose(frontend.SeverityError, n, fmt.Sprintf("expected '%s'", n.Kind()))
			reported++
			return
		case n.IsError():
			w.diagnose(frontend.SeverityError, n, fmt.Sprintf("syntax error near '%s'", excerpt(w.text(n))))
			reported++
			return
		case !n.HasError():
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
