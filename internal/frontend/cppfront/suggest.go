package cppfront

import (
	"fmt"

	"github.com/hbollon/go-edlib"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

// maxSuggestDistance is the largest edit distance offered as a correction
const maxSuggestDistance = 2

// unknownType reports a type name that does not resolve. Names qualified
// by an unknown namespace are assumed to come from headers that were not
// followed and are not reported.
func (w *walker) unknownType(n *tree_sitter.Node, raw string, parts []string, global bool, dc declCtx) {
	if len(parts) > 1 && w.u.resolveScope(dc.scope, parts[:len(parts)-1], global) == nil {
		return
	}
	if _, done := w.u.reported[raw]; done {
		return
	}
	w.u.reported[raw] = struct{}{}

	msg := fmt.Sprintf("unknown type name '%s'", raw)
	if s := suggest(parts[len(parts)-1], w.u.knownNames()); s != "" {
		msg += fmt.Sprintf("; did you mean '%s'?", s)
	}
	w.diagnose(frontend.SeverityError, n, msg)
}

// suggest returns the known name closest to name, or "" if none is close
func suggest(name string, known []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, k := range known {
		if k == name {
			continue
		}
		if d := edlib.LevenshteinDistance(name, k); d < bestDist {
			best, bestDist = k, d
		}
	}
	return best
}
