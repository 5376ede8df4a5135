package cppfront

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

type param struct {
	name string
	typ  *ctype
	at   *tree_sitter.Node
}

// declInfo is the result of applying a declarator to a base type
type declInfo struct {
	typ *ctype
	// name is the declared name node, nil for abstract declarators
	name    *tree_sitter.Node
	params  []param
	constFn bool
}

// declare applies d to base. Parameter types of an out-of-line member are
// looked up in the scope of the class named by the declarator.
func (w *walker) declare(d *tree_sitter.Node, base *ctype, dc declCtx) declInfo {
	if name := declaratorName(d); name != nil && name.Kind() == "qualified_identifier" {
		if parts, global, ok := splitQualified(w.text(name)); ok && len(parts) > 1 {
			if sc := w.u.resolveScope(dc.scope, parts[:len(parts)-1], global); sc != nil {
				dc.scope = sc
			}
		}
	}
	var info declInfo
	w.declarator(d, base, dc, &info)
	return info
}

// declarator wraps base in the type constructors of n from the outside in,
// so `int *a[3]` is an array of pointers.
func (w *walker) declarator(n *tree_sitter.Node, base *ctype, dc declCtx, info *declInfo) {
	if n == nil {
		info.typ = base
		return
	}

	switch n.Kind() {
	case "pointer_declarator", "abstract_pointer_declarator":
		p := pointerTo(base)
		if hasQualifier(n, "const") {
			p = p.withConst()
		}
		w.declarator(n.ChildByFieldName("declarator"), p, dc, info)
	case "reference_declarator", "abstract_reference_declarator":
		rvalue := n.ChildCount() > 0 && n.Child(0).Kind() == "&&"
		w.declarator(firstNamed(n), referenceTo(base, rvalue), dc, info)
	case "array_declarator", "abstract_array_declarator":
		size, known := w.arraySize(n.ChildByFieldName("size"))
		w.declarator(n.ChildByFieldName("declarator"), arrayOf(base, size, known), dc, info)
	case "function_declarator", "abstract_function_declarator":
		args, params, variadic := w.parameters(n.ChildByFieldName("parameters"), dc)
		info.params, info.constFn = params, hasQualifier(n, "const")
		w.declarator(n.ChildByFieldName("declarator"), prototype(base, args, variadic), dc, info)
	case "parenthesized_declarator", "abstract_parenthesized_declarator", "attributed_declarator":
		w.declarator(firstNamed(n), base, dc, info)
	case "init_declarator":
		w.declarator(n.ChildByFieldName("declarator"), base, dc, info)
	case "operator_cast":
		result := w.typeOf(n.ChildByFieldName("type"), dc, true)
		w.declarator(n.ChildByFieldName("declarator"), result, dc, info)
		info.name = n
	default:
		info.typ = base
		info.name = n
	}
}

func (w *walker) parameters(list *tree_sitter.Node, dc declCtx) (args []*ctype, params []param, variadic bool) {
	if list == nil {
		return nil, nil, false
	}

	bare := 0
	for i := uint(0); i < list.ChildCount(); i++ {
		n := list.Child(i)
		switch n.Kind() {
		case "...", "variadic_parameter":
			variadic = true
		case "parameter_declaration", "optional_parameter_declaration":
			base := w.typeOf(n.ChildByFieldName("type"), dc, true)
			if hasQualifier(n, "const") {
				base = base.withConst()
			}
			d := n.ChildByFieldName("declarator")
			if d == nil {
				bare++
			}

			var pi declInfo
			w.declarator(d, base, dc, &pi)
			p := param{typ: decay(pi.typ), at: n}
			if pi.name != nil {
				p.name, p.at = w.text(pi.name), pi.name
			}
			args = append(args, p.typ)
			params = append(params, p)
		case "variadic_parameter_declaration":
			t := unexposed(w.text(n))
			args = append(args, t)
			params = append(params, param{typ: t, at: n})
		}
	}

	// (void) declares no parameters
	if len(args) == 1 && bare == 1 && !variadic && args[0].kind == frontend.TypeVoid && !args[0].isConst {
		return nil, nil, false
	}
	return args, params, variadic
}

// declaratorName finds the name a declarator declares
func declaratorName(n *tree_sitter.Node) *tree_sitter.Node {
	for n != nil {
		switch n.Kind() {
		case "identifier", "field_identifier", "type_identifier", "primitive_type",
			"qualified_identifier", "destructor_name", "operator_name", "operator_cast", "template_function":
			return n
		}
		if d := n.ChildByFieldName("declarator"); d != nil {
			n = d
			continue
		}
		n = firstNamed(n)
	}
	return nil
}

// splitQualified splits a possibly qualified name. ok is false for names
// with template arguments.
func splitQualified(s string) (parts []string, global, ok bool) {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(strings.ReplaceAll(s, " ::", "::"), ":: ", "::")
	op := operatorIndex(s)
	if s == "" || op < 0 && strings.ContainsAny(s, "<>") {
		return nil, false, false
	}
	if rest, found := strings.CutPrefix(s, "::"); found {
		global, s = true, rest
	}

	// operator names may contain colons only as part of the qualifier
	if i := operatorIndex(s); i >= 0 {
		head, name := s[:i], s[i:]
		if head == "" {
			return []string{name}, global, true
		}
		return append(strings.Split(strings.TrimSuffix(head, "::"), "::"), name), global, true
	}
	return strings.Split(s, "::"), global, true
}

// operatorIndex finds the operator keyword in a name, or returns -1
func operatorIndex(s string) int {
	for off := 0; ; {
		i := strings.Index(s[off:], "operator")
		if i < 0 {
			return -1
		}
		i += off
		end := i + len("operator")
		startOK := i == 0 || s[i-1] == ':'
		endOK := end == len(s) || !isIdentByte(s[end])
		if startOK && endOK {
			return i
		}
		off = end
	}
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func fieldChildren(n *tree_sitter.Node, field string) []*tree_sitter.Node {
	var out []*tree_sitter.Node
	for i := uint(0); i < n.ChildCount(); i++ {
		if n.FieldNameForChild(uint32(i)) == field {
			out = append(out, n.Child(i))
		}
	}
	return out
}

func hasQualifier(n *tree_sitter.Node, q string) bool {
	return hasWord(n, "type_qualifier", q)
}

// hasWord reports a direct child of the given kind spelled word
func hasWord(n *tree_sitter.Node, kind, word string) bool {
	if n == nil {
		return false
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		ch := n.Child(i)
		if ch.Kind() != kind {
			continue
		}
		if ch.ChildCount() > 0 && ch.Child(0).Kind() == word {
			return true
		}
	}
	return false
}

// hasToken reports an anonymous child token
func hasToken(n *tree_sitter.Node, token string) bool {
	for i := uint(0); i < n.ChildCount(); i++ {
		if ch := n.Child(i); !ch.IsNamed() && ch.Kind() == token {
			return true
		}
	}
	return false
}

func firstNamed(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(0)
}

func lastNamed(n *tree_sitter.Node) *tree_sitter.Node {
	if n == nil || n.NamedChildCount() == 0 {
		return nil
	}
	return n.NamedChild(n.NamedChildCount() - 1)
}
