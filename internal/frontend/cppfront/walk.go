package cppfront

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/codenodes/internal/frontend"
)

// declCtx says where declarations found in a subtree belong
type declCtx struct {
	// lexical receives new cursors as children
	lexical *cursor
	// owner is the semantic parent of new declarations
	owner *cursor
	scope *scope
	// externC is set inside extern "C" blocks
	externC bool
	inClass bool
}

// walker converts one file's syntax tree into cursors
type walker struct {
	b     *build
	u     *unit
	path  string
	src   []byte
	depth int
}

func (w *walker) text(n *tree_sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Utf8Text(w.src)
}

func (w *walker) loc(n *tree_sitter.Node) frontend.Location {
	if n == nil {
		return frontend.Location{File: w.path}
	}
	p := n.StartPosition()
	return frontend.Location{File: w.path, Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (w *walker) diagnose(sev frontend.Severity, n *tree_sitter.Node, msg string) {
	w.u.diagnose(sev, w.loc(n), msg)
}

func (w *walker) newCursor(kind frontend.CursorKind, name, usr string, owner *cursor, at *tree_sitter.Node) *cursor {
	c := &cursor{
		u:         w.u,
		kind:      kind,
		usr:       usr,
		spelling:  name,
		display:   name,
		qualified: owner.qualify(name),
		parent:    owner,
		loc:       w.loc(at),
	}
	w.u.register(c)
	return c
}

// leaf adds a declaration the builder does not model beyond its kind
func (w *walker) leaf(dc declCtx, kind frontend.CursorKind, name string, at *tree_sitter.Node) *cursor {
	c := w.newCursor(kind, name, "", dc.owner, at)
	dc.lexical.add(c)
	return c
}

func (w *walker) items(n *tree_sitter.Node, dc declCtx) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		if w.b.ctx.Err() != nil {
			return
		}
		w.item(n.NamedChild(i), dc)
	}
}

func (w *walker) item(n *tree_sitter.Node, dc declCtx) {
	if n == nil {
		return
	}
	switch k := n.Kind(); k {
	case "preproc_include":
		w.include(n, dc)
	case "namespace_definition":
		w.namespace(n, dc)
	case "linkage_specification":
		w.linkage(n, dc)
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		w.tagged(n, dc, true, "")
	case "declaration", "field_declaration":
		w.declaration(n, dc)
	case "function_definition", "inline_method_definition":
		w.functionDefinition(n, dc)
	case "type_definition":
		w.typedef(n, dc)
	case "alias_declaration":
		w.alias(n, dc)
	case "template_declaration":
		w.template(n, dc)
	case "using_declaration":
		w.using(n, dc)
	case "namespace_alias_definition":
		w.namespaceAlias(n, dc)
	case "static_assert_declaration":
		w.leaf(dc, frontend.CursorStaticAssert, "", n)
	case "access_specifier":
		if dc.inClass {
			w.leaf(dc, frontend.CursorAccessSpecifier, w.text(n), n)
		}
	case "friend_declaration":
		w.leaf(dc, frontend.CursorFriendDecl, "", n)
	case "preproc_def", "preproc_function_def", "preproc_call", "comment", "ERROR":
	default:
		switch {
		case strings.HasPrefix(k, "preproc_if"):
			w.conditional(n, dc)
		case strings.HasSuffix(k, "declaration"), strings.HasSuffix(k, "definition"):
			w.leaf(dc, frontend.CursorUnexposedDecl, k, n)
		}
	}
}

func (w *walker) namespace(n *tree_sitter.Node, dc declCtx) {
	nameNode := n.ChildByFieldName("name")
	inline := hasToken(n, "inline")

	type part struct {
		name string
		at   *tree_sitter.Node
	}
	var parts []part
	switch {
	case nameNode == nil:
		parts = []part{{"", n}}
	case nameNode.Kind() == "nested_namespace_specifier":
		for i := uint(0); i < nameNode.NamedChildCount(); i++ {
			id := nameNode.NamedChild(i)
			parts = append(parts, part{w.text(id), id})
		}
	default:
		parts = []part{{w.text(nameNode), nameNode}}
	}

	cur := dc
	for _, p := range parts {
		usr := cur.owner.usrPrefix() + "@N@" + p.name
		display := p.name
		if p.name == "" {
			usr = cur.owner.usrPrefix() + "@aN"
			display = anonymousNamespace
		}

		ns := w.newCursor(frontend.CursorNamespace, p.name, usr, cur.owner, p.at)
		ns.display = display
		ns.qualified = cur.owner.qualify(display)
		ns.definition = true
		cur.lexical.add(ns)

		sc := w.u.namespaceScope(ns, cur.scope)
		cur.scope.namespace(p.name, sc)
		if p.name == "" || inline {
			cur.scope.use(sc)
		}
		cur = declCtx{lexical: ns, owner: ns, scope: sc, externC: dc.externC}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		w.items(body, cur)
	}
}

func (w *walker) linkage(n *tree_sitter.Node, dc declCtx) {
	spec := w.leaf(dc, frontend.CursorLinkageSpec, "", n)

	inner := dc
	inner.lexical = spec
	inner.externC = strings.Trim(w.text(n.ChildByFieldName("value")), `"`) == "C"

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Kind() == "declaration_list" {
		w.items(body, inner)
		return
	}
	w.item(body, inner)
}

func recordKind(nodeKind string) (frontend.CursorKind, string) {
	switch nodeKind {
	case "class_specifier":
		return frontend.CursorClassDecl, "S"
	case "union_specifier":
		return frontend.CursorUnionDecl, "U"
	case "enum_specifier":
		return frontend.CursorEnumDecl, "E"
	}
	return frontend.CursorStructDecl, "S"
}

func anonymousDisplay(kind frontend.CursorKind, at string) string {
	what := "struct"
	switch kind {
	case frontend.CursorClassDecl:
		what = "class"
	case frontend.CursorUnionDecl:
		what = "union"
	case frontend.CursorEnumDecl:
		what = "enum"
	}
	return "(anonymous " + what + " at " + at + ")"
}

// tagged handles class, struct, union and enum specifiers. A specifier
// with a body, or one standing alone as in `struct S;`, declares the type.
// Otherwise it only names it, and an unknown name introduces a forward
// declaration the way C does. typedefName names an anonymous definition
// from the typedef that introduces it.
func (w *walker) tagged(n *tree_sitter.Node, dc declCtx, standalone bool, typedefName string) *cursor {
	kind, tag := recordKind(n.Kind())
	nameNode := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")

	if nameNode != nil && nameNode.Kind() == "template_type" {
		if standalone || body != nil {
			w.leaf(dc, frontend.CursorClassTemplatePartialSpecialization, w.text(nameNode), nameNode)
		}
		return nil
	}

	owner, sc := dc.owner, dc.scope
	name := ""
	qualified := false
	if nameNode != nil {
		parts, global, ok := splitQualified(w.text(nameNode))
		if !ok {
			return nil
		}
		name = parts[len(parts)-1]
		if len(parts) > 1 || global {
			qualified = true
			target := w.u.resolveScope(dc.scope, parts[:len(parts)-1], global)
			if target == nil {
				w.diagnose(frontend.SeverityError, nameNode,
					fmt.Sprintf("no namespace or class named '%s'", strings.Join(parts[:len(parts)-1], "::")))
				return nil
			}
			owner, sc = target.owner, target
		}
	}

	if body == nil && !standalone {
		if name == "" {
			return nil
		}
		var e *entry
		if qualified {
			e = sc.local(name, 0)
		} else {
			e = sc.lookup(name)
		}
		if e != nil && e.decl != nil {
			return e.decl
		}
		// An elaborated specifier naming an unknown tag declares it in the
		// nearest enclosing namespace.
		for sc.owner.isRecord() && sc.parent != nil {
			sc = sc.parent
		}
		return w.declareTag(kind, tag, name, "", sc.owner, sc, nameNode)
	}

	at := nameNode
	if at == nil {
		at = n
	}
	var c *cursor
	switch {
	case name != "":
		c = w.declareTag(kind, tag, name, "", owner, sc, at)
	case typedefName != "":
		c = w.declareTag(kind, tag+"A", typedefName, typedefName, owner, nil, at)
		c.spelling = ""
	default:
		p := n.StartPosition()
		id := fmt.Sprintf("%s:%d:%d", filepath.Base(w.path), p.Row+1, p.Column+1)
		c = w.declareTag(kind, tag+"a", id, anonymousDisplay(kind, id), owner, nil, at)
		c.spelling = ""
	}
	c.definition = body != nil
	dc.lexical.add(c)

	if body != nil {
		if kind == frontend.CursorEnumDecl {
			w.enumerators(c, body)
		} else {
			w.recordBody(c, n, body, sc, dc.externC)
		}
	}
	return c
}

// declareTag creates a tag declaration and makes it visible in sc. A
// non-empty display overrides the name used in qualified names.
func (w *walker) declareTag(kind frontend.CursorKind, tag, name, display string, owner *cursor, sc *scope, at *tree_sitter.Node) *cursor {
	c := w.newCursor(kind, name, owner.usrPrefix()+"@"+tag+"@"+name, owner, at)
	if display != "" {
		c.display = display
		c.qualified = owner.qualify(display)
	}
	c.typ = recordType(c)
	if sc != nil {
		sc.declare(name, c)
		w.u.addKnown(name)
	}
	return c
}

func (w *walker) recordBody(c *cursor, n, body *tree_sitter.Node, parent *scope, externC bool) {
	cs := w.u.classScope(c, parent)

	for i := uint(0); i < n.NamedChildCount(); i++ {
		if clause := n.NamedChild(i); clause.Kind() == "base_class_clause" {
			w.bases(c, clause, declCtx{lexical: c, owner: c, scope: parent, externC: externC})
		}
	}

	w.items(body, declCtx{lexical: c, owner: c, scope: cs, externC: externC, inClass: true})
}

func (w *walker) bases(c *cursor, clause *tree_sitter.Node, dc declCtx) {
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		n := clause.NamedChild(i)
		switch n.Kind() {
		case "access_specifier", "virtual", "comment":
			continue
		}
		t := w.typeOf(n, dc, true)
		base := w.newCursor(frontend.CursorBaseSpecifier, spell(t, false), "", c, n)
		base.typ = t
		c.add(base)
	}
}

func (w *walker) enumerators(enum *cursor, body *tree_sitter.Node) {
	for i := uint(0); i < body.NamedChildCount(); i++ {
		e := body.NamedChild(i)
		if e.Kind() != "enumerator" {
			continue
		}
		nameNode := e.ChildByFieldName("name")
		name := w.text(nameNode)
		c := w.newCursor(frontend.CursorEnumConstantDecl, name, enum.usr+"@"+name, enum, nameNode)
		c.typ = enum.typ
		enum.add(c)
	}
}

// declaration handles declarations with a type and declarators: variables,
// fields, function prototypes, and type definitions with trailing
// declarators such as `struct S {} s;`.
func (w *walker) declaration(n *tree_sitter.Node, dc declCtx) {
	typeNode := n.ChildByFieldName("type")
	decls := fieldChildren(n, "declarator")
	if typeNode == nil && len(decls) == 0 {
		return
	}

	var base *ctype
	if typeNode != nil {
		base = w.typeOf(typeNode, dc, len(decls) > 0)
	} else {
		// constructors and destructors
		base = builtin(frontend.TypeVoid)
	}
	if hasQualifier(n, "const") {
		base = base.withConst()
	}
	static := hasWord(n, "storage_class_specifier", "static")

	for _, d := range decls {
		info := w.declare(d, base, dc)
		if info.name == nil {
			continue
		}
		if info.typ.kind == frontend.TypeFunctionProto {
			w.function(info, dc, false)
			continue
		}

		name := w.text(info.name)
		kind, usr := frontend.CursorVarDecl, dc.owner.usrPrefix()+"@"+name
		if dc.inClass && !static {
			kind, usr = frontend.CursorFieldDecl, dc.owner.usrPrefix()+"@FI@"+name
		}
		v := w.newCursor(kind, name, usr, dc.owner, info.name)
		v.typ = info.typ
		dc.lexical.add(v)
	}
}

func (w *walker) functionDefinition(n *tree_sitter.Node, dc declCtx) {
	base := builtin(frontend.TypeVoid)
	if typeNode := n.ChildByFieldName("type"); typeNode != nil {
		base = w.typeOf(typeNode, dc, true)
	}
	if hasQualifier(n, "const") {
		base = base.withConst()
	}

	info := w.declare(n.ChildByFieldName("declarator"), base, dc)
	if info.name == nil || info.typ.kind != frontend.TypeFunctionProto {
		w.leaf(dc, frontend.CursorUnexposedDecl, "", n)
		return
	}
	w.function(info, dc, true)
}

// function creates the cursor for a function declaration. Qualified names
// such as `A::f` attach the function to the named class or namespace while
// the cursor stays a lexical child of the current scope.
func (w *walker) function(info declInfo, dc declCtx, definition bool) {
	nameNode := info.name
	owner := dc.owner
	kind := frontend.CursorFunctionDecl
	if dc.inClass {
		kind = frontend.CursorCXXMethod
	}

	var name string
	switch nameNode.Kind() {
	case "operator_cast":
		name = "operator " + spell(info.typ.result, false)
		if owner.isRecord() {
			kind = frontend.CursorConversionFunction
		}
	case "template_function":
		w.leaf(dc, frontend.CursorFunctionTemplate, w.text(nameNode), nameNode)
		return
	default:
		parts, global, ok := splitQualified(w.text(nameNode))
		if !ok {
			w.leaf(dc, frontend.CursorFunctionTemplate, w.text(nameNode), nameNode)
			return
		}
		name = parts[len(parts)-1]
		if len(parts) > 1 || global {
			target := w.u.resolveScope(dc.scope, parts[:len(parts)-1], global)
			if target == nil {
				w.diagnose(frontend.SeverityError, nameNode,
					fmt.Sprintf("no namespace or class named '%s'", strings.Join(parts[:len(parts)-1], "::")))
				return
			}
			owner = target.owner
			kind = frontend.CursorFunctionDecl
			if owner.isRecord() {
				kind = frontend.CursorCXXMethod
			}
		}
	}

	if owner.isRecord() && kind == frontend.CursorCXXMethod {
		switch {
		case strings.HasPrefix(name, "~"):
			kind = frontend.CursorDestructor
		case name == owner.spelling:
			kind = frontend.CursorConstructor
		}
	}

	fn := w.newCursor(kind, name, functionUSR(owner, name, info, dc.externC), owner, nameNode)
	fn.display = name + "(" + spellArgs(info.typ, false, ", ") + ")"
	if info.constFn {
		fn.display += " const"
	}
	fn.typ = info.typ
	fn.definition = definition
	for _, p := range info.params {
		pc := w.newCursor(frontend.CursorParmDecl, p.name, "", fn, p.at)
		pc.typ = p.typ
		fn.add(pc)
	}
	dc.lexical.add(fn)
}

// functionUSR follows clang: the argument types are part of the id except
// for functions with C language linkage, and const methods get a suffix.
func functionUSR(owner *cursor, name string, info declInfo, externC bool) string {
	if externC && !owner.isRecord() {
		return "c:@F@" + name
	}
	usr := owner.usrPrefix() + "@F@" + name + "#" + spellArgs(info.typ, true, ",") + "#"
	if info.constFn {
		usr += "1"
	}
	return usr
}

func (w *walker) typedef(n *tree_sitter.Node, dc declCtx) {
	typeNode := n.ChildByFieldName("type")
	decls := fieldChildren(n, "declarator")

	var base *ctype
	if isTagSpecifier(typeNode) && typeNode.ChildByFieldName("name") == nil && typeNode.ChildByFieldName("body") != nil {
		first := ""
		if len(decls) > 0 {
			first = w.text(declaratorName(decls[0]))
		}
		if c := w.tagged(typeNode, dc, false, first); c != nil {
			base = c.typ
		}
	}
	if base == nil {
		base = w.typeOf(typeNode, dc, true)
	}
	if hasQualifier(n, "const") {
		base = base.withConst()
	}

	for _, d := range decls {
		var info declInfo
		w.declarator(d, base, dc, &info)
		if info.name == nil {
			continue
		}
		name := w.text(info.name)
		td := w.newCursor(frontend.CursorTypedefDecl, name, dc.owner.usrPrefix()+"@T@"+name, dc.owner, info.name)
		td.typ = info.typ
		dc.lexical.add(td)

		dc.scope.alias(name, typedefType(td.qualified, info.typ))
		w.u.addKnown(name)
	}
}

func (w *walker) alias(n *tree_sitter.Node, dc declCtx) {
	nameNode := n.ChildByFieldName("name")
	name := w.text(nameNode)
	t := w.typeDescriptor(n.ChildByFieldName("type"), dc)

	td := w.newCursor(frontend.CursorTypeAliasDecl, name, dc.owner.usrPrefix()+"@"+name, dc.owner, nameNode)
	td.typ = t
	dc.lexical.add(td)

	dc.scope.alias(name, typedefType(td.qualified, t))
	w.u.addKnown(name)
}

func (w *walker) typeDescriptor(n *tree_sitter.Node, dc declCtx) *ctype {
	if n == nil {
		return unexposed("")
	}
	base := w.typeOf(n.ChildByFieldName("type"), dc, true)
	if hasQualifier(n, "const") {
		base = base.withConst()
	}
	var info declInfo
	w.declarator(n.ChildByFieldName("declarator"), base, dc, &info)
	return info.typ
}

// template records the name a template declares so uses of it are not
// reported as unknown. Templates are not instantiated.
func (w *walker) template(n *tree_sitter.Node, dc declCtx) {
	for i := uint(0); i < n.NamedChildCount(); i++ {
		ch := n.NamedChild(i)
		switch ch.Kind() {
		case "template_parameter_list", "comment", "requires_clause":
		case "class_specifier", "struct_specifier", "union_specifier":
			nameNode := ch.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := w.text(nameNode)
			if nameNode.Kind() == "template_type" {
				w.leaf(dc, frontend.CursorClassTemplatePartialSpecialization, name, nameNode)
				continue
			}
			dc.scope.template(name)
			w.u.addKnown(name)
			w.leaf(dc, frontend.CursorClassTemplate, name, nameNode)
		case "function_definition", "declaration", "field_declaration":
			name := ""
			if d := ch.ChildByFieldName("declarator"); d != nil {
				name = w.text(declaratorName(d))
			}
			w.leaf(dc, frontend.CursorFunctionTemplate, name, ch)
		case "alias_declaration":
			nameNode := ch.ChildByFieldName("name")
			dc.scope.template(w.text(nameNode))
			w.u.addKnown(w.text(nameNode))
			w.leaf(dc, frontend.CursorTypeAliasDecl, w.text(nameNode), nameNode)
		case "template_declaration":
			w.template(ch, dc)
		default:
			w.leaf(dc, frontend.CursorUnexposedDecl, ch.Kind(), ch)
		}
	}
}

func (w *walker) using(n *tree_sitter.Node, dc declCtx) {
	directive := hasToken(n, "namespace")
	target := lastNamed(n)
	parts, global, ok := splitQualified(w.text(target))

	if directive {
		if ok {
			dc.scope.use(w.u.resolveScope(dc.scope, parts, global))
		}
		w.leaf(dc, frontend.CursorUsingDirective, w.text(target), n)
		return
	}

	if ok && len(parts) > 0 {
		if e := w.u.resolve(dc.scope, parts, global); e != nil {
			dc.scope.names[parts[len(parts)-1]] = e
		}
	}
	w.leaf(dc, frontend.CursorUsingDeclaration, w.text(target), n)
}

func (w *walker) namespaceAlias(n *tree_sitter.Node, dc declCtx) {
	name := w.text(n.ChildByFieldName("name"))
	if parts, global, ok := splitQualified(w.text(lastNamed(n))); ok {
		if target := w.u.resolveScope(dc.scope, parts, global); target != nil {
			dc.scope.namespace(name, target)
		}
	}
	w.leaf(dc, frontend.CursorNamespaceAlias, name, n)
}

// typeOf resolves a type specifier. It never returns nil; whatever cannot
// be resolved is an unexposed type.
func (w *walker) typeOf(n *tree_sitter.Node, dc declCtx, hasDeclarators bool) *ctype {
	if n == nil {
		return unexposed("")
	}
	raw := w.text(n)

	switch n.Kind() {
	case "primitive_type":
		if t, ok := builtinFromWords([]string{raw}); ok {
			return t
		}
	case "sized_type_specifier":
		words := make([]string, 0, n.ChildCount())
		for i := uint(0); i < n.ChildCount(); i++ {
			words = append(words, w.text(n.Child(i)))
		}
		if t, ok := builtinFromWords(words); ok {
			return t
		}
	case "type_identifier", "identifier", "qualified_identifier", "qualified_type_identifier":
		return w.namedType(n, raw, dc)
	case "placeholder_type_specifier", "auto":
		return &ctype{kind: frontend.TypeAuto, name: "auto"}
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		if c := w.tagged(n, dc, !hasDeclarators, ""); c != nil {
			return c.typ
		}
	}
	return unexposed(raw)
}

func (w *walker) namedType(n *tree_sitter.Node, raw string, dc declCtx) *ctype {
	parts, global, ok := splitQualified(raw)
	if !ok {
		return unexposed(raw)
	}

	e := w.u.resolve(dc.scope, parts, global)
	switch {
	case e == nil:
		w.unknownType(n, raw, parts, global, dc)
	case e.alias != nil:
		return e.alias
	case e.decl != nil:
		return e.decl.typ
	}
	return unexposed(raw)
}

// arraySize reads a literal array bound. known is false for a missing or
// non-literal bound; size is then 0 for [] and -1 otherwise.
func (w *walker) arraySize(n *tree_sitter.Node) (size int64, known bool) {
	if n == nil {
		return 0, false
	}
	if n.Kind() != "number_literal" {
		return -1, false
	}
	s := strings.TrimRight(w.text(n), "uUlLzZ")
	v, err := strconv.ParseInt(strings.ReplaceAll(s, "'", ""), 0, 64)
	if err != nil {
		return -1, false
	}
	return v, true
}

func isTagSpecifier(n *tree_sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Kind() {
	case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
		return true
	}
	return false
}
