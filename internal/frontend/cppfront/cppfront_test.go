package cppfront

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codenodes/internal/emit"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/frontend"
	"github.com/standardbeagle/codenodes/internal/security"
	"github.com/standardbeagle/codenodes/internal/symbolgraph"
)

// writeTree writes files relative to a fresh directory and returns it
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func parseSource(t *testing.T, src string, args ...string) frontend.TranslationUnit {
	t.Helper()
	dir := writeTree(t, map[string]string{"main.cpp": src})
	tu, err := New(DefaultOptions()).Parse(context.Background(), filepath.Join(dir, "main.cpp"), args)
	require.NoError(t, err)
	t.Cleanup(tu.Close)
	return tu
}

// collect returns every cursor below root in visiting order
func collect(root frontend.Cursor) []frontend.Cursor {
	var all []frontend.Cursor
	root.VisitChildren(func(c frontend.Cursor) frontend.ChildVisit {
		all = append(all, c)
		return frontend.VisitRecurse
	})
	return all
}

func findCursor(t *testing.T, tu frontend.TranslationUnit, kind frontend.CursorKind, spelling string) frontend.Cursor {
	t.Helper()
	for _, c := range collect(tu.Cursor()) {
		if c.Kind() == kind && c.Spelling() == spelling {
			return c
		}
	}
	require.Failf(t, "cursor not found", "%s %q", kind, spelling)
	return nil
}

func children(c frontend.Cursor) []frontend.Cursor {
	var out []frontend.Cursor
	c.VisitChildren(func(child frontend.Cursor) frontend.ChildVisit {
		out = append(out, child)
		return frontend.VisitContinue
	})
	return out
}

func TestFunctionDeclaration(t *testing.T) {
	tu := parseSource(t, "int add(int a, int b);\n")

	fn := findCursor(t, tu, frontend.CursorFunctionDecl, "add")
	assert.Equal(t, "c:@F@add#int,int#", fn.USR())
	assert.Equal(t, "add(int, int)", fn.DisplayName())
	assert.False(t, fn.IsDefinition())
	assert.Equal(t, 1, fn.Location().Line)

	typ := fn.Type()
	require.NotNil(t, typ)
	assert.Equal(t, frontend.TypeFunctionProto, typ.Kind())
	assert.Equal(t, 2, typ.NumArgs())
	assert.Equal(t, frontend.TypeInt, typ.ResultType().Kind())

	params := children(fn)
	require.Len(t, params, 2)
	assert.Equal(t, "a", params[0].Spelling())
	assert.Equal(t, frontend.CursorParmDecl, params[1].Kind())
}

func TestParameterAdjustments(t *testing.T) {
	tu := parseSource(t, "void g(const char *s, int arr[4]);\nvoid h(void);\nint printf(const char *fmt, ...);\n")

	g := findCursor(t, tu, frontend.CursorFunctionDecl, "g")
	assert.Equal(t, "c:@F@g#const char *,int *#", g.USR())

	h := findCursor(t, tu, frontend.CursorFunctionDecl, "h")
	assert.Equal(t, 0, h.Type().NumArgs())

	p := findCursor(t, tu, frontend.CursorFunctionDecl, "printf")
	assert.True(t, p.Type().IsVariadic())
	assert.Equal(t, "printf(const char *, ...)", p.DisplayName())
}

func TestRecordsAndBases(t *testing.T) {
	tu := parseSource(t, `struct Base { int id; };
struct Derived : Base {
  Base b;
  int x;
};
`)

	base := findCursor(t, tu, frontend.CursorStructDecl, "Base")
	assert.Equal(t, "c:@S@Base", base.USR())
	assert.True(t, base.IsDefinition())

	derived := findCursor(t, tu, frontend.CursorStructDecl, "Derived")
	members := children(derived)
	require.Len(t, members, 3)
	assert.Equal(t, frontend.CursorBaseSpecifier, members[0].Kind())
	assert.Equal(t, "c:@S@Base", members[0].Type().Declaration().USR())
	assert.Equal(t, frontend.CursorFieldDecl, members[1].Kind())
	assert.Equal(t, "c:@S@Derived@FI@b", members[1].USR())
	assert.Equal(t, frontend.TypeRecord, members[1].Type().Kind())
}

func TestNamespacesQualifyUSRs(t *testing.T) {
	tu := parseSource(t, `namespace outer {
namespace inner { struct S {}; }
}
namespace { struct Hidden {}; }
`)

	s := findCursor(t, tu, frontend.CursorStructDecl, "S")
	assert.Equal(t, "c:@N@outer@N@inner@S@S", s.USR())
	require.NotNil(t, s.SemanticParent())
	assert.Equal(t, "inner", s.SemanticParent().Spelling())

	hidden := findCursor(t, tu, frontend.CursorStructDecl, "Hidden")
	assert.Equal(t, "c:@aN@S@Hidden", hidden.USR())
	assert.Equal(t, anonymousNamespace, hidden.SemanticParent().DisplayName())
}

func TestLookupThroughNamespaces(t *testing.T) {
	tu := parseSource(t, `namespace geo { struct Point {}; }
using namespace geo;
Point origin();
geo::Point centre();
`)

	origin := findCursor(t, tu, frontend.CursorFunctionDecl, "origin")
	assert.Equal(t, "c:@N@geo@S@Point", origin.Type().ResultType().Declaration().USR())

	centre := findCursor(t, tu, frontend.CursorFunctionDecl, "centre")
	assert.Equal(t, "c:@N@geo@S@Point", centre.Type().ResultType().Declaration().USR())
	assert.Empty(t, tu.Diagnostics())
}

func TestExternCDropsSignatureFromUSR(t *testing.T) {
	tu := parseSource(t, `extern "C" {
int cfun(int);
}
extern "C" int cfun2(double);
`)

	assert.Equal(t, "c:@F@cfun", findCursor(t, tu, frontend.CursorFunctionDecl, "cfun").USR())
	assert.Equal(t, "c:@F@cfun2", findCursor(t, tu, frontend.CursorFunctionDecl, "cfun2").USR())

	top := children(tu.Cursor())
	require.Len(t, top, 2)
	assert.Equal(t, frontend.CursorLinkageSpec, top[0].Kind())
	assert.Equal(t, frontend.CursorLinkageSpec, top[1].Kind())
}

func TestTypedefOfAnonymousStruct(t *testing.T) {
	tu := parseSource(t, "typedef struct { int x; } Point;\nPoint make_point(void);\n")

	var rec frontend.Cursor
	for _, c := range collect(tu.Cursor()) {
		if c.Kind() == frontend.CursorStructDecl {
			rec = c
		}
	}
	require.NotNil(t, rec)
	assert.Equal(t, "c:@SA@Point", rec.USR())
	assert.Equal(t, "Point", rec.DisplayName())

	fn := findCursor(t, tu, frontend.CursorFunctionDecl, "make_point")
	result := fn.Type().ResultType()
	assert.Equal(t, frontend.TypeTypedef, result.Kind())
	assert.Equal(t, "c:@SA@Point", result.Canonical().Declaration().USR())
}

func TestForwardDeclarationAndDefinition(t *testing.T) {
	tu := parseSource(t, "struct Node;\nstruct Node { Node *next; };\n")

	var decls []frontend.Cursor
	for _, c := range collect(tu.Cursor()) {
		if c.Kind() == frontend.CursorStructDecl {
			decls = append(decls, c)
		}
	}
	require.Len(t, decls, 2)
	assert.False(t, decls[0].IsDefinition())
	assert.Equal(t, decls[0], decls[1].Canonical())
	assert.Equal(t, decls[1], decls[0].Definition())

	next := children(decls[1])[0]
	assert.Equal(t, frontend.TypePointer, next.Type().Kind())
	assert.Equal(t, "c:@S@Node", next.Type().Pointee().Declaration().USR())
}

func TestOutOfLineMethod(t *testing.T) {
	tu := parseSource(t, `struct A {
  struct Inner {};
  void f(Inner) const;
  A();
  ~A();
};
void A::f(Inner) const {}
`)

	var methods []frontend.Cursor
	for _, c := range collect(tu.Cursor()) {
		if c.Kind() == frontend.CursorCXXMethod {
			methods = append(methods, c)
		}
	}
	require.Len(t, methods, 2)
	assert.Equal(t, "c:@S@A@F@f#A::Inner#1", methods[0].USR())
	assert.Equal(t, methods[0].USR(), methods[1].USR())
	assert.True(t, methods[1].IsDefinition())
	assert.Equal(t, "A", methods[1].SemanticParent().Spelling())
	assert.Equal(t, methods[1], methods[0].Definition())

	findCursor(t, tu, frontend.CursorConstructor, "A")
	findCursor(t, tu, frontend.CursorDestructor, "~A")
}

func TestEnums(t *testing.T) {
	tu := parseSource(t, "enum Color { Red, Green };\nColor paint(Color c);\n")

	color := findCursor(t, tu, frontend.CursorEnumDecl, "Color")
	assert.Equal(t, "c:@E@Color", color.USR())
	consts := children(color)
	require.Len(t, consts, 2)
	assert.Equal(t, "c:@E@Color@Red", consts[0].USR())

	fn := findCursor(t, tu, frontend.CursorFunctionDecl, "paint")
	assert.Equal(t, frontend.TypeEnum, fn.Type().ResultType().Kind())
}

func TestIncludesAreParsedOnce(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a.h":         "struct Shared { int v; };\n",
		"include/b.h": "#include \"a.h\"\nstruct FromB {};\n",
		"main.cpp":    "#include \"a.h\"\n#include \"b.h\"\n#include <vector>\nShared s;\n",
	})

	tu, err := New(DefaultOptions()).Parse(context.Background(), filepath.Join(dir, "main.cpp"), []string{"-I", filepath.Join(dir, "include"), "-iquote" + dir})
	require.NoError(t, err)
	defer tu.Close()

	var shared int
	for _, c := range collect(tu.Cursor()) {
		if c.Kind() == frontend.CursorStructDecl && c.Spelling() == "Shared" {
			shared++
			assert.Equal(t, filepath.Join(dir, "a.h"), c.Location().File)
		}
	}
	assert.Equal(t, 1, shared)
	findCursor(t, tu, frontend.CursorStructDecl, "FromB")
	assert.Empty(t, tu.Diagnostics())
}

func TestMissingIncludeIsDiagnosed(t *testing.T) {
	tu := parseSource(t, "#include \"nope.h\"\nint x;\n")

	diags := tu.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, frontend.SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "'nope.h' file not found")
	assert.Equal(t, 1, diags[0].Location.Line)
}

func TestIncludeDepthLimit(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.cpp": "#include \"one.h\"\n",
		"one.h":    "#include \"two.h\"\nstruct One {};\n",
		"two.h":    "struct Two {};\n",
	})

	tu, err := New(Options{MaxIncludeDepth: 1}).Parse(context.Background(), filepath.Join(dir, "main.cpp"), nil)
	require.NoError(t, err)
	defer tu.Close()

	findCursor(t, tu, frontend.CursorStructDecl, "One")
	require.Len(t, tu.Diagnostics(), 1)
	assert.Equal(t, frontend.SeverityWarning, tu.Diagnostics()[0].Severity)
	assert.Contains(t, tu.Diagnostics()[0].Message, "exceeds maximum")
}

func TestUnknownTypeSuggestsKnownName(t *testing.T) {
	tu := parseSource(t, "struct Widget {};\nWidgit w;\nWidgit other;\nstd::string name;\n")

	diags := tu.Diagnostics()
	require.Len(t, diags, 1, "repeated and library-qualified names are not reported")
	assert.Equal(t, "unknown type name 'Widgit'; did you mean 'Widget'?", diags[0].Message)
	assert.Equal(t, 2, diags[0].Location.Line)
}

func TestSyntaxErrorsBecomeDiagnostics(t *testing.T) {
	tu := parseSource(t, "struct Ok {};\nint broken( {\n")

	require.NotEmpty(t, tu.Diagnostics())
	for _, d := range tu.Diagnostics() {
		assert.Equal(t, frontend.SeverityError, d.Severity)
	}
	findCursor(t, tu, frontend.CursorStructDecl, "Ok")
}

func TestParseErrors(t *testing.T) {
	fe := New(DefaultOptions())

	_, err := fe.Parse(context.Background(), filepath.Join(t.TempDir(), "missing.cpp"), nil)
	var fileErr *lcierrors.FileError
	require.ErrorAs(t, err, &fileErr)

	dir := writeTree(t, map[string]string{"main.cpp": "int x;\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fe.Parse(ctx, filepath.Join(dir, "main.cpp"), nil)
	assert.True(t, errors.Is(err, context.Canceled))

	bin := writeTree(t, map[string]string{"obj.cpp": "\x7fELF\x02\x01\x01\x00"})
	_, err = fe.Parse(context.Background(), filepath.Join(bin, "obj.cpp"), nil)
	var parseErr *lcierrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.ErrorIs(t, err, security.ErrBinary)
}

func TestBinaryIncludeIsDiagnosed(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"main.cpp": "#include \"pch.h\"\nstruct After {};\n",
		"pch.h":    "CPCH\x00\x00\x00\x01",
	})

	tu, err := New(DefaultOptions()).Parse(context.Background(), filepath.Join(dir, "main.cpp"), nil)
	require.NoError(t, err)
	defer tu.Close()

	findCursor(t, tu, frontend.CursorStructDecl, "After")
	require.Len(t, tu.Diagnostics(), 1)
	assert.Contains(t, tu.Diagnostics()[0].Message, "cannot read 'pch.h'")
	assert.Contains(t, tu.Diagnostics()[0].Message, "precompiled header")
}

func TestBuildsSymbolGraph(t *testing.T) {
	tu := parseSource(t, `namespace shapes {
struct Shape { virtual ~Shape(); };
struct Circle : Shape {
  double radius;
  double area() const;
};
}
double total(const shapes::Circle *circles, int n);
`)

	b := symbolgraph.NewBuilder()
	b.VisitUnit(context.Background(), tu.Cursor())
	forest := b.Forest()

	h, ok := forest.Lookup("c:@N@shapes@S@Circle")
	require.True(t, ok)
	circle := forest.Get(h)
	assert.True(t, circle.Complete())
	cls := circle.AsClass()
	require.NotNil(t, cls)
	assert.Len(t, cls.ParentClasses, 1)
	assert.Len(t, cls.FieldTypes, 1)
	assert.Len(t, cls.MemberFunctions, 1)

	h, ok = forest.Lookup("c:@F@total#const shapes::Circle *,int#")
	require.True(t, ok)
	total := forest.Get(h)
	assert.True(t, total.Complete())
	assert.Equal(t, "total(const shapes::Circle *, int)", total.DisplayName)

	var names []string
	for _, ch := range forest.Root().AsNamespace().Children {
		names = append(names, forest.Get(ch).Name)
	}
	assert.Equal(t, "shapes|total(const shapes::Circle *, int)", strings.Join(names, "|"))
}

func TestDistinctSymbolsGetDistinctNodeIDs(t *testing.T) {
	tu := parseSource(t, `struct Box {
  struct { int a; } first;
  struct { double b; } second;
  int get();
  int get() const;
};
`)

	b := symbolgraph.NewBuilder()
	b.VisitUnit(context.Background(), tu.Cursor())
	g, err := emit.Collect(b.Forest())
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, n := range g.Nodes {
		seen[n.ID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "node id %q", id)
	}
	assert.Contains(t, seen, "Box::(anonymous struct at main.cpp:2:3)")
	assert.Contains(t, seen, "Box::(anonymous struct at main.cpp:3:3)")
	assert.Contains(t, seen, "Box::get()")
	assert.Contains(t, seen, "Box::get() const")
}

func TestSuggest(t *testing.T) {
	known := []string{"Buffer", "Widget", "Window"}
	assert.Equal(t, "Widget", suggest("Widgit", known))
	assert.Equal(t, "", suggest("Completely", known))
	assert.Equal(t, "", suggest("Widget", []string{"Widget"}))
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		in     string
		parts  []string
		global bool
		ok     bool
	}{
		{"a", []string{"a"}, false, true},
		{"::a :: b", []string{"a", "b"}, true, true},
		{"A::~A", []string{"A", "~A"}, false, true},
		{"ns::operator ==", []string{"ns", "operator =="}, false, true},
		{"operator<", []string{"operator<"}, false, true},
		{"vector<int>", nil, false, false},
		{"operatorCount", []string{"operatorCount"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			parts, global, ok := splitQualified(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.global, global)
			assert.Equal(t, tt.parts, parts)
		})
	}
}
