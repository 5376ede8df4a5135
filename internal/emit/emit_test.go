package emit

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/codenodes/internal/debug"
	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	ft "github.com/standardbeagle/codenodes/internal/frontend/frontendtest"
	"github.com/standardbeagle/codenodes/internal/symbolgraph"
	"github.com/standardbeagle/codenodes/internal/symbols"
	"github.com/standardbeagle/codenodes/internal/version"
)

func build(units ...*ft.Unit) *symbols.Forest {
	ctx := debug.WithLogger(context.Background(), debug.Discard())
	b := symbolgraph.NewBuilder()
	for _, u := range units {
		b.VisitUnit(ctx, u.Cursor())
	}
	return b.Forest()
}

func nodeIDs(g *Graph) []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

func edgesFrom(g *Graph, source string) []string {
	var targets []string
	for _, e := range g.Edges {
		if e.Source == source {
			targets = append(targets, e.Target)
		}
	}
	return targets
}

func TestCollect_EmptyForest(t *testing.T) {
	g, err := Collect(symbols.NewForest())
	require.NoError(t, err)
	assert.Equal(t, []string{"::"}, nodeIDs(g))
	assert.Empty(t, g.Edges)

	_, err = Collect(nil)
	assert.ErrorIs(t, err, ErrEmptyForest)
}

func TestCollect_SimpleFunction(t *testing.T) {
	u := ft.NewUnit("add.cpp")
	u.Root().Function("add", ft.Int(), ft.Int(), ft.Int())

	g, err := Collect(build(u))
	require.NoError(t, err)

	assert.Equal(t, []string{"::", "add(int, int)"}, nodeIDs(g))
	assert.Empty(t, edgesFrom(g, "add(int, int)"))
	assert.Equal(t, "function", g.Nodes[1].Kind)
	assert.True(t, g.Nodes[1].Complete)
}

func TestCollect_BaseAndField(t *testing.T) {
	u := ft.NewUnit("derived.cpp")
	base := u.Root().Struct("Base")
	derived := u.Root().Struct("Derived")
	derived.Base(ft.Record(base))
	derived.Field("ptr", ft.PointerTo(ft.Record(base)))

	g, err := Collect(build(u))
	require.NoError(t, err)

	assert.Equal(t, []string{"::", "Base", "Derived"}, nodeIDs(g))
	assert.Equal(t, []string{"Base", "Base"}, edgesFrom(g, "Derived"))
	assert.Equal(t, "struct", g.Nodes[2].Kind)
}

func TestCollect_CyclesEmitOnce(t *testing.T) {
	u := ft.NewUnit("cycle.cpp")
	a := u.Root().ForwardStruct("A")
	b := u.Root().Struct("B")
	b.Field("a", ft.PointerTo(ft.Record(a)))
	aDef := u.Root().Struct("A")
	aDef.Field("b", ft.PointerTo(ft.Record(b)))
	aDef.Field("self", ft.PointerTo(ft.Record(aDef)))

	g, err := Collect(build(u))
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, id := range nodeIDs(g) {
		seen[id]++
	}
	assert.Equal(t, map[string]int{"::": 1, "A": 1, "B": 1}, seen)
	assert.ElementsMatch(t, []string{"B", "A"}, edgesFrom(g, "A"))
	assert.Equal(t, []string{"A"}, edgesFrom(g, "B"))
}

func TestCollect_NamespaceOrder(t *testing.T) {
	u := ft.NewUnit("order.cpp")
	ns := u.Root().Namespace("app")
	ns.Struct("Zeta")
	ns.Struct("Alpha")
	ns.Enum("Mid")

	g, err := Collect(build(u))
	require.NoError(t, err)
	assert.Equal(t, []string{"::", "app", "app::Zeta", "app::Alpha", "app::Mid"}, nodeIDs(g))
	assert.Equal(t, []string{"app::Zeta", "app::Alpha", "app::Mid"}, edgesFrom(g, "app"))
}

func TestCollect_IncompleteStillEmitted(t *testing.T) {
	u := ft.NewUnit("fwd.cpp")
	opaque := u.Root().ForwardStruct("Opaque")
	u.Root().Function("open", ft.PointerTo(ft.Record(opaque)))

	g, err := Collect(build(u))
	require.NoError(t, err)

	var found bool
	for _, n := range g.Nodes {
		if n.ID == "Opaque" {
			found = true
			assert.False(t, n.Complete)
		}
	}
	assert.True(t, found)
}

func TestWrite_GraphML(t *testing.T) {
	u := ft.NewUnit("derived.cpp")
	base := u.Root().Struct("Base")
	u.Root().Struct("Derived").Base(ft.Record(base))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatGraphML, build(u)))

	var doc graphML
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	assert.Len(t, doc.Keys, 4)
	assert.Equal(t, "directed", doc.Graph.EdgeDefault)
	assert.Equal(t, []graphMLData{{Key: "build", Value: version.BuildID()}}, doc.Graph.Data)
	require.Len(t, doc.Graph.Nodes, 3)
	assert.Equal(t, "::", doc.Graph.Nodes[0].ID)
	assert.Contains(t, doc.Graph.Edges, graphMLEdge{Source: "Derived", Target: "Base"})
	assert.Contains(t, buf.String(), `<data key="usr">c:@S@Base</data>`)
}

func TestWrite_JSONAndYAML(t *testing.T) {
	u := ft.NewUnit("e.cpp")
	u.Root().Enum("Color")
	f := build(u)

	var jbuf bytes.Buffer
	require.NoError(t, Write(&jbuf, FormatJSON, f))
	var fromJSON Graph
	require.NoError(t, json.Unmarshal(jbuf.Bytes(), &fromJSON))

	var ybuf bytes.Buffer
	require.NoError(t, Write(&ybuf, FormatYAML, f))
	var fromYAML Graph
	require.NoError(t, yaml.Unmarshal(ybuf.Bytes(), &fromYAML))

	assert.Equal(t, fromJSON, fromYAML)
	assert.Equal(t, version.BuildID(), fromJSON.Build)
	assert.NotEmpty(t, fromJSON.Build)
	assert.Equal(t, []string{"::", "Color"}, nodeIDs(&fromJSON))

	assert.Error(t, Write(&jbuf, Format("dot"), f))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.graphml")

	require.NoError(t, WriteFile(path, FormatGraphML, symbols.NewForest()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<node id="::">`)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteFile_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "graph.json")
	err := WriteFile(path, FormatJSON, symbols.NewForest())

	var oe *lcierrors.OutputError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, path, oe.Path)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatGraphML, false},
		{"GraphML", FormatGraphML, false},
		{" json ", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"dot", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
