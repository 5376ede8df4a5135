package emit

import (
	"bufio"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

// Write renders the forest to w in format
func Write(w io.Writer, format Format, f *symbols.Forest) error {
	g, err := Collect(f)
	if err != nil {
		return err
	}
	return WriteGraph(w, format, g)
}

// WriteGraph renders an already collected graph
func WriteGraph(w io.Writer, format Format, g *Graph) error {
	switch format {
	case FormatGraphML, "":
		return writeGraphML(w, g)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteFile renders the forest into a temporary file next to path and
// renames it into place, so a failed write never leaves a partial file.
func WriteFile(path string, format Format, f *symbols.Forest) (err error) {
	g, err := Collect(f)
	if err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = WriteGraph(bw, format, g); err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}
	if err = bw.Flush(); err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}
	if err = tmp.Close(); err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return lcierrors.NewOutputError(path, string(format), err)
	}
	return nil
}

const graphMLNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphML struct {
	XMLName xml.Name     `xml:"graphml"`
	XMLNS   string       `xml:"xmlns,attr"`
	Keys    []graphMLKey `xml:"key"`
	Graph   graphMLGraph `xml:"graph"`
}

type graphMLKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphMLGraph struct {
	ID          string        `xml:"id,attr"`
	EdgeDefault string        `xml:"edgedefault,attr"`
	Data        []graphMLData `xml:"data"`
	Nodes       []graphMLNode `xml:"node"`
	Edges       []graphMLEdge `xml:"edge"`
}

type graphMLNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphMLData `xml:"data"`
}

type graphMLEdge struct {
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

type graphMLData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func writeGraphML(w io.Writer, g *Graph) error {
	doc := graphML{
		XMLNS: graphMLNamespace,
		Keys: []graphMLKey{
			{ID: "kind", For: "node", AttrName: "kind", AttrType: "string"},
			{ID: "usr", For: "node", AttrName: "usr", AttrType: "string"},
			{ID: "complete", For: "node", AttrName: "complete", AttrType: "boolean"},
			{ID: "build", For: "graph", AttrName: "build", AttrType: "string"},
		},
		Graph: graphMLGraph{
			ID:          "symbols",
			EdgeDefault: "directed",
			Nodes:       make([]graphMLNode, 0, len(g.Nodes)),
			Edges:       make([]graphMLEdge, 0, len(g.Edges)),
		},
	}
	if g.Build != "" {
		doc.Graph.Data = []graphMLData{{Key: "build", Value: g.Build}}
	}
	for _, n := range g.Nodes {
		node := graphMLNode{ID: n.ID, Data: []graphMLData{
			{Key: "kind", Value: n.Kind},
			{Key: "complete", Value: strconv.FormatBool(n.Complete)},
		}}
		if n.USR != "" {
			node.Data = append(node.Data, graphMLData{Key: "usr", Value: n.USR})
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, node)
	}
	for _, e := range g.Edges {
		doc.Graph.Edges = append(doc.Graph.Edges, graphMLEdge(e))
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
