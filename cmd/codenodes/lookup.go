package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/codenodes/internal/query"
	"github.com/standardbeagle/codenodes/internal/symbols"
)

type lookupResult struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	USR        string   `json:"usr,omitempty"`
	Complete   bool     `json:"complete"`
	References []string `json:"references"`
	ReferredBy []string `json:"referred_by"`
}

type lookupOutput struct {
	Query   string         `json:"query"`
	Exact   bool           `json:"exact"`
	Results []lookupResult `json:"results"`
}

func lookupCommand(c *cli.Context) error {
	name := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if name == "" {
		return errors.New("lookup requires a symbol name")
	}

	ctx, cfg, err := setup(c)
	if err != nil {
		return err
	}
	entries, err := loadEntries(ctx, cfg)
	if err != nil {
		return err
	}
	forest, report, err := buildGraph(ctx, cfg, entries)
	if err != nil {
		return err
	}
	logSummary(ctx, report)

	out := lookup(query.New(forest), name, c.Int("limit"))
	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	printLookup(c.App.Writer, out)
	return nil
}

// lookup resolves name exactly, falling back to fuzzy search
func lookup(ix *query.Index, name string, limit int) lookupOutput {
	out := lookupOutput{Query: name, Results: []lookupResult{}}

	found := ix.Find(name)
	out.Exact = len(found) > 0
	if !out.Exact {
		for _, m := range ix.Search(name, limit) {
			found = append(found, m.Symbol)
		}
	}

	for _, sym := range found {
		out.Results = append(out.Results, lookupResult{
			Name:       sym.DisplayName,
			Kind:       sym.KindName(),
			USR:        sym.USR,
			Complete:   sym.Complete(),
			References: displayNames(ix.Outgoing(sym.Handle)),
			ReferredBy: displayNames(ix.Incoming(sym.Handle)),
		})
	}
	return out
}

func displayNames(syms []*symbols.Symbol) []string {
	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.DisplayName
	}
	return names
}

func printLookup(w io.Writer, out lookupOutput) {
	if len(out.Results) == 0 {
		fmt.Fprintf(w, "No symbol matches %q\n", out.Query)
		return
	}
	if !out.Exact {
		fmt.Fprintf(w, "No exact match for %q; closest symbols:\n\n", out.Query)
	}
	for i, r := range out.Results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		state := ""
		if !r.Complete {
			state = " (incomplete)"
		}
		fmt.Fprintf(w, "%s [%s]%s\n", r.Name, r.Kind, state)
		if r.USR != "" {
			fmt.Fprintf(w, "  usr: %s\n", r.USR)
		}
		printNames(w, "references", r.References)
		printNames(w, "referred by", r.ReferredBy)
	}
}

func printNames(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", label)
	for _, n := range names {
		fmt.Fprintf(w, "    %s\n", n)
	}
}
