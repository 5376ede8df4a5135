package config

import (
	"fmt"
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	lcierrors "github.com/standardbeagle/codenodes/internal/errors"
)

// LoadKDL reads a .codenodes.kdl file. root is the project directory.
func LoadKDL(path, root string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, lcierrors.NewConfigError("config", path, err)
	}

	cfg, err := parseKDL(string(content), root)
	if err != nil {
		return nil, lcierrors.NewConfigError("config", path, err)
	}
	cfg.Source = path
	return cfg, nil
}

// parseKDL overlays the settings in content on the defaults
func parseKDL(content, root string) (*Config, error) {
	cfg := Default(root)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "build":
			for _, cn := range n.Children {
				assignSimpleString(cn, "compile_commands", func(v string) { cfg.Build.CompileCommands = v })
				assignSimpleString(cn, "output", func(v string) { cfg.Build.Output = v })
				assignSimpleString(cn, "format", func(v string) { cfg.Build.Format = v })
			}
		case "performance":
			for _, cn := range n.Children {
				if nodeName(cn) == "workers" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.Workers = v
					}
				}
			}
		case "filter":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Filter.Include = append(cfg.Filter.Include, collectStringArgs(cn)...)
				case "exclude":
					cfg.Filter.Exclude = append(cfg.Filter.Exclude, collectStringArgs(cn)...)
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Filter.RespectGitignore = b
					}
				}
			}
		case "frontend":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_include_depth":
					if v, ok := firstIntArg(cn); ok {
						cfg.Frontend.MaxIncludeDepth = v
					}
				case "follow_system_includes":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Frontend.FollowSystemIncludes = b
					}
				case "extra_args":
					cfg.Frontend.ExtraArgs = append(cfg.Frontend.ExtraArgs, collectStringArgs(cn)...)
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "log":
			for _, cn := range n.Children {
				assignSimpleString(cn, "level", func(v string) { cfg.Log.Level = v })
				assignSimpleString(cn, "format", func(v string) { cfg.Log.Format = v })
				if nodeName(cn) == "color" {
					if b, ok := firstBoolArg(cn); ok {
						cfg.Log.Color = b
					}
				}
			}
		}
	}

	cfg.Filter.Exclude = DeduplicatePatterns(cfg.Filter.Exclude)
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs accepts both `exclude "a" "b"` and the block form
// `exclude { "a"; "b" }`, where each string is a child node name.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
