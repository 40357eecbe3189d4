package dag

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Format is an output format for graph visualization.
type Format string

const (
	FormatText    Format = "text"
	FormatMermaid Format = "mermaid"
	FormatDOT     Format = "dot"
	FormatJSON    Format = "json"
)

// SupportedFormats returns the visualization formats Render accepts.
func SupportedFormats() []Format {
	return []Format{FormatText, FormatMermaid, FormatDOT, FormatJSON}
}

// FormatDescription returns a one-line description of a format.
func FormatDescription(format Format) string {
	descriptions := map[Format]string{
		FormatText:    "Human-readable execution order with dependencies",
		FormatMermaid: "Mermaid diagram (for GitHub, GitLab, etc.)",
		FormatDOT:     "Graphviz DOT format (render with `dot -Tpng graph.dot -o graph.png`)",
		FormatJSON:    "Structured JSON representation",
	}
	return descriptions[format]
}

// Render returns a visual representation of the graph titled title.
func (g *Graph) Render(title string, format Format) (string, error) {
	order, err := g.Order()
	if err != nil {
		return "", err
	}
	switch format {
	case FormatText:
		return g.renderText(title, order), nil
	case FormatMermaid:
		return g.renderMermaid(order), nil
	case FormatDOT:
		return g.renderDOT(title, order), nil
	case FormatJSON:
		return g.renderJSON(title, order)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (g *Graph) renderText(title string, order []string) string {
	var sb strings.Builder
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("=", len(title)) + "\n\n")
	for i, name := range order {
		prefix := "├──"
		connector := "│  "
		if i == len(order)-1 {
			prefix = "└──"
			connector = "   "
		}
		fmt.Fprintf(&sb, "%s %2d. %s\n", prefix, i+1, name)
		if deps := g.nodes[name].Deps; len(deps) > 0 {
			fmt.Fprintf(&sb, "%s      ⤷ after: %s\n", connector, strings.Join(deps, ", "))
		}
	}
	fmt.Fprintf(&sb, "\nTotal: %d steps\n", len(order))
	return sb.String()
}

func mermaidID(name string) string {
	return strings.NewReplacer("-", "", "_", "", ".", "").Replace(name)
}

func (g *Graph) renderMermaid(order []string) string {
	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("graph TD\n")
	for _, name := range order {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", mermaidID(name), name)
	}
	sb.WriteString("\n")
	for _, name := range order {
		for _, dep := range g.nodes[name].Deps {
			fmt.Fprintf(&sb, "    %s --> %s\n", mermaidID(dep), mermaidID(name))
		}
	}
	sb.WriteString("```\n")
	return sb.String()
}

func (g *Graph) renderDOT(title string, order []string) string {
	var sb strings.Builder
	sb.WriteString("digraph Steps {\n")
	fmt.Fprintf(&sb, "    label=%q;\n", title)
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=rounded];\n\n")
	for _, name := range order {
		fmt.Fprintf(&sb, "    %q;\n", name)
	}
	sb.WriteString("\n")
	for _, name := range order {
		for _, dep := range g.nodes[name].Deps {
			fmt.Fprintf(&sb, "    %q -> %q;\n", dep, name)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

type jsonNode struct {
	Name  string   `json:"name"`
	Order int      `json:"order"`
	After []string `json:"after"`
}

type jsonGraph struct {
	Title      string     `json:"title"`
	Steps      []jsonNode `json:"steps"`
	TotalSteps int        `json:"totalSteps"`
}

func (g *Graph) renderJSON(title string, order []string) (string, error) {
	out := jsonGraph{Title: title, TotalSteps: len(order)}
	for i, name := range order {
		deps := g.nodes[name].Deps
		if deps == nil {
			deps = []string{}
		}
		out.Steps = append(out.Steps, jsonNode{Name: name, Order: i + 1, After: deps})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}
