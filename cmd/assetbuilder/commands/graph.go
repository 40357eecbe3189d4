package commands

import (
	"fmt"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/dag"
	"git.home.luguber.info/inful/assetbuilder/internal/orchestrator"
)

// GraphCmd implements the 'graph' command.
type GraphCmd struct {
	Profile string `short:"p" help:"Build profile (dev or prod)" default:"dev" enum:"dev,prod"`
	Format  string `short:"f" help:"Output format: text, mermaid, dot, json" default:"text" enum:"text,mermaid,dot,json"`
	Output  string `short:"o" help:"Output file path (optional, prints to stdout if not specified)"`
	List    bool   `short:"l" help:"List available formats and exit"`
}

// Run executes the graph command.
func (g *GraphCmd) Run(_ *Global, root *CLI) error {
	if g.List {
		fmt.Println("Available graph formats:")
		fmt.Println()
		for _, format := range dag.SupportedFormats() {
			fmt.Printf("  %-10s %s\n", format, dag.FormatDescription(format))
		}
		fmt.Println()
		fmt.Println("Usage examples:")
		fmt.Println("  assetbuilder graph                        # Dev graph as text")
		fmt.Println("  assetbuilder graph -p prod -f mermaid     # Prod graph as Mermaid")
		fmt.Println("  assetbuilder graph -f dot -o steps.dot    # DOT format to file")
		return nil
	}

	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	profile, err := config.ParseProfile(g.Profile)
	if err != nil {
		return err
	}
	graph, err := orchestrator.Graph(cfg, profile, nil)
	if err != nil {
		return fmt.Errorf("failed to build step graph: %w", err)
	}
	output, err := graph.Render(fmt.Sprintf("assetbuilder %s", profile), dag.Format(g.Format))
	if err != nil {
		return fmt.Errorf("failed to render step graph: %w", err)
	}

	if g.Output != "" {
		if err := os.WriteFile(g.Output, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		slog.Info("Step graph written", "file", g.Output, "format", g.Format)
		return nil
	}
	fmt.Print(output)
	return nil
}
