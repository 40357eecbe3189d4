// Package dag holds named units of work connected by "must complete before"
// edges and runs them in dependency order.
package dag

import (
	"context"
	"fmt"
	"sort"

	"github.com/philopon/go-toposort"
	"golang.org/x/sync/errgroup"
)

// RunFunc executes one node. A non-nil error aborts the whole run.
type RunFunc func(ctx context.Context) error

// Node is a unit of work with the names of the nodes it waits for.
type Node struct {
	Name string
	Deps []string
	Run  RunFunc
}

// Graph is a set of nodes kept in insertion order.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add registers a node. Duplicate dependencies are collapsed.
func (g *Graph) Add(name string, run RunFunc, deps ...string) error {
	if name == "" {
		return fmt.Errorf("node name must not be empty")
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("duplicate node: %q", name)
	}
	seen := make(map[string]struct{}, len(deps))
	uniq := make([]string, 0, len(deps))
	for _, d := range deps {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	g.nodes[name] = &Node{Name: name, Deps: uniq, Run: run}
	g.order = append(g.order, name)
	return nil
}

// AddEdge makes from a dependency of to. Both nodes must exist.
func (g *Graph) AddEdge(from, to string) error {
	n, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("unknown node %q", to)
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("unknown node %q", from)
	}
	for _, d := range n.Deps {
		if d == from {
			return nil
		}
	}
	n.Deps = append(n.Deps, from)
	return nil
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns node names in insertion order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Validate checks for unknown dependencies and cycles.
func (g *Graph) Validate() error {
	_, err := g.Order()
	return err
}

// Order returns node names in a deterministic topological order.
func (g *Graph) Order() ([]string, error) {
	for _, name := range g.order {
		for _, dep := range g.nodes[name].Deps {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("node %q depends on missing node %q", name, dep)
			}
		}
	}

	// toposort.Graph is consumed by Toposort, so build a fresh one each call.
	tg := toposort.NewGraph(len(g.order))
	for _, name := range g.order {
		tg.AddNode(name)
	}
	for _, name := range g.order {
		for _, dep := range g.nodes[name].Deps {
			tg.AddEdge(dep, name)
		}
	}

	sorted, ok := tg.Toposort()
	if !ok {
		inCycle := make([]string, 0)
		placed := make(map[string]bool, len(sorted))
		for _, n := range sorted {
			placed[n] = true
		}
		for _, name := range g.order {
			if !placed[name] {
				inCycle = append(inCycle, name)
			}
		}
		sort.Strings(inCycle)
		return nil, fmt.Errorf("circular dependency detected involving nodes: %v", inCycle)
	}
	return sorted, nil
}

// Run executes every node once its dependencies have completed, with at most
// limit nodes running at a time. Nodes are started in topological order, so a
// limit of 1 yields a strict deterministic sequence. The first error cancels
// the context passed to the remaining nodes; nodes that have not started yet
// are not run.
func (g *Graph) Run(ctx context.Context, limit int) error {
	order, err := g.Order()
	if err != nil {
		return err
	}
	if limit < 1 {
		limit = 1
	}

	states := make(map[string]*nodeState, len(order))
	for _, name := range order {
		states[name] = &nodeState{done: make(chan struct{})}
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for _, name := range order {
		node := g.nodes[name]
		state := states[name]
		eg.Go(func() error {
			// failed is written before done is closed and read only after.
			defer close(state.done)
			for _, dep := range node.Deps {
				select {
				case <-states[dep].done:
					if states[dep].failed {
						state.failed = true
						return nil
					}
				case <-gctx.Done():
					state.failed = true
					return nil
				}
			}
			if gctx.Err() != nil {
				state.failed = true
				return nil
			}
			if node.Run == nil {
				return nil
			}
			if err := node.Run(gctx); err != nil {
				state.failed = true
				return err
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

type nodeState struct {
	done   chan struct{}
	failed bool
}
