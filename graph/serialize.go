package graph

import (
	"github.com/baleybay/gobal/bal"
	"github.com/google/uuid"
)

// ChainOrder recovers the execution order of a graph's baleybot nodes from
// its chain edges: the unique node with no incoming chain edge starts, and
// the walk follows successors until none remain. Nodes outside the chain
// follow in node order. A cyclic edge set, a missing or ambiguous start, or
// a node with two successors all fall back to plain node order — a
// best-effort answer, not an error.
func ChainOrder(g *VisualGraph) []string {
	var names []string
	for _, n := range g.Nodes {
		if n.Kind == NodeBaleybot {
			names = append(names, n.ID)
		}
	}

	succ := make(map[string]string)
	incoming := make(map[string]bool)
	participants := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Kind != EdgeChain {
			continue
		}
		if _, dup := succ[e.Source]; dup {
			return names // two successors, order ambiguous
		}
		succ[e.Source] = e.Target
		incoming[e.Target] = true
		participants[e.Source] = true
		participants[e.Target] = true
	}
	if len(participants) == 0 {
		return names
	}

	start := ""
	for _, name := range names {
		if participants[name] && !incoming[name] {
			if start != "" {
				return names // two starts
			}
			start = name
		}
	}
	if start == "" {
		return names // every participant has an incoming edge: cycle
	}

	var order []string
	walked := make(map[string]bool)
	for id := start; id != ""; id = succ[id] {
		if walked[id] {
			return names // cycle reached mid-walk
		}
		walked[id] = true
		order = append(order, id)
	}

	for _, name := range names {
		if !walked[name] {
			order = append(order, name)
		}
	}
	return order
}

// ProgramFromGraph rebuilds a Program from a pure node/edge set, the
// inverse of Derive for everything a node's data bag carries. Chain order
// recovered from the edges becomes the program's composition.
func ProgramFromGraph(g *VisualGraph) *bal.Program {
	p := &bal.Program{
		ID:       uuid.NewString(),
		Entities: make(map[string]*bal.Entity),
	}

	for _, n := range g.Nodes {
		if n.Kind != NodeBaleybot {
			continue
		}
		d := n.Data
		entity := &bal.Entity{
			Name:        n.ID,
			Goal:        d.Goal,
			Model:       d.Model,
			Tools:       append([]string(nil), d.Tools...),
			Output:      append([]bal.OutputField(nil), d.Output...),
			Temperature: d.Temperature,
			Reasoning:   d.Reasoning,
			Retries:     d.Retries,
			StopWhen:    d.StopWhen,
			CanRequest:  append([]string(nil), d.CanRequest...),
			History:     d.History,
			Trigger:     d.Trigger,
		}
		if entity.History == "" {
			entity.History = "inherit"
		}
		p.Names = append(p.Names, n.ID)
		p.Entities[n.ID] = entity
	}

	if order := ChainOrder(g); len(order) > 1 {
		chain := &bal.CompositionExpr{Kind: bal.CompositionChain}
		for _, name := range order {
			chain.Children = append(chain.Children, &bal.CompositionExpr{
				Kind: bal.CompositionRef,
				Name: name,
			})
		}
		p.Root = chain
	}

	return p
}

// ToText serializes a graph straight to BAL source.
func ToText(g *VisualGraph) string {
	return bal.Write(ProgramFromGraph(g))
}
