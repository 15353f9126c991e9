package graph

import (
	"log/slog"

	"github.com/baleybay/gobal/bal"
	"github.com/baleybay/gobal/governance"
)

// SpawnTool is the tool that lets a baleybot create other baleybots at
// runtime. An entity carrying it becomes a spawn hub in the diagram.
const SpawnTool = "spawn_baleybot"

// SharedDataTools are the tools that read or write a store shared between
// baleybots. Entities using the same one are connected in the diagram.
var SharedDataTools = []string{"shared_data", "data_store", "baleybase"}

// Deriver turns programs into visual graphs. The policy snapshot feeds each
// node's canRequest list; both fields may be left zero.
type Deriver struct {
	Policy *governance.Policy
	Logger *slog.Logger
}

// Derive builds the visual graph for a program: one node per entity,
// structural edges from the composition tree, relationship edges inferred
// from tool usage and triggers, and a layout. It never fails for a parsed
// program — layout trouble degrades to a linear placement.
func (d *Deriver) Derive(p *bal.Program) *VisualGraph {
	g := Empty()

	exists := make(map[string]bool, len(p.Names))
	for _, e := range p.EntitiesInOrder() {
		exists[e.Name] = true
		g.Nodes = append(g.Nodes, VisualNode{
			ID:   e.Name,
			Kind: NodeBaleybot,
			Data: nodeData(e, d.Policy),
		})
	}

	seen := make(map[string]bool)
	add := func(kind EdgeKind, source, target, label string, animated bool) {
		if !exists[source] || !exists[target] || source == target {
			return
		}
		id := edgeID(kind, source, target, label)
		if seen[id] {
			return
		}
		seen[id] = true
		g.Edges = append(g.Edges, VisualEdge{
			ID:       id,
			Source:   source,
			Target:   target,
			Kind:     kind,
			Label:    label,
			Animated: animated,
		})
	}

	d.structuralEdges(p, add)
	d.spawnEdges(p, add)
	d.sharedDataEdges(p, add)
	d.triggerEdges(p, add)

	d.layout(g)
	return g
}

type addEdge func(kind EdgeKind, source, target, label string, animated bool)

// structuralEdges reads the composition tree. Chain compositions link each
// adjacent pair; parallel compositions link the first branch to every other
// branch; conditionals link the condition entity to its pass and fail
// targets. References to entities that do not exist are dropped silently.
func (d *Deriver) structuralEdges(p *bal.Program, add addEdge) {
	root := p.Root
	if root == nil {
		return
	}

	switch root.Kind {
	case bal.CompositionChain:
		for i := 0; i+1 < len(root.Children); i++ {
			add(EdgeChain, root.Children[i].Name, root.Children[i+1].Name, "", true)
		}
	case bal.CompositionParallel:
		if len(root.Branches) < 2 {
			return
		}
		first := root.Branches[0].Target
		for _, branch := range root.Branches[1:] {
			add(EdgeParallel, first, branch.Target, branch.Label, false)
		}
	case bal.CompositionConditional:
		add(EdgeConditionalPass, root.Cond, root.Pass, "", false)
		add(EdgeConditionalFail, root.Cond, root.Fail, "", false)
	case bal.CompositionLoop:
		// Loops render as a lone body node; the back-edge is a renderer
		// overlay, not part of the derived edge set.
	}
}

// spawnEdges fans out from every entity holding the spawn tool to every
// other node. Multiple hubs each get their own full fan-out.
func (d *Deriver) spawnEdges(p *bal.Program, add addEdge) {
	for _, e := range p.EntitiesInOrder() {
		if !hasTool(e, SpawnTool) {
			continue
		}
		for _, other := range p.Names {
			if other != e.Name {
				add(EdgeSpawn, e.Name, other, "", true)
			}
		}
	}
}

// sharedDataEdges connects entities that use the same data-sharing tool.
// Two users get a single edge. Three or more get a star from the first user
// in declaration order, which keeps the edge count at n-1 where a full mesh
// would need n*(n-1)/2 — data-sharing tools are common enough that a mesh
// degrades large graphs.
func (d *Deriver) sharedDataEdges(p *bal.Program, add addEdge) {
	for _, tool := range SharedDataTools {
		var users []string
		for _, e := range p.EntitiesInOrder() {
			if hasTool(e, tool) {
				users = append(users, e.Name)
			}
		}
		if len(users) < 2 {
			continue
		}
		hub := users[0]
		for _, other := range users[1:] {
			add(EdgeSharedData, hub, other, tool, false)
		}
	}
}

// triggerEdges links a bb_completion trigger's source to the triggered
// entity when the source is a node in this program.
func (d *Deriver) triggerEdges(p *bal.Program, add addEdge) {
	for _, e := range p.EntitiesInOrder() {
		t := e.Trigger
		if t == nil || t.Type != bal.TriggerBBCompletion {
			continue
		}
		add(EdgeTrigger, t.Source, e.Name, "triggers", true)
	}
}

func nodeData(e *bal.Entity, policy *governance.Policy) NodeData {
	canRequest := append([]string(nil), e.CanRequest...)
	declared := make(map[string]bool, len(canRequest))
	for _, t := range canRequest {
		declared[t] = true
	}
	for _, t := range governance.RequiresApprovalTools(e.Tools, policy) {
		if !declared[t] {
			canRequest = append(canRequest, t)
		}
	}

	return NodeData{
		Name:        e.Name,
		Goal:        e.Goal,
		Model:       e.Model,
		Tools:       append([]string(nil), e.Tools...),
		Output:      append([]bal.OutputField(nil), e.Output...),
		Temperature: e.Temperature,
		Reasoning:   e.Reasoning,
		Retries:     e.Retries,
		StopWhen:    e.StopWhen,
		History:     e.History,
		CanRequest:  canRequest,
		Trigger:     e.Trigger,
	}
}

func hasTool(e *bal.Entity, tool string) bool {
	for _, t := range e.Tools {
		if t == tool {
			return true
		}
	}
	return false
}

func (d *Deriver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
