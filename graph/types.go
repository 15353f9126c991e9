package graph

import "github.com/baleybay/gobal/bal"

// NodeKind is the diagram node type.
type NodeKind string

const (
	NodeBaleybot NodeKind = "baleybot"
	NodeTrigger  NodeKind = "trigger"
	NodeOutput   NodeKind = "output"
)

// EdgeKind is the diagram edge type.
type EdgeKind string

const (
	EdgeChain           EdgeKind = "chain"
	EdgeParallel        EdgeKind = "parallel"
	EdgeConditionalPass EdgeKind = "conditional_pass"
	EdgeConditionalFail EdgeKind = "conditional_fail"
	EdgeSpawn           EdgeKind = "spawn"
	EdgeSharedData      EdgeKind = "shared_data"
	EdgeTrigger         EdgeKind = "trigger"
)

// Position is a node's diagram coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData mirrors the entity fields a diagram renderer needs, plus the
// derived canRequest list.
type NodeData struct {
	Name        string             `json:"name"`
	Goal        string             `json:"goal,omitempty"`
	Model       string             `json:"model,omitempty"`
	Tools       []string           `json:"tools,omitempty"`
	Output      []bal.OutputField  `json:"output,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
	Reasoning   string             `json:"reasoning,omitempty"`
	Retries     int                `json:"retries,omitempty"`
	StopWhen    string             `json:"stopWhen,omitempty"`
	History     string             `json:"history,omitempty"`
	CanRequest  []string           `json:"canRequest,omitempty"`
	Trigger     *bal.TriggerConfig `json:"trigger,omitempty"`
}

// VisualNode is one diagram node. Its ID equals the entity name.
type VisualNode struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"type"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

// VisualEdge is one diagram edge. Its ID is deterministic for a given
// (kind, source, target, label), so re-deriving the same program yields
// the same edge set.
type VisualEdge struct {
	ID       string   `json:"id"`
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Kind     EdgeKind `json:"type"`
	Label    string   `json:"label,omitempty"`
	Animated bool     `json:"animated,omitempty"`
}

// VisualGraph is the node-and-edge representation of a program.
type VisualGraph struct {
	Nodes []VisualNode `json:"nodes"`
	Edges []VisualEdge `json:"edges"`
}

// Empty returns a well-formed graph with zero nodes and edges. UI callers
// always receive non-nil slices.
func Empty() *VisualGraph {
	return &VisualGraph{Nodes: []VisualNode{}, Edges: []VisualEdge{}}
}

func edgeID(kind EdgeKind, source, target, label string) string {
	id := string(kind) + ":" + source + "->" + target
	if label != "" {
		id += ":" + label
	}
	return id
}
