// Package gobal keeps BAL text and its visual graph form in sync.
//
// BAL describes teams of AI agents ("baleybots") as entity blocks plus a
// composition; the same program can be edited as text or as a node-and-edge
// diagram. This module is the compiler between the two:
//
//   - bal parses source into an immutable Program and writes Programs back
//     to source
//   - graph derives diagram nodes, inferred edges, and a layout from a
//     Program, and rebuilds Programs from edited graphs
//   - compose answers structural questions (final output entity, preferred
//     model and provider) the execution runtime needs
//   - cache memoizes parses by content hash with bounded size and expiry
//   - governance classifies tool names into immediate / requires-approval /
//     forbidden tiers under a workspace policy
//
// # Quick Start
//
//	c := gobal.NewCompiler(gobal.WithPolicy(policy))
//
//	res := c.DeriveGraph(src)
//	if len(res.Errors) > 0 {
//	    // malformed source: res.Graph is empty but well-formed
//	}
//	for _, node := range res.Graph.Nodes {
//	    fmt.Println(node.ID, node.Position.X, node.Position.Y)
//	}
//
// Round-tripping an edited diagram back to text:
//
//	src := graph.ToText(edited)
//
// Editing one node's fields without touching the diagram:
//
//	src, err := c.ApplyNodeEdit(src, "researcher", map[string]any{
//	    "goal": "Research the topic in depth",
//	})
//
// Model calls, storage, and serving are deliberately outside this module;
// it is synchronous, in-memory, and CPU-bound throughout.
package gobal
