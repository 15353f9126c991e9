// Package graph derives the visual node-and-edge form of a BAL program and
// serializes graphs back to source text.
//
// Derivation is a pipeline of independent steps: one node per entity,
// structural edges from the composition tree, spawn edges from entities
// that can create other baleybots, shared-data edges between entities using
// the same store, trigger edges from bb_completion triggers, and finally a
// left-to-right rank layout. Each step drops references to entities that do
// not exist rather than failing; a structurally valid program always yields
// a graph.
//
// Going the other way, ChainOrder and ProgramFromGraph rebuild a program
// from an edited node/edge set so diagram edits can be written back as BAL
// text.
package graph
