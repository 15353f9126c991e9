// Package compose answers structural questions about a program's
// composition tree: which entity produces the final output, and which model
// or provider the program as a whole prefers. The execution runtime asks
// these questions before any model call is made.
package compose

import (
	"strings"

	"github.com/baleybay/gobal/bal"
)

// DefaultModel is returned by PreferredModel when no entity declares one.
const DefaultModel = "openai:gpt-4o-mini"

// FinalOutputEntity returns the entity whose output schema is the program's
// final output. The second return is false when no single entity can be
// determined statically: parallel compositions merge branch outputs,
// conditionals and loops depend on execution-time branching. That is a
// documented limitation of static resolution, not an error.
func FinalOutputEntity(p *bal.Program) (string, bool) {
	if p.Root == nil {
		if len(p.Names) == 1 {
			return p.Names[0], true
		}
		return "", false
	}
	return finalOf(p.Root)
}

func finalOf(expr *bal.CompositionExpr) (string, bool) {
	switch expr.Kind {
	case bal.CompositionRef:
		return expr.Name, true
	case bal.CompositionChain:
		// A chain's output is whatever its last element produces.
		if len(expr.Children) == 0 {
			return "", false
		}
		return finalOf(expr.Children[len(expr.Children)-1])
	default:
		return "", false
	}
}

// PreferredModel returns the first declared model in entity declaration
// order, or DefaultModel when no entity declares one.
func PreferredModel(p *bal.Program) string {
	for _, e := range p.EntitiesInOrder() {
		if e.Model != "" {
			return e.Model
		}
	}
	return DefaultModel
}

// PreferredProvider returns the single provider shared by every entity that
// declares a model, extracted from the "provider:" prefix. When zero or
// several distinct providers appear the result is ambiguous and the second
// return is false; the caller picks its own fallback. Model strings without
// a provider prefix contribute nothing.
func PreferredProvider(p *bal.Program) (string, bool) {
	providers := make(map[string]bool)
	var found string
	for _, e := range p.EntitiesInOrder() {
		provider, _, ok := strings.Cut(e.Model, ":")
		if !ok || provider == "" {
			continue
		}
		providers[provider] = true
		found = provider
	}
	if len(providers) == 1 {
		return found, true
	}
	return "", false
}
