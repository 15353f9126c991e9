package gobal

import (
	"log/slog"

	"github.com/baleybay/gobal/bal"
	"github.com/baleybay/gobal/cache"
	"github.com/baleybay/gobal/compose"
	"github.com/baleybay/gobal/governance"
	"github.com/baleybay/gobal/graph"
)

// Compiler is the front door for UI and runtime callers: it parses through
// the cache, derives graphs, serializes them back, and answers composition
// queries. Every method except Parse returns a result value instead of an
// error — a malformed program degrades to an empty graph with messages, it
// never takes the host down.
type Compiler struct {
	cache   *cache.Cache
	deriver graph.Deriver
	logger  *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithCache replaces the default parse cache.
func WithCache(c *cache.Cache) Option {
	return func(comp *Compiler) { comp.cache = c }
}

// WithPolicy sets the workspace's tool-governance policy snapshot.
func WithPolicy(p *governance.Policy) Option {
	return func(comp *Compiler) { comp.deriver.Policy = p }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(comp *Compiler) {
		comp.logger = l
		comp.deriver.Logger = l
	}
}

// NewCompiler creates a Compiler with a default-sized parse cache.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		cache:  cache.New(cache.DefaultCapacity, cache.DefaultTTL),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parse returns the program for text, from cache when possible. This is the
// one entry point that passes the parser's syntax error through to the
// caller.
func (c *Compiler) Parse(text string) (*bal.Program, error) {
	return c.cache.GetOrParse(text)
}

// ClearCache empties the parse cache.
func (c *Compiler) ClearCache() {
	c.cache.Clear()
}

// DeriveResult is what diagram renderers consume: a well-formed (possibly
// empty) graph plus any error messages collected on the way.
type DeriveResult struct {
	Graph  *graph.VisualGraph `json:"graph"`
	Errors []string           `json:"errors,omitempty"`
}

// DeriveGraph parses text and derives its visual graph. Parse failures
// come back as an empty graph with the stringified syntax error, so the
// caller always has something to render.
func (c *Compiler) DeriveGraph(text string) DeriveResult {
	prog, err := c.Parse(text)
	if err != nil {
		c.logger.Warn("derive: parse failed", "error", err)
		return DeriveResult{Graph: graph.Empty(), Errors: []string{err.Error()}}
	}
	return DeriveResult{Graph: c.deriver.Derive(prog)}
}

// ToText re-serializes a program as BAL source.
func (c *Compiler) ToText(prog *bal.Program) string {
	return bal.Write(prog)
}

// ApplyNodeEdit parses text, replaces fields on one entity, and returns the
// re-serialized source. The cached program is not mutated.
func (c *Compiler) ApplyNodeEdit(text, nodeID string, changes map[string]any) (string, error) {
	prog, err := c.Parse(text)
	if err != nil {
		return "", err
	}
	return bal.ApplyNodeEdit(prog, nodeID, changes), nil
}

// FinalOutputEntity reports which entity's output schema is the program's
// final output, when that is statically determinable.
func (c *Compiler) FinalOutputEntity(prog *bal.Program) (string, bool) {
	return compose.FinalOutputEntity(prog)
}

// PreferredModel reports the program's model, falling back to the platform
// default when no entity declares one.
func (c *Compiler) PreferredModel(prog *bal.Program) string {
	return compose.PreferredModel(prog)
}

// PreferredProvider reports the single provider shared by the program's
// entities, when unambiguous.
func (c *Compiler) PreferredProvider(prog *bal.Program) (string, bool) {
	return compose.PreferredProvider(prog)
}
