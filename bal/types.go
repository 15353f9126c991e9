// Package bal provides the BAL parser, program model, and text writer.
package bal

// Program represents a parsed BAL source file: a set of named entities plus
// an optional top-level composition describing how they execute together.
// A Program is immutable once returned by the parser; edits go through
// copy-on-write helpers that produce a new Program.
type Program struct {
	// ID uniquely identifies this parse. Two parses of the same text get
	// distinct IDs; the parse cache returns the same Program (and ID) for
	// repeated lookups of identical text.
	ID string

	// Names lists entity names in declaration order.
	Names []string

	// Entities maps entity name to its definition.
	Entities map[string]*Entity

	// Root is the top-level composition (chain, parallel, when, or loop),
	// or nil when the program is a bare list of entities.
	Root *CompositionExpr

	// Source is the exact text this program was parsed from.
	Source string
}

// EntitiesInOrder returns the program's entities in declaration order.
func (p *Program) EntitiesInOrder() []*Entity {
	out := make([]*Entity, 0, len(p.Names))
	for _, name := range p.Names {
		if e, ok := p.Entities[name]; ok {
			out = append(out, e)
		}
	}
	return out
}

// WithEntity returns a copy of the program with one entity replaced.
// The receiver is untouched. An unknown name still returns a valid copy
// with the entity map unchanged.
func (p *Program) WithEntity(name string, e *Entity) *Program {
	next := &Program{
		ID:       p.ID,
		Names:    append([]string(nil), p.Names...),
		Entities: make(map[string]*Entity, len(p.Entities)),
		Root:     p.Root,
		Source:   p.Source,
	}
	for n, ent := range p.Entities {
		next.Entities[n] = ent
	}
	if _, ok := next.Entities[name]; ok {
		next.Entities[name] = e
	}
	return next
}

// Entity represents one agent definition in the DSL.
type Entity struct {
	Name        string
	Goal        string
	Model       string // "provider:model-id", empty when unset
	Tools       []string
	Output      []OutputField
	Temperature *float64
	Reasoning   string
	Retries     int
	StopWhen    string
	CanRequest  []string
	History     string // "none" or "inherit" (default)
	Trigger     *TriggerConfig
}

// Clone returns a deep copy of the entity.
func (e *Entity) Clone() *Entity {
	c := *e
	c.Tools = append([]string(nil), e.Tools...)
	c.Output = append([]OutputField(nil), e.Output...)
	c.CanRequest = append([]string(nil), e.CanRequest...)
	if e.Temperature != nil {
		t := *e.Temperature
		c.Temperature = &t
	}
	if e.Trigger != nil {
		tr := *e.Trigger
		c.Trigger = &tr
	}
	return &c
}

// OutputField is one field of an entity's output schema.
type OutputField struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // string, number, boolean, array, object
	Nullable bool   `json:"nullable,omitempty"`
}

// CompositionKind discriminates CompositionExpr.
type CompositionKind int

const (
	// CompositionRef is a bare reference to an entity by name.
	CompositionRef CompositionKind = iota
	// CompositionChain runs children sequentially, piping output forward.
	CompositionChain
	// CompositionParallel runs branches concurrently.
	CompositionParallel
	// CompositionConditional branches on a condition entity's result.
	CompositionConditional
	// CompositionLoop repeats a body until a condition or iteration cap.
	CompositionLoop
)

// CompositionExpr is the composition tree node. It is a flexible union:
// which fields are meaningful depends on Kind.
type CompositionExpr struct {
	Kind CompositionKind

	// Ref fields
	Name string

	// Chain fields
	Children []*CompositionExpr

	// Parallel fields
	Branches []ParallelBranch

	// Conditional fields
	Cond string
	Pass string
	Fail string

	// Loop fields
	Body  *CompositionExpr
	Until string
	Max   int
}

// ParallelBranch is one branch of a parallel composition.
type ParallelBranch struct {
	Label  string // optional
	Target string // entity name
}
