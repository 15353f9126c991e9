package gobal

import (
	"encoding/json"
	"testing"

	"github.com/baleybay/gobal/bal"
	"github.com/baleybay/gobal/governance"
	"github.com/baleybay/gobal/graph"
)

func TestDeriveGraphChainScenario(t *testing.T) {
	c := NewCompiler()

	res := c.DeriveGraph(`a{"goal":"A"} b{"goal":"B"} c{"goal":"C"} chain{a b c}`)
	if len(res.Errors) != 0 {
		t.Fatalf("Errors = %v", res.Errors)
	}
	if len(res.Graph.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(res.Graph.Nodes))
	}
	var chains int
	for _, e := range res.Graph.Edges {
		if e.Kind == graph.EdgeChain {
			chains++
		}
	}
	if chains != 2 {
		t.Errorf("chain edges = %d, want 2", chains)
	}
}

func TestDeriveGraphMalformed(t *testing.T) {
	c := NewCompiler()

	res := c.DeriveGraph(`this is not valid {{{`)
	if res.Graph == nil {
		t.Fatal("Graph is nil, want empty graph")
	}
	if len(res.Graph.Nodes) != 0 || len(res.Graph.Edges) != 0 {
		t.Errorf("graph = %d nodes, %d edges, want empty", len(res.Graph.Nodes), len(res.Graph.Edges))
	}
	if len(res.Errors) == 0 {
		t.Error("Errors is empty, want the syntax error")
	}
}

func TestDeriveGraphMalformedJSONShape(t *testing.T) {
	c := NewCompiler()

	data, err := json.Marshal(c.DeriveGraph(`{{{`))
	if err != nil {
		t.Fatalf("Marshal() returned error: %v", err)
	}
	var decoded struct {
		Graph struct {
			Nodes []json.RawMessage `json:"nodes"`
			Edges []json.RawMessage `json:"edges"`
		} `json:"graph"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() returned error: %v", err)
	}
	if decoded.Graph.Nodes == nil || decoded.Graph.Edges == nil {
		t.Errorf("empty graph marshals with null slices: %s", data)
	}
	if len(decoded.Errors) == 0 {
		t.Errorf("errors missing from payload: %s", data)
	}
}

func TestParseUsesCache(t *testing.T) {
	c := NewCompiler()

	p1, err := c.Parse(`a{"goal":"A"}`)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	p2, err := c.Parse(`a{"goal":"A"}`)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if p1 != p2 {
		t.Error("repeat Parse() missed the cache")
	}

	c.ClearCache()
	p3, err := c.Parse(`a{"goal":"A"}`)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}
	if p3 == p1 {
		t.Error("ClearCache() did not drop the entry")
	}
}

func TestFullRoundTrip(t *testing.T) {
	src := `research{"goal":"Find sources","model":"openai:gpt-4o","tools":{"web_search"}}
draft{"goal":"Write the draft"}
chain{research draft}`

	c := NewCompiler()
	res := c.DeriveGraph(src)
	if len(res.Errors) != 0 {
		t.Fatalf("Errors = %v", res.Errors)
	}

	// Graph back to text, text back to a program.
	back, err := bal.ParseText(graph.ToText(res.Graph))
	if err != nil {
		t.Fatalf("round-tripped text failed to parse: %v", err)
	}

	orig, _ := c.Parse(src)
	if len(back.Names) != len(orig.Names) {
		t.Fatalf("entity count = %d, want %d", len(back.Names), len(orig.Names))
	}
	for _, name := range orig.Names {
		e1, e2 := orig.Entities[name], back.Entities[name]
		if e2 == nil {
			t.Fatalf("entity %q lost", name)
		}
		if e1.Goal != e2.Goal || e1.Model != e2.Model || len(e1.Tools) != len(e2.Tools) {
			t.Errorf("entity %q = %+v, want %+v", name, e2, e1)
		}
	}
	if name, ok := c.FinalOutputEntity(back); !ok || name != "draft" {
		t.Errorf("FinalOutputEntity() = (%q, %v), want (draft, true)", name, ok)
	}
}

func TestApplyNodeEditThroughCompiler(t *testing.T) {
	c := NewCompiler()
	src := `a{"goal":"A"} b{"goal":"B"} chain{a b}`

	out, err := c.ApplyNodeEdit(src, "b", map[string]any{"goal": "B edited"})
	if err != nil {
		t.Fatalf("ApplyNodeEdit() returned error: %v", err)
	}
	back, err := bal.ParseText(out)
	if err != nil {
		t.Fatalf("edited text failed to parse: %v", err)
	}
	if back.Entities["b"].Goal != "B edited" {
		t.Errorf("Goal = %q", back.Entities["b"].Goal)
	}

	// The cached program was not mutated.
	cached, _ := c.Parse(src)
	if cached.Entities["b"].Goal != "B" {
		t.Errorf("cached program mutated: %q", cached.Entities["b"].Goal)
	}
}

func TestApplyNodeEditMalformedSource(t *testing.T) {
	c := NewCompiler()
	if _, err := c.ApplyNodeEdit(`{{{`, "a", nil); err == nil {
		t.Error("expected syntax error")
	}
}

func TestCompilerResolverPassThroughs(t *testing.T) {
	c := NewCompiler()
	prog, err := c.Parse(`a{"goal":"A","model":"openai:gpt-4o"} b{"goal":"B"} chain{a b}`)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}

	if got := c.PreferredModel(prog); got != "openai:gpt-4o" {
		t.Errorf("PreferredModel() = %q", got)
	}
	if provider, ok := c.PreferredProvider(prog); !ok || provider != "openai" {
		t.Errorf("PreferredProvider() = (%q, %v)", provider, ok)
	}
	if name, ok := c.FinalOutputEntity(prog); !ok || name != "b" {
		t.Errorf("FinalOutputEntity() = (%q, %v)", name, ok)
	}
}

func TestCompilerPolicyFlowsToGraph(t *testing.T) {
	policy := &governance.Policy{RequiresApprovalTools: []string{"web_search"}}
	c := NewCompiler(WithPolicy(policy))

	res := c.DeriveGraph(`a{"goal":"A","tools":{"web_search"}}`)
	if len(res.Graph.Nodes) != 1 {
		t.Fatalf("nodes = %d", len(res.Graph.Nodes))
	}
	got := res.Graph.Nodes[0].Data.CanRequest
	if len(got) != 1 || got[0] != "web_search" {
		t.Errorf("CanRequest = %v, want policy-required tool", got)
	}
}
