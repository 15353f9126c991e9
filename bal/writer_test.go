package bal

import (
	"strings"
	"testing"
)

func TestWriteEntityPropertyOrder(t *testing.T) {
	temp := 0.2
	prog := &Program{
		Names: []string{"bot"},
		Entities: map[string]*Entity{
			"bot": {
				Name:        "bot",
				Goal:        "Do it",
				Model:       "openai:gpt-4o",
				Tools:       []string{"web_search"},
				Output:      []OutputField{{Name: "n", Type: "number", Nullable: true}},
				Temperature: &temp,
				Reasoning:   "high",
				Retries:     2,
				StopWhen:    "done",
				CanRequest:  []string{"send_email"},
				History:     "none",
				Trigger:     &TriggerConfig{Type: TriggerWebhook},
			},
		},
	}

	got := Write(prog)
	want := `bot{"goal":"Do it","model":"openai:gpt-4o","tools":{"web_search"},` +
		`"output":{"n":"number?"},"temperature":0.2,"reasoning":"high","retries":2,` +
		`"stopWhen":"done","canRequest":{"send_email"},"history":"none","trigger":"webhook"}`
	if got != want {
		t.Errorf("Write() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteOmitsAbsentProperties(t *testing.T) {
	prog := &Program{
		Names:    []string{"a"},
		Entities: map[string]*Entity{"a": {Name: "a", Goal: "A", History: "inherit"}},
	}
	got := Write(prog)
	if got != `a{"goal":"A"}` {
		t.Errorf("Write() = %s", got)
	}
	if strings.Contains(got, "null") || strings.Contains(got, "undefined") {
		t.Errorf("Write() rendered a placeholder: %s", got)
	}
}

func TestWriteEscaping(t *testing.T) {
	prog := &Program{
		Names:    []string{"a"},
		Entities: map[string]*Entity{"a": {Name: "a", Goal: "say \"hi\"\nthen \\ stop", History: "inherit"}},
	}
	got := Write(prog)
	want := `a{"goal":"say \"hi\"\nthen \\ stop"}`
	if got != want {
		t.Errorf("Write() = %s, want %s", got, want)
	}

	// And it parses back to the same goal.
	back, err := ParseText(got)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if back.Entities["a"].Goal != prog.Entities["a"].Goal {
		t.Errorf("round-tripped goal = %q", back.Entities["a"].Goal)
	}
}

func TestWriteChainBlock(t *testing.T) {
	prog, err := ParseText(`a{"goal":"A"} b{"goal":"B"} c{"goal":"C"} chain{a b c}`)
	if err != nil {
		t.Fatalf("ParseText() returned error: %v", err)
	}
	got := Write(prog)
	if !strings.HasSuffix(got, "chain{a b c}") {
		t.Errorf("Write() = %s, want trailing chain block", got)
	}
}

func TestWriteChainFallbackDeclarationOrder(t *testing.T) {
	// No composition in the source: declaration order is the execution order.
	prog, err := ParseText(`b{"goal":"B"} a{"goal":"A"}`)
	if err != nil {
		t.Fatalf("ParseText() returned error: %v", err)
	}
	got := Write(prog)
	if !strings.HasSuffix(got, "chain{b a}") {
		t.Errorf("Write() = %s, want chain{b a}", got)
	}
}

func TestWriteNoChainForSingleEntity(t *testing.T) {
	prog, err := ParseText(`a{"goal":"A"}`)
	if err != nil {
		t.Fatalf("ParseText() returned error: %v", err)
	}
	if got := Write(prog); strings.Contains(got, "chain") {
		t.Errorf("Write() = %s, want no chain block", got)
	}
}

func TestWriteParallelComposition(t *testing.T) {
	src := `a{"goal":"A"} b{"goal":"B"} parallel{fast:a deep:b}`
	prog, err := ParseText(src)
	if err != nil {
		t.Fatalf("ParseText() returned error: %v", err)
	}
	got := Write(prog)
	if !strings.HasSuffix(got, "parallel{fast:a deep:b}") {
		t.Errorf("Write() = %s", got)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	src := `research{"goal":"Find sources","model":"openai:gpt-4o","tools":{"web_search","shared_data"}}
draft{"goal":"Write the draft","output":{"text":"string"}}
review{"goal":"Review and polish","retries":1}
chain{research draft review}`

	p1, err := ParseText(src)
	if err != nil {
		t.Fatalf("parse 1 failed: %v", err)
	}
	p2, err := ParseText(Write(p1))
	if err != nil {
		t.Fatalf("parse 2 failed: %v", err)
	}

	if len(p2.Names) != len(p1.Names) {
		t.Fatalf("entity count = %d, want %d", len(p2.Names), len(p1.Names))
	}
	for _, name := range p1.Names {
		e1, e2 := p1.Entities[name], p2.Entities[name]
		if e2 == nil {
			t.Fatalf("entity %q lost in round trip", name)
		}
		if e1.Goal != e2.Goal || e1.Model != e2.Model {
			t.Errorf("entity %q changed: %+v vs %+v", name, e1, e2)
		}
		if strings.Join(e1.Tools, ",") != strings.Join(e2.Tools, ",") {
			t.Errorf("entity %q tools changed: %v vs %v", name, e1.Tools, e2.Tools)
		}
	}
	if p2.Root == nil || p2.Root.Kind != CompositionChain {
		t.Fatalf("Root = %+v", p2.Root)
	}
	for i, c := range p1.Root.Children {
		if p2.Root.Children[i].Name != c.Name {
			t.Errorf("chain order changed at %d: %q vs %q", i, p2.Root.Children[i].Name, c.Name)
		}
	}
}

func TestApplyNodeEdit(t *testing.T) {
	src := `a{"goal":"A"} b{"goal":"B"} chain{a b}`
	prog, err := ParseText(src)
	if err != nil {
		t.Fatalf("ParseText() returned error: %v", err)
	}

	got := ApplyNodeEdit(prog, "a", map[string]any{
		"goal":        "A improved",
		"model":       "anthropic:claude-sonnet-4",
		"temperature": 0.3,
		"retries":     2,
	})

	back, err := ParseText(got)
	if err != nil {
		t.Fatalf("edited text failed to parse: %v", err)
	}
	a := back.Entities["a"]
	if a.Goal != "A improved" {
		t.Errorf("Goal = %q", a.Goal)
	}
	if a.Model != "anthropic:claude-sonnet-4" {
		t.Errorf("Model = %q", a.Model)
	}
	if a.Temperature == nil || *a.Temperature != 0.3 {
		t.Errorf("Temperature = %v", a.Temperature)
	}
	if a.Retries != 2 {
		t.Errorf("Retries = %d", a.Retries)
	}

	// The source program is untouched.
	if prog.Entities["a"].Goal != "A" {
		t.Errorf("original mutated: %q", prog.Entities["a"].Goal)
	}
	// The untouched entity survives.
	if back.Entities["b"].Goal != "B" {
		t.Errorf("entity b changed: %q", back.Entities["b"].Goal)
	}
}

func TestApplyNodeEditUnknownNode(t *testing.T) {
	prog, err := ParseText(`a{"goal":"A"}`)
	if err != nil {
		t.Fatalf("ParseText() returned error: %v", err)
	}

	got := ApplyNodeEdit(prog, "ghost", map[string]any{"goal": "nope"})
	if got != Write(prog) {
		t.Errorf("unknown node edit changed output: %s", got)
	}
}
