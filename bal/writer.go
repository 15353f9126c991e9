package bal

import (
	"log/slog"
	"strconv"
	"strings"
)

// Write serializes a program back to BAL text. Entities are emitted in
// declaration order with their properties in a fixed order, followed by the
// program's composition block. The output is not guaranteed byte-identical
// to the text the program was parsed from, only syntactically valid and
// semantically equivalent.
func Write(p *Program) string {
	var blocks []string

	for _, e := range p.EntitiesInOrder() {
		blocks = append(blocks, writeEntity(e))
	}

	if comp := writeComposition(p); comp != "" {
		blocks = append(blocks, comp)
	}

	return strings.Join(blocks, "\n")
}

// writeEntity renders one entity block. Properties are emitted only when
// present, in the order goal, model, tools, output, temperature, reasoning,
// retries, stopWhen, canRequest, history, trigger.
func writeEntity(e *Entity) string {
	var props []string

	if e.Goal != "" {
		props = append(props, `"goal":"`+escape(e.Goal)+`"`)
	}
	if e.Model != "" {
		props = append(props, `"model":"`+escape(e.Model)+`"`)
	}
	if len(e.Tools) > 0 {
		props = append(props, `"tools":`+writeSet(e.Tools))
	}
	if len(e.Output) > 0 {
		fields := make([]string, 0, len(e.Output))
		for _, f := range e.Output {
			typ := f.Type
			if f.Nullable {
				typ += "?"
			}
			fields = append(fields, `"`+escape(f.Name)+`":"`+typ+`"`)
		}
		props = append(props, `"output":{`+strings.Join(fields, ",")+`}`)
	}
	if e.Temperature != nil {
		props = append(props, `"temperature":`+strconv.FormatFloat(*e.Temperature, 'g', -1, 64))
	}
	if e.Reasoning != "" {
		props = append(props, `"reasoning":"`+escape(e.Reasoning)+`"`)
	}
	if e.Retries > 0 {
		props = append(props, `"retries":`+strconv.Itoa(e.Retries))
	}
	if e.StopWhen != "" {
		props = append(props, `"stopWhen":"`+escape(e.StopWhen)+`"`)
	}
	if len(e.CanRequest) > 0 {
		props = append(props, `"canRequest":`+writeSet(e.CanRequest))
	}
	if e.History == "none" {
		props = append(props, `"history":"none"`)
	}
	if e.Trigger != nil && e.Trigger.Type != TriggerManual {
		props = append(props, `"trigger":"`+escape(e.Trigger.String())+`"`)
	}

	return e.Name + "{" + strings.Join(props, ",") + "}"
}

// writeComposition renders the program's composition block. With no root a
// chain block over the declaration order is emitted when more than one
// entity exists, since a bare multi-entity program still executes in
// declaration order.
func writeComposition(p *Program) string {
	if p.Root == nil {
		if len(p.Names) < 2 {
			return ""
		}
		return "chain{" + strings.Join(p.Names, " ") + "}"
	}

	switch p.Root.Kind {
	case CompositionChain:
		names := make([]string, 0, len(p.Root.Children))
		for _, c := range p.Root.Children {
			names = append(names, c.Name)
		}
		return "chain{" + strings.Join(names, " ") + "}"
	case CompositionParallel:
		parts := make([]string, 0, len(p.Root.Branches))
		for _, b := range p.Root.Branches {
			if b.Label != "" {
				parts = append(parts, b.Label+":"+b.Target)
			} else {
				parts = append(parts, b.Target)
			}
		}
		return "parallel{" + strings.Join(parts, " ") + "}"
	case CompositionConditional:
		return "when{" + p.Root.Cond + " " + p.Root.Pass + " " + p.Root.Fail + "}"
	case CompositionLoop:
		s := "loop{" + p.Root.Body.Name
		if p.Root.Until != "" {
			s += ` until:"` + escape(p.Root.Until) + `"`
		}
		if p.Root.Max > 0 {
			s += " max:" + strconv.Itoa(p.Root.Max)
		}
		return s + "}"
	case CompositionRef:
		return ""
	}
	return ""
}

func writeSet(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		quoted = append(quoted, `"`+escape(it)+`"`)
	}
	return "{" + strings.Join(quoted, ",") + "}"
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}

// ApplyNodeEdit replaces fields on one entity and re-serializes the whole
// program. The input program is never mutated; the edit happens on a copy.
// Editing a node that does not exist logs a warning and returns the
// unchanged program's serialization — the caller's UI should have prevented
// the edit, and a stale edit must not corrupt the source.
//
// Editable fields: goal, model, tools, output, temperature, reasoning,
// retries, stopWhen.
func ApplyNodeEdit(p *Program, nodeID string, changes map[string]any) string {
	entity, ok := p.Entities[nodeID]
	if !ok {
		slog.Warn("node edit for unknown entity", "node", nodeID, "program", p.ID)
		return Write(p)
	}

	edited := entity.Clone()
	for field, value := range changes {
		applyChange(edited, field, value)
	}

	return Write(p.WithEntity(nodeID, edited))
}

func applyChange(e *Entity, field string, value any) {
	switch field {
	case "goal":
		if v, ok := value.(string); ok {
			e.Goal = v
		}
	case "model":
		if v, ok := value.(string); ok {
			e.Model = v
		}
	case "tools":
		if v := toStringSlice(value); v != nil {
			e.Tools = v
		}
	case "output":
		switch v := value.(type) {
		case []OutputField:
			e.Output = append([]OutputField(nil), v...)
		case map[string]string:
			fields := make([]OutputField, 0, len(v))
			for name, typ := range v {
				nullable := strings.HasSuffix(typ, "?")
				fields = append(fields, OutputField{
					Name:     name,
					Type:     strings.TrimSuffix(typ, "?"),
					Nullable: nullable,
				})
			}
			e.Output = fields
		}
	case "temperature":
		switch v := value.(type) {
		case float64:
			e.Temperature = &v
		case *float64:
			e.Temperature = v
		}
	case "reasoning":
		if v, ok := value.(string); ok {
			e.Reasoning = v
		}
	case "retries":
		switch v := value.(type) {
		case int:
			e.Retries = v
		case float64:
			e.Retries = int(v)
		}
	case "stopWhen":
		if v, ok := value.(string); ok {
			e.StopWhen = v
		}
	default:
		slog.Warn("node edit for unknown field", "field", field)
	}
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
