package bal

import (
	"strings"

	"github.com/robfig/cron/v3"
)

// TriggerType identifies how a baleybot run is started.
type TriggerType string

const (
	TriggerManual       TriggerType = "manual"
	TriggerWebhook      TriggerType = "webhook"
	TriggerSchedule     TriggerType = "schedule"
	TriggerBBCompletion TriggerType = "bb_completion"
)

// CompletionKind is which outcome of the source baleybot fires a
// bb_completion trigger.
type CompletionKind string

const (
	CompletionSuccess    CompletionKind = "success"
	CompletionFailure    CompletionKind = "failure"
	CompletionCompletion CompletionKind = "completion"
)

// TriggerConfig describes an entity's trigger. Which fields are meaningful
// depends on Type.
type TriggerConfig struct {
	Type   TriggerType    `json:"type"`
	Path   string         `json:"path,omitempty"`   // webhook
	Cron   string         `json:"cron,omitempty"`   // schedule
	Source string         `json:"source,omitempty"` // bb_completion
	On     CompletionKind `json:"on,omitempty"`     // bb_completion
}

// ParseTriggerString decodes the compact trigger encoding:
//
//	"manual"
//	"webhook" or "webhook:<path>"
//	"schedule:<cron>"
//	"bb_completion:<id>" or "bb_completion:<id>:<kind>"
//
// Unrecognized strings fall back to Manual rather than failing; trigger
// strings come from user-authored sources and a bad trigger should not make
// the whole program unparseable. A schedule whose cron expression does not
// parse falls back the same way.
func ParseTriggerString(s string) *TriggerConfig {
	s = strings.TrimSpace(s)

	switch {
	case s == "" || s == "manual":
		return &TriggerConfig{Type: TriggerManual}
	case s == "webhook":
		return &TriggerConfig{Type: TriggerWebhook}
	case strings.HasPrefix(s, "webhook:"):
		return &TriggerConfig{Type: TriggerWebhook, Path: strings.TrimPrefix(s, "webhook:")}
	case strings.HasPrefix(s, "schedule:"):
		expr := strings.TrimPrefix(s, "schedule:")
		if !validCron(expr) {
			return &TriggerConfig{Type: TriggerManual}
		}
		return &TriggerConfig{Type: TriggerSchedule, Cron: expr}
	case strings.HasPrefix(s, "bb_completion:"):
		rest := strings.TrimPrefix(s, "bb_completion:")
		if rest == "" {
			return &TriggerConfig{Type: TriggerManual}
		}
		source, kind := rest, CompletionCompletion
		if idx := strings.LastIndex(rest, ":"); idx > 0 {
			switch CompletionKind(rest[idx+1:]) {
			case CompletionSuccess, CompletionFailure, CompletionCompletion:
				source = rest[:idx]
				kind = CompletionKind(rest[idx+1:])
			}
		}
		return &TriggerConfig{Type: TriggerBBCompletion, Source: source, On: kind}
	default:
		return &TriggerConfig{Type: TriggerManual}
	}
}

// parseTriggerPairs decodes the structured trigger form,
// e.g. {"type":"schedule","cron":"0 9 * * *"}.
func parseTriggerPairs(pairs []propPair) *TriggerConfig {
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p.key] = p.val
	}

	switch TriggerType(m["type"]) {
	case TriggerWebhook:
		return &TriggerConfig{Type: TriggerWebhook, Path: m["path"]}
	case TriggerSchedule:
		if !validCron(m["cron"]) {
			return &TriggerConfig{Type: TriggerManual}
		}
		return &TriggerConfig{Type: TriggerSchedule, Cron: m["cron"]}
	case TriggerBBCompletion:
		if m["source"] == "" {
			return &TriggerConfig{Type: TriggerManual}
		}
		kind := CompletionKind(m["on"])
		switch kind {
		case CompletionSuccess, CompletionFailure, CompletionCompletion:
		default:
			kind = CompletionCompletion
		}
		return &TriggerConfig{Type: TriggerBBCompletion, Source: m["source"], On: kind}
	default:
		return &TriggerConfig{Type: TriggerManual}
	}
}

// String renders the compact encoding, the inverse of ParseTriggerString.
func (t *TriggerConfig) String() string {
	switch t.Type {
	case TriggerWebhook:
		if t.Path != "" {
			return "webhook:" + t.Path
		}
		return "webhook"
	case TriggerSchedule:
		return "schedule:" + t.Cron
	case TriggerBBCompletion:
		if t.On != "" && t.On != CompletionCompletion {
			return "bb_completion:" + t.Source + ":" + string(t.On)
		}
		return "bb_completion:" + t.Source
	default:
		return "manual"
	}
}

func validCron(expr string) bool {
	if strings.TrimSpace(expr) == "" {
		return false
	}
	_, err := cron.ParseStandard(expr)
	return err == nil
}
