// Package governance classifies tool names into usage tiers.
//
// Every tool an entity may call is either usable immediately, usable only
// after a human approves the call, or forbidden outright. Classification
// layers a workspace policy over two built-in lists: tools that are never
// allowed regardless of policy, and tools that default to requiring
// approval unless the policy explicitly allows them.
package governance

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tier is the usage classification of a tool.
type Tier int

const (
	// Immediate tools run without human involvement.
	Immediate Tier = iota
	// RequiresApproval tools run only after a human approves the call.
	RequiresApproval
	// Forbidden tools never run.
	Forbidden
)

func (t Tier) String() string {
	switch t {
	case RequiresApproval:
		return "requires_approval"
	case Forbidden:
		return "forbidden"
	default:
		return "immediate"
	}
}

// Policy is a workspace's tool overrides. All lists are optional; a nil
// Policy means defaults apply unmodified. Policies are read-only snapshots
// passed in per call — this package never stores one.
type Policy struct {
	AllowedTools          []string `yaml:"allowedTools"`
	ForbiddenTools        []string `yaml:"forbiddenTools"`
	RequiresApprovalTools []string `yaml:"requiresApprovalTools"`
}

// LoadPolicy decodes a policy document from YAML.
func LoadPolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadPolicyFile reads and decodes a policy document from disk.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadPolicy(data)
}

// alwaysForbidden are tools no policy can enable: arbitrary code execution,
// shell access, raw file deletion, and credential access.
var alwaysForbidden = []string{
	"execute_code",
	"run_code",
	"shell",
	"run_command",
	"exec",
	"delete_file",
	"rm",
	"read_credentials",
	"access_secrets",
}

// defaultDangerous are tools that require approval unless the policy allows
// them: destructive database operations, payments, outbound communication,
// external calls, and system mutation.
var defaultDangerous = []string{
	"drop_table",
	"delete_records",
	"truncate_table",
	"send_payment",
	"charge_card",
	"transfer_funds",
	"send_email",
	"send_sms",
	"post_message",
	"http_request",
	"external_api",
	"call_webhook",
	"deploy",
	"modify_system",
	"write_system_config",
}

// Classify returns the tier for a tool under the given policy. Evaluation
// order, first match wins:
//
//  1. built-in forbidden list
//  2. policy forbidden list
//  3. policy requires-approval list
//  4. policy allowed list (clears the default-dangerous rule)
//  5. built-in default-dangerous list
//  6. Immediate
//
// Built-in lists match case-insensitively; policy lists match the original
// string exactly, since workspaces may register exact-case tool names.
func Classify(tool string, policy *Policy) Tier {
	lower := strings.ToLower(tool)

	for _, name := range alwaysForbidden {
		if lower == name {
			return Forbidden
		}
	}

	if policy != nil {
		for _, name := range policy.ForbiddenTools {
			if tool == name {
				return Forbidden
			}
		}
		for _, name := range policy.RequiresApprovalTools {
			if tool == name {
				return RequiresApproval
			}
		}
		for _, name := range policy.AllowedTools {
			if tool == name {
				return Immediate
			}
		}
	}

	for _, name := range defaultDangerous {
		if lower == name {
			return RequiresApproval
		}
	}

	return Immediate
}

// RequiresApprovalTools filters a tool list down to the ones that classify
// as RequiresApproval under the policy. Graph derivation uses this to fill
// a node's canRequest list.
func RequiresApprovalTools(tools []string, policy *Policy) []string {
	var out []string
	for _, tool := range tools {
		if Classify(tool, policy) == RequiresApproval {
			out = append(out, tool)
		}
	}
	return out
}
