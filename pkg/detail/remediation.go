package detail

import "github.com/inkog-io/dashboard-sub000/pkg/topology"

// Guide is a static remediation recipe for a missing governance control.
type Guide struct {
	Title   string   `json:"title"`
	Steps   []string `json:"steps"`
	Example string   `json:"example"`
}

var guides = map[topology.Control]Guide{
	topology.ControlHumanOversight: {
		Title: "Add human oversight",
		Steps: []string{
			"Identify the agent actions with irreversible side effects (payments, deletions, external messages).",
			"Gate those actions behind an approval step that pauses execution until a human confirms.",
			"Log every approval decision with the approver's identity.",
		},
		Example: "tool.require_approval(approvers=[\"security-team\"], timeout=\"1h\")",
	},
	topology.ControlAuthorization: {
		Title: "Add authorization checks",
		Steps: []string{
			"Attach an identity to every agent invocation rather than running under a shared service account.",
			"Check permissions at each tool boundary, not only at the entry point.",
			"Deny by default when the caller's scope cannot be established.",
		},
		Example: "if !authz.Allowed(ctx, caller, \"tool:search\") { return ErrForbidden }",
	},
	topology.ControlAuditLogging: {
		Title: "Add audit logging",
		Steps: []string{
			"Record every tool call with its arguments, caller, and timestamp in an append-only store.",
			"Include the model's stated reasoning alongside the action taken.",
			"Retain logs long enough to reconstruct any past agent session.",
		},
		Example: "audit.Record(ctx, event.ToolCall(name, args, caller))",
	},
	topology.ControlRateLimiting: {
		Title: "Add rate limiting",
		Steps: []string{
			"Cap the number of tool calls and LLM invocations per agent session.",
			"Bound loop iterations with an explicit termination budget.",
			"Alert when an agent repeatedly hits its limits instead of silently throttling.",
		},
		Example: "limiter := rate.NewLimiter(rate.Every(time.Second), 10)",
	},
}

// genericGuide is returned for control types the table does not know, so
// the detail panel always has something to show.
var genericGuide = Guide{
	Title: "Add governance controls",
	Steps: []string{
		"Review the agent's tool surface for actions that need oversight, authorization, auditing, or rate limits.",
		"Introduce the missing control at the narrowest boundary that covers the risk.",
		"Verify the control fires by re-running the scan.",
	},
	Example: "// consult your framework's governance middleware",
}

// GuideFor looks up the remediation guide for a missing control. Unknown
// controls get the generic guide rather than an empty result.
func GuideFor(c topology.Control) Guide {
	if g, ok := guides[c]; ok {
		return g
	}
	return genericGuide
}
