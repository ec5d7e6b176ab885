package topology

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// Node Types
// =============================================================================

// NodeType classifies a node in the detected agent execution graph.
// The detection service emits a closed vocabulary; anything outside it
// is mapped to NodeTypeUnknown rather than rejected.
type NodeType string

const (
	NodeTypeLoop               NodeType = "Loop"
	NodeTypeLLMCall            NodeType = "LLMCall"
	NodeTypeToolCall           NodeType = "ToolCall"
	NodeTypeSystemPrompt       NodeType = "SystemPrompt"
	NodeTypeHumanApproval      NodeType = "HumanApproval"
	NodeTypeAuthorizationCheck NodeType = "AuthorizationCheck"
	NodeTypeRateLimitConfig    NodeType = "RateLimitConfig"
	NodeTypeAuditLog           NodeType = "AuditLog"
	NodeTypeDelegation         NodeType = "Delegation"
	NodeTypeMemoryAccess       NodeType = "MemoryAccess"
	NodeTypeUnknown            NodeType = "Unknown"
)

// ParseNodeType maps a raw type string to a NodeType.
// Unknown strings resolve to NodeTypeUnknown, never an error.
func ParseNodeType(s string) NodeType {
	switch NodeType(s) {
	case NodeTypeLoop, NodeTypeLLMCall, NodeTypeToolCall, NodeTypeSystemPrompt,
		NodeTypeHumanApproval, NodeTypeAuthorizationCheck, NodeTypeRateLimitConfig,
		NodeTypeAuditLog, NodeTypeDelegation, NodeTypeMemoryAccess:
		return NodeType(s)
	default:
		return NodeTypeUnknown
	}
}

// UnmarshalJSON normalizes unknown type strings to NodeTypeUnknown.
func (t *NodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseNodeType(s)
	return nil
}

// Label returns the human-readable display name for the type.
func (t NodeType) Label() string {
	switch t {
	case NodeTypeLoop:
		return "Loop"
	case NodeTypeLLMCall:
		return "LLM Call"
	case NodeTypeToolCall:
		return "Tool Call"
	case NodeTypeSystemPrompt:
		return "System Prompt"
	case NodeTypeHumanApproval:
		return "Human Approval"
	case NodeTypeAuthorizationCheck:
		return "Authorization Check"
	case NodeTypeRateLimitConfig:
		return "Rate Limit Config"
	case NodeTypeAuditLog:
		return "Audit Log"
	case NodeTypeDelegation:
		return "Delegation"
	case NodeTypeMemoryAccess:
		return "Memory Access"
	default:
		return "Unknown"
	}
}

// Mergeable reports whether nodes of this type may be collapsed into a
// supernode when they share an identical outgoing-target set.
func (t NodeType) Mergeable() bool {
	switch t {
	case NodeTypeSystemPrompt, NodeTypeMemoryAccess, NodeTypeDelegation:
		return true
	default:
		return false
	}
}

// =============================================================================
// Risk Levels
// =============================================================================

// RiskLevel is the per-node risk classification assigned by the scanner.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "SAFE"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// ParseRiskLevel maps a raw risk string to a RiskLevel.
// Unrecognized values resolve to RiskSafe so a malformed report still renders.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(strings.ToUpper(s)) {
	case RiskSafe, RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(strings.ToUpper(s))
	default:
		return RiskSafe
	}
}

// UnmarshalJSON normalizes unknown risk strings to RiskSafe.
func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRiskLevel(s)
	return nil
}

// Color returns the hex fill color used for this risk level across all
// renderings (SVG snapshot, flowchart style directives, CLI output).
func (r RiskLevel) Color() string {
	switch r {
	case RiskCritical:
		return "#dc2626"
	case RiskHigh:
		return "#ea580c"
	case RiskMedium:
		return "#d97706"
	case RiskLow:
		return "#65a30d"
	case RiskSafe:
		return "#16a34a"
	default:
		return "#6b7280"
	}
}

// AtLeast reports whether r is at least as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.rank() >= other.rank()
}

func (r RiskLevel) rank() int {
	switch r {
	case RiskCritical:
		return 4
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// =============================================================================
// Edge Types
// =============================================================================

// EdgeType classifies the relationship an edge encodes.
type EdgeType string

const (
	// EdgeContains encodes structural nesting (a loop containing its body).
	// Containment is layout information, not a rendered line.
	EdgeContains EdgeType = "contains"
	// EdgeDataFlow marks data moving between nodes. The detector emits both
	// "data_flow" and the older "feeds_data_to" spelling for this relation.
	EdgeDataFlow EdgeType = "data_flow"
	// EdgeGuards marks a governance control protecting its target.
	EdgeGuards EdgeType = "guards"
	// EdgeDelegation marks a hand-off to a sub-agent.
	EdgeDelegation EdgeType = "delegation"
	// EdgeOther is the default arm for unrecognized relations.
	EdgeOther EdgeType = "other"
)

// ParseEdgeType maps a raw edge type string to an EdgeType.
// "feeds_data_to" is folded into EdgeDataFlow; unknown strings become EdgeOther.
func ParseEdgeType(s string) EdgeType {
	switch s {
	case "contains":
		return EdgeContains
	case "data_flow", "feeds_data_to":
		return EdgeDataFlow
	case "guards":
		return EdgeGuards
	case "delegation":
		return EdgeDelegation
	default:
		return EdgeOther
	}
}

// UnmarshalJSON normalizes edge type spellings and unknown values.
func (t *EdgeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseEdgeType(s)
	return nil
}

// =============================================================================
// Governance Controls
// =============================================================================

// Control identifies one of the four governance controls the scanner checks for.
type Control string

const (
	ControlHumanOversight Control = "human_oversight"
	ControlAuthorization  Control = "authorization"
	ControlAuditLogging   Control = "audit_logging"
	ControlRateLimiting   Control = "rate_limiting"
)

// Controls lists all governance controls in canonical order.
// The order determines ghost node ordering, so it must stay stable.
func Controls() []Control {
	return []Control{
		ControlHumanOversight,
		ControlAuthorization,
		ControlAuditLogging,
		ControlRateLimiting,
	}
}

// Label returns the human-readable name of the control.
func (c Control) Label() string {
	switch c {
	case ControlHumanOversight:
		return "Human Oversight"
	case ControlAuthorization:
		return "Authorization Checks"
	case ControlAuditLogging:
		return "Audit Logging"
	case ControlRateLimiting:
		return "Rate Limiting"
	default:
		return "Governance Control"
	}
}
