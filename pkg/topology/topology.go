package topology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Topology - Raw Scanner Output
// =============================================================================

// Location is a source position recorded by the static analyzer.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Node is a vertex in the detected agent execution graph.
// Nodes are immutable once received; the pipeline never mutates the raw
// topology, it derives new structures from it.
type Node struct {
	ID          string         `json:"id"`
	Type        NodeType       `json:"type"`
	Label       string         `json:"label"`
	Data        map[string]any `json:"data,omitempty"`
	Location    *Location      `json:"location,omitempty"`
	RiskLevel   RiskLevel      `json:"risk_level"`
	RiskReasons []string       `json:"risk_reasons,omitempty"`
}

// Edge is a directed relation between two nodes.
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Type  EdgeType `json:"type"`
	Label string   `json:"label,omitempty"`
}

// GovernanceStatus carries the scanner's verdict on the four governance
// controls, plus its free-form list of missing control names.
type GovernanceStatus struct {
	HasHumanOversight bool     `json:"has_human_oversight"`
	HasAuthChecks     bool     `json:"has_auth_checks"`
	HasAuditLogging   bool     `json:"has_audit_logging"`
	HasRateLimiting   bool     `json:"has_rate_limiting"`
	MissingControls   []string `json:"missing_controls,omitempty"`
}

// Missing returns the absent controls in canonical order, derived from the
// boolean flags. The scanner's missing_controls list is informational only;
// the flags are authoritative.
func (g GovernanceStatus) Missing() []Control {
	var missing []Control
	for _, c := range Controls() {
		if !g.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Has reports whether the given control was detected.
func (g GovernanceStatus) Has(c Control) bool {
	switch c {
	case ControlHumanOversight:
		return g.HasHumanOversight
	case ControlAuthorization:
		return g.HasAuthChecks
	case ControlAuditLogging:
		return g.HasAuditLogging
	case ControlRateLimiting:
		return g.HasRateLimiting
	default:
		return true
	}
}

// Metadata is the scanner's summary header for a topology.
type Metadata struct {
	Framework string `json:"framework,omitempty"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// Topology is the raw execution graph produced by the detection service for
// one scan. It is best-effort static analysis output and routinely contains
// dangling references; downstream stages sanitize rather than reject.
type Topology struct {
	Metadata   Metadata         `json:"metadata"`
	Nodes      []Node           `json:"nodes"`
	Edges      []Edge           `json:"edges"`
	Governance GovernanceStatus `json:"governance"`
}

// NodeRef identifies an original node folded into a supernode, retaining
// what the detail panel needs for drill-down.
type NodeRef struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Location *Location `json:"location,omitempty"`
}

// =============================================================================
// Findings
// =============================================================================

// Finding is one security finding from the scan, as shown in the findings
// list alongside the graph. NodeIDs carries explicit linkage to topology
// nodes when the scanner could establish it.
type Finding struct {
	ID       string    `json:"id"`
	RuleID   string    `json:"rule_id,omitempty"`
	Title    string    `json:"title"`
	Severity RiskLevel `json:"severity"`
	File     string    `json:"file,omitempty"`
	Line     int       `json:"line,omitempty"`
	NodeIDs  []string  `json:"node_ids,omitempty"`
}

// References reports whether the finding carries an explicit reference to
// the given node ID.
func (f Finding) References(nodeID string) bool {
	for _, id := range f.NodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalTopology converts a topology to pretty-printed JSON bytes.
func MarshalTopology(t *Topology) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadTopology decodes a topology from JSON. Enum fields are normalized
// during decoding: unknown node types, edge types, and risk levels resolve
// to their default arms rather than failing the decode.
func ReadTopology(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &t, nil
}

// ReadTopologyFile reads a topology from a JSON file.
func ReadTopologyFile(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTopology(f)
}

// ReadFindings decodes a findings list from JSON.
func ReadFindings(r io.Reader) ([]Finding, error) {
	var list []Finding
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode findings: %w", err)
	}
	return list, nil
}

// ReadFindingsFile reads a findings list from a JSON file.
func ReadFindingsFile(path string) ([]Finding, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFindings(f)
}
