package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkog-io/dashboard-sub000/pkg/cache"
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// scenarioTopology is the duplicate-prompt example: two identical system
// prompts feeding one LLM call, with rate limiting missing.
func scenarioTopology() *topology.Topology {
	return &topology.Topology{
		Nodes: []topology.Node{
			{ID: "A", Type: topology.NodeTypeLLMCall, Label: "Primary"},
			{ID: "B", Type: topology.NodeTypeSystemPrompt, Label: "Prompt B"},
			{ID: "D", Type: topology.NodeTypeSystemPrompt, Label: "Prompt D"},
			{ID: "C", Type: topology.NodeTypeLLMCall, Label: "Shared"},
		},
		Edges: []topology.Edge{
			{From: "B", To: "C", Type: topology.EdgeDataFlow},
			{From: "D", To: "C", Type: topology.EdgeDataFlow},
		},
		Governance: topology.GovernanceStatus{
			HasHumanOversight: true,
			HasAuthChecks:     true,
			HasAuditLogging:   true,
			HasRateLimiting:   false,
		},
	}
}

func TestExecute_DuplicatePromptsCollapse(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(), Options{Topology: scenarioTopology()})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// A, C, supernode(B,D), ghost-rate_limiting.
	if result.Stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", result.Stats.NodeCount)
	}
	if result.Stats.EdgeCount != 1 {
		t.Errorf("EdgeCount = %d, want 1 after dedupe", result.Stats.EdgeCount)
	}
	if result.Stats.GhostCount != 1 {
		t.Errorf("GhostCount = %d, want 1", result.Stats.GhostCount)
	}
	if result.Stats.Supernodes != 1 {
		t.Errorf("Supernodes = %d, want 1", result.Stats.Supernodes)
	}

	var super, ghost *render.Node
	for i, n := range result.Model.Nodes {
		switch n.Kind {
		case render.KindSupernode:
			super = &result.Model.Nodes[i]
		case render.KindGhost:
			ghost = &result.Model.Nodes[i]
		}
	}
	if super == nil {
		t.Fatal("no supernode in model")
	}
	if super.MergedCount != 2 {
		t.Errorf("MergedCount = %d, want 2", super.MergedCount)
	}
	if ghost == nil {
		t.Fatal("no ghost node for the missing rate limiting control")
	}

	// Both prompt edges collapse onto the supernode and then dedupe to a
	// single rendered (source, target) pair.
	if len(result.Model.Edges) != 1 {
		t.Fatalf("model edges = %d, want 1", len(result.Model.Edges))
	}
	for _, e := range result.Model.Edges {
		if e.Source != super.ID {
			t.Errorf("edge source = %q, want supernode %q", e.Source, super.ID)
		}
		if e.Target != "C" {
			t.Errorf("edge target = %q, want C", e.Target)
		}
	}
	if result.Report.LayoutFallback {
		t.Error("well-formed topology used the grid fallback")
	}
}

func TestExecute_NoMergeKeepsOriginals(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(),
		Options{Topology: scenarioTopology(), NoMerge: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// 4 originals plus the ghost.
	if result.Stats.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want 5", result.Stats.NodeCount)
	}
	if result.Stats.Supernodes != 0 {
		t.Errorf("Supernodes = %d, want 0", result.Stats.Supernodes)
	}
}

func TestExecute_Memoization(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()
	opts := Options{Topology: scenarioTopology()}

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.ModelHit {
		t.Error("first run reported a cache hit")
	}

	second, err := runner.Execute(ctx, Options{Topology: scenarioTopology()})
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.ModelHit {
		t.Error("unchanged topology recomputed the model")
	}
	if !reflect.DeepEqual(first.Model, second.Model) {
		t.Error("cached model differs from computed model")
	}
	if second.TopologyHash != first.TopologyHash {
		t.Error("topology hash not stable")
	}

	// Refresh bypasses the cache.
	third, err := runner.Execute(ctx, Options{Topology: scenarioTopology(), Refresh: true})
	if err != nil {
		t.Fatalf("third Execute: %v", err)
	}
	if third.CacheInfo.ModelHit {
		t.Error("refresh run reported a cache hit")
	}
}

func TestExecute_ChangedTopologyRecomputes(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	runner := NewRunner(fc, nil, quietLogger())
	ctx := context.Background()

	if _, err := runner.Execute(ctx, Options{Topology: scenarioTopology()}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	changed := scenarioTopology()
	changed.Nodes[0].Label = "Renamed"
	result, err := runner.Execute(ctx, Options{Topology: changed})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.CacheInfo.ModelHit {
		t.Error("changed topology served from cache")
	}
}

// failingCache errors on every operation.
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("backend down")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("backend down")
}
func (failingCache) Delete(context.Context, string) error { return errors.New("backend down") }
func (failingCache) Close() error                         { return nil }

func TestExecute_CacheFailuresIgnored(t *testing.T) {
	runner := NewRunner(failingCache{}, nil, quietLogger())
	result, err := runner.Execute(context.Background(), Options{Topology: scenarioTopology()})
	if err != nil {
		t.Fatalf("Execute with failing cache: %v", err)
	}
	if result.Stats.NodeCount != 4 {
		t.Errorf("NodeCount = %d, want 4", result.Stats.NodeCount)
	}
}

func TestExecute_Exports(t *testing.T) {
	runner := NewRunner(nil, nil, quietLogger())
	result, err := runner.Execute(context.Background(),
		Options{Topology: scenarioTopology(), Formats: []string{FormatFlowchart, FormatSVG}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Artifacts) != 2 {
		t.Fatalf("artifacts = %d, want 2", len(result.Artifacts))
	}
	if a := result.Artifacts[FormatFlowchart]; len(a.Data) == 0 || a.ID == "" {
		t.Error("flowchart artifact empty")
	}
	if a := result.Artifacts[FormatSVG]; len(a.Data) == 0 {
		t.Error("svg artifact empty")
	}
}

func TestOptions_Validation(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("nil topology accepted")
	}

	opts = Options{Topology: scenarioTopology(), Formats: []string{"pdf"}}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Error("unknown format accepted")
	}

	opts = Options{Topology: scenarioTopology()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
	if opts.Logger == nil {
		t.Error("logger default not applied")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	m1, r1 := Compute(Options{Topology: scenarioTopology()})
	m2, r2 := Compute(Options{Topology: scenarioTopology()})

	d1, _ := json.Marshal(m1)
	d2, _ := json.Marshal(m2)
	if string(d1) != string(d2) {
		t.Error("same topology produced different models")
	}
	if r1 != r2 {
		t.Errorf("reports differ: %+v vs %+v", r1, r2)
	}
}
