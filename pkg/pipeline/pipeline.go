// Package pipeline provides the core topology rendering pipeline for the
// dashboard.
//
// This package implements the complete sanitize → merge → ghost → layout
// pipeline that can be used by CLI, API, and worker components. By
// centralizing this logic, we ensure consistent behavior across all entry
// points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Sanitize: Validate the raw topology and drop dangling references
//  2. Merge: Collapse structurally identical leaf nodes into supernodes
//  3. Ghost: Inject placeholder nodes for missing governance controls
//  4. Layout: Compute 2D positions for the display graph
//
// Exports and node detail resolution operate on the raw topology and run
// as separate calls.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Topology: top}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	model := result.Model
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkog-io/dashboard-sub000/pkg/cache"
	"github.com/inkog-io/dashboard-sub000/pkg/errors"
	"github.com/inkog-io/dashboard-sub000/pkg/export"
	"github.com/inkog-io/dashboard-sub000/pkg/layout"
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/ingest"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

// Format constants for export formats.
const (
	FormatFlowchart = "flowchart"
	FormatSVG       = "svg"
	FormatPNG       = "png"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatFlowchart: true,
	FormatSVG:       true,
	FormatPNG:       true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the rendering pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Topology is the raw scanner output to render. Required.
	Topology *topology.Topology `json:"topology,omitempty"`

	// Layout options. Zero values use the engine defaults.
	RankSep float64 `json:"rank_sep,omitempty"`
	NodeSep float64 `json:"node_sep,omitempty"`

	// Merge controls supernode collapsing. Defaults to on; API callers
	// can disable it to inspect the uncondensed graph.
	NoMerge bool `json:"no_merge,omitempty"`

	// Export options.
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the cache and recomputes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the positioned render graph.
	Model render.Model

	// Report records what sanitization discarded and whether the layout
	// fell back to the grid.
	Report ingest.Report

	// TopologyHash is the content hash of the raw topology, used as the
	// memoization key.
	TopologyHash string

	// Artifacts contains export outputs keyed by format, when requested.
	Artifacts map[string]export.Artifact

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int // nodes in the render model, ghosts included
	EdgeCount  int
	GhostCount int
	Supernodes int
	LayoutTime time.Duration
	ExportTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ModelHit  bool // Whether the render model came from cache
	ExportHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that an export format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: flowchart, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Topology == nil {
		return errors.New(errors.ErrCodeInvalidTopology, "topology is required")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutConfig converts the options into the layout engine config.
func (o *Options) LayoutConfig() layout.Config {
	cfg := layout.DefaultConfig()
	if o.RankSep > 0 {
		cfg.RankSep = o.RankSep
	}
	if o.NodeSep > 0 {
		cfg.NodeSep = o.NodeSep
	}
	return cfg
}

// ModelKeyOpts returns the cache key options for the render model stage.
func (o *Options) ModelKeyOpts() cache.ModelKeyOpts {
	cfg := o.LayoutConfig()
	return cache.ModelKeyOpts{RankSep: cfg.RankSep, NodeSep: cfg.NodeSep, NoMerge: o.NoMerge}
}

// ArtifactKeyOpts returns the cache key options for one export format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
