package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/inkog-io/dashboard-sub000/pkg/cache"
	"github.com/inkog-io/dashboard-sub000/pkg/export"
	"github.com/inkog-io/dashboard-sub000/pkg/layout"
	"github.com/inkog-io/dashboard-sub000/pkg/observability"
	"github.com/inkog-io/dashboard-sub000/pkg/render"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/ingest"
	"github.com/inkog-io/dashboard-sub000/pkg/topology/transform"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// modelEnvelope is the cached form of a computed model: the sanitization
// report travels with it so cache hits still report what was dropped.
type modelEnvelope struct {
	Model  render.Model  `json:"model"`
	Report ingest.Report `json:"report"`
}

// Execute runs the complete sanitize → merge → ghost → layout pipeline
// with caching, plus any requested exports.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	result := &Result{}

	data, err := topology.MarshalTopology(opts.Topology)
	if err != nil {
		return nil, fmt.Errorf("hash topology: %w", err)
	}
	result.TopologyHash = cache.Hash(data)

	layoutStart := time.Now()
	model, report, modelHit := r.computeModel(ctx, opts, result.TopologyHash)
	result.Model = model
	result.Report = report
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.ModelHit = modelHit
	fillStats(&result.Stats, model)

	observability.Pipeline().OnSanitize(ctx,
		report.DroppedEdges, report.DroppedParents, report.BrokenCycles)
	observability.Pipeline().OnLayoutComplete(ctx,
		len(model.Nodes), report.LayoutFallback, result.Stats.LayoutTime)

	logger.Info("computed render model",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"ghosts", result.Stats.GhostCount,
		"cached", modelHit,
		"duration", result.Stats.LayoutTime)
	if !report.Clean() {
		logger.Warn("topology sanitized",
			"dropped_edges", report.DroppedEdges,
			"dropped_parents", report.DroppedParents,
			"broken_cycles", report.BrokenCycles)
	}
	if report.CountMismatch {
		logger.Warn("scanner metadata counts disagree with payload",
			"declared_nodes", report.DeclaredNodes,
			"declared_edges", report.DeclaredEdges)
	}

	if len(opts.Formats) > 0 {
		exportStart := time.Now()
		artifacts, exportHit := r.exportAll(ctx, opts, result.TopologyHash)
		result.Artifacts = artifacts
		result.Stats.ExportTime = time.Since(exportStart)
		result.CacheInfo.ExportHit = exportHit

		logger.Info("exported artifacts",
			"formats", opts.Formats,
			"cached", exportHit,
			"duration", result.Stats.ExportTime)
	}

	return result, nil
}

// ComputeModel runs only the render model stages, with caching.
func (r *Runner) ComputeModel(ctx context.Context, opts Options) (render.Model, ingest.Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return render.Model{}, ingest.Report{}, fmt.Errorf("invalid options: %w", err)
	}
	data, err := topology.MarshalTopology(opts.Topology)
	if err != nil {
		return render.Model{}, ingest.Report{}, fmt.Errorf("hash topology: %w", err)
	}
	model, report, _ := r.computeModel(ctx, opts, cache.Hash(data))
	return model, report, nil
}

// computeModel resolves the render model through the cache. Cache failures
// are ignored: the pipeline must produce a model regardless of backend
// health.
func (r *Runner) computeModel(ctx context.Context, opts Options, topologyHash string) (render.Model, ingest.Report, bool) {
	key := r.Keyer.ModelKey(topologyHash, opts.ModelKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var env modelEnvelope
			if err := json.Unmarshal(data, &env); err == nil {
				observability.Cache().OnCacheHit(ctx, "model")
				return env.Model, env.Report, true
			}
			// Corrupt entry - recompute
		}
		observability.Cache().OnCacheMiss(ctx, "model")
	}

	model, report := Compute(opts)

	if data, err := json.Marshal(modelEnvelope{Model: model, Report: report}); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.DefaultModelTTL)
		observability.Cache().OnCacheSet(ctx, "model", len(data))
	}

	return model, report, false
}

// Compute runs the pipeline stages without caching. It is a pure function
// of the options: same topology and spacing in, same model out.
func Compute(opts Options) (render.Model, ingest.Report) {
	sanitized, report := ingest.Sanitize(opts.Topology)

	g := transform.FromIngest(sanitized)
	if !opts.NoMerge {
		g = transform.Merge(g)
	}
	g = transform.InjectGhosts(g)

	engine := layout.New(opts.LayoutConfig())
	model, fallback := engine.Compute(g)
	report.LayoutFallback = fallback
	return model, report
}

// exportAll produces the requested artifacts, each through the cache.
func (r *Runner) exportAll(ctx context.Context, opts Options, topologyHash string) (map[string]export.Artifact, bool) {
	artifacts := make(map[string]export.Artifact, len(opts.Formats))
	allHit := true
	for _, format := range opts.Formats {
		a, hit := r.exportOne(ctx, opts, topologyHash, format)
		artifacts[format] = a
		allHit = allHit && hit
	}
	return artifacts, allHit
}

func (r *Runner) exportOne(ctx context.Context, opts Options, topologyHash, format string) (export.Artifact, bool) {
	key := r.Keyer.ArtifactKey(topologyHash, opts.ArtifactKeyOpts(format))

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var a export.Artifact
			if err := json.Unmarshal(data, &a); err == nil {
				observability.Cache().OnCacheHit(ctx, "artifact")
				return a, true
			}
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	a := Export(ctx, opts.Topology, format)
	observability.Pipeline().OnExport(ctx, format, string(a.Format), len(a.Data), time.Since(start))

	if data, err := json.Marshal(a); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.DefaultArtifactTTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return a, false
}

// Export serializes the raw topology in the given format. Unknown formats
// fall back to the flowchart serialization; format validation happens at
// the options boundary.
func Export(ctx context.Context, t *topology.Topology, format string) export.Artifact {
	switch format {
	case FormatSVG:
		return export.VectorArtifact(t)
	case FormatPNG:
		return export.Raster(ctx, t)
	default:
		return export.FlowchartArtifact(t)
	}
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

func fillStats(s *Stats, m render.Model) {
	s.NodeCount = len(m.Nodes)
	s.EdgeCount = len(m.Edges)
	for _, n := range m.Nodes {
		switch n.Kind {
		case render.KindGhost:
			s.GhostCount++
		case render.KindSupernode:
			s.Supernodes++
		}
	}
}
