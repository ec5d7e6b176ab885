package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/inkog-io/dashboard-sub000/pkg/detail"
	apperrors "github.com/inkog-io/dashboard-sub000/pkg/errors"
	"github.com/inkog-io/dashboard-sub000/pkg/pipeline"
	"github.com/inkog-io/dashboard-sub000/pkg/topology"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the render pipeline as a JSON API",
		Long: `Serve runs the pipeline behind an HTTP API for the dashboard frontend:

  POST /render           compute the render model for a topology
  POST /export/{format}  produce a flowchart, SVG, or PNG artifact
  POST /resolve/{id}     detail-panel content for one node
  GET  /healthz          liveness probe`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}

			addr := listen
			if addr == "" {
				addr = c.Config.Listen
			}
			if addr == "" {
				addr = DefaultListen
			}

			srv := &apiServer{cli: c, runner: runner}
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = httpSrv.Shutdown(shutdownCtx)
			}()

			c.Logger.Info("listening", "addr", addr)
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Bind address (default "+DefaultListen+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the result cache")

	return cmd
}

// apiServer holds the handlers for the serve command.
type apiServer struct {
	cli    *CLI
	runner *pipeline.Runner
}

func (s *apiServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/export/{format}", s.handleExport)
	r.Post("/resolve/{id}", s.handleResolve)

	return r
}

// requestID tags every request with a UUID for log correlation.
func (s *apiServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		logger := s.cli.Logger.With("request_id", id, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
	})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// renderResponse is the /render payload: the model plus everything the
// frontend needs to surface degradation warnings.
type renderResponse struct {
	Model        any            `json:"model"`
	Report       any            `json:"report"`
	TopologyHash string         `json:"topology_hash"`
	Stats        pipeline.Stats `json:"stats"`
	Cached       bool           `json:"cached"`
}

func (s *apiServer) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}
	opts.Logger = loggerFromContext(r.Context())

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{
		Model:        result.Model,
		Report:       result.Report,
		TopologyHash: result.TopologyHash,
		Stats:        result.Stats,
		Cached:       result.CacheInfo.ModelHit,
	})
}

func (s *apiServer) handleExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}

	t, err := topology.ReadTopology(r.Body)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidTopology, err, "malformed topology"))
		return
	}

	art := pipeline.Export(r.Context(), t, format)
	w.Header().Set("Content-Type", contentTypeFor(string(art.Format)))
	w.Header().Set("X-Artifact-Id", art.ID)
	if string(art.Format) != format {
		w.Header().Set("X-Export-Degraded", string(art.Format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// resolveRequest is the /resolve/{id} body.
type resolveRequest struct {
	Topology *topology.Topology `json:"topology"`
	Findings []topology.Finding `json:"findings,omitempty"`
	RankSep  float64            `json:"rank_sep,omitempty"`
	NodeSep  float64            `json:"node_sep,omitempty"`
	NoMerge  bool               `json:"no_merge,omitempty"`
}

func (s *apiServer) handleResolve(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "id")
	if err := apperrors.ValidateNodeID(nodeID); err != nil {
		writeError(w, err)
		return
	}

	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}

	opts := pipeline.Options{
		Topology: req.Topology,
		RankSep:  req.RankSep,
		NodeSep:  req.NodeSep,
		NoMerge:  req.NoMerge,
		Logger:   loggerFromContext(r.Context()),
	}
	model, _, err := s.runner.ComputeModel(r.Context(), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	node, ok := model.Node(nodeID)
	if !ok {
		writeError(w, apperrors.New(apperrors.ErrCodeNodeNotFound, "node %q not found", nodeID))
		return
	}
	writeJSON(w, http.StatusOK, detail.Resolve(node, req.Findings))
}

// contentTypeFor maps an artifact format to a MIME type.
func contentTypeFor(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	default:
		return "text/plain; charset=utf-8"
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	writeJSON(w, statusFor(code), errorBody{
		Code:    string(code),
		Message: apperrors.UserMessage(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeNodeNotFound, apperrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInternal, apperrors.ErrCodeCache:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
