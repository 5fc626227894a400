package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/pkg/adapters/inference"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/news2"
	"github.com/aretw0/carepath/pkg/observability"
	"github.com/aretw0/carepath/pkg/registry"
)

//go:embed openapi.yaml
var rawSpec []byte

// Engine is the consultation surface served over HTTP.
// *carepath.Engine satisfies it.
type Engine interface {
	Pathways() []registry.Entry
	Pathway(ctx context.Context, id string) (*domain.Pathway, error)
	Start(ctx context.Context, pathwayID, sessionID string, history domain.PatientHistory) (*domain.Cursor, error)
	Render(ctx context.Context, c *domain.Cursor) (*domain.View, error)
	Advance(ctx context.Context, c *domain.Cursor, answer any) (*domain.Cursor, error)
	Score(p news2.Parameters) news2.Result
}

// Classifier relays images to the external classification models.
type Classifier interface {
	Classify(ctx context.Context, stage inference.Stage, req inference.Request) (*inference.Response, error)
}

// Server holds the handlers' dependencies.
type Server struct {
	Engine     Engine
	Classifier Classifier

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	origins  []string
	logger   *slog.Logger
	validate *validator.Validate
	spec     *openapi3.T
}

// Option configures the handler.
type Option func(*Server)

// WithClassifier enables POST /api/infer. Without it the route answers 503.
func WithClassifier(c Classifier) Option {
	return func(s *Server) {
		s.Classifier = c
	}
}

// WithMetrics records request metrics and serves gatherer at /metrics.
func WithMetrics(m *observability.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithAllowedOrigins restricts CORS. The default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.origins = origins
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) (http.Handler, error) {
	if engine == nil {
		return nil, errors.New("http: nil engine")
	}
	spec, err := LoadSpec(context.Background())
	if err != nil {
		return nil, err
	}
	s := &Server{
		Engine:   engine,
		origins:  []string{"*"},
		validate: validator.New(),
		spec:     spec,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.metrics != nil {
		r.Use(s.metrics.Middleware(routePattern))
	}

	r.Get("/health", s.Health)
	r.Get("/openapi.yaml", s.OpenAPIYAML)
	r.Get("/openapi.json", s.OpenAPIJSON)
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/pathways", s.ListPathways)
	r.Get("/pathways/{id}", s.GetPathway)
	r.Get("/pathways/{id}/graph", s.GetGraph)
	r.Post("/pathways/{id}/start", s.Start)
	r.Post("/pathways/{id}/advance", s.Advance)
	r.Post("/news2", s.ScoreNEWS2)
	r.Post("/api/infer", s.Infer)

	return r, nil
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>carepath API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// StartRequest opens a consultation.
type StartRequest struct {
	SessionID string                `json:"sessionId" validate:"max=128"`
	History   domain.PatientHistory `json:"history"`
}

// AdvanceRequest applies one answer to a client-held cursor.
type AdvanceRequest struct {
	Cursor *domain.Cursor `json:"cursor" validate:"required"`
	Answer any            `json:"answer"`
}

// StepResponse is the new cursor and what to show at it.
type StepResponse struct {
	Cursor *domain.Cursor `json:"cursor"`
	View   *domain.View   `json:"view"`
}

// PathwayResponse describes one compiled pathway.
type PathwayResponse struct {
	Entry   registry.Entry  `json:"entry"`
	Pathway *domain.Pathway `json:"pathway"`
	Nodes   []domain.Node   `json:"nodes"`
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"pathways": len(s.Engine.Pathways()),
	})
}

// OpenAPIYAML serves the embedded document as authored.
func (s *Server) OpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(rawSpec)
}

// OpenAPIJSON serves the parsed document as JSON.
func (s *Server) OpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.spec)
}

// ListPathways handles GET /pathways.
func (s *Server) ListPathways(w http.ResponseWriter, r *http.Request) {
	entries := s.Engine.Pathways()
	if entries == nil {
		entries = []registry.Entry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

// GetPathway handles GET /pathways/{id}.
func (s *Server) GetPathway(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.Engine.Pathway(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, "GetPathway", err)
		return
	}
	entry := registry.Entry{ID: id, Title: id}
	for _, e := range s.Engine.Pathways() {
		if e.ID == id {
			entry = e
			break
		}
	}
	s.writeJSON(w, http.StatusOK, PathwayResponse{Entry: entry, Pathway: p, Nodes: p.Nodes()})
}

// GetGraph handles GET /pathways/{id}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	p, err := s.Engine.Pathway(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, "GetGraph", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(graph.GenerateMermaid(p, nil)))
}

// Start handles POST /pathways/{id}/start. An empty body starts with no known history.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	var body StartRequest
	if r.ContentLength != 0 {
		if !s.decode(w, r, "Start", &body) {
			return
		}
	}

	cursor, err := s.Engine.Start(r.Context(), chi.URLParam(r, "id"), body.SessionID, body.History)
	if err != nil {
		s.writeDomainError(w, "Start", err)
		return
	}
	s.writeStep(w, r, "Start", cursor)
}

// Advance handles POST /pathways/{id}/advance.
func (s *Server) Advance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if !s.decode(w, r, "Advance", &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if body.Cursor.PathwayID != id {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("cursor belongs to pathway %q, not %q", body.Cursor.PathwayID, id))
		return
	}

	cursor, err := s.Engine.Advance(r.Context(), body.Cursor, body.Answer)
	if err != nil {
		s.writeDomainError(w, "Advance", err)
		return
	}
	s.writeStep(w, r, "Advance", cursor)
}

// ScoreNEWS2 handles POST /news2.
func (s *Server) ScoreNEWS2(w http.ResponseWriter, r *http.Request) {
	var params news2.Parameters
	if !s.decode(w, r, "ScoreNEWS2", &params) {
		return
	}
	s.writeJSON(w, http.StatusOK, s.Engine.Score(params))
}

type inferRequest struct {
	Image                   any   `json:"image"`
	ApplyMedicalEnhancement *bool `json:"apply_medical_enhancement"`
}

// Infer handles POST /api/infer?stage=binary|multiclass and relays the upstream reply.
func (s *Server) Infer(w http.ResponseWriter, r *http.Request) {
	var body inferRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("Infer: Invalid request body", "error", err)
		s.writeInferError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	image, ok := body.Image.(string)
	if !ok || image == "" {
		s.writeInferError(w, http.StatusBadRequest, "Missing image (base64) in body")
		return
	}
	if s.Classifier == nil {
		s.writeInferError(w, http.StatusServiceUnavailable, inference.ErrUnavailable.Error())
		return
	}

	stage := inference.ParseStage(r.URL.Query().Get("stage"))
	resp, err := s.Classifier.Classify(r.Context(), stage, inference.Request{
		Image:                   image,
		ApplyMedicalEnhancement: body.ApplyMedicalEnhancement,
	})
	switch {
	case errors.Is(err, inference.ErrUnavailable):
		s.writeInferError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, inference.ErrMissingImage):
		s.writeInferError(w, http.StatusBadRequest, "Missing image (base64) in body")
		return
	case err != nil:
		s.logger.Error("Infer failed", "stage", string(stage), "error", err)
		s.writeInferError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(resp.Body)
}

// -- Helpers --

// decode reads a JSON body into dst and validates it. It writes a 400 and
// returns false on failure. Numbers decode as json.Number so index answers survive.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		s.logger.Warn(op+": Invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.logger.Warn(op+": Request rejected", "error", err)
		s.writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

func (s *Server) writeStep(w http.ResponseWriter, r *http.Request, op string, cursor *domain.Cursor) {
	view, err := s.Engine.Render(r.Context(), cursor)
	if err != nil {
		s.writeDomainError(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, StepResponse{Cursor: cursor, View: view})
}

// StatusFor maps engine errors onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrPathwayNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrMalformedPathway):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrTerminated),
		errors.Is(err, domain.ErrNoMatchingBranch),
		errors.Is(err, domain.ErrInvalidAnswer),
		errors.Is(err, domain.ErrUnknownNode),
		errors.Is(err, domain.ErrForeignCursor):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeDomainError(w http.ResponseWriter, op string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err)
	} else {
		s.logger.Debug(op+" rejected", "error", err)
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeInferError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}
