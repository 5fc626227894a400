package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/news2"
	"github.com/aretw0/carepath/pkg/registry"
)

// CatalogURI lists the registered pathways.
const CatalogURI = "carepath://pathways"

// StepResponse aligns with the HTTP API and provides a unified structure across adapters.
type StepResponse struct {
	Cursor *domain.Cursor `json:"cursor" jsonschema_description:"Consultation position. Pass it back unchanged to advance_consultation"`
	View   *domain.View   `json:"view" jsonschema_description:"Current node, the answer it expects and whether the consultation is over"`
}

// CatalogResponse lists pathways.
type CatalogResponse struct {
	Pathways []registry.Entry `json:"pathways"`
}

// StartArgs are the start_consultation arguments.
type StartArgs struct {
	PathwayID string                `json:"pathway_id"`
	SessionID string                `json:"session_id,omitempty"`
	History   domain.PatientHistory `json:"history,omitempty"`
}

// AdvanceArgs are the advance_consultation arguments.
type AdvanceArgs struct {
	Cursor *domain.Cursor `json:"cursor" validate:"required"`
	Answer string         `json:"answer,omitempty"`
	// Index selects an option by zero-based position and takes precedence over Answer.
	Index *int `json:"index,omitempty" validate:"omitempty,gte=0"`
}

// Engine defines the interface required by the MCP server. *carepath.Engine satisfies it.
type Engine interface {
	Pathways() []registry.Entry
	Pathway(ctx context.Context, id string) (*domain.Pathway, error)
	Start(ctx context.Context, pathwayID, sessionID string, history domain.PatientHistory) (*domain.Cursor, error)
	Render(ctx context.Context, c *domain.Cursor) (*domain.View, error)
	Advance(ctx context.Context, c *domain.Cursor, answer any) (*domain.Cursor, error)
	Score(p news2.Parameters) news2.Result
}

// Server wraps the carepath Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	validate  *validator.Validate
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. MCP stdio owns stdout, so it should write elsewhere.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("carepath-mcp", strings.TrimSpace(version)),
		validate:  validator.New(),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer exposes the underlying server, for tests and custom transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_pathways",
		mcp.WithDescription("List the clinical pathways available for consultation."),
		mcp.WithOutputSchema[CatalogResponse](),
	), mcp.NewStructuredToolHandler(s.handleListPathways))

	s.mcpServer.AddTool(mcp.NewTool("start_consultation",
		mcp.WithDescription("Open a consultation on a pathway's first question. The returned cursor carries all state."),
		mcp.WithString("pathway_id", mcp.Required(), mcp.Description("Pathway id from list_pathways")),
		mcp.WithString("session_id", mcp.Description("Caller session id (optional, generated when omitted)")),
		mcp.WithObject("history", mcp.Description("Known patient history: age, durationDays, bilateral, otorrhoea, penicillinAllergy, severity (mild|moderate|severe), fever")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("advance_consultation",
		mcp.WithDescription("Answer the current question. Binary questions take yes or no, choices and options take a label or an index. Child steps ignore the answer."),
		mcp.WithObject("cursor", mcp.Required(), mcp.Description("Cursor returned by the previous call")),
		mcp.WithString("answer", mcp.Description("yes, no, or an option label")),
		mcp.WithNumber("index", mcp.Description("Zero-based option index (overrides answer)")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("score_news2",
		mcp.WithDescription("Calculate a NEWS2 early warning score from one set of observations."),
		mcp.WithNumber("respiratoryRate", mcp.Required(), mcp.Description("Breaths per minute")),
		mcp.WithNumber("oxygenSaturation", mcp.Required(), mcp.Description("SpO2 percent")),
		mcp.WithString("oxygenScale", mcp.Required(), mcp.Enum("scale1", "scale2"), mcp.Description("SpO2 scale; scale2 only for hypercapnic respiratory failure")),
		mcp.WithBoolean("supplementalOxygen", mcp.Description("Patient is on supplemental oxygen")),
		mcp.WithNumber("temperature", mcp.Required(), mcp.Description("Degrees Celsius")),
		mcp.WithNumber("systolicBP", mcp.Required(), mcp.Description("Systolic blood pressure, mmHg")),
		mcp.WithNumber("heartRate", mcp.Required(), mcp.Description("Beats per minute")),
		mcp.WithString("consciousness", mcp.Required(), mcp.Enum("alert", "cvpu"), mcp.Description("ACVPU collapsed to alert or cvpu")),
		mcp.WithOutputSchema[news2.Result](),
	), mcp.NewStructuredToolHandler(s.handleScore))

	s.mcpServer.AddTool(mcp.NewTool("get_pathway_graph",
		mcp.WithDescription("Get a pathway as a Mermaid flowchart."),
		mcp.WithString("pathway_id", mcp.Required(), mcp.Description("Pathway id")),
	), s.handleGraph)
}

// Handler methods for structured tools

func (s *Server) handleListPathways(ctx context.Context, request mcp.CallToolRequest, _ struct{}) (CatalogResponse, error) {
	entries := s.engine.Pathways()
	if entries == nil {
		entries = []registry.Entry{}
	}
	return CatalogResponse{Pathways: entries}, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args StartArgs) (StepResponse, error) {
	if args.PathwayID == "" {
		return StepResponse{}, errors.New("pathway_id is required")
	}
	if err := s.validate.Struct(args); err != nil {
		return StepResponse{}, fmt.Errorf("invalid history: %w", err)
	}
	cursor, err := s.engine.Start(ctx, args.PathwayID, args.SessionID, args.History)
	if err != nil {
		return StepResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return s.step(ctx, cursor)
}

func (s *Server) handleAdvance(ctx context.Context, request mcp.CallToolRequest, args AdvanceArgs) (StepResponse, error) {
	if err := s.validate.Struct(args); err != nil {
		return StepResponse{}, fmt.Errorf("invalid arguments: %w", err)
	}
	var answer any = args.Answer
	if args.Index != nil {
		answer = *args.Index
	}

	next, err := s.engine.Advance(ctx, args.Cursor, answer)
	if err != nil {
		s.logger.Debug("MCP Advance: answer rejected", "node", args.Cursor.CurrentNodeID, "error", err)
		return StepResponse{}, fmt.Errorf("advance failed: %w", err)
	}
	return s.step(ctx, next)
}

func (s *Server) handleScore(ctx context.Context, request mcp.CallToolRequest, params news2.Parameters) (news2.Result, error) {
	if err := s.validate.Struct(params); err != nil {
		return news2.Result{}, fmt.Errorf("invalid observations: %w", err)
	}
	return s.engine.Score(params), nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("pathway_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.engine.Pathway(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(p, nil)), nil
}

func (s *Server) step(ctx context.Context, cursor *domain.Cursor) (StepResponse, error) {
	view, err := s.engine.Render(ctx, cursor)
	if err != nil {
		s.logger.Error("MCP: render failed", "pathway", cursor.PathwayID, "node", cursor.CurrentNodeID, "error", err)
		return StepResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return StepResponse{Cursor: cursor, View: view}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Pathway catalog",
		mcp.WithResourceDescription("Registered clinical pathways in catalog order"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Pathways())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
