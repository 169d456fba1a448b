package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/markov"
	"github.com/aretw0/markov/internal/logging"
	"github.com/aretw0/markov/pkg/domain"
	"github.com/aretw0/markov/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// SchemeURI identifies the scheme resource.
const SchemeURI = "markov://scheme"

// Engine is what the MCP server needs from markov.Engine.
type Engine interface {
	ports.Applier
	ApplyOnce(ctx context.Context, word string) (markov.StepResult, domain.Outcome, error)
}

// ApplyArgs are the arguments of apply_scheme.
type ApplyArgs struct {
	Word  string `json:"word"`
	Limit int    `json:"limit"`
}

// ApplyResponse is the structured result of apply_scheme.
type ApplyResponse struct {
	Word    string         `json:"word" jsonschema_description:"The rewritten word"`
	Steps   int            `json:"steps" jsonschema_description:"Number of rewrites performed"`
	Outcome domain.Outcome `json:"outcome" jsonschema_description:"terminated, halted or step_limit_reached"`
	Warning string         `json:"warning,omitempty" jsonschema_description:"Set when the step limit was reached under the error policy"`
}

// StepArgs are the arguments of step_word.
type StepArgs struct {
	Word string `json:"word"`
}

// StepResponse is the structured result of step_word.
type StepResponse struct {
	Word     string         `json:"word" jsonschema_description:"The word after one step"`
	Applied  bool           `json:"applied" jsonschema_description:"Whether any formula applied"`
	Formula  string         `json:"formula,omitempty" jsonschema_description:"The applied formula"`
	Position int            `json:"position" jsonschema_description:"Character offset of the rewritten occurrence"`
	Outcome  domain.Outcome `json:"outcome" jsonschema_description:"running, terminated or halted"`
}

// Server exposes a scheme to MCP clients.
type Server struct {
	// MaxStepLimit caps the limit of apply_scheme. Zero removes the cap.
	MaxStepLimit int

	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		MaxStepLimit: domain.DefaultMaxStepLimit,
		engine:       engine,
		mcpServer:    server.NewMCPServer("markov-mcp", strings.TrimSpace(markov.Version)),
		logger:       logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	applyTool := mcp.NewTool("apply_scheme",
		mcp.WithDescription("Apply the Markov algorithm to a word until it terminates, halts or reaches the step limit."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Input word over the scheme's main alphabet")),
		mcp.WithNumber("limit", mcp.Required(), mcp.Description("Maximum number of steps (at least 1)")),
		mcp.WithOutputSchema[ApplyResponse](),
	)
	s.mcpServer.AddTool(applyTool, mcp.NewStructuredToolHandler(s.HandleApply))

	stepTool := mcp.NewTool("step_word",
		mcp.WithDescription("Perform a single rewrite step on a word."),
		mcp.WithString("word", mcp.Required(), mcp.Description("Current word")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(stepTool, mcp.NewStructuredToolHandler(s.HandleStep))

	s.mcpServer.AddTool(mcp.NewTool("describe_scheme",
		mcp.WithDescription("Get the alphabet, syntax and formulas of the loaded scheme."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.engine.Scheme().Describe())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("describe failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})
}

// HandleApply runs apply_scheme.
func (s *Server) HandleApply(ctx context.Context, request mcp.CallToolRequest, args ApplyArgs) (ApplyResponse, error) {
	if err := domain.CheckStepLimit(args.Limit, s.MaxStepLimit); err != nil {
		return ApplyResponse{}, fmt.Errorf("apply failed: %w", err)
	}

	res, err := s.engine.Apply(ctx, args.Word, args.Limit)
	if err != nil {
		var limitErr *domain.StepLimitError
		if !errors.As(err, &limitErr) {
			s.logger.Warn("MCP apply rejected", "err", err)
			return ApplyResponse{}, fmt.Errorf("apply failed: %w", err)
		}
		return ApplyResponse{Word: res.Word, Steps: res.Steps, Outcome: res.Outcome, Warning: err.Error()}, nil
	}
	return ApplyResponse{Word: res.Word, Steps: res.Steps, Outcome: res.Outcome}, nil
}

// HandleStep runs step_word.
func (s *Server) HandleStep(ctx context.Context, request mcp.CallToolRequest, args StepArgs) (StepResponse, error) {
	r, outcome, err := s.engine.ApplyOnce(ctx, args.Word)
	if err != nil {
		return StepResponse{}, fmt.Errorf("step failed: %w", err)
	}

	resp := StepResponse{Word: r.Word, Applied: r.Applied, Outcome: outcome}
	if r.Applied {
		sc := s.engine.Scheme()
		resp.Formula = sc.Formula(r.FormulaIndex).Format(sc.Syntax())
		resp.Position = r.Position
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(SchemeURI, "Loaded Markov Scheme",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Scheme().Describe())
		if err != nil {
			return nil, fmt.Errorf("failed to describe scheme: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      SchemeURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
