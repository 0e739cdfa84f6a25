package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlvinPlayz23/void-core/agent"
	"github.com/AlvinPlayz23/void-core/config"
	"github.com/AlvinPlayz23/void-core/llm"
	"github.com/AlvinPlayz23/void-core/service"
	"github.com/AlvinPlayz23/void-core/session"
	"github.com/AlvinPlayz23/void-core/tools"
)

const defaultUserID = "default_user"
const connectionTestMessage = "Say 'Connection Successful'"
const defaultAgentMaxIterations = 10

// Credentials carries the per-call provider configuration; the spec's
// Non-goals exclude any durable, server-side credential store.
type Credentials struct {
	APIKey  string
	BaseURL string
	ModelID string
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("api_key is required")
	}
	if strings.TrimSpace(c.ModelID) == "" {
		return fmt.Errorf("model_id is required")
	}
	return nil
}

// Server implements the inbound RPC operation surface over a single
// in-process session.Store shared across calls. maxIterations and
// sensitivePolicy come from the process config (see
// cmd/assistant-core's serve command) rather than per-call credentials,
// since they're deployment-wide concerns, not caller-supplied ones.
type Server struct {
	svc             *service.Service
	maxIterations   int
	sensitivePolicy tools.SensitivePathPolicy
}

// NewServer constructs a Server with a fresh, empty session store and
// the built-in defaults (max_iterations=10, no extra sensitive-path
// rules).
func NewServer() *Server {
	return &Server{svc: service.New(), maxIterations: defaultAgentMaxIterations}
}

// NewServerWithConfig constructs a Server whose tool-using agents honor
// cfg.DefaultMaxIterations and whose sandbox enforces policy, the
// deny/allow-list additions resolved from config.Config and an optional
// per-project config.StarterProjectConfig (SPEC_FULL §10.3/§11).
func NewServerWithConfig(cfg config.Config, policy tools.SensitivePathPolicy) *Server {
	maxIterations := cfg.DefaultMaxIterations
	if maxIterations <= 0 {
		maxIterations = defaultAgentMaxIterations
	}
	return &Server{svc: service.New(), maxIterations: maxIterations, sensitivePolicy: policy}
}

func (s *Server) newRegistry(root string) *tools.Registry {
	return tools.NewRegistry(
		tools.ReadFileTool{Root: root},
		tools.WriteFileTool{Root: root, Policy: s.sensitivePolicy},
		tools.ListDirectoryTool{Root: root},
		tools.RunCommandTool{Root: root},
		tools.NewEditFileTool(root).WithPolicy(s.sensitivePolicy),
		tools.NewStreamingEditFileTool(root).WithPolicy(s.sensitivePolicy),
	)
}

func (s *Server) buildAgent(creds Credentials, activePath string, withTools bool, maxIterations int) (*agent.Agent, error) {
	return s.buildAgentCustom(creds, activePath, agent.DefaultSystemPrompt, withTools, maxIterations)
}

func (s *Server) buildAgentCustom(creds Credentials, activePath, systemPrompt string, withTools bool, maxIterations int) (*agent.Agent, error) {
	provider, err := llm.NewProvider(creds.APIKey, creds.BaseURL, creds.ModelID)
	if err != nil {
		return nil, err
	}

	opts := []agent.Option{
		agent.WithSystemPrompt(systemPrompt),
		agent.WithMaxIterations(maxIterations),
	}
	if withTools {
		opts = append(opts, agent.WithRegistry(s.newRegistry(activePath)))
	}
	return agent.New(provider, opts...), nil
}

// TestConnection runs a one-shot, tool-less request and treats any
// non-empty reply as success, per spec §6 test_connection.
func (s *Server) TestConnection(ctx context.Context, creds Credentials) (string, error) {
	if err := creds.validate(); err != nil {
		return "", err
	}

	ag, err := s.buildAgent(creds, "", false, 1)
	if err != nil {
		return "", err
	}

	result, err := ag.Run(ctx, connectionTestMessage, nil)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(result.Text) == "" {
		return "", fmt.Errorf("provider returned an empty reply")
	}
	return result.Text, nil
}

// AskStreamRequest is the input to AskStream / AskStreamWithSession.
type AskStreamRequest struct {
	Message     string
	Credentials Credentials
	ActivePath  string
	DebugRaw    bool
}

// AskStream streams a reply using the default user's session, creating one
// on first use, per spec §6 ask_stream.
func (s *Server) AskStream(ctx context.Context, req AskStreamRequest) <-chan AIResponseChunk {
	sessionID := s.svc.GetOrCreateSession(defaultUserID)
	return s.runStreamingTurn(ctx, sessionID, req)
}

// AskStreamWithSession streams a reply using sessionID; an empty id falls
// back to the default user's session, and an id unknown to the store is
// created preserving it, per spec §6 ask_stream_with_session.
func (s *Server) AskStreamWithSession(ctx context.Context, sessionID string, req AskStreamRequest) <-chan AIResponseChunk {
	if sessionID == "" {
		return s.AskStream(ctx, req)
	}
	resolvedID := s.svc.ValidateOrCreateSession(sessionID)
	return s.runStreamingTurn(ctx, resolvedID, req)
}

func (s *Server) runStreamingTurn(ctx context.Context, sessionID string, req AskStreamRequest) <-chan AIResponseChunk {
	out := make(chan AIResponseChunk, 64)

	if err := req.Credentials.validate(); err != nil {
		go func() {
			defer close(out)
			out <- classifiedError(err)
		}()
		return out
	}

	ag, err := s.buildAgent(req.Credentials, req.ActivePath, true, s.maxIterations)
	if err != nil {
		go func() {
			defer close(out)
			out <- classifiedError(err)
		}()
		return out
	}

	sess, _ := s.svc.SessionStore().Get(sessionID)
	var history []llm.Message
	if sess != nil {
		history = sess.Messages
	}

	items := ag.RunStreaming(ctx, req.Message, history, req.DebugRaw)

	go func() {
		defer close(out)
		s.forwardAgentItems(items, sessionID, out)
	}()

	return out
}

// forwardAgentItems drains a RunStreaming channel, projecting each
// agent.AgentItem into an AIResponseChunk, and persists the final message
// history to the session store once Done fires (at-least-once persistence
// per spec §4.9).
func (s *Server) forwardAgentItems(items <-chan agent.AgentItem, sessionID string, out chan<- AIResponseChunk) {
	var currentToolName, currentTarget string

	for item := range items {
		if item.Err != nil {
			out <- classifiedError(item.Err)
			return
		}

		switch item.Event.Kind {
		case agent.AgentEventTextDelta:
			text := item.Event.Text
			out <- AIResponseChunk{Content: &text}
		case agent.AgentEventToolStart:
			currentToolName = item.Event.ToolName
			currentTarget = extractStartTarget(currentToolName, item.Event.ToolInput)
			out <- projectToolStart(currentToolName, item.Event.ToolInput)
		case agent.AgentEventToolResult:
			out <- projectToolResult(currentToolName, currentTarget, item.Event.ToolResult)
		case agent.AgentEventDebug:
			text := item.Event.Text
			out <- AIResponseChunk{Debug: &text}
		case agent.AgentEventDone:
			s.svc.SessionStore().ReplaceMessages(sessionID, item.Event.Messages)
			out <- AIResponseChunk{Done: true}
		}
	}
}

// ResetConversation forgets the default user's session binding, per spec
// §6 reset_conversation.
func (s *Server) ResetConversation() {
	s.svc.ResetSession(defaultUserID)
}

// CreateSession creates a new session with the given name and returns its
// id, per spec §6 create_session.
func (s *Server) CreateSession(name string) string {
	return s.svc.SessionStore().Create("", name).Id
}

// ListSessions returns every stored session's listing projection, per spec
// §6 list_sessions.
func (s *Server) ListSessions() []session.Summary {
	return s.svc.SessionStore().Summaries()
}

// DeleteSession removes id from the store, per spec §6 delete_session.
func (s *Server) DeleteSession(id string) {
	s.svc.SessionStore().Delete(id)
}

// RenameSession sets id's display name, per spec §6 rename_session. Fails
// if id doesn't exist.
func (s *Server) RenameSession(id, name string) error {
	if _, ok := s.svc.SessionStore().Get(id); !ok {
		return fmt.Errorf("validation: unknown session id %q", id)
	}
	s.svc.SessionStore().SetName(id, name)
	return nil
}
