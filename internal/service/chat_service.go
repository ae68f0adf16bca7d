package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/amax-bi/anna-gateway/internal/config"
	"github.com/amax-bi/anna-gateway/internal/domain"
	"github.com/amax-bi/anna-gateway/internal/format"
	"github.com/amax-bi/anna-gateway/internal/normalize"
	"github.com/amax-bi/anna-gateway/internal/relay"
	"github.com/amax-bi/anna-gateway/internal/repository"
	"go.uber.org/zap"
)

// ChatService orchestrates one conversational turn: validate, authorize,
// relay upstream, normalize, format, and persist history.
type ChatService struct {
	cfg         *config.Config
	sessionRepo *repository.SessionRepository
	relay       *relay.Relay
	logger      *zap.Logger

	// One in-flight round trip per conversation; keeps every user turn
	// immediately followed by its assistant turn in history.
	inflight sync.Map // userKey -> *sync.Mutex
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	sessionRepo *repository.SessionRepository,
	upstream *relay.Relay,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:         cfg,
		sessionRepo: sessionRepo,
		relay:       upstream,
		logger:      logger,
	}
}

// Chat handles one widget chat request end to end
func (s *ChatService) Chat(ctx context.Context, req *domain.ChatRequest, meta relay.Metadata) (*domain.ChatResponse, error) {
	identity := domain.Identity{
		Email:       req.UserEmail,
		Role:        req.UserRole,
		DisplayName: req.UserName,
	}.WithGuestDefaults()

	// Identity domain gate: unauthorized requests never reach the upstream.
	if !domain.EmailDomainAllowed(identity.Email, s.cfg.Security.AllowedDomains) {
		s.logger.Warn("rejected request from unauthorized domain",
			zap.String("request_id", meta.RequestID),
			zap.String("user_email", identity.Email),
		)
		return nil, domain.ErrUnauthorized
	}

	key := userKey(identity)
	mu, _ := s.inflight.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	// Session continuity: the stored pair wins over whatever the client sent,
	// so a reloaded widget keeps its thread.
	session, err := s.sessionRepo.GetOrCreate(key)
	if err != nil {
		return nil, err
	}

	env, err := domain.BuildEnvelope(req.Message, *session, identity, s.cfg.Security.MaxMessageLength, time.Now())
	if err != nil {
		return nil, err
	}

	raw, err := s.relay.Forward(ctx, env, meta)
	if err != nil {
		var relayErr *relay.Error
		if !errors.As(err, &relayErr) {
			relayErr = &relay.Error{Kind: relay.ConnectionFailed, Fallback: relay.FallbackGeneric}
		}
		// Upstream failures become an inline apology, never an error status:
		// the chat UI always has something to render.
		return s.finishTurn(session, env.Message, relayErr.Fallback, nil, meta.RequestID)
	}

	result := normalize.Normalize(raw)
	return s.finishTurn(session, env.Message, result.DisplayText, result.Chart, meta.RequestID)
}

// finishTurn persists the round trip as a user turn immediately followed by
// its assistant turn, then assembles the response envelope. Turns are only
// recorded once the round trip has produced something to show, which keeps
// the history strictly paired.
func (s *ChatService) finishTurn(session *domain.Session, userMessage, displayText string, chart map[string]any, requestID string) (*domain.ChatResponse, error) {
	if _, err := s.sessionRepo.AppendTurn(session.ThreadID, domain.TurnRoleUser, userMessage); err != nil {
		return nil, err
	}
	if _, err := s.sessionRepo.AppendTurn(session.ThreadID, domain.TurnRoleAssistant, displayText); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.Touch(session.UserKey); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		DisplayText: displayText,
		Blocks:      format.Render(displayText),
		Chart:       chart,
		SessionID:   session.SessionID,
		ThreadID:    session.ThreadID,
		RequestID:   requestID,
	}, nil
}

// History returns the retained turns for a thread in insertion order
func (s *ChatService) History(ctx context.Context, threadID string) ([]*domain.Turn, error) {
	return s.sessionRepo.GetHistory(threadID)
}

// userKey derives the session-store key from the caller identity
func userKey(identity domain.Identity) string {
	return strings.ToLower(identity.Email)
}
