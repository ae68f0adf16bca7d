// Package relay forwards chat envelopes to the upstream n8n workflow webhook.
// It makes exactly one attempt per request; the user re-sending a message is
// the retry mechanism.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/amax-bi/anna-gateway/internal/config"
	"github.com/amax-bi/anna-gateway/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Failure kinds for upstream calls. The classification is for logging only;
// callers surface the fallback message, never the raw failure.
type FailureKind string

const (
	UpstreamUnavailable FailureKind = "upstream_unavailable"
	UpstreamRejected    FailureKind = "upstream_rejected"
	Timeout             FailureKind = "timeout"
	ConnectionFailed    FailureKind = "connection_failed"
)

// Error is a classified upstream failure carrying a caller-safe fallback
type Error struct {
	Kind     FailureKind
	Status   int
	Fallback string
	cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("relay: %s (status=%d)", e.Kind, e.Status)
}

func (e *Error) Unwrap() error { return e.cause }

// Metadata carries per-request context forwarded alongside the envelope
type Metadata struct {
	RequestID    string
	ClientIP     string
	ForwardedFor string
	UserAgent    string
}

// NewMetadata builds request metadata with a fresh request id
func NewMetadata(clientIP, forwardedFor, userAgent string) Metadata {
	if clientIP == "" {
		clientIP = "unknown"
	}
	if forwardedFor == "" {
		forwardedFor = "unknown"
	}
	if userAgent == "" {
		userAgent = "unknown"
	}
	return Metadata{
		RequestID:    "req_" + uuid.New().String(),
		ClientIP:     clientIP,
		ForwardedFor: forwardedFor,
		UserAgent:    userAgent,
	}
}

// payload is the envelope enriched with request metadata for the workflow engine
type payload struct {
	domain.Envelope
	RequestID       string `json:"requestId"`
	ClientIP        string `json:"clientIP"`
	ForwardedFor    string `json:"forwardedFor"`
	UserAgent       string `json:"userAgent"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	SecurityLevel   string `json:"securityLevel"`
}

// Relay is the single-hop upstream forwarder
type Relay struct {
	cfg            config.UpstreamConfig
	allowedDomains []string
	client         *http.Client
	logger         *zap.Logger
}

// New creates a relay with the configured timeout
func New(cfg config.UpstreamConfig, allowedDomains []string, logger *zap.Logger) *Relay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Relay{
		cfg:            cfg,
		allowedDomains: allowedDomains,
		client:         &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// Forward sends the envelope upstream and returns the raw response text.
// On any failure it returns a *Error whose Fallback is safe to show the user.
func (r *Relay) Forward(ctx context.Context, env *domain.Envelope, meta Metadata) (string, error) {
	p := payload{
		Envelope:        *env,
		RequestID:       meta.RequestID,
		ClientIP:        meta.ClientIP,
		ForwardedFor:    meta.ForwardedFor,
		UserAgent:       meta.UserAgent,
		IsAuthenticated: domain.EmailDomainAllowed(env.UserEmail, r.allowedDomains),
		SecurityLevel:   securityLevel(env.UserRole),
	}

	body, err := json.Marshal(p)
	if err != nil {
		return "", &Error{Kind: ConnectionFailed, Fallback: FallbackGeneric, cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: ConnectionFailed, Fallback: FallbackGeneric, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", r.cfg.SourceLabel)
	req.Header.Set("X-Request-ID", meta.RequestID)
	req.Header.Set("X-Real-IP", meta.ClientIP)
	req.Header.Set("X-Forwarded-For", meta.ForwardedFor)
	req.Header.Set("X-Original-User-Agent", meta.UserAgent)

	// Log metadata only; message content stays out of the logs.
	r.logger.Info("forwarding request upstream",
		zap.String("request_id", meta.RequestID),
		zap.String("session_id", env.SessionID),
		zap.String("thread_id", env.ThreadID),
		zap.String("user_email", env.UserEmail),
	)

	resp, err := r.client.Do(req)
	if err != nil {
		kind := ConnectionFailed
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = Timeout
		}
		r.logger.Warn("upstream call failed",
			zap.String("request_id", meta.RequestID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return "", &Error{Kind: kind, Fallback: FallbackGeneric, cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := UpstreamRejected
		if resp.StatusCode >= 500 {
			kind = UpstreamUnavailable
		}
		r.logger.Warn("upstream returned non-success status",
			zap.String("request_id", meta.RequestID),
			zap.Int("status", resp.StatusCode),
		)
		// Drain and discard the upstream error body: it never reaches the user.
		io.Copy(io.Discard, resp.Body)
		return "", &Error{
			Kind:     kind,
			Status:   resp.StatusCode,
			Fallback: fallbackForStatus(resp.StatusCode),
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: ConnectionFailed, Fallback: FallbackGeneric, cause: err}
	}

	return Filter(string(raw), env.UserRole), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func securityLevel(role string) string {
	if role == domain.RoleHOD {
		return "HIGH"
	}
	return "STANDARD"
}

// Fallback messages shown inline in the chat when upstream calls fail
const (
	FallbackGeneric = "I'm experiencing technical difficulties. Please try again in a moment."
	FallbackMissing = "The BI service is temporarily unavailable. Please contact support if this persists."
	FallbackError   = "Internal processing error. Our team has been notified."
	FallbackBusy    = "Service temporarily overloaded. Please wait a moment and try again."
)

func fallbackForStatus(status int) string {
	switch status {
	case http.StatusNotFound:
		return FallbackMissing
	case http.StatusInternalServerError:
		return FallbackError
	case http.StatusServiceUnavailable:
		return FallbackBusy
	}
	return FallbackGeneric
}

var (
	cardRe = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
	ssnRe  = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

const sensitivityFooter = "\n\nSome sensitive information may be restricted based on your access level."

// Filter redacts card numbers and SSNs from upstream text and appends a
// sensitivity footer for roles below EXECUTIVE when the reply flags
// confidential content.
func Filter(text, role string) string {
	text = cardRe.ReplaceAllString(text, "[CARD NUMBER REDACTED]")
	text = ssnRe.ReplaceAllString(text, "[SSN REDACTED]")

	if role != domain.RoleHOD && role != domain.RoleExecutive {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "confidential") || strings.Contains(lower, "sensitive") {
			text += sensitivityFooter
		}
	}

	return text
}
