package domain

import "time"

// User roles. Roles are cosmetic labels attached to requests; nothing is
// enforced against them server-side beyond the sensitivity footer.
const (
	RoleHOD       = "HOD"
	RoleExecutive = "EXECUTIVE"
	RoleManager   = "MANAGER"
	RoleAgent     = "AGENT"
	RoleEmployee  = "EMPLOYEE"
	RoleGuest     = "GUEST"
)

// Turn roles
const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// Session correlates one user's conversation across page reloads. The
// session/thread pair is generated once and reused for its whole life.
type Session struct {
	UserKey   string    `json:"user_key"`
	SessionID string    `json:"session_id"`
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the caller identity attached to each request. It is
// client-supplied and used for labeling only, never as authentication.
type Identity struct {
	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// Turn is one user message or one assistant reply within a thread
type Turn struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"` // user, assistant
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Envelope is the outbound request payload pairing a user utterance with
// session and identity metadata
type Envelope struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
	ThreadID  string `json:"threadId"`
	UserEmail string `json:"userEmail"`
	UserRole  string `json:"userRole"`
	UserName  string `json:"userName"`
	Timestamp int64  `json:"timestamp"`
}

// ChatRequest is the wire form of a widget chat request
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId,omitempty"`
	ThreadID  string `json:"threadId,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	UserRole  string `json:"userRole,omitempty"`
	UserName  string `json:"userName,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// ChatResponse is the standardized reply to the widget. DisplayText is always
// populated; Chart carries a Vega-Lite spec when the upstream reply embedded one.
type ChatResponse struct {
	DisplayText string         `json:"displayText"`
	Blocks      []Block        `json:"blocks,omitempty"`
	Chart       map[string]any `json:"chart,omitempty"`
	SessionID   string         `json:"sessionId"`
	ThreadID    string         `json:"threadId"`
	RequestID   string         `json:"requestId"`
}

// Block kinds produced by the display formatter
const (
	BlockParagraph = "paragraph"
	BlockAnswer    = "answer"
	BlockInsights  = "insights"
	BlockTake      = "take"
)

// Block is one structured UI block of a formatted assistant reply
type Block struct {
	Kind  string   `json:"kind"`
	HTML  string   `json:"html,omitempty"`
	Items []string `json:"items,omitempty"`
}
