package domain

import (
	"strings"
	"time"
)

// DefaultMaxMessageLength mirrors the widget-side input cap
const DefaultMaxMessageLength = 2000

// Guest identity applied when the widget sends no identity fields
var GuestIdentity = Identity{
	Email:       "guest@amaxinsurance.com",
	Role:        RoleGuest,
	DisplayName: "Guest User",
}

// BuildEnvelope validates and packages a raw user utterance for transmission.
// It is a pure transformation: the caller appends turns to history only after
// a successful round trip.
func BuildEnvelope(raw string, session Session, identity Identity, maxLen int, now time.Time) (*Envelope, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxMessageLength
	}

	message := strings.TrimSpace(raw)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > maxLen {
		return nil, ErrMessageTooLong
	}

	identity = identity.WithGuestDefaults()

	return &Envelope{
		Message:   message,
		SessionID: session.SessionID,
		ThreadID:  session.ThreadID,
		UserEmail: identity.Email,
		UserRole:  identity.Role,
		UserName:  identity.DisplayName,
		Timestamp: now.UnixMilli(),
	}, nil
}

// WithGuestDefaults fills missing identity fields with the guest identity
func (i Identity) WithGuestDefaults() Identity {
	if i.Email == "" {
		i.Email = GuestIdentity.Email
	}
	if i.Role == "" {
		i.Role = GuestIdentity.Role
	}
	if i.DisplayName == "" {
		i.DisplayName = GuestIdentity.DisplayName
	}
	return i
}

// EmailDomainAllowed reports whether the identity email belongs to one of the
// allow-listed organizational domains
func EmailDomainAllowed(email string, allowed []string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	dom := strings.ToLower(email[at+1:])
	for _, a := range allowed {
		a = strings.ToLower(a)
		if dom == a || strings.HasSuffix(dom, "."+a) {
			return true
		}
	}
	return false
}
