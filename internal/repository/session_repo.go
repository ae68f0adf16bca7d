package repository

import (
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/amax-bi/anna-gateway/internal/domain"
	"github.com/google/uuid"
)

// SessionRepository handles session and turn persistence
type SessionRepository struct {
	db       *DB
	maxTurns int
}

// NewSessionRepository creates a new session repository. maxTurns caps the
// stored history per thread; older turns are evicted oldest-first.
func NewSessionRepository(db *DB, maxTurns int) *SessionRepository {
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &SessionRepository{db: db, maxTurns: maxTurns}
}

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return string(b)
}

// NewSessionID generates a session identifier in the widget's historical format
func NewSessionID(now time.Time) string {
	return fmt.Sprintf("amax_session_%d_%s", now.UnixMilli(), randomSuffix(9))
}

// NewThreadID generates a thread identifier in the widget's historical format
func NewThreadID(now time.Time) string {
	return fmt.Sprintf("thread_%d_%s", now.UnixMilli(), randomSuffix(9))
}

// GetOrCreate returns the persisted session/thread pair for userKey, creating
// and persisting a new pair only if none exists. An existing valid pair is
// never overwritten; an unreadable row is treated as absent and regenerated.
func (r *SessionRepository) GetOrCreate(userKey string) (*domain.Session, error) {
	session := &domain.Session{UserKey: userKey}
	var sessionID, threadID sql.NullString

	err := r.db.QueryRow(`
		SELECT session_id, thread_id
		FROM sessions WHERE user_key = ?
	`, userKey).Scan(&sessionID, &threadID)

	switch {
	case err == nil && sessionID.Valid && sessionID.String != "" && threadID.Valid && threadID.String != "":
		session.SessionID = sessionID.String
		session.ThreadID = threadID.String
		return session, nil
	case err != nil && err != sql.ErrNoRows:
		return nil, err
	}

	now := time.Now()
	session.SessionID = NewSessionID(now)
	session.ThreadID = NewThreadID(now)
	session.CreatedAt = now
	session.UpdatedAt = now

	// Replace covers the corrupt-row case; a fresh key is a plain insert.
	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO sessions (user_key, session_id, thread_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, userKey, session.SessionID, session.ThreadID, session.CreatedAt, session.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Touch updates a session's updated_at timestamp
func (r *SessionRepository) Touch(userKey string) error {
	_, err := r.db.Exec(`UPDATE sessions SET updated_at = ? WHERE user_key = ?`, time.Now(), userKey)
	return err
}

// AppendTurn appends a turn to a thread and evicts the oldest turns beyond
// the configured cap
func (r *SessionRepository) AppendTurn(threadID, role, content string) (*domain.Turn, error) {
	turn := &domain.Turn{
		ID:        uuid.New().String(),
		ThreadID:  threadID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO turns (id, thread_id, role, content, seq, created_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE thread_id = ?), ?)
	`, turn.ID, turn.ThreadID, turn.Role, turn.Content, turn.ThreadID, turn.CreatedAt)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(`
		DELETE FROM turns WHERE thread_id = ? AND seq <= (
			SELECT COALESCE(MAX(seq), 0) - ? FROM turns WHERE thread_id = ?
		)
	`, threadID, r.maxTurns, threadID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return turn, nil
}

// GetHistory retrieves all retained turns for a thread in insertion order
func (r *SessionRepository) GetHistory(threadID string) ([]*domain.Turn, error) {
	rows, err := r.db.Query(`
		SELECT id, thread_id, role, content, created_at
		FROM turns WHERE thread_id = ?
		ORDER BY seq ASC
	`, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*domain.Turn
	for rows.Next() {
		turn := &domain.Turn{}
		if err := rows.Scan(&turn.ID, &turn.ThreadID, &turn.Role,
			&turn.Content, &turn.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}

	return turns, rows.Err()
}

// CountTurns returns the number of retained turns for a thread
func (r *SessionRepository) CountTurns(threadID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM turns WHERE thread_id = ?`, threadID).Scan(&count)
	return count, err
}
