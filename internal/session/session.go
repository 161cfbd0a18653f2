// Package session persists per-user optimiser state: the character export a
// session works from, its saved gear sets, filed bug reports and an API
// access audit trail. Storage backends implement Store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by every Store implementation.
var (
	ErrSessionNotFound   = errors.New("session not found")
	ErrGearSetNotFound   = errors.New("gear set not found")
	ErrDuplicateGearSet  = errors.New("gear set name already used in session")
	ErrBugReportNotFound = errors.New("bug report not found")
)

// Session is one user's saved configuration.
type Session struct {
	ID uuid.UUID
	// Character is the raw character export, nil until one is uploaded.
	Character json.RawMessage
	// UIConfig holds free-form presentation settings.
	UIConfig  json.RawMessage
	UpdatedAt time.Time
}

// HasCharacter reports whether a character export is attached.
func (s *Session) HasCharacter() bool {
	return len(s.Character) > 0 && string(s.Character) != "null"
}

// GearSet is a named gearset saved in a session. Names are unique per session.
type GearSet struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Name      string
	// Slots maps a gearset position to the equipped item's display name.
	Slots map[string]string
	// Export is the game's gearset export string, if known.
	Export    string
	Optimized bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BugReport is a user-filed problem report. The reporter's session is
// snapshotted into a fresh session so later edits do not alter the evidence.
type BugReport struct {
	ID              uuid.UUID
	OriginalSession uuid.UUID
	SnapshotSession uuid.UUID
	Description     string
	AppVersion      string
	ClientInfo      string
	// Screenshots maps a view name to encoded image data.
	Screenshots map[string]string
	FiledAt     time.Time
	Reviewed    bool
	ReviewedAt  *time.Time
	ReviewedBy  string
	Notes       string
}

// AccessLog is one audited API request.
type AccessLog struct {
	ID        int64
	SessionID uuid.UUID
	Endpoint  string
	Method    string
	UserAgent string
	IPAddress string
	At        time.Time
}

// SessionCount pairs a session with its request count.
type SessionCount struct {
	SessionID uuid.UUID
	Requests  int
}

// AccessStats summarises access logs since a cutoff.
type AccessStats struct {
	TotalRequests  int
	UniqueSessions int
	ByEndpoint     map[string]int
	// ByDay is keyed by UTC date, "2006-01-02".
	ByDay       map[string]int
	TopSessions []SessionCount
}

// TopSessionsLimit caps AccessStats.TopSessions.
const TopSessionsLimit = 10

// Store is the persistence contract shared by the Postgres and SQLite backends.
//
// Implementations return the package sentinels for missing rows and
// duplicate gear-set names.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	UpdateCharacter(ctx context.Context, id uuid.UUID, character json.RawMessage, at time.Time) error
	UpdateUIConfig(ctx context.Context, id uuid.UUID, cfg json.RawMessage, at time.Time) error

	CreateGearSet(ctx context.Context, g *GearSet) error
	UpdateGearSet(ctx context.Context, g *GearSet) error
	GetGearSet(ctx context.Context, sessionID, id uuid.UUID) (*GearSet, error)
	GetGearSetByName(ctx context.Context, sessionID uuid.UUID, name string) (*GearSet, error)
	ListGearSets(ctx context.Context, sessionID uuid.UUID) ([]*GearSet, error)
	DeleteGearSet(ctx context.Context, sessionID, id uuid.UUID) error

	CreateBugReport(ctx context.Context, r *BugReport) error
	GetBugReport(ctx context.Context, id uuid.UUID) (*BugReport, error)
	// ListBugReports returns reports newest first; a nil reviewed returns all.
	ListBugReports(ctx context.Context, reviewed *bool) ([]*BugReport, error)
	MarkReviewed(ctx context.Context, id uuid.UUID, by, notes string, at time.Time) error

	RecordAccess(ctx context.Context, a *AccessLog) error
	AccessStats(ctx context.Context, since time.Time) (*AccessStats, error)
	// SessionAccess returns at most limit entries for sessionID, newest first.
	SessionAccess(ctx context.Context, sessionID uuid.UUID, limit int) ([]*AccessLog, error)

	Close() error
}
