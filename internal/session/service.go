package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service layers identifiers, timestamps and the upsert and snapshot rules
// over a Store.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService returns a Service over store.
//
// Precondition: store and logger must be non-nil.
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source; tests use it for deterministic stamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store {
	return s.store
}

// Create starts a new empty session.
func (s *Service) Create(ctx context.Context) (*Session, error) {
	sess := &Session{ID: uuid.New(), UIConfig: json.RawMessage(`{}`), UpdatedAt: s.now()}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("session: Create: %w", err)
	}
	s.logger.Info("session created", zap.String("session", sess.ID.String()))
	return sess, nil
}

// Get returns the session with id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.GetSession(ctx, id)
}

// SetCharacter attaches a character export to the session.
//
// Precondition: character must be valid JSON.
func (s *Service) SetCharacter(ctx context.Context, id uuid.UUID, character json.RawMessage) error {
	if !json.Valid(character) {
		return fmt.Errorf("session: SetCharacter: character export is not valid JSON")
	}
	return s.store.UpdateCharacter(ctx, id, character, s.now())
}

// SetUIConfig replaces the session's presentation settings.
func (s *Service) SetUIConfig(ctx context.Context, id uuid.UUID, cfg json.RawMessage) error {
	if !json.Valid(cfg) {
		return fmt.Errorf("session: SetUIConfig: config is not valid JSON")
	}
	return s.store.UpdateUIConfig(ctx, id, cfg, s.now())
}

// SaveGearSet stores a gear set under name, replacing the slots of an
// existing set with that name.
//
// Postcondition: returns the stored set; its ID is stable across overwrites.
func (s *Service) SaveGearSet(ctx context.Context, sessionID uuid.UUID, name string, slots map[string]string, export string, optimized bool) (*GearSet, error) {
	if name == "" {
		return nil, fmt.Errorf("session: SaveGearSet: name must not be empty")
	}
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	now := s.now()
	existing, err := s.store.GetGearSetByName(ctx, sessionID, name)
	switch {
	case err == nil:
		existing.Slots = slots
		existing.Export = export
		existing.Optimized = optimized
		existing.UpdatedAt = now
		if err := s.store.UpdateGearSet(ctx, existing); err != nil {
			return nil, fmt.Errorf("session: SaveGearSet: %w", err)
		}
		return existing, nil
	case errors.Is(err, ErrGearSetNotFound):
	default:
		return nil, fmt.Errorf("session: SaveGearSet: %w", err)
	}

	g := &GearSet{
		ID:        uuid.New(),
		SessionID: sessionID,
		Name:      name,
		Slots:     slots,
		Export:    export,
		Optimized: optimized,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateGearSet(ctx, g); err != nil {
		return nil, fmt.Errorf("session: SaveGearSet: %w", err)
	}
	return g, nil
}

// RenameGearSet changes a gear set's name.
//
// Postcondition: returns ErrDuplicateGearSet if name is taken in the session.
func (s *Service) RenameGearSet(ctx context.Context, sessionID, id uuid.UUID, name string) (*GearSet, error) {
	g, err := s.store.GetGearSet(ctx, sessionID, id)
	if err != nil {
		return nil, err
	}
	g.Name = name
	g.UpdatedAt = s.now()
	if err := s.store.UpdateGearSet(ctx, g); err != nil {
		return nil, fmt.Errorf("session: RenameGearSet: %w", err)
	}
	return g, nil
}

// GearSets lists a session's gear sets by name.
func (s *Service) GearSets(ctx context.Context, sessionID uuid.UUID) ([]*GearSet, error) {
	return s.store.ListGearSets(ctx, sessionID)
}

// GearSet returns a gear set by name.
func (s *Service) GearSet(ctx context.Context, sessionID uuid.UUID, name string) (*GearSet, error) {
	return s.store.GetGearSetByName(ctx, sessionID, name)
}

// DeleteGearSet removes a gear set.
func (s *Service) DeleteGearSet(ctx context.Context, sessionID, id uuid.UUID) error {
	return s.store.DeleteGearSet(ctx, sessionID, id)
}

// FileBugReport snapshots the reporter's session into a new session and
// records a report pointing at both.
func (s *Service) FileBugReport(ctx context.Context, sessionID uuid.UUID, description, appVersion, clientInfo string, screenshots map[string]string) (*BugReport, error) {
	orig, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	snap := &Session{ID: uuid.New(), Character: orig.Character, UIConfig: orig.UIConfig, UpdatedAt: now}
	if err := s.store.CreateSession(ctx, snap); err != nil {
		return nil, fmt.Errorf("session: FileBugReport: snapshot: %w", err)
	}
	r := &BugReport{
		ID:              uuid.New(),
		OriginalSession: orig.ID,
		SnapshotSession: snap.ID,
		Description:     description,
		AppVersion:      appVersion,
		ClientInfo:      clientInfo,
		Screenshots:     screenshots,
		FiledAt:         now,
	}
	if err := s.store.CreateBugReport(ctx, r); err != nil {
		return nil, fmt.Errorf("session: FileBugReport: %w", err)
	}
	s.logger.Info("bug report filed",
		zap.String("report", r.ID.String()),
		zap.String("session", orig.ID.String()),
		zap.String("snapshot", snap.ID.String()),
	)
	return r, nil
}

// BugReports lists reports, optionally filtered by review state.
func (s *Service) BugReports(ctx context.Context, reviewed *bool) ([]*BugReport, error) {
	return s.store.ListBugReports(ctx, reviewed)
}

// Review marks a report reviewed.
func (s *Service) Review(ctx context.Context, id uuid.UUID, by, notes string) error {
	return s.store.MarkReviewed(ctx, id, by, notes, s.now())
}

// RecordAccess audits one API request. Failures are logged, never returned,
// so auditing cannot break a request.
func (s *Service) RecordAccess(ctx context.Context, sessionID uuid.UUID, endpoint, method, userAgent, ip string) {
	a := &AccessLog{
		SessionID: sessionID,
		Endpoint:  endpoint,
		Method:    method,
		UserAgent: userAgent,
		IPAddress: ip,
		At:        s.now(),
	}
	if err := s.store.RecordAccess(ctx, a); err != nil {
		s.logger.Warn("recording API access failed",
			zap.String("session", sessionID.String()),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
	}
}

// AccessStats summarises the last days days of access, counted from UTC
// midnight.
func (s *Service) AccessStats(ctx context.Context, days int) (*AccessStats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return s.store.AccessStats(ctx, midnight.AddDate(0, 0, -days))
}
