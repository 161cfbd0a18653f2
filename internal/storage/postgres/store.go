package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/walkscape/internal/session"
)

// Store is a PostgreSQL-backed session.Store.
type Store struct {
	pool *Pool
	db   *pgxpool.Pool
}

var _ session.Store = (*Store)(nil)

// NewStore returns a Store over pool. The Store owns the pool; Close closes it.
//
// Precondition: pool must be open and migrated.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool, db: pool.DB()}
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	return sqlState(err) == "23505"
}

// isForeignKeyError checks for SQLSTATE 23503 (foreign_key_violation).
func isForeignKeyError(err error) bool {
	return sqlState(err) == "23503"
}

func sqlState(err error) string {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState()
	}
	return ""
}

func rawOrNil(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// CreateSession inserts sess.
func (s *Store) CreateSession(ctx context.Context, sess *session.Session) error {
	ui := sess.UIConfig
	if len(ui) == 0 {
		ui = json.RawMessage(`{}`)
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO sessions (id, character_export, ui_config, updated_at) VALUES ($1, $2, $3, $4)`,
		sess.ID, rawOrNil(sess.Character), []byte(ui), sess.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession returns the session with id or session.ErrSessionNotFound.
func (s *Store) GetSession(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var (
		character, ui []byte
		updated       time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT character_export, ui_config, updated_at FROM sessions WHERE id = $1`, id,
	).Scan(&character, &ui, &updated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrSessionNotFound
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	out := &session.Session{ID: id, UIConfig: json.RawMessage(ui), UpdatedAt: updated.UTC()}
	if len(character) > 0 {
		out.Character = json.RawMessage(character)
	}
	return out, nil
}

// UpdateCharacter replaces the session's character export.
func (s *Store) UpdateCharacter(ctx context.Context, id uuid.UUID, character json.RawMessage, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET character_export = $2, updated_at = $3 WHERE id = $1`,
		id, rawOrNil(character), at,
	)
	if err != nil {
		return fmt.Errorf("updating session character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

// UpdateUIConfig replaces the session's UI config.
func (s *Store) UpdateUIConfig(ctx context.Context, id uuid.UUID, cfg json.RawMessage, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE sessions SET ui_config = $2, updated_at = $3 WHERE id = $1`,
		id, []byte(cfg), at,
	)
	if err != nil {
		return fmt.Errorf("updating session ui config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func slotsJSON(slots map[string]string) ([]byte, error) {
	if slots == nil {
		slots = map[string]string{}
	}
	return json.Marshal(slots)
}

// CreateGearSet inserts g.
//
// Postcondition: session.ErrDuplicateGearSet if the name is taken,
// session.ErrSessionNotFound if the session does not exist.
func (s *Store) CreateGearSet(ctx context.Context, g *session.GearSet) error {
	slots, err := slotsJSON(g.Slots)
	if err != nil {
		return fmt.Errorf("encoding gear set slots: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO gear_sets (id, session_id, name, slots, export, optimized, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.SessionID, g.Name, slots, g.Export, g.Optimized, g.CreatedAt, g.UpdatedAt,
	)
	switch {
	case err == nil:
		return nil
	case isDuplicateKeyError(err):
		return session.ErrDuplicateGearSet
	case isForeignKeyError(err):
		return session.ErrSessionNotFound
	default:
		return fmt.Errorf("inserting gear set: %w", err)
	}
}

// UpdateGearSet rewrites every mutable column of g.
func (s *Store) UpdateGearSet(ctx context.Context, g *session.GearSet) error {
	slots, err := slotsJSON(g.Slots)
	if err != nil {
		return fmt.Errorf("encoding gear set slots: %w", err)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE gear_sets SET name = $3, slots = $4, export = $5, optimized = $6, updated_at = $7
		WHERE id = $1 AND session_id = $2`,
		g.ID, g.SessionID, g.Name, slots, g.Export, g.Optimized, g.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return session.ErrDuplicateGearSet
		}
		return fmt.Errorf("updating gear set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrGearSetNotFound
	}
	return nil
}

const gearSetColumns = `id, session_id, name, slots, export, optimized, created_at, updated_at`

func scanGearSet(row pgx.Row) (*session.GearSet, error) {
	var (
		g     session.GearSet
		slots []byte
	)
	if err := row.Scan(&g.ID, &g.SessionID, &g.Name, &slots, &g.Export, &g.Optimized, &g.CreatedAt, &g.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(slots, &g.Slots); err != nil {
		return nil, fmt.Errorf("decoding gear set slots: %w", err)
	}
	g.CreatedAt, g.UpdatedAt = g.CreatedAt.UTC(), g.UpdatedAt.UTC()
	return &g, nil
}

func (s *Store) queryGearSet(ctx context.Context, where string, args ...any) (*session.GearSet, error) {
	g, err := scanGearSet(s.db.QueryRow(ctx, `SELECT `+gearSetColumns+` FROM gear_sets WHERE `+where, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrGearSetNotFound
		}
		return nil, fmt.Errorf("querying gear set: %w", err)
	}
	return g, nil
}

// GetGearSet returns a gear set by id.
func (s *Store) GetGearSet(ctx context.Context, sessionID, id uuid.UUID) (*session.GearSet, error) {
	return s.queryGearSet(ctx, `id = $1 AND session_id = $2`, id, sessionID)
}

// GetGearSetByName returns a gear set by name.
func (s *Store) GetGearSetByName(ctx context.Context, sessionID uuid.UUID, name string) (*session.GearSet, error) {
	return s.queryGearSet(ctx, `session_id = $1 AND name = $2`, sessionID, name)
}

// ListGearSets returns the session's gear sets ordered by name.
func (s *Store) ListGearSets(ctx context.Context, sessionID uuid.UUID) ([]*session.GearSet, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+gearSetColumns+` FROM gear_sets WHERE session_id = $1 ORDER BY name COLLATE "C"`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing gear sets: %w", err)
	}
	defer rows.Close()

	out := make([]*session.GearSet, 0)
	for rows.Next() {
		g, err := scanGearSet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gear set row: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteGearSet removes a gear set.
func (s *Store) DeleteGearSet(ctx context.Context, sessionID, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM gear_sets WHERE id = $1 AND session_id = $2`, id, sessionID)
	if err != nil {
		return fmt.Errorf("deleting gear set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrGearSetNotFound
	}
	return nil
}

// CreateBugReport inserts r.
func (s *Store) CreateBugReport(ctx context.Context, r *session.BugReport) error {
	var shots []byte
	if len(r.Screenshots) > 0 {
		b, err := json.Marshal(r.Screenshots)
		if err != nil {
			return fmt.Errorf("encoding screenshots: %w", err)
		}
		shots = b
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO bug_reports
			(id, original_session, snapshot_session, description, app_version, client_info, screenshots, filed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.OriginalSession, r.SnapshotSession, r.Description, r.AppVersion, r.ClientInfo, shots, r.FiledAt,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return session.ErrSessionNotFound
		}
		return fmt.Errorf("inserting bug report: %w", err)
	}
	return nil
}

const bugReportColumns = `id, original_session, snapshot_session, description, app_version, client_info,
	screenshots, filed_at, reviewed, reviewed_at, reviewed_by, notes`

func scanBugReport(row pgx.Row) (*session.BugReport, error) {
	var (
		r     session.BugReport
		shots []byte
	)
	if err := row.Scan(&r.ID, &r.OriginalSession, &r.SnapshotSession, &r.Description, &r.AppVersion,
		&r.ClientInfo, &shots, &r.FiledAt, &r.Reviewed, &r.ReviewedAt, &r.ReviewedBy, &r.Notes); err != nil {
		return nil, err
	}
	if len(shots) > 0 {
		if err := json.Unmarshal(shots, &r.Screenshots); err != nil {
			return nil, fmt.Errorf("decoding screenshots: %w", err)
		}
	}
	r.FiledAt = r.FiledAt.UTC()
	r.ReviewedAt = utcPtr(r.ReviewedAt)
	return &r, nil
}

// GetBugReport returns a report by id.
func (s *Store) GetBugReport(ctx context.Context, id uuid.UUID) (*session.BugReport, error) {
	r, err := scanBugReport(s.db.QueryRow(ctx, `SELECT `+bugReportColumns+` FROM bug_reports WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrBugReportNotFound
		}
		return nil, fmt.Errorf("querying bug report: %w", err)
	}
	return r, nil
}

// ListBugReports returns reports newest first, optionally filtered.
func (s *Store) ListBugReports(ctx context.Context, reviewed *bool) ([]*session.BugReport, error) {
	query := `SELECT ` + bugReportColumns + ` FROM bug_reports`
	var args []any
	if reviewed != nil {
		query += ` WHERE reviewed = $1`
		args = append(args, *reviewed)
	}
	query += ` ORDER BY filed_at DESC`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bug reports: %w", err)
	}
	defer rows.Close()

	out := make([]*session.BugReport, 0)
	for rows.Next() {
		r, err := scanBugReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bug report row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MarkReviewed records a review.
func (s *Store) MarkReviewed(ctx context.Context, id uuid.UUID, by, notes string, at time.Time) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE bug_reports SET reviewed = TRUE, reviewed_at = $2, reviewed_by = $3, notes = $4 WHERE id = $1`,
		id, at, by, notes,
	)
	if err != nil {
		return fmt.Errorf("reviewing bug report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrBugReportNotFound
	}
	return nil
}

// RecordAccess inserts a and sets a.ID.
func (s *Store) RecordAccess(ctx context.Context, a *session.AccessLog) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO api_access_audit (session_id, endpoint, method, user_agent, ip_address, at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		a.SessionID, a.Endpoint, a.Method, a.UserAgent, a.IPAddress, a.At,
	).Scan(&a.ID)
	if err != nil {
		if isForeignKeyError(err) {
			return session.ErrSessionNotFound
		}
		return fmt.Errorf("recording access: %w", err)
	}
	return nil
}

// AccessStats summarises access at or after since.
func (s *Store) AccessStats(ctx context.Context, since time.Time) (*session.AccessStats, error) {
	st := &session.AccessStats{ByEndpoint: make(map[string]int), ByDay: make(map[string]int)}

	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT session_id) FROM api_access_audit WHERE at >= $1`, since,
	).Scan(&st.TotalRequests, &st.UniqueSessions); err != nil {
		return nil, fmt.Errorf("counting access: %w", err)
	}
	if err := s.countInto(ctx, st.ByEndpoint,
		`SELECT endpoint, COUNT(*) FROM api_access_audit WHERE at >= $1 GROUP BY endpoint`, since); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, st.ByDay, `
		SELECT to_char(at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM api_access_audit WHERE at >= $1 GROUP BY day`, since); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT session_id, COUNT(*) AS n FROM api_access_audit WHERE at >= $1
		GROUP BY session_id ORDER BY n DESC, session_id LIMIT $2`, since, session.TopSessionsLimit)
	if err != nil {
		return nil, fmt.Errorf("ranking sessions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sc session.SessionCount
		if err := rows.Scan(&sc.SessionID, &sc.Requests); err != nil {
			return nil, fmt.Errorf("scanning session count: %w", err)
		}
		st.TopSessions = append(st.TopSessions, sc)
	}
	return st, rows.Err()
}

func (s *Store) countInto(ctx context.Context, dst map[string]int, query string, args ...any) error {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("grouping access: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return fmt.Errorf("scanning access group: %w", err)
		}
		dst[key] = n
	}
	return rows.Err()
}

// SessionAccess returns a session's most recent access entries.
func (s *Store) SessionAccess(ctx context.Context, sessionID uuid.UUID, limit int) ([]*session.AccessLog, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, endpoint, method, user_agent, ip_address, at FROM api_access_audit
		WHERE session_id = $1 ORDER BY at DESC, id DESC LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing session access: %w", err)
	}
	defer rows.Close()

	out := make([]*session.AccessLog, 0)
	for rows.Next() {
		a := &session.AccessLog{SessionID: sessionID}
		if err := rows.Scan(&a.ID, &a.Endpoint, &a.Method, &a.UserAgent, &a.IPAddress, &a.At); err != nil {
			return nil, fmt.Errorf("scanning access row: %w", err)
		}
		a.At = a.At.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
