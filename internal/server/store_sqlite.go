package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/hotseat/internal/hotseat"
)

// SQLiteStore implements Store and AdminStore on the migrated schema.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func newID() string {
	return uuid.New().String()
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// --- Roster ---

func (s *SQLiteStore) CalibratedPlayers(ctx context.Context) ([]hotseat.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, calibrated, created_at
		FROM players
		WHERE calibrated = 1
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []hotseat.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlayer(row rowScanner) (hotseat.Player, error) {
	var (
		p          hotseat.Player
		calibrated int
		createdAt  string
	)
	if err := row.Scan(&p.ID, &p.Name, &calibrated, &createdAt); err != nil {
		return p, err
	}
	p.Calibrated = calibrated == 1
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

func (s *SQLiteStore) CreatePlayer(ctx context.Context, name string, calibrated bool) (hotseat.Player, error) {
	p := hotseat.Player{
		ID:         newID(),
		Name:       name,
		Calibrated: calibrated,
		CreatedAt:  s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, calibrated, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, boolInt(calibrated), formatTime(p.CreatedAt),
	)
	if err != nil {
		return hotseat.Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) SetCalibrated(ctx context.Context, id string, calibrated bool) (hotseat.Player, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET calibrated = ? WHERE id = ?`, boolInt(calibrated), id,
	)
	if err != nil {
		return hotseat.Player{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hotseat.Player{}, hotseat.ErrNotFound
	}
	return scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT id, name, calibrated, created_at FROM players WHERE id = ?`, id,
	))
}

func (s *SQLiteStore) CountPlayers(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n)
	return n, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- Catalog ---

const packSelect = `
	SELECT p.id, p.names, COUNT(q.id)
	FROM packs p
	LEFT JOIN questions q ON q.pack_id = p.id
`

func scanPack(row rowScanner) (hotseat.QuestionPack, error) {
	var (
		p     hotseat.QuestionPack
		names string
	)
	if err := row.Scan(&p.ID, &names, &p.QuestionCount); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(names), &p.Names); err != nil {
		return p, fmt.Errorf("decoding names of pack %q: %w", p.ID, err)
	}
	return p, nil
}

func (s *SQLiteStore) AllPacks(ctx context.Context) ([]hotseat.QuestionPack, error) {
	rows, err := s.db.QueryContext(ctx, packSelect+`
		GROUP BY p.id
		ORDER BY p.position, p.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packs []hotseat.QuestionPack
	for rows.Next() {
		p, err := scanPack(rows)
		if err != nil {
			return nil, err
		}
		packs = append(packs, p)
	}
	return packs, rows.Err()
}

func (s *SQLiteStore) GetPack(ctx context.Context, id string) (hotseat.QuestionPack, error) {
	p, err := scanPack(s.db.QueryRowContext(ctx, packSelect+`
		WHERE p.id = ?
		GROUP BY p.id
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, hotseat.ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) PackQuestions(ctx context.Context, packID string) ([]hotseat.Question, error) {
	if _, err := s.GetPack(ctx, packID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, pack_id, position, text
		FROM questions
		WHERE pack_id = ?
		ORDER BY position
	`, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []hotseat.Question
	for rows.Next() {
		var q hotseat.Question
		if err := rows.Scan(&q.ID, &q.PackID, &q.Position, &q.Text); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) PackQuestionIDs(ctx context.Context, packID string) ([]string, error) {
	questions, err := s.PackQuestions(ctx, packID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	return ids, nil
}

func (s *SQLiteStore) CreatePack(ctx context.Context, names map[string]string, questions []string) (hotseat.QuestionPack, error) {
	data, err := json.Marshal(names)
	if err != nil {
		return hotseat.QuestionPack{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return hotseat.QuestionPack{}, err
	}
	defer tx.Rollback()

	pack := hotseat.QuestionPack{ID: newID(), Names: names, QuestionCount: len(questions)}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO packs (id, position, names, created_at)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM packs), ?, ?)
	`, pack.ID, string(data), formatTime(s.now()))
	if err != nil {
		return hotseat.QuestionPack{}, fmt.Errorf("inserting pack: %w", err)
	}

	for i, text := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, pack_id, position, text) VALUES (?, ?, ?, ?)`,
			newID(), pack.ID, i+1, text,
		)
		if err != nil {
			return hotseat.QuestionPack{}, fmt.Errorf("inserting question %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return hotseat.QuestionPack{}, err
	}
	return pack, nil
}

// DeletePack removes a pack and its questions. Questions are deleted
// explicitly because foreign_keys is a per-connection setting.
func (s *SQLiteStore) DeletePack(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE pack_id = ?`, id); err != nil {
		return fmt.Errorf("deleting questions: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM packs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hotseat.ErrNotFound
	}
	return tx.Commit()
}

// --- Sessions ---

type sessionDoc struct {
	ID                 string    `json:"id"`
	Status             string    `json:"status"`
	PlayerIDs          []string  `json:"playerIds"`
	QuestionIDs        []string  `json:"questionIds"`
	QuestionsPerPlayer int       `json:"questionsPerPlayer"`
	VerdictMode        string    `json:"verdictMode"`
	Turns              []turnDoc `json:"turns"`
	CreatedAt          string    `json:"createdAt"`
	CompletedAt        *string   `json:"completedAt"`
}

type turnDoc struct {
	Number     int    `json:"number"`
	PlayerID   string `json:"playerId"`
	QuestionID string `json:"questionId"`
}

func (d sessionDoc) session() hotseat.Session {
	s := hotseat.Session{
		ID:                 d.ID,
		Status:             hotseat.SessionStatus(d.Status),
		PlayerIDs:          d.PlayerIDs,
		QuestionIDs:        d.QuestionIDs,
		QuestionsPerPlayer: d.QuestionsPerPlayer,
		VerdictMode:        hotseat.VerdictMode(d.VerdictMode),
		CreatedAt:          parseTime(d.CreatedAt),
	}
	for _, t := range d.Turns {
		s.Turns = append(s.Turns, hotseat.Turn{Number: t.Number, PlayerID: t.PlayerID, QuestionID: t.QuestionID})
	}
	if d.CompletedAt != nil {
		t := parseTime(*d.CompletedAt)
		s.CompletedAt = &t
	}
	return s
}

// CreateSession stores a new session and deals its questions to players in
// seat order.
func (s *SQLiteStore) CreateSession(ctx context.Context, players []hotseat.Player, questionIDs []string, questionsPerPlayer int, verdict hotseat.VerdictMode) (hotseat.Session, error) {
	playerIDs := make([]string, 0, len(players))
	for _, p := range players {
		playerIDs = append(playerIDs, p.ID)
	}

	doc := sessionDoc{
		ID:                 newID(),
		Status:             string(hotseat.SessionStatusPlaying),
		PlayerIDs:          playerIDs,
		QuestionIDs:        questionIDs,
		QuestionsPerPlayer: questionsPerPlayer,
		VerdictMode:        string(verdict),
		CreatedAt:          formatTime(s.now()),
	}
	for _, t := range hotseat.BuildTurns(playerIDs, questionIDs, questionsPerPlayer) {
		doc.Turns = append(doc.Turns, turnDoc{Number: t.Number, PlayerID: t.PlayerID, QuestionID: t.QuestionID})
	}

	if err := s.putSession(ctx, doc); err != nil {
		return hotseat.Session{}, fmt.Errorf("storing session: %w", err)
	}
	return doc.session(), nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (hotseat.Session, error) {
	doc, err := s.getSession(ctx, id)
	if err != nil {
		return hotseat.Session{}, err
	}
	return doc.session(), nil
}

// CompleteSession marks a session finished. Completing twice is a no-op.
func (s *SQLiteStore) CompleteSession(ctx context.Context, id string) (hotseat.Session, error) {
	doc, err := s.getSession(ctx, id)
	if err != nil {
		return hotseat.Session{}, err
	}
	if doc.Status != string(hotseat.SessionStatusCompleted) {
		now := formatTime(s.now())
		doc.Status = string(hotseat.SessionStatusCompleted)
		doc.CompletedAt = &now
		if err := s.putSession(ctx, doc); err != nil {
			return hotseat.Session{}, fmt.Errorf("storing session: %w", err)
		}
	}
	return doc.session(), nil
}

func (s *SQLiteStore) getSession(ctx context.Context, id string) (sessionDoc, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM sessions WHERE id = ?`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return sessionDoc{}, hotseat.ErrNotFound
	}
	if err != nil {
		return sessionDoc{}, err
	}
	var doc sessionDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return sessionDoc{}, err
	}
	return doc, nil
}

func (s *SQLiteStore) putSession(ctx context.Context, doc sessionDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, status, data, created_at) VALUES (?, ?, jsonb(?), ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status, data = excluded.data
	`, doc.ID, doc.Status, string(data), doc.CreatedAt)
	return err
}

// --- Admin ---

// EnsureAdmin creates the admin account if no admin with email exists.
func (s *SQLiteStore) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (id, email, password_hash) VALUES (?, ?, ?)
		ON CONFLICT(email) DO NOTHING
	`, newID(), email, passwordHash)
	return err
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var id, hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, email,
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", hotseat.ErrNotFound
	}
	return id, hash, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_sessions (id, admin_id, created_at) VALUES (?, ?, ?)`,
		id, adminID, formatTime(s.now()),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

// AdminFromSession resolves a cookie session. Sessions older than
// adminSessionTTL are deleted and treated as missing.
func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var (
		sess      adminSession
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email, s.created_at
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	if err != nil {
		return adminSession{}, err
	}
	if s.now().Sub(parseTime(createdAt)) > adminSessionTTL {
		if err := s.DeleteAdminSession(ctx, sessionID); err != nil {
			return adminSession{}, err
		}
		return adminSession{}, errNoAdminSession
	}
	return sess, nil
}
