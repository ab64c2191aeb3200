package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/oddlyprompt/ExitorDie/internal/content"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) a SQLite database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency; busy timeout so concurrent writers
	// queue instead of failing immediately.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded goose migrations.
func (s *SQLiteDB) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// GetActiveContentPack returns the currently active pack.
func (s *SQLiteDB) GetActiveContentPack(ctx context.Context) (*content.Pack, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM content_packs WHERE active = 1 ORDER BY created_at DESC LIMIT 1`,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoActivePack
	}
	if err != nil {
		return nil, fmt.Errorf("query active pack: %w", err)
	}

	var pack content.Pack
	if err := json.Unmarshal([]byte(data), &pack); err != nil {
		return nil, fmt.Errorf("decode stored pack: %w", err)
	}
	return &pack, nil
}

// EnsureDefaultContentPack inserts pack as the active pack only when no
// active pack exists. The conditional insert is a single statement, so two
// concurrent first accesses cannot both seed a pack.
func (s *SQLiteDB) EnsureDefaultContentPack(ctx context.Context, pack *content.Pack) error {
	data, err := json.Marshal(pack)
	if err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_packs (id, version, active, data, created_at)
		 SELECT ?, ?, 1, ?, ?
		 WHERE NOT EXISTS (SELECT 1 FROM content_packs WHERE active = 1)`,
		uuid.New().String(), pack.Version, string(data), pack.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("seed default pack: %w", err)
	}
	return nil
}

// ReplaceContentPack deactivates all packs and inserts pack as the new
// active one, preserving the old rows as history.
func (s *SQLiteDB) ReplaceContentPack(ctx context.Context, pack *content.Pack) error {
	data, err := json.Marshal(pack)
	if err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE content_packs SET active = 0`); err != nil {
		return fmt.Errorf("deactivate packs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO content_packs (id, version, active, data, created_at) VALUES (?, ?, 1, ?, ?)`,
		uuid.New().String(), pack.Version, string(data), pack.CreatedAt.UTC(),
	); err != nil {
		return fmt.Errorf("insert pack: %w", err)
	}

	return tx.Commit()
}

// FindScoreByDigest looks a score up by its replay digest.
func (s *SQLiteDB) FindScoreByDigest(ctx context.Context, digest string) (*Score, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, seed, version, daily, day, score, depth, duration_s, artifacts, replay_digest, created_at
		 FROM scores WHERE replay_digest = ?`, digest)
	return scanScore(row)
}

func scanScore(row *sql.Row) (*Score, error) {
	var sc Score
	var daily int
	var day sql.NullString
	var artifactsJSON string

	err := row.Scan(&sc.ID, &sc.Seed, &sc.Version, &daily, &day, &sc.Score, &sc.Depth,
		&sc.DurationS, &artifactsJSON, &sc.ReplayDigest, &sc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan score: %w", err)
	}

	sc.Daily = daily == 1
	if day.Valid {
		sc.Day = day.String
	}
	if err := json.Unmarshal([]byte(artifactsJSON), &sc.Artifacts); err != nil {
		return nil, fmt.Errorf("decode artifacts: %w", err)
	}
	return &sc, nil
}

// InsertScoreWithItems persists the score and mints its one-of-a-kind items
// in one transaction. UNIQUE indexes on scores.replay_digest and items.hash
// make the whole operation an atomic insert-if-absent: the losing side of a
// race gets ErrDuplicateDigest/ErrDuplicateItem and nothing is persisted.
func (s *SQLiteDB) InsertScoreWithItems(ctx context.Context, score *Score, items []Item) error {
	if score.ID == "" {
		score.ID = uuid.New().String()
	}

	artifactsJSON, err := json.Marshal(score.Artifacts)
	if err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	daily := 0
	if score.Daily {
		daily = 1
	}
	var day interface{}
	if score.Day != "" {
		day = score.Day
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO scores (id, seed, version, daily, day, score, depth, duration_s, artifacts, replay_digest, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		score.ID, score.Seed, score.Version, daily, day, score.Score, score.Depth,
		score.DurationS, string(artifactsJSON), score.ReplayDigest, score.CreatedAt.UTC(),
	)
	if err != nil {
		return classifyConstraint(err)
	}

	for _, item := range items {
		effectsJSON, err := json.Marshal(item.Effects)
		if err != nil {
			return fmt.Errorf("encode effects: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO items (hash, name, rarity, set_id, effects, lore, minted_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.Hash, item.Name, item.Rarity, item.Set, string(effectsJSON), item.Lore, item.MintedAt.UTC(),
		)
		if err != nil {
			return classifyConstraint(err)
		}
	}

	return tx.Commit()
}

// classifyConstraint maps UNIQUE constraint failures to the store sentinels.
func classifyConstraint(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "scores.replay_digest"):
		return ErrDuplicateDigest
	case strings.Contains(msg, "items.hash"):
		return ErrDuplicateItem
	default:
		return err
	}
}

// FindItemByHash looks a minted item up by hash.
func (s *SQLiteDB) FindItemByHash(ctx context.Context, hash string) (*Item, error) {
	var item Item
	var setID sql.NullString
	var effectsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT hash, name, rarity, set_id, effects, lore, minted_at FROM items WHERE hash = ?`, hash,
	).Scan(&item.Hash, &item.Name, &item.Rarity, &setID, &effectsJSON, &item.Lore, &item.MintedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}

	if setID.Valid {
		item.Set = &setID.String
	}
	if err := json.Unmarshal([]byte(effectsJSON), &item.Effects); err != nil {
		return nil, fmt.Errorf("decode effects: %w", err)
	}
	return &item, nil
}

// CountScoresGreaterThan counts scores strictly above value in a daily scope.
func (s *SQLiteDB) CountScoresGreaterThan(ctx context.Context, daily bool, day string, value int) (int, error) {
	query := `SELECT COUNT(*) FROM scores WHERE daily = ? AND score > ?`
	args := []interface{}{boolToInt(daily), value}
	if daily && day != "" {
		query += ` AND day = ?`
		args = append(args, day)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count scores: %w", err)
	}
	return count, nil
}

// ListScores returns one leaderboard page plus the unpaged total.
func (s *SQLiteDB) ListScores(ctx context.Context, q ScoresQuery) (*ScoresPage, error) {
	where := `WHERE daily = ?`
	args := []interface{}{boolToInt(q.Daily)}
	if q.Daily && q.Day != "" {
		where += ` AND day = ?`
		args = append(args, q.Day)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count leaderboard: %w", err)
	}

	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT score, depth, artifacts, day, created_at FROM scores `+where+`
		 ORDER BY score DESC LIMIT ? OFFSET ?`,
		append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	page := &ScoresPage{Rows: []LeaderboardRow{}, Total: total}
	for rows.Next() {
		var row LeaderboardRow
		var artifactsJSON string
		var day sql.NullString

		if err := rows.Scan(&row.Score, &row.Depth, &artifactsJSON, &day, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}

		var hashes []string
		if err := json.Unmarshal([]byte(artifactsJSON), &hashes); err != nil {
			return nil, fmt.Errorf("decode artifacts: %w", err)
		}
		row.Artifacts = len(hashes)
		if day.Valid {
			row.Day = day.String
		}
		page.Rows = append(page.Rows, row)
	}

	return page, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
