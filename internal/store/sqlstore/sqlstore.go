// Package sqlstore implements store.Store on top of sqlx. Queries are written
// with '?' placeholders and rebound for the driver, so the same code serves
// the sqlite and postgres packages, which own connection setup and schema.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/store"
)

// New wraps an open database whose schema is already in place.
func New(db *sqlx.DB) *SQLStore { return &SQLStore{db: db, now: time.Now} }

// SQLStore is the shared SQL-backed store.
type SQLStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func (s *SQLStore) Users() store.Users         { return &users{s} }
func (s *SQLStore) Favorites() store.Favorites { return &favorites{s} }
func (s *SQLStore) Districts() store.Districts { return &districts{s} }

// DB exposes the underlying handle for drivers and tests.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

// HealthPing implements health.HealthPinger.
func (s *SQLStore) HealthPing(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close releases the connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// Timestamps are stored as unix microseconds so both drivers round-trip them
// without dialect-specific time parsing.
func toMicros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }

// --- Users ---
type users struct{ s *SQLStore }

type userRow struct {
	ID           int64  `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

func (r userRow) model() *model.User {
	return &model.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, CreatedAt: fromMicros(r.CreatedAt)}
}

const insertUserSQL = `
INSERT INTO users (username, password_hash, created_at)
VALUES (?, ?, ?)
ON CONFLICT (username) DO NOTHING
RETURNING id`

func (u *users) Create(ctx context.Context, username, passwordHash string) (*model.User, error) {
	created := u.s.now()
	var id int64
	err := u.s.db.QueryRowxContext(ctx, u.s.db.Rebind(insertUserSQL), username, passwordHash, toMicros(created)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &model.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: fromMicros(toMicros(created))}, nil
}

func (u *users) Get(ctx context.Context, id int64) (*model.User, error) {
	return u.getOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id)
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return u.getOne(ctx, `SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username)
}

func (u *users) getOne(ctx context.Context, q string, arg interface{}) (*model.User, error) {
	var row userRow
	if err := u.s.db.GetContext(ctx, &row, u.s.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return row.model(), nil
}

// --- Favorites ---
type favorites struct{ s *SQLStore }

type favoriteRow struct {
	UserID    int64  `db:"user_id"`
	EventID   string `db:"event_id"`
	CreatedAt int64  `db:"created_at"`
}

func (r favoriteRow) model() *model.Favorite {
	return &model.Favorite{UserID: r.UserID, EventID: r.EventID, CreatedAt: fromMicros(r.CreatedAt)}
}

func (f *favorites) List(ctx context.Context, userID int64) ([]*model.Favorite, error) {
	var rows []favoriteRow
	q := `SELECT user_id, event_id, created_at FROM favorites WHERE user_id = ? ORDER BY created_at DESC, event_id ASC`
	if err := f.s.db.SelectContext(ctx, &rows, f.s.db.Rebind(q), userID); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	out := make([]*model.Favorite, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (f *favorites) Get(ctx context.Context, userID int64, eventID string) (*model.Favorite, error) {
	var row favoriteRow
	q := `SELECT user_id, event_id, created_at FROM favorites WHERE user_id = ? AND event_id = ?`
	if err := f.s.db.GetContext(ctx, &row, f.s.db.Rebind(q), userID, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("select favorite: %w", err)
	}
	return row.model(), nil
}

const insertFavoriteSQL = `
INSERT INTO favorites (user_id, event_id, created_at)
VALUES (?, ?, ?)
ON CONFLICT (user_id, event_id) DO NOTHING`

func (f *favorites) Add(ctx context.Context, userID int64, eventID string) (*model.Favorite, error) {
	created := toMicros(f.s.now())
	res, err := f.s.db.ExecContext(ctx, f.s.db.Rebind(insertFavoriteSQL), userID, eventID, created)
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", err)
	}
	if n == 0 {
		return nil, model.ErrConflict
	}
	return &model.Favorite{UserID: userID, EventID: eventID, CreatedAt: fromMicros(created)}, nil
}

func (f *favorites) Remove(ctx context.Context, userID int64, eventID string) error {
	q := `DELETE FROM favorites WHERE user_id = ? AND event_id = ?`
	if _, err := f.s.db.ExecContext(ctx, f.s.db.Rebind(q), userID, eventID); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

// --- Districts ---
type districts struct{ s *SQLStore }

type districtRow struct {
	Value        string `db:"value"`
	NameJa       string `db:"name_ja"`
	NameEn       string `db:"name_en"`
	Area         string `db:"area"`
	AreaNameJa   string `db:"area_name_ja"`
	AreaNameEn   string `db:"area_name_en"`
	DisplayOrder int    `db:"display_order"`
}

func (r districtRow) model() *model.District {
	return &model.District{
		Value:        r.Value,
		Name:         model.Localized{Ja: r.NameJa, En: r.NameEn},
		Area:         r.Area,
		AreaName:     model.Localized{Ja: r.AreaNameJa, En: r.AreaNameEn},
		DisplayOrder: r.DisplayOrder,
	}
}

const selectDistrictsSQL = `SELECT value, name_ja, name_en, area, area_name_ja, area_name_en, display_order FROM districts`

func (d *districts) List(ctx context.Context) ([]*model.District, error) {
	var rows []districtRow
	if err := d.s.db.SelectContext(ctx, &rows, selectDistrictsSQL+` ORDER BY display_order ASC, value ASC`); err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	out := make([]*model.District, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

func (d *districts) GetByValue(ctx context.Context, value string) (*model.District, error) {
	var row districtRow
	if err := d.s.db.GetContext(ctx, &row, d.s.db.Rebind(selectDistrictsSQL+` WHERE value = ?`), value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("select district: %w", err)
	}
	return row.model(), nil
}

const insertDistrictSQL = `
INSERT INTO districts (value, name_ja, name_en, area, area_name_ja, area_name_en, display_order)
VALUES (:value, :name_ja, :name_en, :area, :area_name_ja, :area_name_en, :display_order)
ON CONFLICT (value) DO NOTHING`

func (d *districts) Seed(ctx context.Context, list []model.District) (bool, error) {
	tx, err := d.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM districts`); err != nil {
		return false, fmt.Errorf("count districts: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	for _, v := range list {
		row := districtRow{
			Value:        v.Value,
			NameJa:       v.Name.Ja,
			NameEn:       v.Name.En,
			Area:         v.Area,
			AreaNameJa:   v.AreaName.Ja,
			AreaNameEn:   v.AreaName.En,
			DisplayOrder: v.DisplayOrder,
		}
		if _, err := tx.NamedExecContext(ctx, insertDistrictSQL, row); err != nil {
			return false, fmt.Errorf("insert district %s: %w", v.Value, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
