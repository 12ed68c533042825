package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gameshelf-sync-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// childTable maps one child collection of a GameRecord to its table and
// value column. The fan-out loop is driven by this table instead of ten
// hand-written insert blocks.
type childTable struct {
	table  string
	column string
	values func(*model.GameRecord) []string
}

var childTables = []childTable{
	{"Genre", "name", func(r *model.GameRecord) []string { return r.Genres }},
	{"Developer", "name", func(r *model.GameRecord) []string { return r.Developers }},
	{"Publisher", "name", func(r *model.GameRecord) []string { return r.Publishers }},
	{"Tag", "name", func(r *model.GameRecord) []string { return r.Tags }},
	{"Theme", "name", func(r *model.GameRecord) []string { return r.Themes }},
	{"Feature", "name", func(r *model.GameRecord) []string { return r.Features }},
	{"SupportedPlatform", "platform", func(r *model.GameRecord) []string { return r.SupportedPlatforms }},
	{"OwnedReleaseKey", "releaseKey", func(r *model.GameRecord) []string { return r.OwnedReleaseKeys }},
	{"Screenshot", "url", func(r *model.GameRecord) []string { return r.Screenshots }},
	{"Video", "url", func(r *model.GameRecord) []string { return r.Videos }},
}

// SQLiteGameRepository implements GameRepository using SQLite, the store the
// downstream application reads.
type SQLiteGameRepository struct {
	db *sql.DB
}

// NewSQLiteGameRepository opens (or creates) the target library database.
func NewSQLiteGameRepository(dbPath string) (*SQLiteGameRepository, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := createGameTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteGameRepository] Initialized with database: %s", dbPath)
	return &SQLiteGameRepository{db: db}, nil
}

// createGameTables creates the Game table and its children.
func createGameTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Game (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			gameId TEXT NOT NULL UNIQUE,
			title TEXT,
			summary TEXT,
			platform TEXT,
			releaseDate TEXT,
			criticsScore REAL NOT NULL DEFAULT 0,
			myRating REAL NOT NULL DEFAULT 0,
			isFromProductsApi INTEGER NOT NULL DEFAULT 0,
			isModifiedByUser INTEGER NOT NULL DEFAULT 0,
			state TEXT,
			parentGrk TEXT,
			background TEXT,
			horizontalCover TEXT,
			verticalCover TEXT,
			logo TEXT,
			squareIcon TEXT,
			productCard TEXT,
			changelog TEXT,
			forum TEXT,
			support TEXT,
			createdAt DATETIME NOT NULL,
			updatedAt DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_game_platform ON Game(platform)`,
	}

	for _, ct := range childTables {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			%s TEXT NOT NULL,
			gameId INTEGER NOT NULL REFERENCES Game(id) ON DELETE CASCADE
		)`, ct.table, ct.column))
	}

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS Score (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			critics REAL NOT NULL DEFAULT 0,
			users REAL NOT NULL DEFAULT 0,
			metacritic REAL NOT NULL DEFAULT 0,
			gameId INTEGER NOT NULL UNIQUE REFERENCES Game(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS GameStats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			playtime INTEGER NOT NULL DEFAULT 0,
			lastPlayed TEXT,
			timesLaunched INTEGER NOT NULL DEFAULT 0,
			gameId INTEGER NOT NULL UNIQUE REFERENCES Game(id) ON DELETE CASCADE
		)`,
	)

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ExistsByGameID reports whether a row with the external game id exists.
func (r *SQLiteGameRepository) ExistsByGameID(ctx context.Context, gameID string) (bool, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM Game WHERE gameId = ?`, gameID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check game existence: %w", err)
	}
	return true, nil
}

// InsertGame inserts the record and all its children in one transaction.
func (r *SQLiteGameRepository) InsertGame(ctx context.Context, rec *model.GameRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO Game (gameId, title, summary, platform, releaseDate, criticsScore, myRating,
			isFromProductsApi, isModifiedByUser, state, parentGrk, background,
			horizontalCover, verticalCover, logo, squareIcon, productCard,
			changelog, forum, support, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.GameID, rec.Title, rec.Summary, rec.Platform, rec.ReleaseDate,
		rec.CriticsScore, rec.MyRating, rec.IsFromProductsAPI, rec.IsModifiedByUser,
		rec.State, rec.ParentGrk, rec.Background, rec.HorizontalCover,
		rec.VerticalCover, rec.Logo, rec.SquareIcon, rec.ProductCard,
		rec.Changelog, rec.Forum, rec.Support, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert game %s: %w", rec.GameID, err)
	}

	gameDBID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted game id: %w", err)
	}

	for _, ct := range childTables {
		values := ct.values(rec)
		if len(values) == 0 {
			continue
		}
		query := fmt.Sprintf(`INSERT INTO %s (%s, gameId) VALUES (?, ?)`, ct.table, ct.column)
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s insert: %w", ct.table, err)
		}
		for _, v := range values {
			if _, err := stmt.ExecContext(ctx, v, gameDBID); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to insert %s for game %s: %w", ct.table, rec.GameID, err)
			}
		}
		stmt.Close()
	}

	if rec.Score != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO Score (critics, users, metacritic, gameId) VALUES (?, ?, ?, ?)`,
			rec.Score.Critics, rec.Score.Users, rec.Score.Metacritic, gameDBID)
		if err != nil {
			return fmt.Errorf("failed to insert score for game %s: %w", rec.GameID, err)
		}
	}

	if rec.Stats != nil {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO GameStats (playtime, lastPlayed, timesLaunched, gameId) VALUES (?, ?, ?, ?)`,
			rec.Stats.Playtime, rec.Stats.LastPlayed, rec.Stats.TimesLaunched, gameDBID)
		if err != nil {
			return fmt.Errorf("failed to insert stats for game %s: %w", rec.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit game %s: %w", rec.GameID, err)
	}
	return nil
}

// UpdateGameImages updates image columns of an existing row, never inserting.
func (r *SQLiteGameRepository) UpdateGameImages(ctx context.Context, upd ImageUpdate) (bool, error) {
	exists, err := r.ExistsByGameID(ctx, upd.GameID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	now := time.Now().UTC()
	if upd.MirrorHorizontalCover {
		_, err = r.db.ExecContext(ctx,
			`UPDATE Game SET logo = ?, horizontalCover = ?, updatedAt = ? WHERE gameId = ?`,
			upd.Logo, upd.Logo, now, upd.GameID)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE Game SET logo = ?, updatedAt = ? WHERE gameId = ?`,
			upd.Logo, now, upd.GameID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to update images for game %s: %w", upd.GameID, err)
	}
	return true, nil
}

// ListGames returns a page of game summaries ordered by title.
func (r *SQLiteGameRepository) ListGames(ctx context.Context, page, limit int) ([]model.GameSummary, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, gameId, title, platform, releaseDate, logo, createdAt, updatedAt
		FROM Game ORDER BY title LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var out []model.GameSummary
	for rows.Next() {
		var g model.GameSummary
		var title, platform, releaseDate, logo sql.NullString
		if err := rows.Scan(&g.ID, &g.GameID, &title, &platform, &releaseDate, &logo, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan game summary: %w", err)
		}
		g.Title = title.String
		g.Platform = platform.String
		g.ReleaseDate = releaseDate.String
		g.Logo = logo.String
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetGameByGameID returns the full record for one external game id, children
// included. Returns nil when no such row exists.
func (r *SQLiteGameRepository) GetGameByGameID(ctx context.Context, gameID string) (*model.GameRecord, error) {
	return getGameByGameID(ctx, r.db, gameID, questionPlaceholders)
}

// CountGames returns the number of rows in the Game table.
func (r *SQLiteGameRepository) CountGames(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Game`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (r *SQLiteGameRepository) Close() error {
	return r.db.Close()
}

// Ensure SQLiteGameRepository implements GameRepository
var _ GameRepository = (*SQLiteGameRepository)(nil)
