package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gameshelf-sync-api/internal/model"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// MySQLGameRepository implements GameRepository using MySQL, for deployments
// where the downstream application reads a shared server database.
type MySQLGameRepository struct {
	db *sql.DB
}

// NewMySQLGameRepository connects to MySQL and prepares the target schema.
// dsn format: "user:password@tcp(host:port)/dbname?parseTime=true"
func NewMySQLGameRepository(dsn string) (*MySQLGameRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	if err := createMySQLGameTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[MySQLGameRepository] Initialized")
	return &MySQLGameRepository{db: db}, nil
}

// createMySQLGameTables creates the Game table and its children.
func createMySQLGameTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS Game (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			gameId VARCHAR(191) NOT NULL UNIQUE,
			title TEXT,
			summary TEXT,
			platform VARCHAR(64),
			releaseDate VARCHAR(64),
			criticsScore DOUBLE NOT NULL DEFAULT 0,
			myRating DOUBLE NOT NULL DEFAULT 0,
			isFromProductsApi TINYINT(1) NOT NULL DEFAULT 0,
			isModifiedByUser TINYINT(1) NOT NULL DEFAULT 0,
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
	}

	for _, ct := range childTables {
		stmts = append(stmts, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			%s TEXT NOT NULL,
			gameId BIGINT NOT NULL,
			FOREIGN KEY (gameId) REFERENCES Game(id) ON DELETE CASCADE
		)`, ct.table, ct.column))
	}

	stmts = append(stmts,
		`CREATE TABLE IF NOT EXISTS Score (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			critics DOUBLE NOT NULL DEFAULT 0,
			users DOUBLE NOT NULL DEFAULT 0,
			metacritic DOUBLE NOT NULL DEFAULT 0,
			gameId BIGINT NOT NULL UNIQUE,
			FOREIGN KEY (gameId) REFERENCES Game(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS GameStats (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			playtime BIGINT NOT NULL DEFAULT 0,
			lastPlayed VARCHAR(64),
			timesLaunched BIGINT NOT NULL DEFAULT 0,
			gameId BIGINT NOT NULL UNIQUE,
			FOREIGN KEY (gameId) REFERENCES Game(id) ON DELETE CASCADE
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
func (r *MySQLGameRepository) ExistsByGameID(ctx context.Context, gameID string) (bool, error) {
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
func (r *MySQLGameRepository) InsertGame(ctx context.Context, rec *model.GameRecord) error {
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
		for _, v := range values {
			if _, err := tx.ExecContext(ctx, query, v, gameDBID); err != nil {
				return fmt.Errorf("failed to insert %s for game %s: %w", ct.table, rec.GameID, err)
			}
		}
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
func (r *MySQLGameRepository) UpdateGameImages(ctx context.Context, upd ImageUpdate) (bool, error) {
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
func (r *MySQLGameRepository) ListGames(ctx context.Context, page, limit int) ([]model.GameSummary, error) {
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

// GetGameByGameID returns the full record for one external game id.
func (r *MySQLGameRepository) GetGameByGameID(ctx context.Context, gameID string) (*model.GameRecord, error) {
	return getGameByGameID(ctx, r.db, gameID, questionPlaceholders)
}

// CountGames returns the number of rows in the Game table.
func (r *MySQLGameRepository) CountGames(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM Game`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count games: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (r *MySQLGameRepository) Close() error {
	return r.db.Close()
}

// Ensure MySQLGameRepository implements GameRepository
var _ GameRepository = (*MySQLGameRepository)(nil)
