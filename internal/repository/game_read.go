package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gameshelf-sync-api/internal/model"
)

// placeholderStyle selects the bind-parameter syntax of the underlying
// driver. SQLite and MySQL use "?", PostgreSQL uses "$n".
type placeholderStyle int

const (
	questionPlaceholders placeholderStyle = iota
	dollarPlaceholders
)

func (s placeholderStyle) bind(n int) string {
	if s == dollarPlaceholders {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// getGameByGameID loads the full record for one external game id, children
// included. Shared across drivers; returns nil when no such row exists.
func getGameByGameID(ctx context.Context, db *sql.DB, gameID string, style placeholderStyle) (*model.GameRecord, error) {
	var rec model.GameRecord
	var dbID int64
	var title, summary, platform, releaseDate, state, parentGrk sql.NullString
	var background, horizontalCover, verticalCover, logo, squareIcon sql.NullString
	var productCard, changelog, forum, support sql.NullString

	query := fmt.Sprintf(`
		SELECT id, gameId, title, summary, platform, releaseDate, criticsScore, myRating,
			isFromProductsApi, isModifiedByUser, state, parentGrk, background,
			horizontalCover, verticalCover, logo, squareIcon, productCard,
			changelog, forum, support
		FROM Game WHERE gameId = %s`, style.bind(1))

	err := db.QueryRowContext(ctx, query, gameID).Scan(
		&dbID, &rec.GameID, &title, &summary, &platform, &releaseDate,
		&rec.CriticsScore, &rec.MyRating, &rec.IsFromProductsAPI, &rec.IsModifiedByUser,
		&state, &parentGrk, &background, &horizontalCover, &verticalCover,
		&logo, &squareIcon, &productCard, &changelog, &forum, &support)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}

	rec.Title = title.String
	rec.Summary = summary.String
	rec.Platform = platform.String
	rec.ReleaseDate = releaseDate.String
	rec.State = state.String
	rec.ParentGrk = parentGrk.String
	rec.Background = background.String
	rec.HorizontalCover = horizontalCover.String
	rec.VerticalCover = verticalCover.String
	rec.Logo = logo.String
	rec.SquareIcon = squareIcon.String
	rec.ProductCard = productCard.String
	rec.Changelog = changelog.String
	rec.Forum = forum.String
	rec.Support = support.String

	for _, ct := range childTables {
		values, err := childValues(ctx, db, ct.table, ct.column, dbID, style)
		if err != nil {
			return nil, err
		}
		assignChildValues(&rec, ct.table, values)
	}

	var score model.Score
	err = db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT critics, users, metacritic FROM Score WHERE gameId = %s`, style.bind(1)), dbID).
		Scan(&score.Critics, &score.Users, &score.Metacritic)
	if err == nil {
		rec.Score = &score
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get score for game %s: %w", gameID, err)
	}

	var stats model.GameStats
	var lastPlayed sql.NullString
	err = db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT playtime, lastPlayed, timesLaunched FROM GameStats WHERE gameId = %s`, style.bind(1)), dbID).
		Scan(&stats.Playtime, &lastPlayed, &stats.TimesLaunched)
	if err == nil {
		stats.LastPlayed = lastPlayed.String
		rec.Stats = &stats
	} else if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get stats for game %s: %w", gameID, err)
	}

	return &rec, nil
}

func childValues(ctx context.Context, db *sql.DB, table, column string, gameDBID int64, style placeholderStyle) ([]string, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE gameId = %s ORDER BY id`, column, table, style.bind(1))
	rows, err := db.QueryContext(ctx, query, gameDBID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s value: %w", table, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func assignChildValues(rec *model.GameRecord, table string, values []string) {
	switch table {
	case "Genre":
		rec.Genres = values
	case "Developer":
		rec.Developers = values
	case "Publisher":
		rec.Publishers = values
	case "Tag":
		rec.Tags = values
	case "Theme":
		rec.Themes = values
	case "Feature":
		rec.Features = values
	case "SupportedPlatform":
		rec.SupportedPlatforms = values
	case "OwnedReleaseKey":
		rec.OwnedReleaseKeys = values
	case "Screenshot":
		rec.Screenshots = values
	case "Video":
		rec.Videos = values
	}
}
