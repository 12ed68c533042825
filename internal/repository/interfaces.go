package repository

import (
	"context"
	"errors"

	"gameshelf-sync-api/internal/model"
)

// ErrSourceNotFound indicates the vendor cache database file does not exist.
// Terminal for the read operation: no partial data is returned.
var ErrSourceNotFound = errors.New("vendor cache database not found")

// VendorCacheRepository defines read-only access to the vendor client's
// local database.
type VendorCacheRepository interface {
	// ReadPieces returns every owned, library-visible, non-DLC piece row,
	// ordered by (gameId, releaseKey).
	ReadPieces(ctx context.Context) ([]model.RawPiece, error)

	// ReadGameImages returns the distinct raw images blob per title group.
	ReadGameImages(ctx context.Context) ([]model.GameImage, error)

	// Close closes the repository connection.
	Close() error
}

// ImageUpdate controls how UpdateGameImages writes image columns.
type ImageUpdate struct {
	GameID string
	Logo   string
	// MirrorHorizontalCover also writes the logo URL into horizontalCover.
	MirrorHorizontalCover bool
}

// GameRepository defines access to the target relational store.
type GameRepository interface {
	// ExistsByGameID reports whether a row with the external game id exists.
	ExistsByGameID(ctx context.Context, gameID string) (bool, error)

	// InsertGame inserts the record and all its children in one transaction.
	// Any failure rolls the whole record back.
	InsertGame(ctx context.Context, rec *model.GameRecord) error

	// UpdateGameImages updates image columns of an existing row only.
	// Returns false when no row with the game id exists; never inserts.
	UpdateGameImages(ctx context.Context, upd ImageUpdate) (bool, error)

	// ListGames returns a page of game summaries ordered by title.
	ListGames(ctx context.Context, page, limit int) ([]model.GameSummary, error)

	// GetGameByGameID returns the full record for one external game id.
	GetGameByGameID(ctx context.Context, gameID string) (*model.GameRecord, error)

	// CountGames returns the number of rows in the Game table.
	CountGames(ctx context.Context) (int64, error)

	// Close closes the repository connection.
	Close() error
}
