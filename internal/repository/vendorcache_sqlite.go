package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"gameshelf-sync-api/internal/model"

	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// piecesQuery joins the vendor cache's denormalized layout into flat piece
// rows. Restricted to releases the user actually purchased, that are visible
// in the library, and that are not DLC. The sort keeps each title group's
// rows consecutive so the export pass can stream them.
const piecesQuery = `
	SELECT rp.gameId,
		gp.releaseKey,
		gpt.type,
		gp.value,
		ld.images
	FROM ProductPurchaseDates AS ppd
	INNER JOIN ReleaseProperties AS rp ON ppd.gameReleaseKey = rp.releaseKey
	INNER JOIN ProductsToReleaseKeys AS ptr ON rp.releaseKey = ptr.releaseKey
	INNER JOIN LimitedDetails AS ld ON ptr.gogId = ld.productId
	INNER JOIN GamePieces AS gp ON ppd.gameReleaseKey = gp.releaseKey
	INNER JOIN GamePieceTypes AS gpt ON gp.gamePieceTypeId = gpt.id
	WHERE (ppd.userId IS NOT NULL AND ppd.userId != '')
		AND (rp.gameId IS NOT NULL AND rp.gameId != '')
		AND (rp.isVisibleInLibrary = 1)
		AND (rp.isDlc = 0)
	ORDER BY rp.gameId, gp.releaseKey`

// imagesQuery returns one images blob per owned title group.
const imagesQuery = `
	SELECT DISTINCT rp.gameId, ld.images
	FROM ProductPurchaseDates AS ppd
	INNER JOIN ReleaseProperties AS rp ON ppd.gameReleaseKey = rp.releaseKey
	INNER JOIN ProductsToReleaseKeys AS ptr ON rp.releaseKey = ptr.releaseKey
	INNER JOIN LimitedDetails AS ld ON ptr.gogId = ld.productId
	WHERE (ppd.userId IS NOT NULL AND ppd.userId != '')
		AND (rp.gameId IS NOT NULL AND rp.gameId != '')
		AND (rp.isVisibleInLibrary = 1)
		AND (rp.isDlc = 0)
		AND (ld.images IS NOT NULL AND ld.images != '')
	ORDER BY rp.gameId`

// SQLiteVendorCache implements VendorCacheRepository over the vendor
// client's on-disk SQLite database. Strictly read-only: the cache belongs to
// the vendor client and is never mutated here.
type SQLiteVendorCache struct {
	db *sql.DB
}

// NewSQLiteVendorCache opens the vendor cache read-only. A missing file is
// ErrSourceNotFound, terminal for the run.
func NewSQLiteVendorCache(dbPath string) (*SQLiteVendorCache, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, dbPath)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open vendor cache: %w", err)
	}

	// Single reader; the library is read in one pass.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	log.Printf("[SQLiteVendorCache] Opened read-only: %s", dbPath)
	return &SQLiteVendorCache{db: db}, nil
}

// ReadPieces buffers the full restricted join. The result is bounded by
// library size, so no cursoring is needed.
func (r *SQLiteVendorCache) ReadPieces(ctx context.Context) ([]model.RawPiece, error) {
	rows, err := r.db.QueryContext(ctx, piecesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query game pieces: %w", err)
	}
	defer rows.Close()

	var pieces []model.RawPiece
	for rows.Next() {
		var p model.RawPiece
		var value, images sql.NullString
		if err := rows.Scan(&p.GameID, &p.ReleaseKey, &p.PieceType, &value, &images); err != nil {
			return nil, fmt.Errorf("failed to scan piece row: %w", err)
		}
		if value.Valid {
			p.PieceValue = []byte(value.String)
		}
		if images.Valid {
			p.Images = []byte(images.String)
		}
		pieces = append(pieces, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read piece rows: %w", err)
	}

	return pieces, nil
}

// ReadGameImages returns the raw images blob for every owned title group.
func (r *SQLiteVendorCache) ReadGameImages(ctx context.Context) ([]model.GameImage, error) {
	rows, err := r.db.QueryContext(ctx, imagesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query game images: %w", err)
	}
	defer rows.Close()

	var images []model.GameImage
	for rows.Next() {
		var gi model.GameImage
		var blob sql.NullString
		if err := rows.Scan(&gi.GameID, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan image row: %w", err)
		}
		if blob.Valid {
			gi.Images = []byte(blob.String)
		}
		images = append(images, gi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read image rows: %w", err)
	}

	return images, nil
}

// Close closes the database connection.
func (r *SQLiteVendorCache) Close() error {
	return r.db.Close()
}

// Ensure SQLiteVendorCache implements VendorCacheRepository
var _ VendorCacheRepository = (*SQLiteVendorCache)(nil)
