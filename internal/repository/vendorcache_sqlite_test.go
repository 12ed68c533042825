package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// newVendorFixture creates a vendor cache database with the tables the read
// queries join, plus a helper to insert one full release row.
func newVendorFixture(t *testing.T) (string, *sql.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vendor-cache.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE ProductPurchaseDates (gameReleaseKey TEXT, userId TEXT)`,
		`CREATE TABLE ReleaseProperties (releaseKey TEXT, gameId TEXT, isVisibleInLibrary INTEGER, isDlc INTEGER)`,
		`CREATE TABLE ProductsToReleaseKeys (releaseKey TEXT, gogId INTEGER)`,
		`CREATE TABLE LimitedDetails (productId INTEGER, images TEXT)`,
		`CREATE TABLE GamePieceTypes (id INTEGER PRIMARY KEY, type TEXT)`,
		`CREATE TABLE GamePieces (releaseKey TEXT, gamePieceTypeId INTEGER, value TEXT)`,
		`INSERT INTO GamePieceTypes (id, type) VALUES (1, 'title'), (2, 'meta')`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	return path, db
}

type fixtureRelease struct {
	releaseKey string
	gameID     string
	userID     string
	visible    int
	dlc        int
	productID  int64
	images     string
}

func insertRelease(t *testing.T, db *sql.DB, r fixtureRelease) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO ProductPurchaseDates (gameReleaseKey, userId) VALUES (?, ?)`, r.releaseKey, r.userID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ReleaseProperties (releaseKey, gameId, isVisibleInLibrary, isDlc) VALUES (?, ?, ?, ?)`,
		r.releaseKey, r.gameID, r.visible, r.dlc)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO ProductsToReleaseKeys (releaseKey, gogId) VALUES (?, ?)`, r.releaseKey, r.productID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO LimitedDetails (productId, images) VALUES (?, ?)`, r.productID, r.images)
	require.NoError(t, err)
}

func insertPiece(t *testing.T, db *sql.DB, releaseKey string, typeID int, value string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO GamePieces (releaseKey, gamePieceTypeId, value) VALUES (?, ?, ?)`,
		releaseKey, typeID, value)
	require.NoError(t, err)
}

func TestNewSQLiteVendorCacheMissingFile(t *testing.T) {
	_, err := NewSQLiteVendorCache(filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestReadPieces(t *testing.T) {
	path, db := newVendorFixture(t)

	insertRelease(t, db, fixtureRelease{
		releaseKey: "gog_100", gameID: "g1", userID: "user1",
		visible: 1, dlc: 0, productID: 100, images: `{"logo2x":"l.png"}`,
	})
	insertPiece(t, db, "gog_100", 1, `{"title":"Celeste"}`)
	insertPiece(t, db, "gog_100", 2, `{"releaseDate":"2018-01-25"}`)

	// Excluded rows: unowned, hidden, and DLC releases.
	insertRelease(t, db, fixtureRelease{
		releaseKey: "gog_200", gameID: "g2", userID: "",
		visible: 1, dlc: 0, productID: 200, images: `{}`,
	})
	insertPiece(t, db, "gog_200", 1, `{"title":"Unowned"}`)
	insertRelease(t, db, fixtureRelease{
		releaseKey: "gog_300", gameID: "g3", userID: "user1",
		visible: 0, dlc: 0, productID: 300, images: `{}`,
	})
	insertPiece(t, db, "gog_300", 1, `{"title":"Hidden"}`)
	insertRelease(t, db, fixtureRelease{
		releaseKey: "gog_400", gameID: "g4", userID: "user1",
		visible: 1, dlc: 1, productID: 400, images: `{}`,
	})
	insertPiece(t, db, "gog_400", 1, `{"title":"Some DLC"}`)

	repo, err := NewSQLiteVendorCache(path)
	require.NoError(t, err)
	defer repo.Close()

	pieces, err := repo.ReadPieces(context.Background())
	require.NoError(t, err)
	require.Len(t, pieces, 2)

	for _, p := range pieces {
		assert.Equal(t, "g1", p.GameID)
		assert.Equal(t, "gog_100", p.ReleaseKey)
		assert.Equal(t, `{"logo2x":"l.png"}`, string(p.Images))
	}
	types := []string{pieces[0].PieceType, pieces[1].PieceType}
	assert.ElementsMatch(t, []string{"title", "meta"}, types)
}

func TestReadGameImages(t *testing.T) {
	path, db := newVendorFixture(t)

	insertRelease(t, db, fixtureRelease{
		releaseKey: "gog_100", gameID: "g1", userID: "user1",
		visible: 1, dlc: 0, productID: 100, images: `{"logo2x":"one.png"}`,
	})
	// Second owned release of the same game with the same blob collapses.
	insertRelease(t, db, fixtureRelease{
		releaseKey: "steam_100", gameID: "g1", userID: "user1",
		visible: 1, dlc: 0, productID: 101, images: `{"logo2x":"one.png"}`,
	})
	// Empty blob rows are filtered at the query.
	insertRelease(t, db, fixtureRelease{
		releaseKey: "gog_500", gameID: "g5", userID: "user1",
		visible: 1, dlc: 0, productID: 500, images: "",
	})

	repo, err := NewSQLiteVendorCache(path)
	require.NoError(t, err)
	defer repo.Close()

	images, err := repo.ReadGameImages(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "g1", images[0].GameID)
	assert.Equal(t, `{"logo2x":"one.png"}`, string(images[0].Images))
}
