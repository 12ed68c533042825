package model

import "time"

// GameRecord is one fully-typed destination record: the scalar columns of the
// Game table plus every child collection the writer fans out.
type GameRecord struct {
	GameID            string  `json:"gameId"`
	Title             string  `json:"title"`
	Summary           string  `json:"summary"`
	Platform          string  `json:"platform"`
	ReleaseDate       string  `json:"releaseDate"`
	CriticsScore      float64 `json:"criticsScore"`
	MyRating          float64 `json:"myRating"`
	IsFromProductsAPI bool    `json:"isFromProductsApi"`
	IsModifiedByUser  bool    `json:"isModifiedByUser"`
	State             string  `json:"state"`
	ParentGrk         string  `json:"parentGrk"`
	Background        string  `json:"background"`
	HorizontalCover   string  `json:"horizontalCover"`
	VerticalCover     string  `json:"verticalCover"`
	Logo              string  `json:"logo"`
	SquareIcon        string  `json:"squareIcon"`
	ProductCard       string  `json:"productCard"`
	Changelog         string  `json:"changelog"`
	Forum             string  `json:"forum"`
	Support           string  `json:"support"`

	Genres             []string `json:"genres,omitempty"`
	Developers         []string `json:"developers,omitempty"`
	Publishers         []string `json:"publishers,omitempty"`
	Tags               []string `json:"tags,omitempty"`
	Themes             []string `json:"themes,omitempty"`
	Features           []string `json:"features,omitempty"`
	SupportedPlatforms []string `json:"supportedPlatforms,omitempty"`
	OwnedReleaseKeys   []string `json:"ownedReleaseKeys,omitempty"`
	Screenshots        []string `json:"screenshots,omitempty"`
	Videos             []string `json:"videos,omitempty"`

	Score *Score     `json:"score,omitempty"`
	Stats *GameStats `json:"gameStats,omitempty"`
}

// Score is the one-to-one critic/user rating child of a game.
type Score struct {
	Critics    float64 `json:"critics"`
	Users      float64 `json:"users"`
	Metacritic float64 `json:"metacritic"`
}

// GameStats is the one-to-one playtime child of a game.
type GameStats struct {
	Playtime      int64  `json:"playtime"`
	LastPlayed    string `json:"lastPlayed,omitempty"`
	TimesLaunched int64  `json:"timesLaunched"`
}

// GameSummary is the listing shape returned by the games endpoints.
type GameSummary struct {
	ID          int64     `json:"id"`
	GameID      string    `json:"gameId"`
	Title       string    `json:"title"`
	Platform    string    `json:"platform"`
	ReleaseDate string    `json:"releaseDate,omitempty"`
	Logo        string    `json:"logo,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
