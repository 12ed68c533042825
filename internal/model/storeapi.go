package model

import "fmt"

// StoreGame is one owned title as reported by the store API's library
// endpoint. Unknown fields in the payload are simply dropped by the decoder.
type StoreGame struct {
	AppID           int64  `json:"appid"`
	Name            string `json:"name"`
	PlaytimeForever int64  `json:"playtime_forever"`
	Playtime2Weeks  int64  `json:"playtime_2weeks"`
	ImgIconURL      string `json:"img_icon_url"`
	ImgLogoURL      string `json:"img_logo_url"`
	RTimeLastPlayed int64  `json:"rtime_last_played"`
	PlaytimeWindows int64  `json:"playtime_windows_forever"`
	PlaytimeMac     int64  `json:"playtime_mac_forever"`
	PlaytimeLinux   int64  `json:"playtime_linux_forever"`
	TimesLaunched   int64  `json:"times_launched"`
	HasVisibleStats bool   `json:"has_community_visible_stats"`
}

// IconURL returns the full media URL for the game's icon, or "".
func (g *StoreGame) IconURL(mediaBase string) string {
	if g.ImgIconURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/steamcommunity/public/images/apps/%d/%s.jpg", mediaBase, g.AppID, g.ImgIconURL)
}

// TotalHours returns the lifetime playtime in hours.
func (g *StoreGame) TotalHours() float64 {
	if g.PlaytimeForever <= 0 {
		return 0
	}
	return float64(g.PlaytimeForever) / 60.0
}

// StorePlayerSummary is a player profile from the store API.
type StorePlayerSummary struct {
	AccountID    string `json:"steamid"`
	PersonaName  string `json:"personaname"`
	ProfileURL   string `json:"profileurl"`
	Avatar       string `json:"avatarfull"`
	PersonaState int    `json:"personastate"`
	TimeCreated  int64  `json:"timecreated"`
	CountryCode  string `json:"loccountrycode"`
}

// IsOnline reports whether the player has any online presence state.
func (p *StorePlayerSummary) IsOnline() bool {
	return p.PersonaState > 0
}

// StoreAppDetails is the storefront detail payload for one application.
type StoreAppDetails struct {
	AppID            int64             `json:"steam_appid"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	IsFree           bool              `json:"is_free"`
	ShortDescription string            `json:"short_description"`
	HeaderImage      string            `json:"header_image"`
	Website          string            `json:"website"`
	Developers       []string          `json:"developers"`
	Publishers       []string          `json:"publishers"`
	Platforms        map[string]bool   `json:"platforms"`
	Categories       []StoreNamedEntry `json:"categories"`
	Genres           []StoreNamedEntry `json:"genres"`
	Screenshots      []StoreScreenshot `json:"screenshots"`
	ReleaseDate      StoreReleaseDate  `json:"release_date"`
	Metacritic       *StoreMetacritic  `json:"metacritic"`
	RequiredAge      int               `json:"required_age"`
}

// StoreNamedEntry is the {id, description} shape the storefront uses for
// genres and categories.
type StoreNamedEntry struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// StoreScreenshot is one storefront screenshot entry.
type StoreScreenshot struct {
	ID       int64  `json:"id"`
	PathFull string `json:"path_full"`
}

// StoreReleaseDate is the storefront release date wrapper.
type StoreReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// StoreMetacritic is the storefront metacritic block.
type StoreMetacritic struct {
	Score int    `json:"score"`
	URL   string `json:"url"`
}

// SupportedPlatforms lists the platform names flagged true, in a fixed order.
func (d *StoreAppDetails) SupportedPlatforms() []string {
	var out []string
	for _, name := range []string{"windows", "mac", "linux"} {
		if d.Platforms[name] {
			out = append(out, name)
		}
	}
	return out
}
