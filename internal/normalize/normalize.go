// Package normalize converts heterogeneous raw title records - vendor cache
// exports and store API payloads - into the typed destination shape. Every
// field is read with a default-on-absence policy: a malformed or missing
// field degrades to its zero value instead of failing the record.
package normalize

import (
	"fmt"
	"log"
	"strconv"

	"gameshelf-sync-api/internal/model"
)

// subKeys lists, per child field, which sub-field to extract when the
// incoming sequence holds mapping-typed elements instead of scalars.
var listFields = []struct {
	keys   []string // accepted source keys, first present wins
	subKey string
	assign func(*model.GameRecord, []string)
}{
	{[]string{"genres"}, "name", func(r *model.GameRecord, v []string) { r.Genres = v }},
	{[]string{"developers"}, "name", func(r *model.GameRecord, v []string) { r.Developers = v }},
	{[]string{"publishers"}, "name", func(r *model.GameRecord, v []string) { r.Publishers = v }},
	{[]string{"tags"}, "name", func(r *model.GameRecord, v []string) { r.Tags = v }},
	{[]string{"themes"}, "name", func(r *model.GameRecord, v []string) { r.Themes = v }},
	{[]string{"features"}, "name", func(r *model.GameRecord, v []string) { r.Features = v }},
	{[]string{"supported", "supportedPlatforms"}, "platform", func(r *model.GameRecord, v []string) { r.SupportedPlatforms = v }},
	{[]string{"ownedReleaseKeys"}, "releaseKey", func(r *model.GameRecord, v []string) { r.OwnedReleaseKeys = v }},
	{[]string{"screenshots"}, "url", func(r *model.GameRecord, v []string) { r.Screenshots = v }},
	{[]string{"videos"}, "url", func(r *model.GameRecord, v []string) { r.Videos = v }},
}

// GameRecordFromMap builds a typed GameRecord from one flat interchange
// mapping. Absent or malformed fields degrade to defaults; nothing here
// aborts the record.
func GameRecordFromMap(raw map[string]interface{}) *model.GameRecord {
	rec := &model.GameRecord{
		GameID:            Str(raw["gameId"]),
		Title:             Str(raw["title"]),
		Summary:           Str(raw["summary"]),
		Platform:          Str(raw["platform"]),
		ReleaseDate:       Str(raw["releaseDate"]),
		CriticsScore:      F64(raw["criticsScore"]),
		MyRating:          F64(raw["myRating"]),
		IsFromProductsAPI: Bool(raw["isFromProductsApi"]),
		IsModifiedByUser:  Bool(raw["isModifiedByUser"]),
		State:             Str(raw["state"]),
		ParentGrk:         Str(raw["parentGrk"]),
		Background:        Str(raw["background"]),
		HorizontalCover:   Str(raw["horizontalCover"]),
		VerticalCover:     Str(raw["verticalCover"]),
		SquareIcon:        Str(raw["squareIcon"]),
		ProductCard:       Str(raw["productCard"]),
		Changelog:         Str(raw["changelog"]),
		Forum:             Str(raw["forum"]),
		Support:           Str(raw["support"]),
	}

	// The cache export carries the logo under "image"; API records may
	// carry "logo" directly.
	rec.Logo = Str(raw["image"])
	if rec.Logo == "" {
		rec.Logo = Str(raw["logo"])
	}

	for _, lf := range listFields {
		for _, key := range lf.keys {
			if v, ok := raw[key]; ok {
				lf.assign(rec, StringList(rec.GameID, key, v, lf.subKey))
				break
			}
		}
	}

	rec.Score = scoreFrom(raw)
	rec.Stats = statsFrom(raw)

	return rec
}

// StringList coerces a source sequence into a flat list of strings. Elements
// may be mappings (the subKey field is extracted) or scalars (used directly).
// An empty sequence short-circuits before any element is inspected. Elements
// that fit neither shape are dropped with a warning, not fatal.
func StringList(gameID, field string, v interface{}, subKey string) []string {
	items := asSlice(v)
	if len(items) == 0 {
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		switch e := item.(type) {
		case nil:
			continue
		case map[string]interface{}:
			if s := Str(e[subKey]); s != "" {
				out = append(out, s)
			}
		case string:
			if e != "" {
				out = append(out, e)
			}
		case float64, int, int64, bool:
			out = append(out, Str(e))
		default:
			log.Printf("[Normalizer] warning: game %s field %q has unusable element %T, dropped", gameID, field, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// asSlice accepts the two slice shapes seen in practice: []interface{} from
// decoded JSON and []string from in-process conversion.
func asSlice(v interface{}) []interface{} {
	switch s := v.(type) {
	case []interface{}:
		return s
	case []string:
		out := make([]interface{}, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out
	default:
		return nil
	}
}

// scoreFrom attaches the one-to-one score child only when the source field
// is present and non-empty. Absence means no child row, not a zeroed one.
func scoreFrom(raw map[string]interface{}) *model.Score {
	v, ok := raw["score"]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil
	}
	return &model.Score{
		Critics:    F64(m["critics"]),
		Users:      F64(m["users"]),
		Metacritic: F64(m["metacritic"]),
	}
}

// statsFrom attaches the one-to-one play-stats child only when present and
// non-empty. Both the cache's and the API's key spellings are accepted.
func statsFrom(raw map[string]interface{}) *model.GameStats {
	v, ok := raw["gameStats"]
	if !ok {
		v, ok = raw["game_stats"]
	}
	if !ok {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil
	}
	return &model.GameStats{
		Playtime:      I64(m["playtime"]),
		LastPlayed:    Str(m["lastPlayed"]),
		TimesLaunched: I64(m["timesLaunched"]),
	}
}

// Str coerces a decoded JSON value to a string, "" on absence or mismatch.
func Str(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		// JSON numbers decode to float64; keep integral values clean.
		if s == float64(int64(s)) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// F64 coerces a decoded JSON value to a float64, 0 on absence or mismatch.
func F64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// I64 coerces a decoded JSON value to an int64, 0 on absence or mismatch.
func I64(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int:
		return int64(n)
	case int64:
		return n
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Bool coerces a decoded JSON value to a bool. Numeric 1 and the usual
// truthy strings count, matching the loose flags in cache exports.
func Bool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case int:
		return b != 0
	case string:
		switch b {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	default:
		return false
	}
}
