package model

import "encoding/json"

// RawPiece is one row of the vendor cache join: a single key/value attribute
// of one title release, tagged with the title group it belongs to.
type RawPiece struct {
	GameID     string
	ReleaseKey string
	PieceType  string
	PieceValue []byte
	Images     []byte
}

// GameImage pairs a title group with its raw images blob from the vendor cache.
type GameImage struct {
	GameID string
	Images []byte
}

// PieceBody is the decoded form of a piece value. Exactly one of Mapping or
// Scalar is meaningful, selected by IsMapping. Merge logic branches on the
// tag instead of inspecting a generic value at each call site.
type PieceBody struct {
	IsMapping bool
	Mapping   map[string]interface{}
	Scalar    interface{}
}

// DecodePieceBody decodes raw bytes into a PieceBody. JSON objects become
// Mapping; any other valid JSON becomes Scalar. Input that is not valid JSON
// degrades to a Scalar holding the raw string rather than failing.
func DecodePieceBody(raw []byte) PieceBody {
	if len(raw) == 0 {
		return PieceBody{Scalar: nil}
	}

	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return PieceBody{Scalar: string(raw)}
	}

	if m, ok := decoded.(map[string]interface{}); ok {
		return PieceBody{IsMapping: true, Mapping: m}
	}
	return PieceBody{Scalar: decoded}
}

// Logo2x extracts the "logo2x" entry from a raw images blob. Returns "" when
// the blob is empty, malformed, not an object, or has no string logo2x.
func Logo2x(images []byte) string {
	if len(images) == 0 {
		return ""
	}
	var m map[string]interface{}
	if err := json.Unmarshal(images, &m); err != nil {
		return ""
	}
	if url, ok := m["logo2x"].(string); ok {
		return url
	}
	return ""
}
