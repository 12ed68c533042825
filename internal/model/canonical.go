package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Reserved interchange keys that are owned by the accumulator itself and can
// never be overwritten by a merged piece body.
const (
	KeyGameID           = "gameId"
	KeyPlatform         = "platform"
	KeyOwnedReleaseKeys = "ownedReleaseKeys"
	KeyImage            = "image"
)

// PlatformUnknown is used when a release key carries no platform prefix.
const PlatformUnknown = "unknown"

// PlatformFromReleaseKey derives the platform tag from a release key of the
// form "platform_id". Keys without an underscore map to PlatformUnknown.
func PlatformFromReleaseKey(releaseKey string) string {
	if i := strings.Index(releaseKey, "_"); i >= 0 {
		return releaseKey[:i]
	}
	return PlatformUnknown
}

// CanonicalTitle is the merged representation of one title group: the fixed
// identity fields plus an append-only, first-write-wins bag of every other
// field contributed by the title's pieces. Field insertion order is kept so
// exports are deterministic.
type CanonicalTitle struct {
	GameID   string
	Platform string
	Image    string

	releaseKeys map[string]struct{}
	fields      map[string]interface{}
	fieldOrder  []string
}

// NewCanonicalTitle starts an accumulator for one title group. The platform
// is derived once from the first release key seen and never recomputed.
func NewCanonicalTitle(gameID, firstReleaseKey string) *CanonicalTitle {
	return &CanonicalTitle{
		GameID:      gameID,
		Platform:    PlatformFromReleaseKey(firstReleaseKey),
		releaseKeys: make(map[string]struct{}),
		fields:      make(map[string]interface{}),
	}
}

// AddReleaseKey records an owned release key. Duplicates collapse.
func (t *CanonicalTitle) AddReleaseKey(releaseKey string) {
	t.releaseKeys[releaseKey] = struct{}{}
}

// OwnedReleaseKeys returns the deduplicated release keys in sorted order.
func (t *CanonicalTitle) OwnedReleaseKeys() []string {
	keys := make([]string, 0, len(t.releaseKeys))
	for k := range t.releaseKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetImageIfEmpty stores the image URL unless one was already captured.
func (t *CanonicalTitle) SetImageIfEmpty(url string) {
	if t.Image == "" && url != "" {
		t.Image = url
	}
}

// SetField merges one field into the bag, first-write-wins. Reserved keys
// are never touched. Reports whether the value was stored.
func (t *CanonicalTitle) SetField(key string, value interface{}) bool {
	switch key {
	case KeyGameID, KeyPlatform, KeyOwnedReleaseKeys, KeyImage:
		return false
	}
	if _, exists := t.fields[key]; exists {
		return false
	}
	t.fields[key] = value
	t.fieldOrder = append(t.fieldOrder, key)
	return true
}

// Field returns a merged field value, if present.
func (t *CanonicalTitle) Field(key string) (interface{}, bool) {
	v, ok := t.fields[key]
	return v, ok
}

// MergeBody folds a decoded piece body into the bag. Mapping bodies merge key
// by key; scalar bodies are stored under the piece type itself.
func (t *CanonicalTitle) MergeBody(pieceType string, body PieceBody) {
	if body.IsMapping {
		for key, value := range body.Mapping {
			t.SetField(key, value)
		}
		return
	}
	t.SetField(pieceType, body.Scalar)
}

// MarshalJSON writes the flat interchange object: identity fields first, then
// the merged bag in insertion order.
func (t *CanonicalTitle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(key string, value interface{}) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal field %q: %w", key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := writeField(KeyGameID, t.GameID); err != nil {
		return nil, err
	}
	if err := writeField(KeyPlatform, t.Platform); err != nil {
		return nil, err
	}
	if err := writeField(KeyOwnedReleaseKeys, t.OwnedReleaseKeys()); err != nil {
		return nil, err
	}
	if t.Image != "" {
		if err := writeField(KeyImage, t.Image); err != nil {
			return nil, err
		}
	}
	for _, key := range t.fieldOrder {
		if err := writeField(key, t.fields[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat interchange object back into the accumulator.
// Identity fields are extracted; everything else lands in the bag.
func (t *CanonicalTitle) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t.releaseKeys = make(map[string]struct{})
	t.fields = make(map[string]interface{})
	t.fieldOrder = nil

	if v, ok := raw[KeyGameID]; ok {
		if err := json.Unmarshal(v, &t.GameID); err != nil {
			return fmt.Errorf("decode gameId: %w", err)
		}
	}
	if v, ok := raw[KeyPlatform]; ok {
		if err := json.Unmarshal(v, &t.Platform); err != nil {
			return fmt.Errorf("decode platform: %w", err)
		}
	}
	if v, ok := raw[KeyImage]; ok {
		if err := json.Unmarshal(v, &t.Image); err != nil {
			return fmt.Errorf("decode image: %w", err)
		}
	}
	if v, ok := raw[KeyOwnedReleaseKeys]; ok {
		var keys []string
		if err := json.Unmarshal(v, &keys); err != nil {
			return fmt.Errorf("decode ownedReleaseKeys: %w", err)
		}
		for _, k := range keys {
			t.AddReleaseKey(k)
		}
	}

	// Remaining keys go through the bag in sorted order; the source object's
	// own ordering is not recoverable from a map.
	rest := make([]string, 0, len(raw))
	for key := range raw {
		switch key {
		case KeyGameID, KeyPlatform, KeyOwnedReleaseKeys, KeyImage:
			continue
		}
		rest = append(rest, key)
	}
	sort.Strings(rest)
	for _, key := range rest {
		var value interface{}
		if err := json.Unmarshal(raw[key], &value); err != nil {
			return fmt.Errorf("decode field %q: %w", key, err)
		}
		t.SetField(key, value)
	}

	return nil
}

// ToMap flattens the title into a plain map, the shape the normalizer takes.
func (t *CanonicalTitle) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(t.fields)+4)
	out[KeyGameID] = t.GameID
	out[KeyPlatform] = t.Platform
	out[KeyOwnedReleaseKeys] = t.OwnedReleaseKeys()
	if t.Image != "" {
		out[KeyImage] = t.Image
	}
	for key, value := range t.fields {
		out[key] = value
	}
	return out
}
