// Package dbtypes provides the length-bounded text types shared by the
// entity model and the database schema. All of them round-trip through
// database/sql and JSON by value.
package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Limit is a marker carrying the maximum byte width of a BoundedString.
type Limit interface {
	Max() int
}

type (
	// Len10 bounds at 10 bytes (HTTP methods).
	Len10 struct{}
	// Len16 bounds at 16 bytes (short status words).
	Len16 struct{}
	// Len32 bounds at 32 bytes (operation and resource kinds).
	Len32 struct{}
	// Len45 bounds at 45 bytes (textual IP addresses, v6 included).
	Len45 struct{}
	// Len64 bounds at 64 bytes (tenant ids and DICOM UIDs).
	Len64 struct{}
	// Len128 bounds at 128 bytes (person names, usernames).
	Len128 struct{}
	// Len512 bounds at 512 bytes (paths, user agents).
	Len512 struct{}
	// Len1024 bounds at 1024 bytes (free-text descriptions).
	Len1024 struct{}
)

func (Len10) Max() int   { return 10 }
func (Len16) Max() int   { return 16 }
func (Len32) Max() int   { return 32 }
func (Len45) Max() int   { return 45 }
func (Len64) Max() int   { return 64 }
func (Len128) Max() int  { return 128 }
func (Len512) Max() int  { return 512 }
func (Len1024) Max() int { return 1024 }

// BoundedString is UTF-8 text whose byte length never exceeds the Limit.
// Construction truncates silently on a rune boundary rather than failing,
// matching what the DICOM ingest path needs for over-long element values.
type BoundedString[L Limit] string

// Make builds a BoundedString, truncating s to the limit if needed.
func Make[L Limit](s string) BoundedString[L] {
	var l L
	return BoundedString[L](truncate(s, l.Max()))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Cut on a rune boundary so the stored value stays valid UTF-8.
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// String returns the underlying text.
func (s BoundedString[L]) String() string { return string(s) }

// Value implements driver.Valuer.
func (s BoundedString[L]) Value() (driver.Value, error) {
	return string(s), nil
}

// Scan implements sql.Scanner. Over-long database values are truncated the
// same way Make truncates, so a widened column never breaks reads.
func (s *BoundedString[L]) Scan(src any) error {
	var l L
	switch v := src.(type) {
	case nil:
		*s = ""
	case string:
		*s = BoundedString[L](truncate(v, l.Max()))
	case []byte:
		*s = BoundedString[L](truncate(string(v), l.Max()))
	default:
		return fmt.Errorf("cannot scan %T into bounded string", src)
	}
	return nil
}

// UnmarshalJSON re-applies the bound so decoded payloads keep the invariant.
func (s *BoundedString[L]) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var l L
	*s = BoundedString[L](truncate(raw, l.Max()))
	return nil
}
