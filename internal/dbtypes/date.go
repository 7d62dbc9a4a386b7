package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DefaultDicomDate is the value used whenever a study carries no usable date.
const DefaultDicomDate = "00000000"

// DicomDateString is a raw DICOM DA value: exactly eight ASCII digits,
// YYYYMMDD. Invalid input collapses to DefaultDicomDate instead of erroring;
// the ingest path must never stall on a malformed modality date.
type DicomDateString string

// MakeDicomDate validates s and falls back to the default on anything that is
// not eight ASCII digits.
func MakeDicomDate(s string) DicomDateString {
	if !validDicomDate(s) {
		return DefaultDicomDate
	}
	return DicomDateString(s)
}

func validDicomDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	for i := 0; i < 8; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String returns the raw YYYYMMDD text.
func (d DicomDateString) String() string {
	if d == "" {
		return DefaultDicomDate
	}
	return string(d)
}

// Value implements driver.Valuer.
func (d DicomDateString) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *DicomDateString) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = DefaultDicomDate
	case string:
		*d = MakeDicomDate(v)
	case []byte:
		*d = MakeDicomDate(string(v))
	default:
		return fmt.Errorf("cannot scan %T into DICOM date", src)
	}
	return nil
}

// UnmarshalJSON re-validates decoded payloads.
func (d *DicomDateString) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = MakeDicomDate(raw)
	return nil
}
