// Package dicomutil provides typed element readers over parsed DICOM
// datasets. Values come back trimmed of the padding DICOM writers add.
package dicomutil

import (
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

func clean(s string) string {
	return strings.TrimRight(s, "\x00 ")
}

// GetString returns the first value of a string element, or "" if the
// element is absent or not textual.
func GetString(ds *dicom.Dataset, t tag.Tag) string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return ""
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok || len(vals) == 0 {
		return ""
	}
	return clean(vals[0])
}

// GetStrings returns all values of a multi-valued string element.
func GetStrings(ds *dicom.Dataset, t tag.Tag) []string {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, clean(v))
	}
	return out
}

// GetStringPtr returns the element value, or nil when absent or empty.
func GetStringPtr(ds *dicom.Dataset, t tag.Tag) *string {
	s := GetString(ds, t)
	if s == "" {
		return nil
	}
	return &s
}

// GetInt parses an integer element (IS strings included), returning def when
// absent or unparseable.
func GetInt(ds *dicom.Dataset, t tag.Tag, def int32) int32 {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return def
	}
	switch vals := el.Value.GetValue().(type) {
	case []int:
		if len(vals) > 0 {
			return int32(vals[0])
		}
	case []string:
		if len(vals) > 0 {
			if n, err := strconv.ParseInt(strings.TrimSpace(clean(vals[0])), 10, 32); err == nil {
				return int32(n)
			}
		}
	}
	return def
}

// GetIntPtr is GetInt with absence reported as nil.
func GetIntPtr(ds *dicom.Dataset, t tag.Tag) *int32 {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil
	}
	v := GetInt(ds, t, 0)
	return &v
}

// GetFloatPtr parses a decimal element (DS strings included), nil on absence.
func GetFloatPtr(ds *dicom.Dataset, t tag.Tag) *float64 {
	el, err := ds.FindElementByTag(t)
	if err != nil || el == nil {
		return nil
	}
	switch vals := el.Value.GetValue().(type) {
	case []float64:
		if len(vals) > 0 {
			return &vals[0]
		}
	case []string:
		if len(vals) > 0 {
			if f, err := strconv.ParseFloat(strings.TrimSpace(clean(vals[0])), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// GetBackslashJoined returns a multi-valued element in its wire form,
// values joined by backslashes, or nil when absent.
func GetBackslashJoined(ds *dicom.Dataset, t tag.Tag) *string {
	vals := GetStrings(ds, t)
	if len(vals) == 0 {
		return nil
	}
	s := strings.Join(vals, "\\")
	return &s
}
