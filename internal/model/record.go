// Package model defines the catalog record types shared across the pipeline.
package model

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ExternalID is a Meteoritical Bulletin record code. The zero value means
// the identifier has not been resolved yet; a resolved id is authoritative
// and is never replaced with a different value by any later pass.
type ExternalID struct {
	code     int64
	resolved bool
}

// ResolvedID wraps a known Bulletin code. Codes are positive; zero and
// negative values yield an unresolved id.
func ResolvedID(code int64) ExternalID {
	if code <= 0 {
		return ExternalID{}
	}
	return ExternalID{code: code, resolved: true}
}

// ParseExternalID reads an id from its dataset column representation.
// Empty strings and "0" are the unresolved sentinel.
func ParseExternalID(s string) (ExternalID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return ExternalID{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some upstream tools write ids as floats ("1234.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return ExternalID{}, eris.Wrapf(err, "model: parse external id %q", s)
		}
		n = int64(f)
	}
	return ResolvedID(n), nil
}

// Resolved reports whether the id holds a real Bulletin code.
func (e ExternalID) Resolved() bool { return e.resolved }

// Int64 returns the Bulletin code, or 0 when unresolved.
func (e ExternalID) Int64() int64 {
	if !e.resolved {
		return 0
	}
	return e.code
}

// String renders the id for the dataset file: the code, or "0" when unresolved.
func (e ExternalID) String() string {
	return strconv.FormatInt(e.Int64(), 10)
}

// Fall distinguishes observed falls from later finds.
type Fall string

const (
	FallFell    Fall = "Fell"
	FallFound   Fall = "Found"
	FallUnknown Fall = ""
)

// ParseFall normalizes the fall column. Unrecognized values pass through
// unchanged so a rewrite never destroys upstream data.
func ParseFall(s string) Fall {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fell":
		return FallFell
	case "found":
		return FallFound
	case "":
		return FallUnknown
	default:
		return Fall(strings.TrimSpace(s))
	}
}

// CatalogRecord is one meteorite fall/find entity. Name is the business key.
type CatalogRecord struct {
	Name     string
	ID       ExternalID
	Recclass string
	Mass     string
	Fall     Fall
	Year     string
	Lat      *float64
	Long     *float64
}

// HasCoordinates reports whether the record carries a usable coordinate pair.
func (r *CatalogRecord) HasCoordinates() bool {
	if r.Lat == nil || r.Long == nil {
		return false
	}
	return *r.Lat >= -90 && *r.Lat <= 90 && *r.Long >= -180 && *r.Long <= 180
}
