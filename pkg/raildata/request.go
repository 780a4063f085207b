package raildata

import (
	"fmt"
	"regexp"
	"strings"
)

// FilterDirection restricts a station board to services travelling to or
// from the filter station.
type FilterDirection string

const (
	FilterDirectionTo   FilterDirection = "to"
	FilterDirectionFrom FilterDirection = "from"
)

var crsRegex = regexp.MustCompile(`^[A-Z]{3}$`)

// StationBoardRequest describes a single departure board query against an
// upstream provider.
type StationBoardRequest struct {
	CRS             string
	NumRows         int
	FilterCRS       string
	FilterDirection FilterDirection
	TimeOffset      int
	TimeWindow      int
}

// Normalize upper-cases the station codes in place.
func (r *StationBoardRequest) Normalize() {
	r.CRS = strings.ToUpper(strings.TrimSpace(r.CRS))
	r.FilterCRS = strings.ToUpper(strings.TrimSpace(r.FilterCRS))
}

// Validate checks the request after normalisation.
func (r *StationBoardRequest) Validate() error {
	if !crsRegex.MatchString(r.CRS) {
		return NewError(CodeParseError, fmt.Sprintf("invalid CRS code %q", r.CRS), nil)
	}

	if r.FilterCRS != "" && !crsRegex.MatchString(r.FilterCRS) {
		return NewError(CodeParseError, fmt.Sprintf("invalid filter CRS code %q", r.FilterCRS), nil)
	}

	if r.FilterCRS != "" && r.FilterDirection != FilterDirectionTo && r.FilterDirection != FilterDirectionFrom {
		return NewError(CodeParseError, "filter direction must be 'to' or 'from'", nil)
	}

	return nil
}

// CacheKey derives a memoisation key from every field of the request, not
// just the station code.
func (r *StationBoardRequest) CacheKey() string {
	return fmt.Sprintf("board:%s:%d:%s:%s:%d:%d", r.CRS, r.NumRows, r.FilterCRS, r.FilterDirection, r.TimeOffset, r.TimeWindow)
}

// ValidCRS reports whether code is a well formed CRS code after upper-casing.
func ValidCRS(code string) bool {
	return crsRegex.MatchString(strings.ToUpper(code))
}
