package entities

import (
	"errors"
	"fmt"
)

// SortType selects one of the four list orders.
type SortType string

const (
	SortNameAsc       SortType = "name_asc"
	SortNameDesc      SortType = "name_desc"
	SortFrequencyAsc  SortType = "frequency_asc"
	SortFrequencyDesc SortType = "frequency_desc"
)

// ErrInvalidSortType is returned when a sort name is not one of the known orders.
var ErrInvalidSortType = errors.New("invalid sort type")

// SortTypes lists every supported order.
var SortTypes = []SortType{SortNameAsc, SortNameDesc, SortFrequencyAsc, SortFrequencyDesc}

// ParseSortType converts a query-string value into a SortType.
// An empty string yields SortNameAsc.
func ParseSortType(s string) (SortType, error) {
	if s == "" {
		return SortNameAsc, nil
	}
	for _, st := range SortTypes {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSortType, s)
}

// OrderClause returns the SQL ORDER BY expression for the sort type.
func (s SortType) OrderClause() string {
	switch s {
	case SortNameDesc:
		return "name DESC"
	case SortFrequencyAsc:
		return "frequency ASC"
	case SortFrequencyDesc:
		return "frequency DESC"
	default:
		return "name ASC"
	}
}
