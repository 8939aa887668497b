package domain

import "strings"

type FilterMode string

const (
	FilterAll      FilterMode = "all"
	FilterFive     FilterMode = "five"
	FilterFourPlus FilterMode = "fourPlus"
)

type SortMode string

const (
	SortDefault SortMode = "default"
	SortNewest  SortMode = "newest"
	SortOldest  SortMode = "oldest"
	SortHighest SortMode = "highest"
)

// ParseFilter maps a control value to a filter mode. The page's filter
// buttons use "5" and "4"; unknown values mean all.
func ParseFilter(s string) FilterMode {
	switch strings.TrimSpace(s) {
	case "five", "5":
		return FilterFive
	case "fourPlus", "fourplus", "4", "4+":
		return FilterFourPlus
	default:
		return FilterAll
	}
}

// ParseSort maps a control value to a sort mode; unknown values mean default.
func ParseSort(s string) SortMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "newest":
		return SortNewest
	case "oldest":
		return SortOldest
	case "highest":
		return SortHighest
	default:
		return SortDefault
	}
}
