package agent

import (
	"math"
	"regexp"
	"strconv"
)

var (
	ratingLabelPattern = regexp.MustCompile(`(?i)rating:\s*(\d+)`)
	ratingScalePattern = regexp.MustCompile(`(\d+)\s*/\s*10`)
)

// ParseRating scans free-form assessment text for an embedded score,
// trying a "Rating: <n>" label first and an "<n>/10" fraction second.
// It returns nil when no recognizable pattern is present. Values above 5
// are treated as a legacy 1-10 scale and collapsed onto the canonical 1-5
// scale by halving and rounding to the nearest integer.
func ParseRating(text string) *int {
	match := ratingLabelPattern.FindStringSubmatch(text)
	if match == nil {
		match = ratingScalePattern.FindStringSubmatch(text)
	}
	if match == nil {
		return nil
	}

	rating, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}

	if rating > 5 {
		rating = int(math.Round(float64(rating) / 2))
	}

	return &rating
}
