package mlclassify

import (
	"fmt"
	"strconv"
	"strings"
)

// parseLabelScore parses a "<label> <score>" completion into a Result,
// the common reply shape every provider in this package is prompted to
// produce so they share one parser instead of three bespoke ones.
func parseLabelScore(text string) (Result, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return Result{}, fmt.Errorf("mlclassify: empty classification response")
	}
	label := fields[0]
	score := 0.0
	if len(fields) > 1 {
		if s, err := strconv.ParseFloat(fields[1], 64); err == nil {
			score = s
		}
	}
	return Result{Label: label, Score: score}, nil
}
