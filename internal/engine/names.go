package engine

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var donorCaser = cases.Title(language.Und, cases.NoLower)

// NormalizeDonorName trims and collapses whitespace and title-cases the
// donor display name as written onto cells and batches.
func NormalizeDonorName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return donorCaser.String(strings.Join(fields, " "))
}
