package uploads

import (
	"math/rand"
	"strings"
)

const (
	reportCodeGroupLength = 4
	reportCodeGroupCount  = 3
	separator             = "-"
	// Ambiguous characters (0/O, 1/I) are excluded so codes survive being
	// read from a printed report.
	characters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// ReportCodeGenerator produces the human-readable reference printed on
// exported reports.
type ReportCodeGenerator interface {
	Generate() string
}

func NewReportCodeGenerator() (ReportCodeGenerator, error) {
	return &reportCodeGenerator{
		groupCount:  reportCodeGroupCount,
		groupLength: reportCodeGroupLength,
		separator:   separator,
		chars:       characters,
	}, nil
}

type reportCodeGenerator struct {
	groupCount  int
	groupLength int
	separator   string
	chars       string
}

func (s *reportCodeGenerator) Generate() string {
	groups := make([]string, s.groupCount)
	for i := range groups {
		groups[i] = generateRandomStringFromAlphabet(s.chars, s.groupLength)
	}
	return strings.Join(groups, s.separator)
}

func generateRandomStringFromAlphabet(chars string, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = chars[rand.Intn(len(chars))]
	}
	return string(b)
}
