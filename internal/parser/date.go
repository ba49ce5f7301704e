package parser

import (
	"regexp"
	"strings"
	"time"
)

// Date forms recognized inside file names, in order of preference. The more
// specific forms win over the ambiguous 2-digit-year ones. Separators can be
// "-", "/", "." or space.
var dateForms = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\b((?:19|20)\d\d)[- /.](1[012]|0[1-9])[- /.](3[01]|[12]\d|0[1-9])\b`), "2006-01-02"},
	{regexp.MustCompile(`\b(3[01]|[12]\d|0[1-9])[- /.](1[012]|0[1-9])[- /.]((?:19|20)\d\d)\b`), "02-01-2006"},
	{regexp.MustCompile(`\b(\d\d)[- /.](1[012]|0[1-9])[- /.](3[01]|[12]\d|0[1-9])\b`), "06-01-02"},
	{regexp.MustCompile(`\b(3[01]|[12]\d|0[1-9])[- /.](1[012]|0[1-9])[- /.](\d\d)\b`), "02-01-06"},
	{regexp.MustCompile(`\b((?:19|20)\d\d)[- /.](1[012]|0[1-9])\b`), "2006-01"},
	{regexp.MustCompile(`\b(1[012]|0[1-9])[- /.]((?:19|20)\d\d)\b`), "01-2006"},
	{regexp.MustCompile(`\b((?:19|20)\d\d)\b`), "2006"},
}

// FindDate scans text for a date substring and returns it as ISO
// YYYY-MM-DD. Year-only and year-month hits are padded to day 1. Candidates
// failing calendar validation (e.g. Feb 31) are skipped, not accepted.
// Returns "" when nothing parses.
func FindDate(text string) string {
	if text == "" {
		return ""
	}
	// Word boundaries do not trigger around underscores, switch them to "-".
	safe := strings.ReplaceAll(text, "_", "-")
	for _, form := range dateForms {
		for _, m := range form.re.FindAllStringSubmatch(safe, -1) {
			candidate := strings.Join(m[1:], "-")
			if t, err := time.Parse(form.layout, candidate); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return ""
}
