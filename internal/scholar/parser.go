package scholar

import (
	"bytes"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Scholar renders the total in a few page variants; space, NBSP, comma and
// dot all appear as digit group separators depending on locale.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)about\s+([\d\s.,\x{00A0}]+\s*[kKmMbB]?)\s+results?`),
	regexp.MustCompile(`(?im)^\s*([\d\s.,\x{00A0}]+\s*[kKmMbB]?)\s+results?`),
}

var blockMarkers = []string{
	"unusual traffic",
	"recaptcha",
	"/sorry/",
}

// resultStatsSelectors are tried in order before falling back to scanning
// the whole document.
var resultStatsSelectors = []string{
	"#gs_ab_md .gs_ab_mdw",
	"#gs_ab_md",
}

// ParseResultCount extracts the approximate result count from a Scholar
// results page. It returns ErrBlocked for captcha/traffic-check pages,
// zero for an explicit empty result set, and ErrNoCount when no count
// string can be located.
func ParseResultCount(html []byte) (int, error) {
	lower := bytes.ToLower(html)
	for _, marker := range blockMarkers {
		if bytes.Contains(lower, []byte(marker)) {
			return 0, ErrBlocked
		}
	}
	if bytes.Contains(lower, []byte("did not match any articles")) {
		return 0, nil
	}

	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html)); err == nil {
		for _, sel := range resultStatsSelectors {
			text := strings.TrimSpace(doc.Find(sel).First().Text())
			if text == "" {
				continue
			}
			if count, ok := matchCount(text); ok {
				return count, nil
			}
		}
	}

	if count, ok := matchCount(string(html)); ok {
		return count, nil
	}
	return 0, ErrNoCount
}

func matchCount(text string) (int, bool) {
	for _, pattern := range countPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		count, err := ParseApproxNumber(m[1])
		if err != nil {
			continue
		}
		return count, true
	}
	return 0, false
}

var shorthandMultipliers = map[byte]float64{
	'k': 1e3,
	'm': 1e6,
	'b': 1e9,
}

// ParseApproxNumber converts a human-formatted count like "1,234",
// "12 300", "1.2k" or "3.4M" into the exact integer it denotes. Without a
// shorthand suffix every non-digit is treated as a group separator.
func ParseApproxNumber(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty count string")
	}

	suffix := s[len(s)-1] | 0x20 // ASCII lowercase
	if mult, ok := shorthandMultipliers[suffix]; ok {
		num := strings.TrimSpace(s[:len(s)-1])
		num = strings.ReplaceAll(num, ",", "")
		num = strings.ReplaceAll(num, " ", "")
		f, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, fmt.Errorf("parse shorthand count %q: %w", raw, err)
		}
		if f < 0 {
			return 0, fmt.Errorf("negative count %q", raw)
		}
		return int(math.Round(f * mult)), nil
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, fmt.Errorf("no digits in count %q", raw)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", raw, err)
	}
	return n, nil
}
