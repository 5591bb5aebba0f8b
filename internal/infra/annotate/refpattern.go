package annotate

import (
	"regexp"

	"authstamp/internal/domain"
)

// An Algorand transaction id is 52 unpadded base32 characters.
var (
	labeledRefPattern = regexp.MustCompile(`(?:Transaction ID|Certificate|txId)\s*[:=]\s*([A-Z2-7]{52})`)
	queryRefPattern   = regexp.MustCompile(`txId=([A-Z2-7]{52})`)
	bareRefPattern    = regexp.MustCompile(`\b([A-Z2-7]{52})\b`)
)

// findReference scans text for an embedded record reference, preferring
// labeled occurrences over bare base32 runs.
func findReference(text string) (domain.RecordRef, bool) {
	for _, pattern := range []*regexp.Regexp{labeledRefPattern, queryRefPattern, bareRefPattern} {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return domain.RecordRef(m[1]), true
		}
	}
	return "", false
}
