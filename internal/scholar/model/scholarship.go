package model

import (
	"fmt"
	"strings"
	"time"
)

// DeadlineSentinel is the one non-date deadline value allowed through the
// pipeline; portals use it for rolling or unadvertised deadlines.
const DeadlineSentinel = "See Website"

// Scholarship is the canonical entity produced by extraction and stored as
// one document per listing. Documents are keyed by the content-derived ID so
// re-scrapes overwrite in place instead of appending duplicates.
type Scholarship struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Provider     string    `bson:"provider" json:"provider"`
	Amount       int       `bson:"amount" json:"amount"` // 0 = varies / unknown
	Deadline     string    `bson:"deadline" json:"deadline"`
	Description  string    `bson:"description" json:"description"`
	Requirements []string  `bson:"requirements" json:"requirements"`
	URL          string    `bson:"link" json:"url"`
	SourceID     string    `bson:"university_id" json:"university_id"`
	Categories   []string  `bson:"categories" json:"categories"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// StableID derives a scholarship identifier from content rather than page or
// row position. Row order and page boundaries shift between scrapes; the
// (source, name, amount) triple does not, so the same listing always maps to
// the same document.
func StableID(sourceID, name string, amount int) string {
	return fmt.Sprintf("%s-%s-%d", sourceID, slugify(name), amount)
}

func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevDash := true // suppress a leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// deadlineLayouts covers the date formats seen across portals.
var deadlineLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"2006-01-02",
	"Jan 2, 2006",
	"January 2, 2006",
	"01/02/06",
}

// ResolveDeadline normalizes a raw deadline cell. It returns the ISO date for
// a parseable calendar date, the sentinel for "see website" (any case) or an
// empty cell, and ok=false for anything else.
func ResolveDeadline(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, DeadlineSentinel) {
		return DeadlineSentinel, true
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
