package extract

import (
	"regexp"
	"strings"
)

// FallbackRequirement is emitted when no eligibility sentence survives either
// extraction tier. Descriptions are free-text prose, so degrading to a
// pointer at the source beats dropping the row.
const FallbackRequirement = "Please review the full eligibility requirements on the website."

var eligibilityKeywords = []string{
	"must", "eligible", "gpa", "student", "major", "enrolled", "year", "preference", "criteria",
}

var boilerplatePhrases = []string{
	"click here", "apply button",
}

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	splitDecimalRe = regexp.MustCompile(`(\d)\. (\d)`)
	// sentence boundary: terminal punctuation, whitespace, then a capital
	sentenceSplitRe = regexp.MustCompile(`[.?!;]\s+[A-Z]`)
)

// cleanDescription flattens newlines, collapses runs of whitespace, and
// repairs decimal points the portal markup splits across whitespace
// ("3. 0 GPA" -> "3.0 GPA").
func cleanDescription(desc string) string {
	s := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(desc)
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = splitDecimalRe.ReplaceAllString(s, "$1.$2")
	return strings.TrimSpace(s)
}

// splitSentences cuts text after terminal punctuation that is followed by a
// capital letter, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for _, m := range sentenceSplitRe.FindAllStringIndex(text, -1) {
		// m[0] is the punctuation; the capital starts the next sentence
		out = append(out, text[start:m[0]+1])
		start = m[1] - 1
	}
	out = append(out, text[start:])
	return out
}

func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// deriveRequirements pulls eligibility sentences out of a free-text
// description. Strict tier first: sentence-like segments of 16..199 chars
// carrying an eligibility keyword and no boilerplate, capped at 5. If none
// survive, a looser split on "." and ";" requiring only "must" and length
// > 20, capped at 3. If still none, the fixed fallback line.
func deriveRequirements(description string) []string {
	clean := cleanDescription(description)

	var reqs []string
	for _, seg := range splitSentences(clean) {
		seg = strings.TrimSpace(seg)
		if len(seg) <= 15 || len(seg) >= 200 {
			continue
		}
		lower := strings.ToLower(seg)
		if containsAny(lower, boilerplatePhrases) {
			continue
		}
		if !containsAny(lower, eligibilityKeywords) {
			continue
		}
		reqs = append(reqs, seg)
		if len(reqs) == 5 {
			return reqs
		}
	}
	if len(reqs) > 0 {
		return reqs
	}

	for _, seg := range strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == ';' }) {
		seg = strings.TrimSpace(seg)
		if len(seg) > 20 && strings.Contains(strings.ToLower(seg), "must") {
			reqs = append(reqs, seg)
			if len(reqs) == 3 {
				break
			}
		}
	}
	if len(reqs) > 0 {
		return reqs
	}

	return []string{FallbackRequirement}
}
