// Package extract turns one row of a portal listing table into a canonical
// Scholarship. The portals are all instances of the same third-party
// platform, so a single set of cell selectors covers every source; markup
// drift upstream shows up as rows marked invalid, not as failures.
package extract

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"scholar-fetch/internal/scholar/model"
)

const (
	amountSelector      = "td.strong.h4"
	nameLinkSelector    = `th[scope="row"] a`
	descriptionSelector = `th[scope="row"] .mq-no-bp-only`
	deadlineSelector    = "td.center span.mq-no-bp-only"

	placeholderName = "Scholarship Opportunity"
	noDescription   = "No description available."
)

// Extractor converts listing rows to scholarships. Category rules are
// injected so the keyword table stays testable and extensible.
type Extractor struct {
	Rules []CategoryRule
}

func NewExtractor() *Extractor {
	return &Extractor{Rules: DefaultCategoryRules}
}

// Extract parses one table row. ok=false means the row is invalid and must
// be dropped: no usable name/link, a deep link that resolves to the bare
// portal root, or a deadline that is present but neither a real date nor the
// "See Website" sentinel.
func (e *Extractor) Extract(row *goquery.Selection, src model.Source) (model.Scholarship, bool) {
	amount := parseAmount(row.Find(amountSelector).Text())

	anchor := row.Find(nameLinkSelector).First()
	name := strings.TrimSpace(anchor.Text())
	href, _ := anchor.Attr("href")
	link := resolveLink(src.BaseURL, strings.TrimSpace(href))
	if name == "" && link != "" {
		name = placeholderName
	}
	if name == "" || link == "" || strings.TrimSuffix(link, "/") == src.BaseURL {
		return model.Scholarship{}, false
	}

	description := strings.TrimSpace(row.Find(descriptionSelector).Text())
	if description == "" {
		description = noDescription
	}

	deadline, ok := model.ResolveDeadline(row.Find(deadlineSelector).Text())
	if !ok {
		return model.Scholarship{}, false
	}

	return model.Scholarship{
		ID:           model.StableID(src.ID, name, amount),
		Name:         name,
		Provider:     src.Provider(),
		Amount:       amount,
		Deadline:     deadline,
		Description:  description,
		Requirements: deriveRequirements(description),
		URL:          link,
		SourceID:     src.ID,
		Categories:   Categorize(name, description, e.Rules),
		UpdatedAt:    time.Now().UTC(),
	}, true
}

// parseAmount strips currency formatting and floors to whole dollars.
// Anything unparseable means "varies" and maps to 0.
func parseAmount(text string) int {
	clean := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(text))
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int(math.Floor(f))
}

func resolveLink(baseURL, href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return baseURL + href
}
