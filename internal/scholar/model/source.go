package model

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source is one university's external-opportunities portal. The roster is
// static configuration loaded once at startup; entries are never mutated.
type Source struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"displayName" json:"display_name"`
	BaseURL     string `yaml:"baseUrl" json:"base_url"`
	ListingPath string `yaml:"listingPath" json:"listing_path"`
}

// Provider is the human-readable label attached to scholarships scraped
// from this source.
func (s Source) Provider() string {
	return s.DisplayName + " External Opportunities"
}

// ListingURL is the absolute URL of one page of the source's listing table.
func (s Source) ListingURL(page int) string {
	return fmt.Sprintf("%s%s?page=%d", s.BaseURL, s.ListingPath, page)
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// LoadSources reads the portal roster. Entries missing an id or base URL are
// rejected up front rather than silently producing broken scrape targets.
func LoadSources(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sources %s: %w", path, err)
	}
	if len(f.Sources) == 0 {
		return nil, fmt.Errorf("sources %s: empty roster", path)
	}
	seen := make(map[string]bool, len(f.Sources))
	for i, src := range f.Sources {
		if src.ID == "" || src.BaseURL == "" {
			return nil, fmt.Errorf("sources %s: entry %d missing id or baseUrl", path, i)
		}
		if seen[src.ID] {
			return nil, fmt.Errorf("sources %s: duplicate id %q", path, src.ID)
		}
		seen[src.ID] = true
		if src.DisplayName == "" {
			f.Sources[i].DisplayName = src.ID
		}
		if src.ListingPath == "" {
			f.Sources[i].ListingPath = "/opportunities/external"
		}
		f.Sources[i].BaseURL = strings.TrimSuffix(src.BaseURL, "/")
	}
	return f.Sources, nil
}
