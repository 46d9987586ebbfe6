package extract

import "strings"

// CategoryRule maps a keyword set to a category tag. Rules are plain data so
// the table can be swapped or extended without touching the matcher.
type CategoryRule struct {
	Tag      string
	Keywords []string
}

// GeneralCategory is assigned when no rule matches.
const GeneralCategory = "General"

// DefaultCategoryRules is the coarse keyword classification used across the
// academicworks portals. A listing may match several tags.
var DefaultCategoryRules = []CategoryRule{
	{Tag: "Technology/STEM", Keywords: []string{
		"technology", "computer", "engineering", "stem", "science", "math", "cyber", "data",
	}},
	{Tag: "Medical/Health", Keywords: []string{
		"medical", "health", "nursing", "doctor", "medicine", "biology", "dental", "pharmacy",
	}},
	{Tag: "Law/Policy", Keywords: []string{
		"law", "legal", "justice", "attorney", "political", "policy",
	}},
	{Tag: "Business", Keywords: []string{
		"business", "finance", "accounting", "marketing", "management", "entrepreneur",
	}},
	{Tag: "Arts/Creative", Keywords: []string{
		"art", "design", "music", "theater", "film", "creative", "media",
	}},
	{Tag: "Education", Keywords: []string{
		"education", "teaching", "teacher", "child",
	}},
	{Tag: "Athletics", Keywords: []string{
		"sport", "athlete", "athletic",
	}},
	{Tag: "Women", Keywords: []string{
		"woman", "women", "female",
	}},
	{Tag: "Diversity", Keywords: []string{
		"minority", "diversity", "hispanic", "latino", "black", "african", "asian", "native",
	}},
}

// Categorize tags a listing by substring membership over name+description.
// Intentionally coarse; not a scoring model.
func Categorize(name, description string, rules []CategoryRule) []string {
	text := strings.ToLower(name + " " + description)
	var tags []string
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}
	if len(tags) == 0 {
		tags = []string{GeneralCategory}
	}
	return tags
}
