package task

import (
	"fmt"
	"strings"

	"github.com/amonks/tally/internal/validation"
)

const (
	// CategoryAuto asks the store to infer the category from the task text.
	CategoryAuto = "Auto"

	// CategoryOther is used when no rule matches.
	CategoryOther = "Other"
)

// CategoryRule maps a category label to the keywords that select it.
type CategoryRule struct {
	Name     string   `toml:"name" json:"name"`
	Keywords []string `toml:"keywords" json:"keywords"`
}

// DefaultCategoryRules is the built-in keyword table, in match order.
var DefaultCategoryRules = []CategoryRule{
	{Name: "Work", Keywords: []string{"report", "meeting", "client", "deploy", "email", "presentation", "invoice", "project", "standup", "review"}},
	{Name: "Study", Keywords: []string{"study", "exam", "homework", "lecture", "course", "assignment", "essay", "research", "revise", "learn"}},
	{Name: "Health", Keywords: []string{"gym", "workout", "doctor", "dentist", "yoga", "meditate", "medication", "exercise", "jog", "running"}},
	{Name: "Personal", Keywords: []string{"buy", "groceries", "birthday", "clean", "laundry", "family", "bills", "cook", "call mom", "call dad"}},
}

// InferCategory classifies text with DefaultCategoryRules.
func InferCategory(text string) string {
	return InferCategoryWith(DefaultCategoryRules, text)
}

// InferCategoryWith returns the first rule, in declared order, with a keyword
// contained in the lower-cased text. It returns CategoryOther when none match.
func InferCategoryWith(rules []CategoryRule, text string) string {
	lowered := strings.ToLower(text)
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			keyword = strings.ToLower(keyword)
			if keyword != "" && strings.Contains(lowered, keyword) {
				return rule.Name
			}
		}
	}
	return CategoryOther
}

// ValidateCategoryRules checks that every rule has a name, that names are
// unique ignoring case, and that none shadows Auto or Other.
func ValidateCategoryRules(rules []CategoryRule) error {
	seen := make(map[string]struct{}, len(rules))
	for i, rule := range rules {
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			return fmt.Errorf("%w: rule %d has no name", ErrInvalidCategoryRules, i+1)
		}
		if strings.EqualFold(name, CategoryAuto) || strings.EqualFold(name, CategoryOther) {
			return fmt.Errorf("%w: %q is reserved", ErrInvalidCategoryRules, name)
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCategoryRules, name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// CategoryNames returns the rule labels followed by CategoryOther.
func CategoryNames(rules []CategoryRule) []string {
	names := make([]string, 0, len(rules)+1)
	for _, rule := range rules {
		names = append(names, rule.Name)
	}
	return append(names, CategoryOther)
}

// resolveCategory canonicalizes an explicit category or infers one for "" and Auto.
func resolveCategory(rules []CategoryRule, category, title, description string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, CategoryAuto) {
		return InferCategoryWith(rules, title+" "+description), nil
	}
	for _, name := range CategoryNames(rules) {
		if strings.EqualFold(name, category) {
			return name, nil
		}
	}
	return "", validation.FormatInvalidValueError(ErrInvalidCategory, category, CategoryNames(rules))
}
