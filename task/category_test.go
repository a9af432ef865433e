package task

import (
	"errors"
	"reflect"
	"testing"
)

func TestInferCategoryWith_FirstMatchInDeclaredOrder(t *testing.T) {
	rules := []CategoryRule{
		{Name: "Work", Keywords: []string{"report", "client"}},
		{Name: "Personal", Keywords: []string{"report"}},
	}

	if got := InferCategoryWith(rules, "Submit report to client"); got != "Work" {
		t.Errorf("expected 'Work', got %q", got)
	}

	reversed := []CategoryRule{rules[1], rules[0]}
	if got := InferCategoryWith(reversed, "Submit report to client"); got != "Personal" {
		t.Errorf("expected declared order to win, got %q", got)
	}
}

func TestInferCategoryWith_CaseInsensitiveSubstring(t *testing.T) {
	rules := []CategoryRule{{Name: "Health", Keywords: []string{"Gym"}}}

	cases := []struct {
		input string
		want  string
	}{
		{input: "GYM session", want: "Health"},
		{input: "gymnastics", want: "Health"},
		{input: "library", want: CategoryOther},
		{input: "", want: CategoryOther},
	}

	for _, tc := range cases {
		if got := InferCategoryWith(rules, tc.input); got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.input, tc.want, got)
		}
	}
}

func TestInferCategoryWith_IgnoresEmptyKeywords(t *testing.T) {
	rules := []CategoryRule{{Name: "Everything", Keywords: []string{""}}}
	if got := InferCategoryWith(rules, "anything"); got != CategoryOther {
		t.Errorf("expected %q, got %q", CategoryOther, got)
	}
}

func TestInferCategory_DefaultRules(t *testing.T) {
	cases := map[string]string{
		"Prepare slides for Monday meeting": "Work",
		"Revise for the chemistry exam":     "Study",
		"Book a dentist appointment":        "Health",
		"Buy groceries":                     "Personal",
		"Fix the bike":                      CategoryOther,
	}
	for input, want := range cases {
		if got := InferCategory(input); got != want {
			t.Errorf("%q: expected %q, got %q", input, want, got)
		}
	}
}

func TestCategoryNames(t *testing.T) {
	got := CategoryNames(DefaultCategoryRules)
	want := []string{"Work", "Study", "Health", "Personal", CategoryOther}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestResolveCategory(t *testing.T) {
	cases := []struct {
		category string
		want     string
		err      error
	}{
		{category: "", want: "Work"},
		{category: "auto", want: "Work"},
		{category: "STUDY", want: "Study"},
		{category: " other ", want: CategoryOther},
		{category: "Errands", err: ErrInvalidCategory},
	}

	for _, tc := range cases {
		got, err := resolveCategory(DefaultCategoryRules, tc.category, "Client call", "")
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Errorf("%q: expected %v, got %v", tc.category, tc.err, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.category, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.category, tc.want, got)
		}
	}
}

func TestOpen_CustomCategoryRules(t *testing.T) {
	clock := newTestClock()
	store, err := Open(t.TempDir()+"/tasks.db", OpenOptions{
		Now:           clock.Now,
		CategoryRules: []CategoryRule{{Name: "Garden", Keywords: []string{"plant"}}},
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	created, err := store.Create("Water the plants", CreateOptions{})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if created.Category != "Garden" {
		t.Errorf("expected 'Garden', got %q", created.Category)
	}

	if _, err := store.Create("Standup", CreateOptions{Category: "Work"}); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("expected default labels to be rejected, got %v", err)
	}
}

func TestValidateCategoryRules(t *testing.T) {
	cases := []struct {
		name  string
		rules []CategoryRule
		ok    bool
	}{
		{name: "none", rules: nil, ok: true},
		{name: "defaults", rules: DefaultCategoryRules, ok: true},
		{name: "empty name", rules: []CategoryRule{{Name: "", Keywords: []string{"gym"}}}},
		{name: "blank name", rules: []CategoryRule{{Name: "  ", Keywords: []string{"gym"}}}},
		{name: "auto", rules: []CategoryRule{{Name: "auto", Keywords: []string{"x"}}}},
		{name: "other", rules: []CategoryRule{{Name: "Other", Keywords: []string{"x"}}}},
		{name: "duplicate ignoring case", rules: []CategoryRule{{Name: "Garden"}, {Name: "garden"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCategoryRules(tc.rules)
			if tc.ok {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidCategoryRules) || !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrInvalidCategoryRules, got %v", err)
			}
		})
	}
}

func TestOpen_RejectsInvalidCategoryRules(t *testing.T) {
	store, err := Open(":memory:", OpenOptions{
		CategoryRules: []CategoryRule{{Name: "", Keywords: []string{"gym"}}},
	})
	if err == nil {
		store.Close()
		t.Fatal("expected error for unnamed category rule")
	}
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
