package schema

import (
	"slices"
	"strings"
	"time"
	"unicode"
)

// Suggestion is an immutable improvement hint for one file.
type Suggestion struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Priority       Priority   `json:"priority"`
	Category       Category   `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	FileReference  string     `json:"file_reference"`
	LastUpdate     time.Time  `json:"last_update"`
	StudyResources []string   `json:"study_resources"`
}

// ForFile returns a copy of the suggestion attached to a file at the given time.
func (s Suggestion) ForFile(path string, at time.Time) Suggestion {
	s.FileReference = path
	s.LastUpdate = at
	s.StudyResources = slices.Clone(s.StudyResources)
	return s
}

func cloneSuggestions(in []Suggestion) []Suggestion {
	if in == nil {
		return nil
	}
	out := make([]Suggestion, len(in))
	for i, sg := range in {
		sg.StudyResources = slices.Clone(sg.StudyResources)
		out[i] = sg
	}
	return out
}

// Equal reports structural equality.
func (s Suggestion) Equal(other Suggestion) bool {
	return s.Title == other.Title &&
		s.Description == other.Description &&
		s.Priority == other.Priority &&
		s.Category == other.Category &&
		s.Difficulty == other.Difficulty &&
		s.FileReference == other.FileReference &&
		s.LastUpdate.Equal(other.LastUpdate) &&
		slices.Equal(s.StudyResources, other.StudyResources)
}

// normalizeKey lowercases and drops everything that is not a letter or digit.
func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParsePriority maps free text onto a Priority, defaulting to Medium.
func ParsePriority(s string) Priority {
	switch normalizeKey(s) {
	case "low", "baixa", "minor":
		return PriorityLow
	case "high", "alta", "critical", "urgent", "major":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// ParseDifficulty maps free text onto a Difficulty, defaulting to Medium.
func ParseDifficulty(s string) Difficulty {
	switch normalizeKey(s) {
	case "easy", "facil", "fácil", "simple", "trivial":
		return DifficultyEasy
	case "hard", "dificil", "difícil", "complex", "difficult":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

var categoryAliases = map[string]Category{
	"codestyle":      CategoryCodeStyle,
	"style":          CategoryCodeStyle,
	"formatting":     CategoryCodeStyle,
	"naming":         CategoryNaming,
	"variablenaming": CategoryNaming,
	"names":          CategoryNaming,
	"functions":      CategoryFunctions,
	"function":       CategoryFunctions,
	"functionsizes":  CategoryFunctions,
	"functionsize":   CategoryFunctions,
	"comments":       CategoryComments,
	"comment":        CategoryComments,
	"cohesion":       CategoryCohesion,
	"methodcohesion": CategoryCohesion,
	"deadcode":       CategoryDeadCode,
	"unusedcode":     CategoryDeadCode,
	"structure":      CategoryStructure,
	"design":         CategoryStructure,
	"refactoring":    CategoryStructure,
	"documentation":  CategoryDocumentation,
	"docs":           CategoryDocumentation,
	"errorhandling":  CategoryErrorHandling,
	"errors":         CategoryErrorHandling,
	"testing":        CategoryTesting,
	"tests":          CategoryTesting,
}

// ParseCategory maps free text onto a Category, defaulting to CodeStyle.
func ParseCategory(s string) Category {
	if c, ok := categoryAliases[normalizeKey(s)]; ok {
		return c
	}
	return CategoryCodeStyle
}

var studyResources = map[Category][]string{
	CategoryCodeStyle:     {"Clean Code - Chapter 5: Formatting"},
	CategoryNaming:        {"Clean Code - Chapter 2: Meaningful Names"},
	CategoryFunctions:     {"Clean Code - Chapter 3: Functions"},
	CategoryComments:      {"Clean Code - Chapter 4: Comments"},
	CategoryCohesion:      {"Clean Code - Chapter 10: Classes"},
	CategoryDeadCode:      {"Clean Code - Chapter 17: Smells and Heuristics"},
	CategoryStructure:     {"Clean Code - Chapter 10: Classes", "Clean Code - Chapter 3: Functions"},
	CategoryDocumentation: {"Clean Code - Chapter 4: Comments"},
	CategoryErrorHandling: {"Clean Code - Chapter 7: Error Handling"},
	CategoryTesting:       {"Clean Code - Chapter 9: Unit Tests"},
}

// StudyResourcesFor returns the default reading list for a category.
func StudyResourcesFor(c Category) []string {
	if r, ok := studyResources[c]; ok {
		return slices.Clone(r)
	}
	return slices.Clone(studyResources[CategoryCodeStyle])
}
