package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/huangsam/cleanscore/schema"
)

// MaxSuggestions caps how many suggestions are kept per file.
const MaxSuggestions = 5

// Score keys of the analysis reply.
const (
	keyVariableScore = "variablescore"
	keyFunctionScore = "functionscore"
	keyCommentScore  = "commentscore"
	keyCohesionScore = "cohesionscore"
	keyDeadCodeScore = "deadcodescore"
)

// justificationAliases maps normalized justification keys onto criterion names.
var justificationAliases = map[string]string{
	"variablenaming":  schema.CriterionVariableNaming,
	"variable":        schema.CriterionVariableNaming,
	"variables":       schema.CriterionVariableNaming,
	"naming":          schema.CriterionVariableNaming,
	"variablescore":   schema.CriterionVariableNaming,
	"functionsizes":   schema.CriterionFunctionSizes,
	"functionsize":    schema.CriterionFunctionSizes,
	"functions":       schema.CriterionFunctionSizes,
	"function":        schema.CriterionFunctionSizes,
	"functionscore":   schema.CriterionFunctionSizes,
	"noneedscomments": schema.CriterionNoNeedsComments,
	"comments":        schema.CriterionNoNeedsComments,
	"comment":         schema.CriterionNoNeedsComments,
	"commentscore":    schema.CriterionNoNeedsComments,
	"methodcohesion":  schema.CriterionMethodCohesion,
	"cohesion":        schema.CriterionMethodCohesion,
	"cohesionscore":   schema.CriterionMethodCohesion,
	"deadcode":        schema.CriterionDeadCode,
	"deadcodescore":   schema.CriterionDeadCode,
	"unusedcode":      schema.CriterionDeadCode,
}

// normalize lowercases a key and keeps only letters and digits.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// decodeStrict decodes exactly one JSON value and rejects trailing content.
func decodeStrict(candidate string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("malformed json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("malformed json: trailing content after value")
	}
	return root, nil
}

// stripTrailingCommas drops commas that directly precede a closing ']' or '}'.
// Commas inside string literals are left alone.
func stripTrailingCommas(candidate string) string {
	var b strings.Builder
	b.Grow(len(candidate))
	inString, escaped := false, false
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ',':
			rest := strings.TrimLeft(candidate[i+1:], " \t\r\n")
			if rest != "" && (rest[0] == ']' || rest[0] == '}') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// folded returns the object with normalized keys; the first spelling of a key wins.
func folded(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		nk := normalize(k)
		if _, seen := out[nk]; !seen {
			out[nk] = v
		}
	}
	return out
}

// ParseAnalysis turns an analysis candidate into clamped scores and justifications.
// Only malformed JSON or a non-object root is an error.
func ParseAnalysis(candidate string) (schema.FileAssessment, error) {
	root, err := decodeStrict(candidate)
	if err != nil {
		return schema.FileAssessment{}, err
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return schema.FileAssessment{}, errors.New("analysis reply is not a json object")
	}

	top := folded(obj)
	src := top
	if nested, ok := top["score"].(map[string]any); ok {
		src = folded(nested)
	}

	scores := schema.CriterionScores{
		VariableNaming:  scoreOrDefault(src, keyVariableScore),
		FunctionSizes:   scoreOrDefault(src, keyFunctionScore),
		NoNeedsComments: scoreOrDefault(src, keyCommentScore),
		MethodCohesion:  scoreOrDefault(src, keyCohesionScore),
		DeadCode:        scoreOrDefault(src, keyDeadCodeScore),
	}

	rawJustifications, ok := src["justifications"].(map[string]any)
	if !ok {
		rawJustifications, _ = top["justifications"].(map[string]any)
	}
	justifications := make(map[string]string, len(schema.Criteria))
	for k, v := range rawJustifications {
		text, ok := v.(string)
		if !ok {
			continue
		}
		criterion, ok := justificationAliases[normalize(k)]
		if !ok {
			continue
		}
		if _, seen := justifications[criterion]; !seen {
			justifications[criterion] = text
		}
	}
	for _, c := range schema.Criteria {
		if _, ok := justifications[c]; !ok {
			justifications[c] = schema.MissingJustification
		}
	}

	return schema.FileAssessment{Scores: scores, Justifications: justifications}, nil
}

// scoreOrDefault reads a score, falling back to the neutral score when absent or not numeric.
func scoreOrDefault(obj map[string]any, key string) int {
	if v, ok := scoreValue(obj[key]); ok {
		return schema.ClampScore(v)
	}
	return schema.NeutralScore
}

// scoreValue accepts JSON numbers and numeric strings; fractions truncate toward zero.
func scoreValue(v any) (int, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return clampInt(float64(i)), true
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return clampInt(math.Trunc(f)), true
}

// clampInt keeps a float inside the int32 range before conversion.
func clampInt(f float64) int {
	return int(max(math.MinInt32, min(f, math.MaxInt32)))
}

// ParseSuggestions turns a suggestion-list candidate into at most MaxSuggestions entries.
// Entries without a title and description are dropped; "[]" is a valid, empty result.
// Trailing commas are tolerated here, unlike in analysis replies.
func ParseSuggestions(candidate string) ([]schema.Suggestion, error) {
	root, err := decodeStrict(stripTrailingCommas(candidate))
	if err != nil {
		return nil, err
	}
	items, ok := root.([]any)
	if !ok {
		return nil, errors.New("suggestions reply is not a json array")
	}

	suggestions := make([]schema.Suggestion, 0, min(len(items), MaxSuggestions))
	for _, item := range items {
		if len(suggestions) == MaxSuggestions {
			break
		}
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fields := folded(obj)
		title := strings.TrimSpace(stringField(fields, "title"))
		description := strings.TrimSpace(stringField(fields, "description"))
		if title == "" || description == "" {
			continue
		}

		category := schema.ParseCategory(firstString(fields, "type", "category"))
		resources := stringList(fields["studyresources"])
		if len(resources) == 0 {
			resources = schema.StudyResourcesFor(category)
		}
		suggestions = append(suggestions, schema.Suggestion{
			Title:          title,
			Description:    description,
			Priority:       schema.ParsePriority(stringField(fields, "priority")),
			Category:       category,
			Difficulty:     schema.ParseDifficulty(firstString(fields, "difficulty", "difficult")),
			StudyResources: resources,
		})
	}
	return suggestions, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(fields, k); s != "" {
			return s
		}
	}
	return ""
}

// stringList accepts an array of strings or a single string.
func stringList(v any) []string {
	var out []string
	switch x := v.(type) {
	case string:
		if s := strings.TrimSpace(x); s != "" {
			out = append(out, s)
		}
	case []any:
		for _, e := range x {
			if s, ok := e.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	return out
}
