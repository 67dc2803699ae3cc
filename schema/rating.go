package schema

import (
	"fmt"
	"maps"
)

// ClampScore normalizes a raw model score into [1,10].
// Values above 10 are assumed to be on a 0-100 scale and divided by 10 first.
func ClampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		score /= 10
	}
	return max(1, min(score, 10))
}

// CriterionScores holds the five clean code scores of one rating.
type CriterionScores struct {
	VariableNaming  int `json:"variable_naming"`
	FunctionSizes   int `json:"function_sizes"`
	NoNeedsComments int `json:"no_needs_comments"`
	MethodCohesion  int `json:"method_cohesion"`
	DeadCode        int `json:"dead_code"`
}

// Values returns the scores in canonical criterion order.
func (s CriterionScores) Values() []int {
	return []int{s.VariableNaming, s.FunctionSizes, s.NoNeedsComments, s.MethodCohesion, s.DeadCode}
}

// ByCriterion maps each criterion name to its score.
func (s CriterionScores) ByCriterion() map[string]int {
	return map[string]int{
		CriterionVariableNaming:  s.VariableNaming,
		CriterionFunctionSizes:   s.FunctionSizes,
		CriterionNoNeedsComments: s.NoNeedsComments,
		CriterionMethodCohesion:  s.MethodCohesion,
		CriterionDeadCode:        s.DeadCode,
	}
}

// Validate checks that every score is within [1,10].
func (s CriterionScores) Validate() error {
	byName := s.ByCriterion()
	for _, name := range Criteria {
		if v := byName[name]; v < 1 || v > 10 {
			return fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, name, v)
		}
	}
	return nil
}

// UniformScores returns scores with every criterion set to v.
func UniformScores(v int) CriterionScores {
	return CriterionScores{v, v, v, v, v}
}

// Rating is an immutable clean code verdict for a file or a commit.
type Rating struct {
	Scores         CriterionScores   `json:"scores"`
	Justifications map[string]string `json:"justifications"`
}

// NewRating validates the scores and fills missing justification keys with a placeholder.
func NewRating(scores CriterionScores, justifications map[string]string) (Rating, error) {
	if err := scores.Validate(); err != nil {
		return Rating{}, err
	}
	merged := make(map[string]string, len(Criteria)+len(justifications))
	maps.Copy(merged, justifications)
	for _, c := range Criteria {
		if _, ok := merged[c]; !ok {
			merged[c] = MissingJustification
		}
	}
	return Rating{Scores: scores, Justifications: merged}, nil
}

// Note is the mean of the five scores.
func (r Rating) Note() float64 {
	sum := 0
	for _, v := range r.Scores.Values() {
		sum += v
	}
	return float64(sum) / float64(len(Criteria))
}

// Quality returns the tier for this rating's note.
func (r Rating) Quality() Quality {
	return QualityForNote(r.Note())
}

// clone copies the rating so the justifications map is not shared.
func (r Rating) clone() Rating {
	r.Justifications = maps.Clone(r.Justifications)
	return r
}

// Justification returns the text for a criterion.
func (r Rating) Justification(criterion string) string {
	return r.Justifications[criterion]
}

// Equal reports structural equality including justification text.
func (r Rating) Equal(other Rating) bool {
	return r.Scores == other.Scores && maps.Equal(r.Justifications, other.Justifications)
}

// QualityForNote maps a note to its tier. Each threshold is inclusive.
func QualityForNote(note float64) Quality {
	switch {
	case note >= 9.0:
		return QualityExcellent
	case note >= 7.5:
		return QualityVeryGood
	case note >= 6.0:
		return QualityGood
	case note >= 5.0:
		return QualityAcceptable
	case note >= 3.5:
		return QualityNeedsImprovement
	default:
		return QualityProblematic
	}
}

// AggregateRatings averages ratings per criterion with integer truncation.
// Justifications are merged by criterion and the first rating wins on collision.
// It returns nil when there is nothing to aggregate.
func AggregateRatings(ratings []Rating) *Rating {
	if len(ratings) == 0 {
		return nil
	}

	var sum CriterionScores
	justifications := make(map[string]string)
	for _, r := range ratings {
		sum.VariableNaming += r.Scores.VariableNaming
		sum.FunctionSizes += r.Scores.FunctionSizes
		sum.NoNeedsComments += r.Scores.NoNeedsComments
		sum.MethodCohesion += r.Scores.MethodCohesion
		sum.DeadCode += r.Scores.DeadCode
		for k, v := range r.Justifications {
			if _, seen := justifications[k]; !seen {
				justifications[k] = v
			}
		}
	}

	n := len(ratings)
	return &Rating{
		Scores: CriterionScores{
			VariableNaming:  sum.VariableNaming / n,
			FunctionSizes:   sum.FunctionSizes / n,
			NoNeedsComments: sum.NoNeedsComments / n,
			MethodCohesion:  sum.MethodCohesion / n,
			DeadCode:        sum.DeadCode / n,
		},
		Justifications: justifications,
	}
}
