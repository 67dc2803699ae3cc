package llm

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/huangsam/cleanscore/schema"
)

const chapterIndex = `Clean Code chapter index:
1 - Clean Code; 2 - Meaningful Names; 3 - Functions; 4 - Comments; 5 - Formatting;
6 - Objects and Data Structures; 7 - Error Handling; 8 - Boundaries; 9 - Unit Tests; 10 - Classes;
11 - Systems; 12 - Emergence; 13 - Concurrency; 14 - Successive Refinement; 15 - JUnit Internals;
16 - Refactoring SerialDate; 17 - Smells and Heuristics.`

const analysisPromptTemplate = `Review the code below as a senior clean code reviewer.
Give integer scores from 1 to 10 for the keys: variableScore, functionScore, commentScore, cohesionScore, deadCodeScore.
Include a "justifications" object with one text per criterion using EXACTLY the keys: VariableNaming, FunctionSizes, NoNeedsComments, MethodCohesion, DeadCode.
Answer ONLY with valid JSON containing exactly these keys in the root object.
If you are unsure about a score, choose the most appropriate integer between 1 and 10.

%s

Code:
%s

Format example (structure only):
{
  "variableScore": 8,
  "functionScore": 7,
  "commentScore": 9,
  "cohesionScore": 8,
  "deadCodeScore": 10,
  "justifications": {
    "VariableNaming": "reason for the score",
    "FunctionSizes": "reason for the score",
    "NoNeedsComments": "reason for the score",
    "MethodCohesion": "reason for the score",
    "DeadCode": "reason for the score"
  }
}

Rules:
- Use only integers from 1 to 10.
- Do not write anything outside the JSON.`

const suggestionsPromptTemplate = `Write between 3 and 5 concrete suggestions to improve the code below, focusing first on the weakest criteria.
Answer ONLY with a valid JSON array. Do not write anything outside the JSON.
Each item must have exactly these keys: title, description, priority, type, difficulty, studyResources.
Allowed priorities: Low, Medium, High. Allowed difficulties: Easy, Medium, Hard.
studyResources is a list of texts naming the relevant chapters, for example "Clean Code - Chapter 2: Meaningful Names".

%s

Current scores (1-10), weakest first:
%s
Code:
%s

Format example (structure only):
[
  {
    "title": "Improve variable naming",
    "description": "Use descriptive, consistent names for variables and parameters",
    "priority": "Medium",
    "type": "CodeStyle",
    "difficulty": "Easy",
    "studyResources": ["Clean Code - Chapter 2: Meaningful Names"]
  }
]`

const analysisRepairPromptTemplate = `The JSON below is malformed. Fix it while keeping exactly the same structure and data; only correct syntax problems such as extra commas or broken line breaks.

Broken JSON:
%s

Return ONLY the corrected JSON with no explanation. It must have this structure:
{
  "variableScore": number,
  "functionScore": number,
  "commentScore": number,
  "cohesionScore": number,
  "deadCodeScore": number,
  "justifications": {
    "VariableNaming": "text",
    "FunctionSizes": "text"
  }
}`

const suggestionsRepairPromptTemplate = `The JSON array below is malformed. Fix it while keeping exactly the same data; only correct syntax problems such as extra commas or a broken structure.

Broken JSON:
%s

Return ONLY the corrected JSON array with no explanation. It must be an array with this structure:
[
  {
    "title": "text",
    "description": "text",
    "priority": "Medium",
    "type": "CodeStyle",
    "difficulty": "Easy",
    "studyResources": ["resource1", "resource2"]
  }
]`

var criterionLabels = map[string]string{
	schema.CriterionVariableNaming:  "Variable Naming",
	schema.CriterionFunctionSizes:   "Function Sizes",
	schema.CriterionNoNeedsComments: "No Needs Comments",
	schema.CriterionMethodCohesion:  "Method Cohesion",
	schema.CriterionDeadCode:        "Dead Code",
}

// BuildAnalysisPrompt asks for the five scores and justifications of one file.
func BuildAnalysisPrompt(content string) string {
	return fmt.Sprintf(analysisPromptTemplate, chapterIndex, content)
}

// BuildSuggestionsPrompt asks for suggestions, listing criteria by ascending score.
func BuildSuggestionsPrompt(content string, rating schema.Rating) string {
	type entry struct {
		name  string
		score int
	}
	byName := rating.Scores.ByCriterion()
	entries := make([]entry, 0, len(schema.Criteria))
	for _, c := range schema.Criteria {
		entries = append(entries, entry{c, byName[c]})
	}
	slices.SortStableFunc(entries, func(a, b entry) int { return cmp.Compare(a.score, b.score) })

	var scores strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&scores, "- %s: %d\n", criterionLabels[e.name], e.score)
	}
	return fmt.Sprintf(suggestionsPromptTemplate, chapterIndex, scores.String(), content)
}

// BuildAnalysisRepairPrompt asks the model to fix a broken analysis object.
func BuildAnalysisRepairPrompt(broken string) string {
	return fmt.Sprintf(analysisRepairPromptTemplate, broken)
}

// BuildSuggestionsRepairPrompt asks the model to fix a broken suggestion array.
func BuildSuggestionsRepairPrompt(broken string) string {
	return fmt.Sprintf(suggestionsRepairPromptTemplate, broken)
}
