package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for analysis storage.
	DatabaseBackend string

	// ChangeKind represents how a file was touched by a commit.
	ChangeKind string

	// Quality is the discrete tier derived from a rating note.
	Quality string

	// Priority ranks how urgent a suggestion is.
	Priority string

	// Difficulty ranks how much effort a suggestion takes.
	Difficulty string

	// Category tags the clean code concern a suggestion addresses.
	Category string

	// AnalysisStatus is the state of one commit analysis run.
	AnalysisStatus string
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All storage backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All change kinds reported by the git collaborator.
const (
	ChangeAdded    ChangeKind = "Added"
	ChangeModified ChangeKind = "Modified"
	ChangeDeleted  ChangeKind = "Deleted"
	ChangeRenamed  ChangeKind = "Renamed"
)

// Quality tiers, best first.
const (
	QualityExcellent        Quality = "Excellent"
	QualityVeryGood         Quality = "VeryGood"
	QualityGood             Quality = "Good"
	QualityAcceptable       Quality = "Acceptable"
	QualityNeedsImprovement Quality = "NeedsImprovement"
	QualityProblematic      Quality = "Problematic"
)

// Suggestion priorities.
const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium" // default
	PriorityHigh   Priority = "High"
)

// Suggestion difficulties.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium" // default
	DifficultyHard   Difficulty = "Hard"
)

// Suggestion categories.
const (
	CategoryCodeStyle     Category = "CodeStyle" // default
	CategoryNaming        Category = "Naming"
	CategoryFunctions     Category = "Functions"
	CategoryComments      Category = "Comments"
	CategoryCohesion      Category = "Cohesion"
	CategoryDeadCode      Category = "DeadCode"
	CategoryStructure     Category = "Structure"
	CategoryDocumentation Category = "Documentation"
	CategoryErrorHandling Category = "ErrorHandling"
	CategoryTesting       Category = "Testing"
)

// Commit analysis states.
const (
	StatusNotStarted    AnalysisStatus = "NotStarted"
	StatusInProgress    AnalysisStatus = "InProgress"
	StatusCompleted     AnalysisStatus = "Completed"
	StatusSkipped       AnalysisStatus = "Skipped"
	StatusAlreadyExists AnalysisStatus = "AlreadyExists"
)

// Criterion names used as justification keys.
const (
	CriterionVariableNaming  = "VariableNaming"
	CriterionFunctionSizes   = "FunctionSizes"
	CriterionNoNeedsComments = "NoNeedsComments"
	CriterionMethodCohesion  = "MethodCohesion"
	CriterionDeadCode        = "DeadCode"
)

// Criteria lists the five criterion names in their canonical order.
var Criteria = []string{
	CriterionVariableNaming,
	CriterionFunctionSizes,
	CriterionNoNeedsComments,
	CriterionMethodCohesion,
	CriterionDeadCode,
}

// Placeholder texts used when the model leaves something out.
const (
	MissingJustification     = "Justification not provided."
	UnavailableJustification = "Analysis not available."
	UnknownLanguage          = "Unknown"
	NeutralScore             = 5
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid storage backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllQualities lists the quality tiers from best to worst.
var AllQualities = []Quality{
	QualityExcellent,
	QualityVeryGood,
	QualityGood,
	QualityAcceptable,
	QualityNeedsImprovement,
	QualityProblematic,
}
