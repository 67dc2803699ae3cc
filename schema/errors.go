package schema

import "errors"

// Domain invariant violations. Callers wrap these with context.
var (
	ErrDuplicateFile   = errors.New("file already registered in commit analysis")
	ErrFileNotFound    = errors.New("file not registered in commit analysis")
	ErrScoreOutOfRange = errors.New("score must be between 1 and 10")
	ErrCommitNotFound  = errors.New("commit not found")
	ErrInvalidCommit   = errors.New("invalid commit analysis")
)
