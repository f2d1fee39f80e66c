package domain

import "errors"

// Domain errors.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrMissingFieldValue = errors.New("parent issue has no value for field")
	ErrChildNotInProject = errors.New("child issue is not in the parent's project")
	ErrConfigExists      = errors.New("config file already exists")
)

// Configuration errors. Each wraps ErrConfiguration so callers can test the
// whole class with errors.Is.
var (
	ErrMissingToken   = configError("missing API token")
	ErrMissingIssueID = configError("missing issue id")
	ErrEmptyFieldName = configError("field name cannot be empty")
)

type configErr struct {
	msg string
}

func configError(msg string) error {
	return &configErr{msg: msg}
}

func (e *configErr) Error() string {
	return e.msg
}

func (e *configErr) Unwrap() error {
	return ErrConfiguration
}
