package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a state transition requested from the wrong state,
// e.g. posting a document that is no longer a draft.
var ErrConflict = errors.New("conflicting state")

// ErrIntegrity indicates an internal contract violation, such as a posting
// rule producing an unbalanced entry. It signals a defect in the rule table,
// never bad user input, and aborts the whole posting.
var ErrIntegrity = errors.New("integrity violation")

// ErrInternal is a generic internal failure surfaced to callers.
var ErrInternal = errors.New("internal error")
