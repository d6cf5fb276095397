package util

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidActivity    = errors.New("invalid activity type")
	ErrInvalidReference   = errors.New("invalid reference")
	ErrDuplicateAward     = errors.New("duplicate award")
	ErrLearnerNotFound    = errors.New("learner not found")
	ErrPersistenceFailure = errors.New("persistence failure")
)
