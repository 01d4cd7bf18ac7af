package models

import "errors"

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// ErrDuplicateSubmission is returned when a submission already exists for
// the (unit, learner) pair. Callers treat it as success, not failure.
var ErrDuplicateSubmission = errors.New("submission already exists")
