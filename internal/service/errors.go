// Package service provides business logic for the mock thread API.
package service

import "errors"

var (
	ErrThreadNotFound   = errors.New("thread not found")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrFeedbackNotFound = errors.New("feedback not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrEventsDisabled   = errors.New("thread events are not enabled")
)
