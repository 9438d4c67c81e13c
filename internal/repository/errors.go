package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is not found
	ErrTaskNotFound = errors.New("task not found")

	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrNotificationNotFound is returned when a notification is not found
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrServiceRequestNotFound is returned when a service request is not found
	ErrServiceRequestNotFound = errors.New("service request not found")

	// ErrSubmissionPending is returned when a task already has a progress
	// update awaiting approval
	ErrSubmissionPending = errors.New("a progress update is already awaiting approval")

	// ErrNoPendingSubmission is returned when a decision is made on a task
	// with no progress update awaiting approval
	ErrNoPendingSubmission = errors.New("no progress update is awaiting approval")
)
