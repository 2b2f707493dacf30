package util

import "errors"

// Backend failures. The cause is wrapped after the kind, e.g.
// fmt.Errorf("%w: %w", ErrUploadFailed, err).
var (
	ErrFetchFailed             = errors.New("failed to fetch participants")
	ErrCreateParticipantFailed = errors.New("failed to create participant")
	ErrUploadFailed            = errors.New("failed to upload file")
	ErrRecordSubmissionFailed  = errors.New("failed to record submission")
)

var (
	ErrQuestNotFound        = errors.New("quest not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrQuestLocked          = errors.New("quest is locked")
	ErrTaskAlreadyCompleted = errors.New("task already completed")
	ErrFileTypeNotAccepted  = errors.New("file type not accepted for this task")
	ErrInvalidFileName      = errors.New("invalid file name")
	ErrFileTooLarge         = errors.New("file too large")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrVideoTooLong         = errors.New("video exceeds the allowed duration")
	ErrDuplicateSubmission  = errors.New("submission already recorded")
	ErrBlankName            = errors.New("participant name is blank")
)

// IsBackendFailure reports whether err came from the data store or object
// storage rather than from the caller's input.
func IsBackendFailure(err error) bool {
	return errors.Is(err, ErrFetchFailed) ||
		errors.Is(err, ErrCreateParticipantFailed) ||
		errors.Is(err, ErrUploadFailed) ||
		errors.Is(err, ErrRecordSubmissionFailed)
}
