package workflow

import "errors"

var (
	ErrNotSignedIn        = errors.New("not signed in")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrDraftTextRequired  = errors.New("record text is required")
	ErrEmptyImage         = errors.New("image data is empty")
	ErrRecordNotLoaded    = errors.New("record is not in the loaded list")
)
