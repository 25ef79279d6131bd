package paginator

import "errors"

var (
	// ErrInvalidArgument is returned to feature code that builds a paginator
	// without pages or with an empty page.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSessionNotFound is returned by stores when no session row exists for
	// a message. The engine never surfaces it.
	ErrSessionNotFound = errors.New("paginator session not found")

	// ErrMessageGone is returned by transports when the rendered message can
	// no longer be edited (deleted, inaccessible, or permission revoked).
	ErrMessageGone = errors.New("message is no longer editable")
)
