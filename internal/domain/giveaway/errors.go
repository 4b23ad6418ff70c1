package giveaway

import "errors"

var (
	ErrNotFound       = errors.New("giveaway not found")
	ErrInvalidOwner   = errors.New("owner or partner does not exist")
	ErrInvalidCursor  = errors.New("last item id does not exist")
	ErrNotCollectable = errors.New("giveaway is not open for collection")
	ErrAlreadyClosed  = errors.New("giveaway already passed moderation")
	ErrNotEnded       = errors.New("giveaway has not ended")
	ErrNoParticipants = errors.New("giveaway has no participants")
)
