package domain

import "errors"

var (
	ErrItemNotFound    = errors.New("item not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrImageNotFound   = errors.New("image not found")
	ErrUnsupportedType = errors.New("unsupported image type")

	// ErrVoteConflict means the atomic vote update was rejected because the
	// caller's recorded vote changed between read and write.
	ErrVoteConflict = errors.New("concurrent vote on item")

	ErrInvalidVote = errors.New("vote must be 1, -1 or 0")
)
