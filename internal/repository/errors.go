package repository

import "errors"

var (
	// ErrPostNotFound indicates the requested post does not exist
	ErrPostNotFound = errors.New("post not found")

	// ErrDuplicateLink indicates a post with the same link already exists
	ErrDuplicateLink = errors.New("post link already exists")
)
