package domain

import "errors"

var (
	ErrSongNotFound  = errors.New("song not found")
	ErrAlbumNotFound = errors.New("album not found")
	ErrForbidden     = errors.New("only the owning artist may modify this")

	ErrMissingAudio  = errors.New("no audio file provided")
	ErrMissingGenre  = errors.New("genre is required")
	ErrMissingTitle  = errors.New("title is required")
	ErrTitleTooLong  = errors.New("title exceeds 100 characters")
	ErrBadDuration   = errors.New("duration must be a non-negative number of seconds")
	ErrBadVisibility = errors.New("visibility must be public (1) or private (2)")
)
