package domain

import "errors"

var (
	ErrBadLimit      = errors.New("limit must be a positive integer")
	ErrBadWindow     = errors.New("window must be one of all, week, month")
	ErrBadSearchType = errors.New("search type must be one of all, song, album, artist")
	ErrEmptyQuery    = errors.New("search query must not be empty")
)
