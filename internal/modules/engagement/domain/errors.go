package domain

import "errors"

var (
	ErrSongNotFound   = errors.New("song not found")
	ErrAlbumNotFound  = errors.New("album not found")
	ErrArtistNotFound = errors.New("artist not found")
	ErrSelfFollow     = errors.New("you cannot follow yourself")
	ErrNotAnArtist    = errors.New("target user is not an artist")
)
