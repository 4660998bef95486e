package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindow(t *testing.T) {
	for raw, want := range map[string]TrendingWindow{
		"":      WindowAll,
		"all":   WindowAll,
		"week":  WindowWeek,
		"month": WindowMonth,
	} {
		got, err := ParseWindow(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseWindow("year")
	assert.ErrorIs(t, err, ErrBadWindow)
}

func TestParseSearchType(t *testing.T) {
	for raw, want := range map[string]SearchType{
		"":       SearchAll,
		"all":    SearchAll,
		"song":   SearchSong,
		"album":  SearchAlbum,
		"artist": SearchArtist,
	} {
		got, err := ParseSearchType(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseSearchType("playlist")
	assert.ErrorIs(t, err, ErrBadSearchType)
}
