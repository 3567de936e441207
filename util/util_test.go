package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrWrap(t *testing.T) {
	assert.Equal(t, "value", ErrWrap("default")("value", nil))
	assert.Equal(t, "default", ErrWrap("default")("value", errors.New("ko")))
	assert.Equal(t, 0, ErrWrap(0)(42, errors.New("ko")))
}

func TestFileBaseStem(t *testing.T) {
	assert.Equal(t, "Pink Floyd - The Wall", FileBaseStem("/music/Pink Floyd - The Wall.mp3"))
	assert.Equal(t, "noext", FileBaseStem("noext"))
}

func TestHasExt(t *testing.T) {
	assert.True(t, HasExt("a.mp3", "mp3"))
	assert.True(t, HasExt("a.MP3", "mp3"))
	assert.False(t, HasExt("a.mp3.flac", "mp3"))
	assert.False(t, HasExt("mp3", "mp3"))
}

func TestAlphanumeric(t *testing.T) {
	assert.Equal(t, "pink floyd  the wallmp3", Alphanumeric("Pink Floyd - The Wall.mp3"))
	assert.Equal(t, Alphanumeric("AC/DC - Back in Black.mp3"), Alphanumeric("acdc - back in black.MP3"))
	assert.NotEqual(t, Alphanumeric("Pink_Floyd - The Wall.mp3"), Alphanumeric("Pink Floyd - The Wall.mp3"))
}
