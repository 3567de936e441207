package matcher

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
	"github.com/ppartarr/mp3renamer/entity"
	"golang.org/x/text/cases"
)

const DefaultThreshold = 0.8

// Similarity returns the case-insensitive indel ratio of a and b,
// within [0,1]: insertions and deletions only, normalized by the
// combined rune length
func Similarity(a, b string) float64 {
	fold := cases.Fold()
	a, b = fold.String(a), fold.String(b)

	length := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if length == 0 {
		return 1
	}
	return 1 - float64(edlib.LCSEditDistance(a, b))/float64(length)
}

// Verdict is the outcome of comparing a guess with a canonical title
type Verdict struct {
	Artist           string // canonical artist
	Album            string // canonical album
	ArtistSimilarity float64
	AlbumSimilarity  float64
	Accepted         bool
}

// Release returns the canonical release the verdict refers to
func (verdict Verdict) Release(year string) *entity.Release {
	return &entity.Release{Artist: verdict.Artist, Album: verdict.Album, Year: year}
}

type Matcher struct {
	threshold float64
}

func New(threshold float64) *Matcher {
	return &Matcher{threshold}
}

func (matcher *Matcher) Threshold() float64 {
	return matcher.threshold
}

// Evaluate scores artist and album independently against the
// canonical title: the title is accepted only if both
// similarities strictly exceed the threshold
func (matcher *Matcher) Evaluate(artist, album, title string) Verdict {
	canonicalArtist, canonicalAlbum := entity.Canonical(title)
	verdict := Verdict{
		Artist:           canonicalArtist,
		Album:            canonicalAlbum,
		ArtistSimilarity: Similarity(artist, canonicalArtist),
		AlbumSimilarity:  Similarity(album, canonicalAlbum),
	}
	verdict.Accepted = verdict.ArtistSimilarity > matcher.threshold &&
		verdict.AlbumSimilarity > matcher.threshold
	return verdict
}
