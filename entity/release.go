package entity

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	TrackFormat = "mp3"
	UnknownYear = "Unknown Year"

	canonicalSeparator = " - "
)

// Release is the artist/album pair a file is named and tagged after
type Release struct {
	Artist string
	Album  string
	Year   string // UnknownYear if not resolved
}

type ReleasePath struct {
	release *Release
}

// Canonical splits a lookup title shaped as "Artist - Album":
// the artist ends at the first separator, the album starts
// after the last one, so that titles carrying more than one
// separator lose whatever sits in between
// > Title:  Artist - Live - Album
// > Artist: Artist
// > Album:  Album
func Canonical(title string) (artist, album string) {
	artist = strings.Split(title+canonicalSeparator, canonicalSeparator)[0]
	album = title
	if idx := strings.LastIndex(title, canonicalSeparator); idx >= 0 {
		album = title[idx+len(canonicalSeparator):]
	}
	return
}

func (release *Release) HasYear() bool {
	return len(release.Year) > 0 && release.Year != UnknownYear
}

func (release *Release) String() string {
	return release.Artist + canonicalSeparator + release.Album
}

func (release *Release) Path() ReleasePath {
	return ReleasePath{release}
}

// Final returns the file name the release is stored under:
// "Artist - Album.mp3"
func (releasePath ReleasePath) Final() string {
	return legalize(fmt.Sprintf("%s%s%s.%s",
		releasePath.release.Artist, canonicalSeparator, releasePath.release.Album, TrackFormat))
}

// In returns the final path of the release inside dir
func (releasePath ReleasePath) In(dir string) string {
	return filepath.Join(dir, releasePath.Final())
}

// path separators would turn the name into a nested path
func legalize(name string) string {
	return strings.NewReplacer("/", "-", "\\", "-").Replace(name)
}
