package normalizer

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ppartarr/mp3renamer/util"
)

var ErrUnparsable = errors.New("cannot parse artist and album")

// Unicode-aware word and space classes; RE2's \w and \s are ASCII only
const (
	word  = `[\p{L}\p{N}_]`
	space = `[\s\p{Z}\x0b\x1c-\x1f\x{85}]`
)

// noise is applied in order, each rule over the whole name
var noise = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`_`), " "},
	// bitrate and dash-delimited IDs
	{regexp.MustCompile(`(?i)(\d+` + space + `*kbps)|(-` + space + `*` + word + `+` + space + `*-)`), ""},
	{regexp.MustCompile(`(?i)(full album|\[full` + space + `*\]|\(full` + space + `*\))`), ""},
	// empty brackets and genre tags
	{regexp.MustCompile(`(\{` + space + `*` + word + `+` + space + `*\})|(\[` + space + `*\])|(\(` + space + `*\))`), ""},
	{regexp.MustCompile(`\(.*?\)|\[.*?\]|\{.*?\}`), ""},
	{regexp.MustCompile(`[^a-zA-Z0-9\s\p{Z}\x0b\x1c-\x1f\x{85}\-–—%*]`), ""},
	{regexp.MustCompile(space + `+`), " "},
}

var (
	layouts = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(.*?)` + space + `*[-–—:]` + space + `*(.*?)$`),
		regexp.MustCompile(`(?i)^(.*?)` + space + `+by` + space + `+(.*?)$`),
	}
	quotes = regexp.MustCompile(`^` + space + `*["']|["']$`)
	year   = regexp.MustCompile(`\(\d{4}\)`)
	disc   = regexp.MustCompile(`(?i)\(?(?:CD|Disc)` + space + `*\d+\)?`)
)

// Clean strips extension and noise from a raw file name
// > Raw:   Pink_Floyd_-_The_Wall_(320kbps)_[FLAC_rip].mp3
// > Clean: Pink Floyd - The Wall
func Clean(name string) string {
	name = util.FileBaseStem(name)
	for _, rule := range noise {
		name = rule.pattern.ReplaceAllString(name, rule.replacement)
	}
	return strings.TrimSpace(name)
}

// Parse guesses artist and album out of a raw file name
func Parse(name string) (artist, album string, err error) {
	return Split(Clean(name))
}

// Split breaks an already cleaned name into artist and album
func Split(clean string) (artist, album string, err error) {
	var matched bool
	for _, layout := range layouts {
		if match := layout.FindStringSubmatch(clean); match != nil {
			artist, album, matched = match[1], match[2], true
			break
		}
	}

	if !matched {
		parts := strings.Split(clean, " ")
		if len(parts) < 2 {
			return "", "", ErrUnparsable
		}
		artist, album = parts[0], strings.Join(parts[1:], " ")
	}

	artist = strings.TrimSpace(year.ReplaceAllString(quotes.ReplaceAllString(artist, ""), ""))
	album = strings.TrimSpace(year.ReplaceAllString(quotes.ReplaceAllString(album, ""), ""))
	album = strings.TrimSpace(disc.ReplaceAllString(album, ""))
	if len(artist) == 0 || len(album) == 0 {
		return "", "", ErrUnparsable
	}
	return artist, album, nil
}
