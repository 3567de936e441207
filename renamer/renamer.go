package renamer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppartarr/mp3renamer/discogs"
	"github.com/ppartarr/mp3renamer/entity"
	"github.com/ppartarr/mp3renamer/entity/id3"
	"github.com/ppartarr/mp3renamer/entity/ledger"
	"github.com/ppartarr/mp3renamer/matcher"
	"github.com/ppartarr/mp3renamer/normalizer"
	"github.com/ppartarr/mp3renamer/prompt"
	"github.com/ppartarr/mp3renamer/util"
)

var ErrEmptyField = errors.New("artist and album cannot be empty")

// Lookup resolves a guessed artist and album into a canonical release
type Lookup interface {
	Search(ctx context.Context, artist, album string) (discogs.Result, bool)
}

type Logger interface {
	Printf(format string, a ...any)
	Warnf(format string, a ...any)
	AnchorPrintf(format string, a ...any)
	Debugf(format string, a ...any)
}

// Renamer walks a folder of mp3 files, one at a time, renaming
// and tagging each of them after the release it belongs to
type Renamer struct {
	lookup    Lookup
	matcher   *matcher.Matcher
	decisions prompt.Provider
	ledger    *ledger.Ledger
	log       Logger

	rename func(source, target string) error
	tag    func(path string, release *entity.Release) error
}

func New(lookup Lookup, matcher *matcher.Matcher, decisions prompt.Provider, ledger *ledger.Ledger, log Logger) *Renamer {
	return &Renamer{
		lookup:    lookup,
		matcher:   matcher,
		decisions: decisions,
		ledger:    ledger,
		log:       log,
		rename:    move,
		tag:       id3.Write,
	}
}

// Files lists the mp3 files directly inside dir, in lexical order
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !util.HasExt(entry.Name(), entity.TrackFormat) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Run processes every mp3 file in dir: failures are confined
// to the file they happen on, except for the ledger not being
// persisted, which stops the whole batch
func (renamer *Renamer) Run(ctx context.Context, dir string) (Summary, error) {
	var summary Summary
	names, err := Files(dir)
	if err != nil {
		return summary, err
	}

	for _, name := range names {
		report, err := renamer.Process(ctx, dir, name)
		summary.Reports = append(summary.Reports, report)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// Process handles a single file: the returned error is
// only set if the ledger could not be persisted
func (renamer *Renamer) Process(ctx context.Context, dir, name string) (Report, error) {
	var (
		path   = filepath.Join(dir, name)
		report = Report{Name: name, Path: path}
	)

	info, err := os.Stat(path)
	if err != nil {
		renamer.log.AnchorPrintf("Failed to stat %s: %s", path, err)
		return report.fail(err), nil
	}
	if renamer.ledger.Processed(name, info.ModTime()) {
		renamer.log.Printf("Skipping already processed file: %s", name)
		report.Outcome = OutcomeSkipped
		return report, nil
	}

	release, err := renamer.resolve(ctx, name)
	if err != nil {
		return report.fail(err), nil
	}
	report.Release = release

	target := release.Path().In(dir)
	if util.Alphanumeric(release.Path().Final()) == util.Alphanumeric(name) || target == path {
		renamer.log.Printf("Skipping rename for %q, filename is already correct", path)
		report.Outcome = OutcomeKept
	} else {
		if err := renamer.rename(path, target); err != nil {
			renamer.log.AnchorPrintf("Failed to rename %q: %s", path, err)
			return report.fail(err), nil
		}
		renamer.log.Printf("Renamed %q to %q", path, target)
		report.Outcome = OutcomeRenamed
		report.Path = target
	}

	if err := renamer.tag(report.Path, release); err != nil {
		renamer.log.AnchorPrintf("Failed to update metadata for %s: %s", report.Path, err)
		report.TagErr = err
	} else {
		renamer.log.Printf("Updated metadata for %s", report.Path)
	}

	// tagging touches the file: the entry holds the
	// modification time it is left with
	modTime := info.ModTime()
	if info, err := os.Stat(report.Path); err == nil {
		modTime = info.ModTime()
	}
	renamer.ledger.Set(name, ledger.Entry{
		OriginalPath: path,
		NewPath:      report.Path,
		Artist:       release.Artist,
		Album:        release.Album,
		Year:         release.Year,
		Timestamp:    ledger.Timestamp(modTime),
	})
	if err := renamer.ledger.Save(); err != nil {
		return report, err
	}
	return report, nil
}

// resolve goes from the raw file name to the release the user agreed on
func (renamer *Renamer) resolve(ctx context.Context, name string) (*entity.Release, error) {
	clean := normalizer.Clean(name)
	artist, album, err := normalizer.Split(clean)
	if err != nil {
		renamer.log.Warnf("Failed to parse artist and album from filename: %s", clean)
		return nil, err
	}
	release := &entity.Release{Artist: artist, Album: album, Year: entity.UnknownYear}

	if result, ok := renamer.lookup.Search(ctx, artist, album); ok {
		release.Year = result.Year
		verdict := renamer.matcher.Evaluate(artist, album, result.Title)
		renamer.log.Debugf("%q scored %.2f (artist) and %.2f (album) against %q, threshold %.2f",
			clean, verdict.ArtistSimilarity, verdict.AlbumSimilarity, result.Title, renamer.matcher.Threshold())

		if verdict.Accepted {
			release = verdict.Release(result.Year)
		} else {
			renamer.log.Printf("Discogs returned '%s' for '%s'", result.Title, clean)
			adopt, err := renamer.decisions.Confirm("Do you want to use the Discogs result?")
			if err != nil {
				renamer.log.AnchorPrintf("Failed to read answer for %s: %s", name, err)
				return nil, err
			}
			if adopt {
				release = verdict.Release(result.Year)
			} else {
				renamer.log.Printf("User chose to keep the original artist and album for %s", clean)
			}
		}
	} else {
		renamer.log.Warnf("No Discogs results found for %s - %s, using parsed values", artist, album)
	}

	renamer.log.Printf("Cleaned artist and album: '%s' - '%s'", release.Artist, release.Album)
	confirmed, err := renamer.decisions.Confirm("Do you want to use the cleaned artist and album?")
	if err != nil {
		renamer.log.AnchorPrintf("Failed to read answer for %s: %s", name, err)
		return nil, err
	}
	if !confirmed {
		if release.Artist, err = renamer.decisions.Ask("Enter the correct artist name"); err != nil {
			renamer.log.AnchorPrintf("Failed to read answer for %s: %s", name, err)
			return nil, err
		}
		if release.Album, err = renamer.decisions.Ask("Enter the correct album name"); err != nil {
			renamer.log.AnchorPrintf("Failed to read answer for %s: %s", name, err)
			return nil, err
		}
		release.Artist, release.Album = strings.TrimSpace(release.Artist), strings.TrimSpace(release.Album)
		if len(release.Artist) == 0 || len(release.Album) == 0 {
			renamer.log.Warnf("Empty artist or album given for %s, skipping", name)
			return nil, ErrEmptyField
		}
	}
	return release, nil
}

// move renames source to target, refusing to replace an existing file
func move(source, target string) error {
	if _, err := os.Lstat(target); err == nil {
		return &fs.PathError{Op: "rename", Path: target, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(source, target)
}
