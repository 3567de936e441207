package renamer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bogem/id3v2/v2"
	"github.com/ppartarr/mp3renamer/discogs"
	"github.com/ppartarr/mp3renamer/entity"
	"github.com/ppartarr/mp3renamer/entity/id3"
	"github.com/ppartarr/mp3renamer/entity/ledger"
	"github.com/ppartarr/mp3renamer/matcher"
	"github.com/ppartarr/mp3renamer/normalizer"
	"github.com/ppartarr/mp3renamer/prompt"
	"github.com/ppartarr/mp3renamer/util/anchor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fakeAudio = append([]byte{0xff, 0xfb, 0x90, 0x64}, make([]byte, 128)...)

type lookup struct {
	results map[string]discogs.Result
	calls   []string
}

func (l *lookup) Search(_ context.Context, artist, album string) (discogs.Result, bool) {
	query := artist + " " + album
	l.calls = append(l.calls, query)
	result, ok := l.results[query]
	return result, ok
}

type fixture struct {
	dir       string
	ledger    *ledger.Ledger
	lookup    *lookup
	decisions *prompt.Scripted
	output    *bytes.Buffer
	renamer   *Renamer
	renames   int
}

func newFixture(t *testing.T, results map[string]discogs.Result, answers ...string) *fixture {
	f := &fixture{
		dir:       t.TempDir(),
		ledger:    ledger.New(filepath.Join(t.TempDir(), "processed_files.json")),
		lookup:    &lookup{results: results},
		decisions: prompt.NewScripted(answers...),
		output:    &bytes.Buffer{},
	}
	window := anchor.NewWithIO(strings.NewReader(""), f.output, anchor.Red, false)
	f.renamer = New(f.lookup, matcher.New(matcher.DefaultThreshold), f.decisions, f.ledger, window)
	f.renamer.rename = func(source, target string) error {
		f.renames++
		return move(source, target)
	}
	return f
}

func (f *fixture) write(t *testing.T, name string) string {
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, fakeAudio, 0o644))
	return path
}

func (f *fixture) persisted(t *testing.T) *ledger.Ledger {
	persisted, err := ledger.Load(f.ledger.Path())
	require.NoError(t, err)
	return persisted
}

func readTags(t *testing.T, path string) (artist, album, year string) {
	file, err := id3.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer file.Close()
	return file.Artist(), file.Album(), file.Year()
}

func TestFiles(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "b.mp3")
	f.write(t, "a.MP3")
	f.write(t, "cover.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "nested.mp3"), 0o755))

	names, err := Files(f.dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.MP3", "b.mp3"}, names)

	_, err = Files(filepath.Join(f.dir, "missing"))
	assert.Error(t, err)
}

func TestRunNoMatch(t *testing.T) {
	const name = "Pink_Floyd_-_The_Wall_(320kbps)_[FLAC_rip].mp3"
	f := newFixture(t, nil, "y")
	original := f.write(t, name)

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	require.Len(t, summary.Reports, 1)
	assert.Equal(t, OutcomeRenamed, summary.Reports[0].Outcome)
	assert.Equal(t, []string{"Pink Floyd The Wall"}, f.lookup.calls)
	assert.Equal(t, []string{"Do you want to use the cleaned artist and album?"}, f.decisions.Asked())

	target := filepath.Join(f.dir, "Pink Floyd - The Wall.mp3")
	assert.NoFileExists(t, original)
	assert.FileExists(t, target)
	artist, album, year := readTags(t, target)
	assert.Equal(t, "Pink Floyd", artist)
	assert.Equal(t, "The Wall", album)
	assert.Empty(t, year)

	entry, ok := f.persisted(t).Get(name)
	require.True(t, ok)
	assert.Equal(t, ledger.Entry{
		OriginalPath: original,
		NewPath:      target,
		Artist:       "Pink Floyd",
		Album:        "The Wall",
		Year:         entity.UnknownYear,
		Timestamp:    entry.Timestamp,
	}, entry)
	assert.Contains(t, f.output.String(), "No Discogs results found for Pink Floyd - The Wall")
}

func TestRunAutoAccept(t *testing.T) {
	const name = "Radiohead - OK Computer (1997) [320kbps].mp3"
	f := newFixture(t, map[string]discogs.Result{
		"Radiohead OK Computer": {Title: "Radiohead - OK Computer", Year: "1997"},
	}, "y")
	f.write(t, name)

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(OutcomeRenamed))

	// the adoption question is never asked, only the final veto
	assert.Equal(t, []string{"Do you want to use the cleaned artist and album?"}, f.decisions.Asked())

	artist, album, year := readTags(t, filepath.Join(f.dir, "Radiohead - OK Computer.mp3"))
	assert.Equal(t, "Radiohead", artist)
	assert.Equal(t, "OK Computer", album)
	assert.Equal(t, "1997", year)

	entry, ok := f.persisted(t).Get(name)
	require.True(t, ok)
	assert.Equal(t, "1997", entry.Year)
}

func TestRunLogsScores(t *testing.T) {
	f := newFixture(t, map[string]discogs.Result{
		"The Beatles Abbey Road": {Title: "The Beatles - Abbey Road Rem", Year: "1969"},
	}, "y")
	window := anchor.NewWithIO(strings.NewReader(""), f.output, anchor.Red, false)
	window.SetVerbose(true)
	f.renamer.log = window
	f.write(t, "The Beatles - Abbey Road.mp3")

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count(OutcomeRenamed))
	assert.Equal(t, []string{"Do you want to use the cleaned artist and album?"}, f.decisions.Asked())
	assert.Contains(t, f.output.String(), "scored 1.00 (artist) and 0.83 (album)")
	assert.Contains(t, f.output.String(), "threshold 0.80")
	assert.FileExists(t, filepath.Join(f.dir, "The Beatles - Abbey Road Rem.mp3"))
}

func TestRunCanonicalCasing(t *testing.T) {
	f := newFixture(t, map[string]discogs.Result{
		"radiohead ok computer": {Title: "Radiohead - OK Computer", Year: "1997"},
	}, "y")
	f.write(t, "radiohead_ok_computer_320kbps.mp3")

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRenamed, summary.Reports[0].Outcome)
	assert.FileExists(t, filepath.Join(f.dir, "Radiohead - OK Computer.mp3"))
}

func TestRunAlreadyNamed(t *testing.T) {
	const name = "Radiohead - OK Computer.mp3"
	f := newFixture(t, map[string]discogs.Result{
		"Radiohead OK Computer": {Title: "Radiohead - OK Computer", Year: "1997"},
	}, "y")
	path := f.write(t, name)

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeKept, summary.Reports[0].Outcome)
	assert.Zero(t, f.renames)

	_, _, year := readTags(t, path)
	assert.Equal(t, "1997", year)

	entry, ok := f.persisted(t).Get(name)
	require.True(t, ok)
	assert.Equal(t, path, entry.NewPath)
	assert.Equal(t, path, entry.OriginalPath)
}

func TestRunAlreadyNamedIgnoringCase(t *testing.T) {
	f := newFixture(t, nil, "y")
	path := f.write(t, "pink floyd - the wall.mp3")
	f.decisions = prompt.NewScripted("n", "Pink Floyd", "The Wall")
	f.renamer.decisions = f.decisions

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeKept, summary.Reports[0].Outcome)
	assert.Zero(t, f.renames)

	artist, album, _ := readTags(t, path)
	assert.Equal(t, "Pink Floyd", artist)
	assert.Equal(t, "The Wall", album)
}

func TestRunLowConfidenceAdopted(t *testing.T) {
	f := newFixture(t, map[string]discogs.Result{
		"Rdiohd OK Cmptr": {Title: "Radiohead - OK Computer", Year: "1997"},
	}, "y", "y")
	f.write(t, "Rdiohd - OK Cmptr.mp3")

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRenamed, summary.Reports[0].Outcome)
	assert.Equal(t, []string{
		"Do you want to use the Discogs result?",
		"Do you want to use the cleaned artist and album?",
	}, f.decisions.Asked())
	assert.FileExists(t, filepath.Join(f.dir, "Radiohead - OK Computer.mp3"))
	assert.Contains(t, f.output.String(), "Discogs returned 'Radiohead - OK Computer' for 'Rdiohd - OK Cmptr'")
}

func TestRunLowConfidenceOverridden(t *testing.T) {
	const name = "Rdiohd - OK Cmptr.mp3"
	f := newFixture(t, map[string]discogs.Result{
		"Rdiohd OK Cmptr": {Title: "Radiohead - OK Computer", Year: "1997"},
	}, "n", "n", " Radiohead ", "Kid A")
	f.write(t, name)

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRenamed, summary.Reports[0].Outcome)
	assert.Zero(t, f.decisions.Left())

	path := filepath.Join(f.dir, "Radiohead - Kid A.mp3")
	artist, album, year := readTags(t, path)
	assert.Equal(t, "Radiohead", artist)
	assert.Equal(t, "Kid A", album)
	// the year of the lookup is kept, whatever the user typed
	assert.Equal(t, "1997", year)
	assert.Contains(t, f.output.String(), "User chose to keep the original artist and album")
}

func TestRunEmptyOverride(t *testing.T) {
	const name = "Pink Floyd - The Wall.mp3"
	f := newFixture(t, nil, "n", "", "The Wall")
	path := f.write(t, name)

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, summary.Reports[0].Outcome)
	assert.ErrorIs(t, summary.Reports[0].Err, ErrEmptyField)
	assert.FileExists(t, path)
	assert.Zero(t, f.ledger.Size())
}

func TestRunLedgerSkip(t *testing.T) {
	const name = "Pink Floyd - The Wall.mp3"
	f := newFixture(t, nil)
	path := f.write(t, name)

	stamp := time.Unix(1700000000, 0)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
	f.ledger.Set(name, ledger.Entry{OriginalPath: path, NewPath: path, Timestamp: ledger.Timestamp(stamp)})

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, summary.Reports[0].Outcome)
	assert.Empty(t, f.lookup.calls)
	assert.Empty(t, f.decisions.Asked())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakeAudio, data)

	// touched since: processed again
	require.NoError(t, os.Chtimes(path, stamp.Add(time.Second), stamp.Add(time.Second)))
	f.decisions = prompt.NewScripted("y")
	f.renamer.decisions = f.decisions
	summary, err = f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeKept, summary.Reports[0].Outcome)
	assert.Len(t, f.lookup.calls, 1)
}

func TestRunRecordedFileIsSkippedNextTime(t *testing.T) {
	const name = "Pink Floyd - The Wall.mp3"
	f := newFixture(t, nil, "y")
	f.write(t, name)

	_, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)

	// next run starts from the ledger on disk
	f.renamer.ledger = f.persisted(t)
	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, summary.Reports[0].Outcome)
	assert.Len(t, f.lookup.calls, 1)
	assert.Zero(t, f.decisions.Left())
}

func TestRunParseFailure(t *testing.T) {
	f := newFixture(t, nil, "y")
	f.write(t, "Untitled.mp3")
	f.write(t, "Pink Floyd - The Wall.mp3")

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	require.Len(t, summary.Reports, 2)
	assert.Equal(t, OutcomeKept, summary.Reports[0].Outcome)
	assert.Equal(t, "Untitled.mp3", summary.Reports[1].Name)
	assert.Equal(t, OutcomeFailed, summary.Reports[1].Outcome)
	assert.ErrorIs(t, summary.Reports[1].Err, normalizer.ErrUnparsable)

	persisted := f.persisted(t)
	assert.Equal(t, []string{"Pink Floyd - The Wall.mp3"}, persisted.Names())
	assert.Contains(t, f.output.String(), "WARNING - Failed to parse artist and album from filename: Untitled")
}

func TestRunRenameCollision(t *testing.T) {
	const name = "Pink_Floyd_-_The_Wall.mp3"
	f := newFixture(t, nil, "y")
	original := f.write(t, name)
	existing := f.write(t, "Pink Floyd - The Wall.mp3")
	f.ledger.Set("Pink Floyd - The Wall.mp3", ledger.Entry{Timestamp: ledger.Timestamp(time.Now().Add(time.Hour))})

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	require.Len(t, summary.Reports, 2)

	report := summary.Reports[1]
	assert.Equal(t, name, report.Name)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.ErrorIs(t, report.Err, os.ErrExist)
	assert.FileExists(t, original)
	assert.FileExists(t, existing)
	_, ok := f.ledger.Get(name)
	assert.False(t, ok)
}

func TestRunTagFailure(t *testing.T) {
	const name = "Pink_Floyd_-_The_Wall.mp3"
	f := newFixture(t, nil, "y")
	f.write(t, name)
	f.renamer.tag = func(string, *entity.Release) error {
		return errors.New("broken tag")
	}

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeRenamed, summary.Reports[0].Outcome)
	assert.EqualError(t, summary.Reports[0].TagErr, "broken tag")
	assert.Equal(t, 1, summary.TagFailures())

	_, ok := f.persisted(t).Get(name)
	assert.True(t, ok)
	assert.Contains(t, f.output.String(), "ERROR - Failed to update metadata")
}

func TestRunPromptFailure(t *testing.T) {
	f := newFixture(t, nil)
	path := f.write(t, "Pink_Floyd_-_The_Wall.mp3")

	summary, err := f.renamer.Run(context.Background(), f.dir)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, summary.Reports[0].Outcome)
	assert.ErrorIs(t, summary.Reports[0].Err, prompt.ErrNoAnswer)
	assert.FileExists(t, path)
	assert.Zero(t, f.ledger.Size())
}

func TestRunLedgerSaveFailure(t *testing.T) {
	f := newFixture(t, nil, "y", "y")
	f.write(t, "A - B.mp3")
	f.write(t, "C - D.mp3")

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	f.renamer.ledger = ledger.New(filepath.Join(blocker, "processed_files.json"))

	summary, err := f.renamer.Run(context.Background(), f.dir)
	assert.Error(t, err)
	assert.Len(t, summary.Reports, 1)
}

func TestSummaryRender(t *testing.T) {
	summary := Summary{Reports: []Report{
		{Name: "a.mp3", Outcome: OutcomeRenamed, Release: &entity.Release{Artist: "A", Album: "B", Year: "1997"}},
		{Name: "b.mp3", Outcome: OutcomeFailed, Err: normalizer.ErrUnparsable},
		{Name: "c.mp3", Outcome: OutcomeKept, TagErr: errors.New("read-only")},
	}}
	assert.Equal(t, 1, summary.Count(OutcomeRenamed))
	assert.Equal(t, 1, summary.Count(OutcomeFailed))
	assert.Equal(t, 1, summary.TagFailures())

	rendered := summary.Render()
	assert.Contains(t, rendered, "a.mp3")
	assert.Contains(t, rendered, "renamed")
	assert.Contains(t, rendered, normalizer.ErrUnparsable.Error())
	assert.Contains(t, rendered, "tags not updated: read-only")
}
