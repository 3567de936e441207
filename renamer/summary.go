package renamer

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/ppartarr/mp3renamer/entity"
)

type Outcome string

const (
	OutcomeRenamed Outcome = "renamed"
	OutcomeKept    Outcome = "kept"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Report tells what happened to a single file
type Report struct {
	Name    string
	Path    string // where the file is, once processed
	Outcome Outcome
	Release *entity.Release
	Err     error // set on OutcomeFailed
	TagErr  error // tagging failures do not fail the file
}

func (report Report) fail(err error) Report {
	report.Outcome = OutcomeFailed
	report.Err = err
	return report
}

type Summary struct {
	Reports []Report
}

func (summary Summary) Count(outcome Outcome) int {
	var count int
	for _, report := range summary.Reports {
		if report.Outcome == outcome {
			count++
		}
	}
	return count
}

func (summary Summary) TagFailures() int {
	var count int
	for _, report := range summary.Reports {
		if report.TagErr != nil {
			count++
		}
	}
	return count
}

// Render draws the per-file outcome of the run as a table
func (summary Summary) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Outcome", "Artist", "Album", "Year", "Note"})

	for _, report := range summary.Reports {
		var artist, album, year, note string
		if report.Release != nil {
			artist, album, year = report.Release.Artist, report.Release.Album, report.Release.Year
		}
		switch {
		case report.Err != nil:
			note = report.Err.Error()
		case report.TagErr != nil:
			note = "tags not updated: " + report.TagErr.Error()
		}
		tw.AppendRow(table.Row{report.Name, string(report.Outcome), artist, album, year, note})
	}

	tw.AppendFooter(table.Row{
		strconv.Itoa(len(summary.Reports)) + " files",
		strconv.Itoa(summary.Count(OutcomeRenamed)) + " renamed",
		"", "", "",
		strconv.Itoa(summary.Count(OutcomeFailed)) + " failed",
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
