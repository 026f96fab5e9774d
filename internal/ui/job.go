package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"videomorph/internal/media"
	"videomorph/internal/progress"
)

const maxLogLines = 200

type fileState struct {
	id       string
	name     string
	quality  string
	duration float64

	stage  progress.Stage
	status string
	eta    string
	err    error
	done   bool

	outputPath string
	bytes      int64
	percent    float64 // -1 means unknown

	spinner spinner.Model
	bar     bubblesprogress.Model

	// Optional: recent logs (kept small)
	logsRing []string
}

func newFileState(f *media.MediaFile, styles Styles) fileState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	d, _ := f.Duration()
	return fileState{
		id:       f.ID,
		name:     f.Name(true),
		quality:  f.Profile.Quality(),
		duration: d,
		stage:    progress.StageQueued,
		status:   "Queued",
		percent:  -1,
		spinner:  sp,
		bar:      bar,
	}
}

func (fs *fileState) appendLog(line string) {
	if len(fs.logsRing) >= maxLogLines {
		fs.logsRing = fs.logsRing[1:]
	}
	fs.logsRing = append(fs.logsRing, line)
}
