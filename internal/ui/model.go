package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"videomorph/internal/media"
	"videomorph/internal/pipeline"
	"videomorph/internal/progress"
	"videomorph/internal/util/format"
)

// Model is the queue view. The pipeline runs outside the tea loop and feeds
// it through eventCh.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	svc    skipper

	order []string
	files map[string]*fileState
	total float64 // queue duration in seconds

	overall    float64
	overallBar bubblesprogress.Model

	finished bool
	summary  pipeline.Summary
	err      error

	// UI
	width, height int
	styles        Styles

	eventCh chan tea.Msg
}

type skipper interface {
	Skip() bool
}

// NewModel builds the view for the files of list.
func NewModel(ctx context.Context, cancel context.CancelFunc, list *media.MediaList, svc skipper, eventCh chan tea.Msg) Model {
	sty := defaultStyles()
	files := list.Files()
	states := make(map[string]*fileState, len(files))
	order := make([]string, 0, len(files))
	for _, f := range files {
		fs := newFileState(f, sty)
		states[f.ID] = &fs
		order = append(order, f.ID)
	}
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		svc:        svc,
		order:      order,
		files:      states,
		total:      list.Duration(),
		overallBar: bubblesprogress.New(bubblesprogress.WithDefaultGradient(), bubblesprogress.WithWidth(50)),
		styles:     sty,
		eventCh:    eventCh,
	}
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	for _, id := range m.order {
		cmds = append(cmds, m.files[id].spinner.Tick)
	}
	// Listen for reporter events
	cmds = append(cmds, m.listenEventsCmd())
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// One listener is outstanding at a time; re-arm only after it delivered.
	listen := false
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		case "s":
			if m.svc != nil {
				m.svc.Skip()
			}
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case fileUpdateMsg:
		listen = true
		u := msg.U
		if u.Overall >= 0 {
			m.overall = u.Overall
		}
		if fs, ok := m.files[u.FileID]; ok {
			fs.stage = u.Stage
			fs.percent = u.Percent
			fs.status = u.Message
			fs.eta = ""
			if u.ETA != nil {
				fs.eta = u.ETA.String()
			}
			if u.Speed != nil {
				fs.status += " @ " + *u.Speed
			}
		}
	case fileLogMsg:
		listen = true
		if fs, ok := m.files[msg.L.FileID]; ok {
			fs.appendLog(strings.TrimRight(msg.L.Line, "\r\n"))
		}
	case fileResultMsg:
		listen = true
		r := msg.R
		if fs, ok := m.files[r.FileID]; ok {
			fs.done = true
			fs.err = r.Err
			fs.stage = r.Stage
			fs.eta = ""
			switch {
			case r.Stage == progress.StageCompleted:
				fs.percent = 100
				fs.outputPath = r.OutputPath
				fs.bytes = r.Bytes
				fs.status = fmt.Sprintf("Saved: %s (%s)", filepath.Base(r.OutputPath), format.HumanizeBytes(r.Bytes))
			case r.Err != nil:
				fs.percent = -1
				fs.status = r.Err.Error()
			default:
				fs.percent = -1
				fs.status = titleCase(string(r.Stage))
			}
		}
	case queueDoneMsg:
		m.finished = true
		m.summary = msg.Summary
		m.err = msg.Err
		if msg.Err == nil {
			m.overall = 100
		}
		return m, tea.Quit
	case allDoneMsg:
		return m, tea.Quit
	}

	// Update per-file components (spinner)
	var cmds []tea.Cmd
	for _, id := range m.order {
		fs := m.files[id]
		var c tea.Cmd
		fs.spinner, c = fs.spinner.Update(msg)
		if c != nil {
			cmds = append(cmds, c)
		}
	}
	if listen {
		cmds = append(cmds, m.listenEventsCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	summary := m.viewSummary()
	body := m.viewHeader() + "\n\n" + m.viewOverall() + "\n\n" + m.viewFiles()
	if summary != "" {
		return body + "\n" + summary
	}
	return body
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// teaReporter forwards pipeline events into the tea loop. Progress updates
// are dropped when the loop is behind; results never are, unless the view
// has gone away.
type teaReporter struct {
	ch   chan<- tea.Msg
	done <-chan struct{}
}

func (r teaReporter) Update(u progress.Update) {
	if u.Stage != progress.StageConverting {
		r.send(fileUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- fileUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Log(l progress.Log) {
	select {
	case r.ch <- fileLogMsg{L: l}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.send(fileResultMsg{R: res})
}

func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.done:
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
