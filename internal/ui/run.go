package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"videomorph/internal/media"
	"videomorph/internal/pipeline"
)

// Run converts list with a live queue view. opts configure the underlying
// pipeline.Service; the reporter is supplied here. Quitting the view stops
// the queue.
func Run(ctx context.Context, list *media.MediaList, opts ...pipeline.Option) (pipeline.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventCh := make(chan tea.Msg, 256)
	rep := teaReporter{ch: eventCh, done: ctx.Done()}
	svc := pipeline.NewService(list, append(opts, pipeline.WithReporter(rep))...)

	type outcome struct {
		sum pipeline.Summary
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		sum, err := svc.Run(ctx)
		rep.send(queueDoneMsg{Summary: sum, Err: err})
		resCh <- outcome{sum, err}
	}()

	m := NewModel(ctx, cancel, list, svc, eventCh)
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-resCh
		return pipeline.Summary{}, err
	}
	// The view may have quit first; stop the queue and wait for it.
	cancel()
	res := <-resCh
	return res.sum, res.err
}
