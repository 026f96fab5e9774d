package ui

import (
	"videomorph/internal/pipeline"
	"videomorph/internal/progress"
)

type fileUpdateMsg struct {
	U progress.Update
}

type fileLogMsg struct {
	L progress.Log
}

type fileResultMsg struct {
	R progress.Result
}

type queueDoneMsg struct {
	Summary pipeline.Summary
	Err     error
}

type allDoneMsg struct{}
