package converter

import (
	"regexp"
	"strconv"
	"time"

	"videomorph/internal/progress"
)

var (
	clockRe   = regexp.MustCompile(`time=\s*(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)
	secondsRe = regexp.MustCompile(`time=\s*(\d+(?:\.\d+)?)(?:\s|$)`)
	speedRe   = regexp.MustCompile(`speed=\s*(\S+x)`)
)

// ParseTime extracts the time position from a converter status line.
// ffmpeg prints time=HH:MM:SS.xx; older avconv prints plain seconds.
func ParseTime(line string) (float64, bool) {
	if m := clockRe.FindStringSubmatch(line); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		s, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			return 0, false
		}
		return float64(h*3600+mm*60) + s, true
	}
	if m := secondsRe.FindStringSubmatch(line); m != nil {
		s, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return s, true
	}
	return 0, false
}

// ProgressState tracks the converter status lines of one run.
type ProgressState struct {
	DurationSec float64
	TimeSec     float64
	SpeedStr    string
}

// UpdateFromLine updates the state from a stderr line and returns an update
// when the line carried a time position.
func (ps *ProgressState) UpdateFromLine(line, fileID string) (u progress.Update, ok bool) {
	t, ok := ParseTime(line)
	if !ok {
		return progress.Update{}, false
	}
	ps.TimeSec = t
	if m := speedRe.FindStringSubmatch(line); m != nil {
		ps.SpeedStr = m[1]
	}

	u = progress.Update{
		FileID:  fileID,
		Stage:   progress.StageConverting,
		Percent: ps.Percent(),
		Overall: -1,
		Elapsed: time.Duration(t * float64(time.Second)),
		Message: "Converting",
	}
	if ps.SpeedStr != "" {
		s := ps.SpeedStr
		u.Speed = &s
		if eta, ok := ps.eta(); ok {
			u.ETA = &eta
		}
	}
	return u, true
}

// Percent is the time position against the file duration, capped at 100.
// It is -1 when the duration is unknown.
func (ps *ProgressState) Percent() float64 {
	if ps.DurationSec <= 0 {
		return -1
	}
	return min(ps.TimeSec/ps.DurationSec*100, 100)
}

func (ps *ProgressState) eta() (time.Duration, bool) {
	if ps.DurationSec <= 0 || len(ps.SpeedStr) < 2 {
		return 0, false
	}
	speed, err := strconv.ParseFloat(ps.SpeedStr[:len(ps.SpeedStr)-1], 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	left := max(ps.DurationSec-ps.TimeSec, 0) / speed
	return time.Duration(left * float64(time.Second)).Round(time.Second), true
}
