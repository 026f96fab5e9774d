package pipeline

import (
	"videomorph/internal/util/bitrate"
)

// PlannedFile is the dry-run view of one queued file.
type PlannedFile struct {
	Path        string
	Quality     string
	OutputPath  string
	Args        []string
	DurationSec float64
	EstBytes    int64 // 0 when the params carry no bitrate
	Err         error
}

// Plan builds the converter command for every queued file without running
// anything.
func (s *Service) Plan() []PlannedFile {
	files := s.list.Files()
	plans := make([]PlannedFile, 0, len(files))
	for _, f := range files {
		p := PlannedFile{Path: f.Path}
		p.DurationSec, _ = f.Duration()
		args, err := f.BuildConversionCmd(s.opts.OutDir, s.opts.Quality)
		p.Quality = f.Profile.Quality()
		if err != nil {
			p.Err = err
			plans = append(plans, p)
			continue
		}
		p.Args = args
		p.OutputPath = args[len(args)-1]
		v, a := bitrate.FromArgs(args)
		p.EstBytes = bitrate.EstimateBytes(v+a, p.DurationSec)
		plans = append(plans, p)
	}
	return plans
}

// EstimatedBytes sums the per-file estimates of a plan.
func EstimatedBytes(plans []PlannedFile) int64 {
	var n int64
	for _, p := range plans {
		n += p.EstBytes
	}
	return n
}
