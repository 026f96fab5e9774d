package model

// CLIOptions holds user-configurable runtime options as parsed from flags.
type CLIOptions struct {
	OutDir    string
	Quality   string // Quality preset name, e.g. "DVD Fullscreen (4:3)"
	Threads   int    // 0 = NumCPU-1
	Converter string // ffmpeg | avconv | explicit path; empty = auto-detect
	Profiles  string // Optional user catalog path; empty = <config dir>/profiles.yaml
	DryRun    bool
	Verbose   bool

	NoUI bool // Disable TUI when true
}

// ThreadsOrDefault returns Threads when set, else def.
func (o CLIOptions) ThreadsOrDefault(def int) int {
	if o.Threads > 0 {
		return o.Threads
	}
	return def
}
