package bitrate

import (
	"strconv"
	"strings"
)

// ParseKbps converts an ffmpeg bitrate value ("4000k", "1.5M", "192000")
// into kbps. ok is false for empty or malformed values.
func ParseKbps(v string) (kbps int, ok bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	mult := 0.001 // plain numbers are bits per second
	switch v[len(v)-1] {
	case 'k', 'K':
		mult = 1
		v = v[:len(v)-1]
	case 'm', 'M':
		mult = 1000
		v = v[:len(v)-1]
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int(f*mult + 0.5), true
}

// FromArgs returns the video and audio bitrates found in an ffmpeg argument
// list. Both the modern (-b:v, -b:a) and legacy (-b, -ab) spellings count.
func FromArgs(args []string) (videoKbps, audioKbps int) {
	for i := 0; i+1 < len(args); i++ {
		switch args[i] {
		case "-b:v", "-b":
			if k, ok := ParseKbps(args[i+1]); ok {
				videoKbps = k
			}
		case "-b:a", "-ab":
			if k, ok := ParseKbps(args[i+1]); ok {
				audioKbps = k
			}
		}
	}
	return videoKbps, audioKbps
}

// EstimateBytes approximates the output size of a stream encoded at the
// given total bitrate for durationSec seconds.
func EstimateBytes(totalKbps int, durationSec float64) int64 {
	if totalKbps <= 0 || durationSec <= 0 {
		return 0
	}
	return int64(float64(totalKbps) * 1000 / 8 * durationSec)
}
