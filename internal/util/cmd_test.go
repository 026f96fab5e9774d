package util

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanLinesCR(t *testing.T) {
	in := "frame=1 time=00:00:01.00\rframe=2 time=00:00:02.00\r\nlast line\nno newline"
	sc := bufio.NewScanner(strings.NewReader(in))
	sc.Split(ScanLinesCR)

	var got []string
	for sc.Scan() {
		got = append(got, sc.Text())
	}
	assert.Equal(t, []string{
		"frame=1 time=00:00:01.00",
		"frame=2 time=00:00:02.00",
		"last line",
		"no newline",
	}, got)
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name string
		path string
		args []string
		want string
	}{
		{name: "plain", path: "ffmpeg", args: []string{"-i", "a.mpg"}, want: "ffmpeg -i a.mpg"},
		{name: "spaces", path: "ffmpeg", args: []string{"-i", "my clip.mpg"}, want: "ffmpeg -i 'my clip.mpg'"},
		{name: "brackets", path: "ffmpeg", args: []string{"./[DVDF]-Dad.mpg"}, want: "ffmpeg './[DVDF]-Dad.mpg'"},
		{name: "empty arg", path: "ffmpeg", args: []string{""}, want: "ffmpeg ''"},
		{name: "single quote", path: "ffmpeg", args: []string{"it's"}, want: `ffmpeg 'it'\''s'`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellQuote(tt.path, tt.args))
		})
	}
}
