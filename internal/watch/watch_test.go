package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccepts(t *testing.T) {
	w := New(".")
	assert.True(t, w.Accepts("/in/Dad.MPG"))
	assert.False(t, w.Accepts("/in/notes.txt"))

	w = New(".", WithExtensions("wav", ".FLAC"))
	assert.True(t, w.Accepts("a.flac"))
	assert.True(t, w.Accepts("a.wav"))
	assert.False(t, w.Accepts("a.mpg"))
}

func TestTick(t *testing.T) {
	tests := []struct {
		settle time.Duration
		want   time.Duration
	}{
		{0, 500 * time.Millisecond}, // ignored, default 2s
		{-time.Second, 500 * time.Millisecond},
		{time.Nanosecond, time.Millisecond},
		{3 * time.Nanosecond, time.Millisecond},
		{2 * time.Millisecond, time.Millisecond},
		{40 * time.Millisecond, 10 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.settle.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, New(".", WithSettle(tt.settle)).tick())
		})
	}
}

func TestRun_ReportsSettledMediaFiles(t *testing.T) {
	tests := []struct {
		settle time.Duration
		once   bool // with a tiny settle the create and write events may land on separate ticks
	}{
		{40 * time.Millisecond, true},
		{3 * time.Nanosecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.settle.String(), func(t *testing.T) {
			testReportsSettledMediaFiles(t, tt.settle, tt.once)
		})
	}
}

func testReportsSettledMediaFiles(t *testing.T, settle time.Duration, once bool) {
	dir := t.TempDir()
	w := New(dir, WithSettle(settle))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan string, 4)
	errc := make(chan error, 1)
	go func() {
		errc <- w.Run(ctx, func(_ context.Context, path string) { got <- path })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Dad.mpg"), []byte("x"), 0o644))

	select {
	case p := <-got:
		assert.Equal(t, filepath.Join(dir, "Dad.mpg"), p)
	case <-time.After(5 * time.Second):
		t.Fatal("no file reported")
	}

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
	for len(got) > 0 {
		p := <-got
		assert.Equal(t, filepath.Join(dir, "Dad.mpg"), p, "only media files are reported")
		if once {
			t.Errorf("%s reported twice", p)
		}
	}
}

func TestRun_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, w.Run(context.Background(), func(context.Context, string) {}))
}
