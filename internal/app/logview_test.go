package app

import (
	"fmt"
	"log"
	"testing"
	"time"

	"fyne.io/fyne/v2/data/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindingText(t *testing.T, b binding.String) string {
	t.Helper()
	text, err := b.Get()
	require.NoError(t, err)
	return text
}

func TestLogCaptureFlushesImmediatelyWhenStopped(t *testing.T) {
	b := binding.NewString()
	lc := newLogCapture(b, 10)

	_, err := lc.Write([]byte("first\r\nsecond\n\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, lc.Lines())
	assert.Equal(t, "first\nsecond", bindingText(t, b))
}

func TestLogCaptureKeepsLastLines(t *testing.T) {
	b := binding.NewString()
	lc := newLogCapture(b, 2)
	logger := log.New(lc, "", 0)

	for i := 1; i <= 4; i++ {
		logger.Printf("line %d", i)
	}

	assert.Equal(t, []string{"line 3", "line 4"}, lc.Lines())
	assert.Equal(t, "line 3\nline 4", bindingText(t, b))
}

func TestLogCaptureDebouncesWhileRunning(t *testing.T) {
	b := binding.NewString()
	lc := newLogCapture(b, 0)
	lc.start()
	defer lc.stop()

	for i := 0; i < 20; i++ {
		fmt.Fprintf(lc, "event %d\n", i)
	}

	require.Eventually(t, func() bool {
		text, _ := b.Get()
		return text != ""
	}, 2*time.Second, 10*time.Millisecond)
	lines := lc.Lines()
	require.Len(t, lines, 20)
	assert.Equal(t, "event 19", lines[19])
}

func TestLogCaptureStopFlushes(t *testing.T) {
	b := binding.NewString()
	lc := newLogCapture(b, 0)
	lc.start()

	fmt.Fprintln(lc, "shutting down")
	lc.stop()
	lc.stop()

	require.Eventually(t, func() bool {
		text, _ := b.Get()
		return text == "shutting down"
	}, time.Second, 10*time.Millisecond)
}
