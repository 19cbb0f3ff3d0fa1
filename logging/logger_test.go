package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer, *bytes.Buffer) {
	console, file := &bytes.Buffer{}, &bytes.Buffer{}
	l := New(Config{Level: level, Output: console, File: file, Prefix: "league"})
	l.sink.now = func() time.Time { return time.Date(2025, 8, 16, 15, 4, 5, 0, time.UTC) }
	return l, console, file
}

func TestLogger_Levels(t *testing.T) {
	l, console, file := newBufferLogger("warn")

	l.Info("hidden")
	l.Debugf("hidden %d", 1)
	l.Warnf("shown %d", 2)
	l.Error("also shown")

	out := console.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "also shown")
	assert.Contains(t, out, "2025-08-16 15:04:05.000")
	assert.Contains(t, out, "[league]")
	assert.Equal(t, out, file.String())

	assert.False(t, l.IsLevelEnabled(INFO))
	l.SetLevel(DEBUG)
	assert.True(t, l.IsLevelEnabled(DEBUG))
}

func TestLogger_WithPrefixSharesOutput(t *testing.T) {
	l, console, _ := newBufferLogger("debug")
	child := l.WithPrefix("LeagueService")

	child.Infof("seeded %s", "test")
	assert.Contains(t, console.String(), "[league:LeagueService]")
	assert.Contains(t, console.String(), "seeded test")

	l.SetLevel(ERROR)
	console.Reset()
	child.Warnf("dropped")
	assert.Empty(t, console.String())
}

func TestLogger_ColorOnlyOnConsole(t *testing.T) {
	console, file := &bytes.Buffer{}, &bytes.Buffer{}
	l := New(Config{Level: "info", Output: console, File: file, EnableColor: true})

	l.Info("hello")
	assert.True(t, strings.HasPrefix(console.String(), INFO.Color()))
	assert.False(t, strings.Contains(file.String(), "\033["))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel("whatever"))
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestOpenLogFile(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenLogFile(dir+"/nested", "league")
	assert.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.Name(), "league-")
	assert.True(t, strings.HasSuffix(f.Name(), ".log"))
}
