package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsweep/internal/fit"
)

// ActivityFIT builds a minimal activity file whose session starts at start.
func ActivityFIT(t testing.TB, start time.Time) []byte {
	t.Helper()

	ts, err := fit.Timestamp(start)
	require.NoError(t, err)

	e := fit.NewEncoder()
	require.NoError(t, e.WriteFileID(fit.FileID{Type: fit.FileTypeActivity, Manufacturer: 1, Product: 1, Serial: 1, TimeCreated: ts}))
	require.NoError(t, e.WriteEvent(fit.Event{Timestamp: ts, Event: fit.EventTimer, EventType: fit.EventTypeStart}))
	require.NoError(t, e.WriteSession(fit.Session{
		Timestamp:        ts + 60,
		StartTime:        ts,
		TotalElapsedTime: fit.Int(60000),
		TotalTimerTime:   fit.Int(60000),
		Sport:            1,
	}))
	require.NoError(t, e.WriteActivity(fit.ActivitySummary{Timestamp: ts + 60, TotalTimerTime: fit.Int(60000), NumSessions: 1}))

	b, err := e.Bytes()
	require.NoError(t, err)
	return b
}

// HealthFIT builds a valid file with no session, like a monitoring file.
func HealthFIT(t testing.TB) []byte {
	t.Helper()

	e := fit.NewEncoder()
	// 32 is the monitoring_b file type.
	require.NoError(t, e.WriteFileID(fit.FileID{Type: 32, Manufacturer: 1, Product: 1, Serial: 1, TimeCreated: 1}))
	b, err := e.Bytes()
	require.NoError(t, err)
	return b
}

// CorruptFIT returns bytes that fail header validation.
func CorruptFIT() []byte {
	return []byte("this is not a FIT file at all")
}

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// ListDir returns the sorted names of the entries in dir.
func ListDir(t testing.TB, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
