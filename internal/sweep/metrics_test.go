package sweep

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserve(t *testing.T) {
	r := NewReport("id", "clean", "/d", false, t0)
	r.Record(Outcome{Action: ActionDeleteSidecar})
	r.Record(Outcome{Action: ActionDeleteSidecar})
	r.Record(Outcome{Action: ActionMoveHealth, Err: os.ErrPermission})
	r.Finished = t0

	m := NewMetrics()
	m.Observe(r)

	assert.Equal(t, 2.0, promtest.ToFloat64(m.files.WithLabelValues("clean", "delete_sidecar")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.errors.WithLabelValues("clean", "io")))
	assert.Equal(t, float64(t0.Unix()), promtest.ToFloat64(m.lastRun.WithLabelValues("clean", "false")))
}

func TestMetricsWriteTextfile(t *testing.T) {
	r := NewReport("id", "convert", "/d", true, t0)
	r.Record(Outcome{Action: ActionConvert})

	m := NewMetrics()
	m.Observe(r)

	path := filepath.Join(t.TempDir(), "fitsweep.prom")
	require.NoError(t, m.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, "# TYPE fitsweep_files_total counter")
	assert.True(t, strings.Contains(text, `fitsweep_files_total{action="convert",command="convert"} 1`))
}

func TestUUIDv7Generator(t *testing.T) {
	a := UUIDv7Generator{}.Generate()
	b := UUIDv7Generator{}.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14], "version nibble")
}
