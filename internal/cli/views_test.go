package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fitsweep/internal/sweep"
)

func TestReportViewRunIDOnOneLine(t *testing.T) {
	const runID = "01928f4e-7c1a-7d3e-9b2f-3a6c5d8e1f20"
	r := sweep.NewReport(runID, "clean", "/export", false, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC))
	r.Record(sweep.Outcome{Path: "/export/a.json", Action: sweep.ActionDeleteSidecar})

	var buf bytes.Buffer
	require.NoError(t, newReportView(r).renderText(&buf, false))

	lines := strings.Split(buf.String(), "\n")
	assert.Contains(t, lines, "clean run "+runID)
	assert.Contains(t, buf.String(), "delete_sidecar")
}
