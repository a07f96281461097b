package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/propscan/pkg/dataset"
)

func TestCounters(t *testing.T) {
	m := New()

	m.FileScanned(dataset.OutcomeDataset)
	m.FileScanned(dataset.OutcomeNotDataset)
	m.FileScanned(dataset.OutcomeNotDataset)
	m.PropertiesDiscovered(4)
	m.Operation("create", StatusOK, 3)
	m.Operation("skip", StatusOK, 1)
	m.Operation("delete", StatusOK, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesScanned.WithLabelValues("dataset")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesScanned.WithLabelValues("not-dataset")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.propertiesDiscovered))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.operations.WithLabelValues("create", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("skip", StatusOK)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.operations))
}

func TestObserveRequest(t *testing.T) {
	m := New()

	m.ObserveRequest("GET", 200, 10*time.Millisecond)
	m.ObserveRequest("POST", 0, time.Second)

	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestRunFinished(t *testing.T) {
	m := New()
	finished := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	m.RunFinished("scan", finished, 1500*time.Millisecond, nil)
	m.RunFinished("remove", finished, time.Second, errors.New("boom"))

	assert.Equal(t, 1.5, testutil.ToFloat64(m.runDuration.WithLabelValues("scan", StatusOK)))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.lastRun.WithLabelValues("remove", StatusError)))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.PropertiesDiscovered(2)

	path := filepath.Join(t.TempDir(), "propscan.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "propscan_properties_discovered_total 2")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.FileScanned(dataset.OutcomeDataset)
		m.PropertiesDiscovered(1)
		m.Operation("create", StatusOK, 1)
		m.ObserveRequest("GET", 200, time.Millisecond)
		m.RunFinished("scan", time.Now(), time.Second, nil)
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/dir/file.prom"))
	assert.Nil(t, m.Registry())
}
