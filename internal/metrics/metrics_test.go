package metrics

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	r := NewRecorder()

	r.ObserveQuery("BadType", 3*time.Millisecond, 1, nil)
	r.ObserveQuery("GoodType", time.Millisecond, 1, nil)
	r.ObserveQuery("GoodType", time.Millisecond, 0, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.queryRows.WithLabelValues("BadType")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queryRows.WithLabelValues("GoodType")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.queryErrors.WithLabelValues("GoodType")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.queryDuration))
}

func TestObserveQuery_NilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.ObserveQuery("BadType", time.Millisecond, 1, nil) })
}

func TestWriteText(t *testing.T) {
	r := NewRecorder()
	r.ObserveQuery("BadType", time.Millisecond, 1, nil)

	var buf bytes.Buffer
	require.NoError(t, r.WriteText(&buf))

	out := buf.String()
	assert.Contains(t, out, "# TYPE seekdemo_query_duration_seconds histogram")
	assert.Contains(t, out, `seekdemo_query_rows_total{table="BadType"} 1`)
}
