package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRequestRecordsOutcome(t *testing.T) {
	before := testutil.ToFloat64(requestsTotal.WithLabelValues("rename", "collision"))

	finish := StartRequest("rename")
	assert.Equal(t, 1.0, testutil.ToFloat64(requestsInFlight.WithLabelValues("rename")))
	finish("collision")

	assert.Equal(t, 0.0, testutil.ToFloat64(requestsInFlight.WithLabelValues("rename")))
	assert.Equal(t, before+1, testutil.ToFloat64(requestsTotal.WithLabelValues("rename", "collision")))
}

func TestRecordWrite(t *testing.T) {
	before := testutil.ToFloat64(bytesWritten)
	RecordWrite(5)
	assert.Equal(t, before+5, testutil.ToFloat64(bytesWritten))
}

func TestHandlerExposesBridgeMetrics(t *testing.T) {
	StartRequest("read-folder")(OutcomeOK)
	RecordTree(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `folio_bridge_requests_total{channel="read-folder",outcome="ok"}`)
	assert.Contains(t, string(body), "folio_tree_nodes_count")
}
