package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordResponse(t *testing.T) {
	before := testutil.ToFloat64(MockResponsesTotal.WithLabelValues("echo"))
	richBefore := testutil.ToFloat64(MockRichResponsesTotal)

	RecordResponse("echo", 250, false)
	RecordResponse("echo", 250, true)

	assert.Equal(t, before+2, testutil.ToFloat64(MockResponsesTotal.WithLabelValues("echo")))
	assert.Equal(t, richBefore+1, testutil.ToFloat64(MockRichResponsesTotal))
}

func TestSSEConnections(t *testing.T) {
	before := testutil.ToFloat64(SSEConnectionsActive)
	IncrementSSEConnections()
	assert.Equal(t, before+1, testutil.ToFloat64(SSEConnectionsActive))
	DecrementSSEConnections()
	assert.Equal(t, before, testutil.ToFloat64(SSEConnectionsActive))
}
