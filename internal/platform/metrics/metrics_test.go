package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveToggle(t *testing.T) {
	liked := testutil.ToFloat64(LikeToggles.WithLabelValues("comment", "liked"))
	unliked := testutil.ToFloat64(LikeToggles.WithLabelValues("comment", "unliked"))

	ObserveToggle("comment", true)
	ObserveToggle("comment", false)
	ObserveToggle("comment", true)

	assert.Equal(t, liked+2, testutil.ToFloat64(LikeToggles.WithLabelValues("comment", "liked")))
	assert.Equal(t, unliked+1, testutil.ToFloat64(LikeToggles.WithLabelValues("comment", "unliked")))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	NodesCreated.WithLabelValues("post").Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "discussion_nodes_created_total")
}
