package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveSync(t *testing.T) {
	before := testutil.ToFloat64(SyncCounter.WithLabelValues("push", ResultError))
	ObserveSync("push", time.Now(), errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(SyncCounter.WithLabelValues("push", ResultError)))
}

func TestHandlerExposesCounters(t *testing.T) {
	AssetMutationCounter.WithLabelValues("add", ResultSuccess).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "inventory_asset_mutations_total")
}
