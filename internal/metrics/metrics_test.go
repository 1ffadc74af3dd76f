package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	CountDeviceOpen("/dev/video9", nil)
	CountDeviceOpen("/dev/video9", errors.New("busy"))
	if got := testutil.ToFloat64(deviceOpens.WithLabelValues("/dev/video9", "ok")); got != 1 {
		t.Errorf("opens ok = %v", got)
	}
	if got := testutil.ToFloat64(deviceOpens.WithLabelValues("/dev/video9", "error")); got != 1 {
		t.Errorf("opens error = %v", got)
	}

	CountControlWrites("/dev/video9", 3, nil)
	if got := testutil.ToFloat64(controlWrites.WithLabelValues("/dev/video9", "ok")); got != 3 {
		t.Errorf("writes ok = %v", got)
	}

	CountHotplugEvent("add")
	if got := testutil.ToFloat64(hotplugEvents.WithLabelValues("add")); got < 1 {
		t.Errorf("hotplug add = %v", got)
	}
}

func TestHTTPHandlerServesMetrics(t *testing.T) {
	CountProfileApply("daylight", nil)

	rec := httptest.NewRecorder()
	HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "camctl_profile_applies_total") {
		t.Error("metrics output missing profile counter")
	}
}
