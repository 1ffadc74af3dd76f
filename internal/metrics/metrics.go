// Package metrics provides Prometheus metrics for device and control
// activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	deviceOpens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "device",
		Name:      "opens_total",
		Help:      "Device open attempts",
	}, []string{"path", "result"})

	controlReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "control",
		Name:      "reads_total",
		Help:      "Single control reads",
	}, []string{"path", "result"})

	controlWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "control",
		Name:      "writes_total",
		Help:      "Controls written in batches, counted per control",
	}, []string{"path", "result"})

	hotplugEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "hotplug",
		Name:      "events_total",
		Help:      "Video node attach and detach events",
	}, []string{"action"})

	profileApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camctl",
		Subsystem: "profile",
		Name:      "applies_total",
		Help:      "Profile applications",
	}, []string{"profile", "result"})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// CountDeviceOpen records a device open attempt.
func CountDeviceOpen(path string, err error) {
	deviceOpens.WithLabelValues(path, result(err)).Inc()
}

// CountControlRead records a single control read.
func CountControlRead(path string, err error) {
	controlReads.WithLabelValues(path, result(err)).Inc()
}

// CountControlWrites records n controls written in one batch.
func CountControlWrites(path string, n int, err error) {
	controlWrites.WithLabelValues(path, result(err)).Add(float64(n))
}

// CountHotplugEvent records one kernel attach or detach event.
func CountHotplugEvent(action string) {
	hotplugEvents.WithLabelValues(action).Inc()
}

// CountProfileApply records a profile application.
func CountProfileApply(profile string, err error) {
	profileApplies.WithLabelValues(profile, result(err)).Inc()
}

// HTTPHandler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
