package counters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var tokensPulled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "tokens_pulled_total",
	Help:      "Total number of tokens pulled from roaming partners.",
}, []string{"endpoint"})

var evsePatches = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "evse_patch_total",
	Help:      "Total number of EVSE status patches by outcome.",
}, []string{"endpoint", "outcome"})

var syncFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "ocpi",
	Name:      "sync_failures",
	Help:      "Failure count of the last bulk status sync run.",
}, []string{"endpoint"})

var inboundRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpi",
	Name:      "inbound_requests_total",
	Help:      "Total number of partner-initiated requests by surface.",
}, []string{"role", "resource"})

func ObserveTokensPulled(endpointId string, count int) {
	if endpointId == "" || count <= 0 {
		return
	}
	tokensPulled.With(prometheus.Labels{"endpoint": endpointId}).Add(float64(count))
}

func ObserveEvsePatch(endpointId string, success bool) {
	if endpointId == "" {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	evsePatches.With(prometheus.Labels{"endpoint": endpointId, "outcome": outcome}).Inc()
}

func ObserveSyncRun(endpointId string, failures int) {
	if endpointId == "" {
		return
	}
	syncFailures.With(prometheus.Labels{"endpoint": endpointId}).Set(float64(failures))
}

func ObserveInbound(role, resource string) {
	if role == "" || resource == "" {
		return
	}
	inboundRequests.With(prometheus.Labels{"role": role, "resource": resource}).Inc()
}
