package ecp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var commandTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dlcert_ecp_command_total",
	Help: "Outcome of device control commands",
}, []string{
	"op",      // launch|input|keypress|literal
	"outcome", // accepted|rejected|error
})

func observeCommand(op, outcome string) {
	commandTotal.WithLabelValues(op, outcome).Inc()
}
