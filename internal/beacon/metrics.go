package beacon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	beaconTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dlcert_beacon_observed_total",
		Help: "Beacon lines matched per category",
	}, []string{"category"})

	noiseTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dlcert_beacon_noise_total",
		Help: "Launch beacon lines discarded for missing a duration field",
	})
)

func observeBeacon(category string) {
	beaconTotal.WithLabelValues(category).Inc()
}

func observeNoise() {
	noiseTotal.Inc()
}
