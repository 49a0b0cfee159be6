package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// RecommendationsTotal counts recommendation computations by focal product type.
	RecommendationsTotal *prometheus.CounterVec
	// CartTotalsTotal counts cart total calculations.
	CartTotalsTotal prometheus.Counter
	// EnquiriesTotal counts enquiry submissions by outcome.
	EnquiriesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Count of recommendation computations by focal product type.",
		}, []string{"product_type"})
		CartTotalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_totals_total",
			Help:      "Count of cart pricing calculations.",
		})
		EnquiriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enquiries_total",
			Help:      "Count of enquiry submissions by outcome.",
		}, []string{"result"})
		reg.MustRegister(RecommendationsTotal, CartTotalsTotal, EnquiriesTotal)
	})
}
