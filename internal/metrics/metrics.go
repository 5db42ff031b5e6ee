// Package metrics exposes prometheus counters for auth outcomes. Store
// failures get their own counter so operational incidents stay visible even
// though the API answers with the same 401 it uses for bad credentials.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Status labels for auth operation outcomes.
const (
	StatusSuccess       = "success"
	StatusInvalid       = "invalid"
	StatusAlreadyExists = "already_exists"
	StatusError         = "error"
)

var AuthOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vision_auth_operations_total",
		Help: "Total number of auth operations by outcome",
	},
	[]string{"operation", "status"},
)

var StoreErrors = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "vision_store_errors_total",
		Help: "Total number of credential store failures",
	},
	[]string{"operation"},
)

var TokensIssued = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "vision_tokens_issued_total",
		Help: "Total number of access tokens issued",
	},
)

// Register registers all auth metrics with the given registry. Panics on
// duplicate registration (prometheus convention).
func Register(reg prometheus.Registerer) {
	reg.MustRegister(AuthOperations, StoreErrors, TokensIssued)
}

func RecordAuthOperation(operation string, status string) {
	AuthOperations.WithLabelValues(operation, status).Inc()
}

func RecordStoreError(operation string) {
	StoreErrors.WithLabelValues(operation).Inc()
}
