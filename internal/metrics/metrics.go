package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	signupAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogit_signup_attempts_total",
		Help: "Number of signup attempts grouped by status.",
	}, []string{"status"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogit_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	postOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogit_post_operations_total",
		Help: "Number of post operations grouped by operation and status.",
	}, []string{"op", "status"})

	imageUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogit_image_uploads_total",
		Help: "Number of image uploads grouped by backend and status.",
	}, []string{"backend", "status"})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogit_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})
)

// IncSignup increments the signup counter.
func IncSignup(status string) {
	signupAttempts.WithLabelValues(status).Inc()
}

// IncLogin increments the login counter.
func IncLogin(status string) {
	loginAttempts.WithLabelValues(status).Inc()
}

// IncPostOp increments the post operation counter.
func IncPostOp(op, status string) {
	postOperations.WithLabelValues(op, status).Inc()
}

// IncUpload increments the image upload counter.
func IncUpload(backend, status string) {
	imageUploads.WithLabelValues(backend, status).Inc()
}

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) {
	rateLimitHits.WithLabelValues(name).Inc()
}
