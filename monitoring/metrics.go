package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of calls to the platform API",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation", "status"},
	)

	bookingSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_workflow_steps_total",
			Help: "Booking workflow step transitions",
		},
		[]string{"step", "status"},
	)

	paymentPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_status_polls_total",
			Help: "Payment status poll attempts by outcome",
		},
		[]string{"outcome"},
	)

	pendingPayments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_payments_total",
			Help: "Current number of payments awaiting settlement",
		},
	)

	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_checkins_total",
			Help: "Attendance toggles by result",
		},
		[]string{"result"},
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx := context.Background()

		count, err := m.redis.SCard(ctx, "payments:pending").Result()
		if err != nil {
			continue
		}
		pendingPayments.Set(float64(count))
	}
}

// TrackGatewayRequest records a platform API call.
func TrackGatewayRequest(operation, status string, duration time.Duration) {
	gatewayRequestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// TrackBookingStep records a workflow step transition.
func TrackBookingStep(step, status string) {
	bookingSteps.WithLabelValues(step, status).Inc()
}

// TrackPaymentPoll records one poll attempt.
func TrackPaymentPoll(outcome string) {
	paymentPolls.WithLabelValues(outcome).Inc()
}

// TrackCheckIn records an attendance toggle.
func TrackCheckIn(result string) {
	checkIns.WithLabelValues(result).Inc()
}
