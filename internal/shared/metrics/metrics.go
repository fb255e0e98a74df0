package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	WorkflowTransitions *prometheus.CounterVec
	ClockInRejected     *prometheus.CounterVec
	PayrollEmployees    *prometheus.CounterVec
	PayrollDuration     prometheus.Histogram
	NotificationsQueued *prometheus.CounterVec
	OutboxDispatch      *prometheus.CounterVec
}

var singleton = sync.OnceValue(func() *Metrics {
	return &Metrics{
		WorkflowTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "workflow_transitions_total",
			Help:      "State transitions applied by the swap, leave and time entry workflows.",
		}, []string{"workflow", "to"}),
		ClockInRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "clock_in_rejected_total",
			Help:      "Clock-in attempts rejected, by error code.",
		}, []string{"code"}),
		PayrollEmployees: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "payroll_employees_total",
			Help:      "Employees processed by payroll calculation, by result.",
		}, []string{"result"}),
		PayrollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "workforce",
			Name:      "payroll_calculate_seconds",
			Help:      "Duration of a payroll calculation for one period.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		NotificationsQueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "notifications_total",
			Help:      "Notification events handed to the sink, by event type and result.",
		}, []string{"event_type", "result"}),
		OutboxDispatch: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "workforce",
			Name:      "outbox_dispatch_total",
			Help:      "Outbox events relayed to Kafka, by topic and result.",
		}, []string{"topic", "result"}),
	}
})

func Get() *Metrics {
	return singleton()
}

// Handler exposes the default registry for gin.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
