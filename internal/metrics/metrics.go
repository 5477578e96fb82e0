package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exambot",
		Name:      "updates_handled_total",
		Help:      "Telegram updates handled, by kind.",
	}, []string{"kind"})

	HandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exambot",
		Name:      "handler_errors_total",
		Help:      "Handled updates that ended in an error, by error class.",
	}, []string{"class"})

	Ingestions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exambot",
		Name:      "ingestions_total",
		Help:      "Question set ingestion attempts, by source and result.",
	}, []string{"source", "result"})

	AnswersRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "exambot",
		Name:      "answers_recorded_total",
		Help:      "Answers appended to the answer log.",
	})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "exambot",
		Name:      "notification_failures_total",
		Help:      "Admin notifications that were dropped or failed to send.",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "exambot",
		Name:      "active_sessions",
		Help:      "Users with a live session.",
	})
)
