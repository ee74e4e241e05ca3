// Package metrics счётчики и гистограммы Prometheus для API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bizplan"

var (
	// PaymentVerifications результаты проверки платежей: applied, replay, rejected, error.
	PaymentVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_verifications_total",
		Help:      "Payment verification outcomes.",
	}, []string{"pack", "outcome"})

	// CreditsGranted начисленные кредиты по пакетам.
	CreditsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credits_granted_total",
		Help:      "Credits added to user balances.",
	}, []string{"pack"})

	// PlanGenerations результаты генерации бизнес-планов.
	PlanGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "plan_generations_total",
		Help:      "Business plan generation outcomes.",
	}, []string{"outcome"})

	// ContactSubmissions принятые и отклонённые обращения.
	ContactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contact_submissions_total",
		Help:      "Contact form submissions.",
	}, []string{"outcome"})

	// HTTPDuration длительность HTTP-запросов.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Исходы операций.
const (
	OutcomeApplied  = "applied"
	OutcomeReplay   = "replay"
	OutcomeRejected = "rejected"
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)
