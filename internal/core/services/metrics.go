package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	journalEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pregnancy_journal_entries_total",
			Help: "Total number of journal entry writes",
		},
		[]string{"operation"},
	)

	abnormalFindingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pregnancy_abnormal_findings_total",
			Help: "Total number of abnormal biometric findings on saved journal entries",
		},
		[]string{"field", "severity"},
	)

	alertPublishFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pregnancy_alert_publish_failures_total",
			Help: "Total number of finding alerts that could not be published",
		},
	)
)
