package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesFetchedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "reconcile",
		Name:      "pages_fetched_total",
		Help:      "Total provider listing pages fetched.",
	})
	rateLimitWaitsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "reconcile",
		Name:      "rate_limit_waits_total",
		Help:      "Total rate-limit backoff waits during paging.",
	})
	messagesPersistedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "reconcile",
		Name:      "messages_persisted_total",
		Help:      "Inbound messages newly persisted by the merger.",
	})
	duplicatesSkippedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "reconcile",
		Name:      "duplicates_skipped_total",
		Help:      "Inbound messages skipped because their identity already existed.",
	})
	ownerUnresolvedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "reconcile",
		Name:      "owner_unresolved_total",
		Help:      "Inbound messages whose destination matched no local user or contact.",
	})
	ruleActionsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gateway",
		Subsystem: "reconcile",
		Name:      "rule_actions_total",
		Help:      "Rule actions executed against inbound messages.",
	}, []string{"action", "outcome"})
)
