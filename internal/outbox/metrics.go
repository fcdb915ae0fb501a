package outbox

import "expvar"

var (
	metricOutboxQueuedTotal     = expvar.NewInt("outbox_queued_total")
	metricOutboxOverflowTotal   = expvar.NewInt("outbox_overflow_total")
	metricOutboxWrittenTotal    = expvar.NewInt("outbox_written_total")
	metricOutboxFailedTotal     = expvar.NewInt("outbox_failed_total")
	metricOutboxRetryTotal      = expvar.NewInt("outbox_retry_total")
	metricOutboxDeadLetterTotal = expvar.NewInt("outbox_dead_letter_total")
	metricOutboxReplayedTotal   = expvar.NewInt("outbox_replayed_total")
	metricOutboxQueueLen        = expvar.NewInt("outbox_queue_len")
)
