package metrics

// Pre-defined metrics for the tournament engine. All metrics live in
// DefaultRegistry so they are globally accessible without passing a
// registry around. A process that runs many tournaments concurrently
// (the batch harness) shares this registry across runs; callers that need
// per-tournament isolation should build a private Registry instead.

var (
	// ---- Period metrics ----

	// PeriodsRun counts periods cleared across all tournaments in process.
	PeriodsRun = DefaultRegistry.Counter("tournament.periods_run")
	// PeriodClearTime records how long clearing a period took, in microseconds.
	PeriodClearTime = DefaultRegistry.Histogram("tournament.period_clear_us")
	// ZeroAllocationPeriods counts periods that cleared with no admitted bids.
	ZeroAllocationPeriods = DefaultRegistry.Counter("tournament.zero_allocation_periods")

	// ---- Bid metrics ----

	// BidsSubmitted counts bid offers returned by agents, before admission.
	BidsSubmitted = DefaultRegistry.Counter("tournament.bids_submitted")
	// BidsAdmitted counts bids that passed floor, positivity, and budget checks.
	BidsAdmitted = DefaultRegistry.Counter("tournament.bids_admitted")
	// BidsDropped counts bids rejected by the admission predicate.
	BidsDropped = DefaultRegistry.Counter("tournament.bids_dropped")
	// AgentDecisionFailures counts recovered agent decision failures.
	AgentDecisionFailures = DefaultRegistry.Counter("tournament.agent_decision_failures")

	// ---- Rescind metrics ----

	// RescindsOffered counts periods where a single-winner rescind prompt was issued.
	RescindsOffered = DefaultRegistry.Counter("tournament.rescinds_offered")
	// RescindsTaken counts rescinds the winner actually accepted.
	RescindsTaken = DefaultRegistry.Counter("tournament.rescinds_taken")
	// RescindsRevealed counts pending rescinds that matured into public records.
	RescindsRevealed = DefaultRegistry.Counter("tournament.rescinds_revealed")
	// PendingRescinds tracks the current size of the pending-rescind queue.
	PendingRescinds = DefaultRegistry.Gauge("tournament.pending_rescinds")

	// ---- Tournament lifecycle metrics ----

	// TournamentsStarted counts tournaments that reached stage-active phase.
	TournamentsStarted = DefaultRegistry.Counter("tournament.started")
	// TournamentsCompleted counts tournaments that reached the completed phase.
	TournamentsCompleted = DefaultRegistry.Counter("tournament.completed")
	// StagesAwarded counts stage-end SP award passes performed.
	StagesAwarded = DefaultRegistry.Counter("tournament.stages_awarded")
)
