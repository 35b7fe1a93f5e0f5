package cron

import "context"

// SummaryRebuilder recomputes recent daily team summaries for every active team.
type SummaryRebuilder interface {
	RebuildRecent(ctx context.Context, lookbackDays int) error
}

// RebuildJobs contains summary maintenance cron jobs
type RebuildJobs struct {
	rebuilder    SummaryRebuilder
	spec         string
	lookbackDays int
}

// NewRebuildJobs creates summary rebuild cron jobs
func NewRebuildJobs(rebuilder SummaryRebuilder, spec string, lookbackDays int) *RebuildJobs {
	return &RebuildJobs{
		rebuilder:    rebuilder,
		spec:         spec,
		lookbackDays: lookbackDays,
	}
}

// RegisterJobs registers all summary-related cron jobs
func (j *RebuildJobs) RegisterJobs(scheduler *Scheduler) error {
	// Heal summaries left stale by dropped triggers
	return scheduler.AddJob("rebuild_team_summaries", j.spec, j.RebuildTeamSummaries)
}

// RebuildTeamSummaries recomputes the lookback window for all active teams
func (j *RebuildJobs) RebuildTeamSummaries(ctx context.Context) error {
	return j.rebuilder.RebuildRecent(ctx, j.lookbackDays)
}
