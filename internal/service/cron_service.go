// Package service contains the service layer for the Momentum API
package service

import (
	"context"
	"time"

	"github.com/mytradeapp/momentumapi/internal/config"
	"github.com/mytradeapp/momentumapi/pkg/utils/zaplogger"
	"github.com/robfig/cron/v3"
)

// CronService drives the scheduled refresh jobs. The core refresh itself is
// caller triggered, cron is just one such caller.
type CronService struct {
	cfg       *config.Config
	c         *cron.Cron
	resolver  *ResolverService
	watchlist *WatchlistService
}

// NewCronService creates a new CronService
func NewCronService(cfg *config.Config, resolver *ResolverService, watchlist *WatchlistService) *CronService {
	return &CronService{
		cfg:       cfg,
		c:         cron.New(),
		resolver:  resolver,
		watchlist: watchlist,
	}
}

// Start starts the cron service
func (cs *CronService) Start() {
	zaplogger.Info("Initializing CronService")

	// ------------------------------------------------------------
	// SCHEDULED jobs
	// ------------------------------------------------------------
	cs.addScheduledJob("Mapping cache REBUILD Job", cs.mappingRebuildJob, "30 8 * * 1-5")    // Once at 08:30am, Mon-Fri
	cs.addScheduledJob("Watchlist REFRESH Job", cs.watchlistRefreshJob, "*/10 9-15 * * 1-5") // Every 10 min, 9am-3pm, Mon-Fri

	// ------------------------------------------------------------
	// STARTUP jobs
	// ------------------------------------------------------------
	cs.addStartupJob("Mapping cache BUILD Job", cs.mappingBuildJob, 1*time.Second)

	cs.c.Start()
}

// Stop stops the cron service
func (cs *CronService) Stop() {
	cs.c.Stop()
}

// addStartupJob adds a startup job to the cron service
func (cs *CronService) addStartupJob(name string, job func(), delay time.Duration) {
	go func() {
		time.Sleep(delay)
		zaplogger.Info("STARTED STARTUP job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED STARTUP job", zaplogger.Fields{"job": name})
	}()
	zaplogger.Info("QUEUED STARTUP job", zaplogger.Fields{"job": name})
}

func (cs *CronService) addScheduledJob(name string, job func(), schedule string) {
	_, err := cs.c.AddFunc(schedule, func() {
		zaplogger.Info("STARTED SCHEDULED job", zaplogger.Fields{"job": name})
		job()
		zaplogger.Info("COMPLETED SCHEDULED job", zaplogger.Fields{"job": name})
	})
	if err != nil {
		zaplogger.Error("FAILED TO QUEUE SCHEDULED job", zaplogger.Fields{
			"job":   name,
			"error": err.Error(),
		})
		return
	}
	zaplogger.Info("QUEUED SCHEDULED job", zaplogger.Fields{"job": name})
}

// mappingBuildJob builds the mapping caches if not built yet
func (cs *CronService) mappingBuildJob() {
	jobName := "Mapping cache BUILD Job "

	if err := cs.resolver.Build(false); err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{"symbols": cs.resolver.Size()})
}

// mappingRebuildJob force rebuilds the mapping caches
func (cs *CronService) mappingRebuildJob() {
	jobName := "Mapping cache REBUILD Job "

	if err := cs.resolver.Build(true); err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{"symbols": cs.resolver.Size()})
}

// watchlistRefreshJob reconciles live quotes into the watchlist
func (cs *CronService) watchlistRefreshJob() {
	jobName := "Watchlist REFRESH Job "

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rows, err := cs.watchlist.Refresh(ctx, false)
	if err != nil {
		zaplogger.Error(jobName, zaplogger.Fields{"error": err.Error()})
		return
	}
	zaplogger.Info(jobName, zaplogger.Fields{"rows": len(rows)})
}
