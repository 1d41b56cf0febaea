package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"

	"lg/stride-api/internal/engine"
)

// cronSpecParser matches cron.WithSeconds so config validation accepts
// exactly what the scheduler will.
const cronSpecParser = cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor

// scheduler runs the nightly snapshot refresh.
type scheduler struct {
	cron *cron.Cron
	h    *Handler
	ctx  context.Context
}

func newScheduler(ctx context.Context, h *Handler) *scheduler {
	return &scheduler{cron: cron.New(cron.WithSeconds()), h: h, ctx: ctx}
}

// register adds the refresh job on the given cron expression.
func (s *scheduler) register(refreshCron string) error {
	if _, err := s.cron.AddFunc(refreshCron, s.refreshSnapshots); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

func (s *scheduler) start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// stop waits for a running job to finish.
func (s *scheduler) stop() {
	<-s.cron.Stop().Done()
	log.Println("scheduler stopped")
}

// refreshSnapshots recomputes every configured user's snapshot for the new
// day and records one maintenance_history row each. A failing user is
// logged and skipped.
func (s *scheduler) refreshSnapshots() {
	runID := uuid.NewString()
	today := engine.Day(s.h.now())

	rows, err := s.h.db.Query(s.ctx, "SELECT user_id FROM calorie_log_user_settings ORDER BY user_id")
	if err != nil {
		log.Printf("[refreshSnapshots] run %s: list users: %v", runID, err)
		return
	}
	userIDs, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		log.Printf("[refreshSnapshots] run %s: scan users: %v", runID, err)
		return
	}

	failed := 0
	for _, id := range userIDs {
		if s.ctx.Err() != nil {
			break
		}
		if _, err := s.h.refreshUser(s.ctx, id, today); err != nil {
			failed++
			log.Printf("[refreshSnapshots] run %s: user %d: %v", runID, id, err)
		}
	}
	log.Printf("[refreshSnapshots] run %s: %d users for %s, %d failed",
		runID, len(userIDs), today.Format("2006-01-02"), failed)
}
