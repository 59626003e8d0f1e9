package reconciler

import (
	"context"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/robfig/cron/v3"
)

// Reconciler periodically repairs denormalized counter drift and
// expires lapsed invitations. Counters are maintained write-through;
// this job is the safety net for rows touched by manual intervention
// or interrupted deployments.
type Reconciler struct {
	categories  *services.CategoryService
	invitations *services.InvitationService
	schedule    string
	cron        *cron.Cron
}

func New(categories *services.CategoryService, invitations *services.InvitationService, schedule string) *Reconciler {
	return &Reconciler{
		categories:  categories,
		invitations: invitations,
		schedule:    schedule,
		cron:        cron.New(),
	}
}

// Start registers the schedule and launches the cron loop.
func (r *Reconciler) Start() error {
	if _, err := r.cron.AddFunc(r.schedule, r.runOnce); err != nil {
		return err
	}
	r.cron.Start()

	utils.GetLogger().Info("Reconciler started", utils.LogFields{
		"schedule": r.schedule,
	})
	return nil
}

// Stop halts the cron loop and waits for a running pass to finish.
func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

func (r *Reconciler) runOnce() {
	logger := utils.GetLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	start := time.Now()

	drifts, err := r.categories.Reconcile(ctx)
	if err != nil {
		logger.Error("Category counter reconciliation failed", err, nil)
	} else if len(drifts) > 0 {
		for _, drift := range drifts {
			logger.Warn("Corrected category counter drift", utils.LogFields{
				"category_id":   drift.CategoryID,
				"stored_topics": drift.StoredTopics,
				"actual_topics": drift.ActualTopics,
				"stored_posts":  drift.StoredPosts,
				"actual_posts":  drift.ActualPosts,
			})
		}
	}

	expired, err := r.invitations.ExpireLapsed(ctx)
	if err != nil {
		logger.Error("Invitation expiry sweep failed", err, nil)
	}

	logger.Info("Reconciliation pass completed", utils.LogFields{
		"duration_ms":         time.Since(start).Milliseconds(),
		"counters_corrected":  len(drifts),
		"invitations_expired": expired,
	})
}
