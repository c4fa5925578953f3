package utils

import (
	"context"
	"log"
	"time"

	"yideng/ledger"

	"github.com/robfig/cron/v3"
)

// InitializeReconcileScheduler audits the ledger on the given cron spec
func InitializeReconcileScheduler(l *ledger.Ledger, spec string) (*cron.Cron, error) {
	log.Println("[RECONCILE-SCHEDULER] Initializing reconcile scheduler...")

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		RunReconcile(l)
	}); err != nil {
		return nil, err
	}

	c.Start()
	log.Printf("[RECONCILE-SCHEDULER] Reconcile scheduler started - runs %s", spec)
	return c, nil
}

// RunReconcile runs one audit and logs what it found.
func RunReconcile(l *ledger.Ledger) *ledger.ReconcileReport {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	report, err := l.Reconcile(ctx)
	if err != nil {
		log.Printf("[RECONCILE-SCHEDULER] Audit failed: %v", err)
		return nil
	}

	if !report.OK() {
		for _, issue := range report.Issues {
			log.Printf("[RECONCILE-SCHEDULER] INCONSISTENT: %s", issue)
		}
		return report
	}

	log.Printf("[RECONCILE-SCHEDULER] Ledger consistent: supply %d/%d, reserve %s wei, %d certificates",
		report.TotalSupply, report.MaxSupply, report.Reserve, report.Certificates)
	return report
}
