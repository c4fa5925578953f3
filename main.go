package main

import (
	"context"
	"log"

	"yideng/config"
	"yideng/database"
	"yideng/ledger"
	"yideng/routers"
	"yideng/utils"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	cfg := config.AppConfig
	db := database.Database.Db
	ctx := context.Background()

	l, err := utils.NewLedger(ctx, db, cfg)
	if err != nil {
		log.Fatalf("Failed to start ledger: %v", err)
	}

	if cfg.CourseSeedFile != "" {
		seed, err := utils.LoadCourseSeed(cfg.CourseSeedFile)
		if err != nil {
			log.Fatalf("Failed to load course seed: %v", err)
		}
		if _, err := utils.SeedCourses(ctx, l, l.Deployer(), seed); err != nil {
			log.Fatalf("Failed to seed courses: %v", err)
		}
	}

	if cfg.IndexerWebhookURL != "" {
		webhook := utils.NewEventWebhook(cfg.IndexerWebhookURL)
		webhook.Start()
		defer webhook.Stop()
		l.Subscribe(webhook.Enqueue)
	}

	if cfg.ReconcileCron != "" {
		scheduler, err := utils.InitializeReconcileScheduler(l, cfg.ReconcileCron)
		if err != nil {
			log.Fatalf("Invalid RECONCILE_CRON %q: %v", cfg.ReconcileCron, err)
		}
		defer scheduler.Stop()
	}

	logAddresses(l)

	app := routers.NewApp(l, db)

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

func logAddresses(l *ledger.Ledger) {
	log.Printf("[LEDGER] token %s, certificate %s, market %s",
		l.Token.Address(), l.Certificates.Address(), l.Market.Address())
}
