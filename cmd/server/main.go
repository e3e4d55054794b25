package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"

	"github.com/herlandro/bookamot-saas-sub003/internal/config"
	"github.com/herlandro/bookamot-saas-sub003/internal/database"
	"github.com/herlandro/bookamot-saas-sub003/internal/engine"
	"github.com/herlandro/bookamot-saas-sub003/internal/handler"
	"github.com/herlandro/bookamot-saas-sub003/internal/queue"
	"github.com/herlandro/bookamot-saas-sub003/internal/repository"
	"github.com/herlandro/bookamot-saas-sub003/internal/router"
	"github.com/herlandro/bookamot-saas-sub003/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := repository.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	// repositories
	users := repository.NewUserRepo(db)
	garages := repository.NewGarageRepo(db)
	vehicles := repository.NewVehicleRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)
	emails := repository.NewEmailLogRepo(db)
	store := repository.NewStore(db, slots, bookings, garages)

	// engine
	dispatcher := service.NewDispatcher(users, garages)
	calendar := engine.NewCalendar(store)
	ledger := engine.NewLedger(store)
	coordinator := engine.NewCoordinator(store, dispatcher)
	lifecycle := engine.NewLifecycle(store, dispatcher, service.NewReviewGate(bookings))

	// notification pipeline: queue consumer delivers, cron sweeper retries
	mailer := service.NewFileMailer("logs")
	go queue.StartConsumer(emails, mailer)

	sweeper := service.NewRetrySweeper(emails, bookings, garages, mailer)
	sched := cron.New()
	if _, err := sched.AddFunc("@every 5m", sweeper.Run); err != nil {
		log.Fatalf("cron: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	e := echo.New()
	router.Register(e, router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, garages),
		Garage:   handler.NewGarageHandler(garages),
		Slots:    handler.NewSlotHandler(calendar, garages),
		Bookings: handler.NewBookingHandler(coordinator, lifecycle, calendar, bookings, garages, vehicles),
		Quota:    handler.NewQuotaHandler(ledger),
		Vehicles: handler.NewVehicleHandler(vehicles),
		Admin:    handler.NewAdminHandler(garages, ledger),
	}, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
