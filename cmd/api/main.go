package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kestrelhr/timeclock-backend-go/internal/config"
	appHTTP "github.com/kestrelhr/timeclock-backend-go/internal/handler/http"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/cron"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/database"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/idempotency"
	"github.com/kestrelhr/timeclock-backend-go/internal/pkg/jwt"
	"github.com/kestrelhr/timeclock-backend-go/internal/repository/postgresql"
	reportService "github.com/kestrelhr/timeclock-backend-go/internal/service/report"
	timeclockService "github.com/kestrelhr/timeclock-backend-go/internal/service/timeclock"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	redisClient, err := idempotency.NewClient(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		fmt.Println("Error connecting to redis:", err)
		return
	}
	idemStore := idempotency.NewStore(redisClient, cfg.Timeclock.IdempotencyTTL)

	scheduleRepo := postgresql.NewScheduleRepository(db)
	branchRepo := postgresql.NewBranchRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	timeclockSvc := timeclockService.NewTimeclockService(
		scheduleRepo,
		branchRepo,
		idemStore,
		cfg.Timeclock.GeofenceSlackMeters,
	)
	reportSvc := reportService.NewReportService(scheduleRepo)

	timeclockHandler := appHTTP.NewTimeclockHandler(timeclockSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	scheduler := cron.NewScheduler()
	timeclockJobs := cron.NewTimeclockJobs(scheduleRepo, cfg.Timeclock.MissedCheckoutGrace)
	timeclockJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		JWTService,
		timeclockHandler,
		reportHandler,
		cfg.App.Env,
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)

	go func() {
		if err := http.ListenAndServe(port, router); err != nil {
			fmt.Println("Server error:", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop
}
