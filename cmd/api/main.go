package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prastiyo12/userhub_api/internal/config"
	"github.com/prastiyo12/userhub_api/internal/db"
	"github.com/prastiyo12/userhub_api/internal/httpapi"
	"github.com/prastiyo12/userhub_api/internal/mailer"
	"github.com/prastiyo12/userhub_api/internal/ratelimit"
	"github.com/prastiyo12/userhub_api/internal/telemetry"
	"github.com/prastiyo12/userhub_api/internal/users"
	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	shutdownTracer := telemetry.InitTracer("userhub-api")
	defer shutdownTracer(context.Background())
	shutdownMetrics := telemetry.InitMetrics("userhub-api")
	defer shutdownMetrics(context.Background())
	shutdownLogger := telemetry.InitLogger("userhub-api")
	defer shutdownLogger(context.Background())
	db.InitTelemetry("userhub-api")

	d, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer d.Close()

	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	dbBase := db.NewBase(d.Pool, 3*time.Second)
	usrRepo := users.NewRepository(dbBase)

	var sender mailer.Sender = mailer.LogSender{}
	if cfg.SMTP.Host != "" {
		smtpSender, err := mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		if err != nil {
			log.Fatalf("smtp client error: %v", err)
		}
		sender = smtpSender
	}

	dispatcher := mailer.NewDispatcher(sender, cfg.MailQueueSize, cfg.SMTP.Timeout)
	dispatcher.Start()
	defer dispatcher.Close()

	usrService := &users.Service{
		Store:    usrRepo,
		Cache:    users.NewRedisCache(redisClient, cfg.Cache.Prefix),
		CacheTTL: cfg.Cache.ListTTL,
		Notifier: &mailer.UserNotifier{
			Queue:      dispatcher,
			AdminEmail: cfg.AdminEmail,
		},
	}

	createLimiter := ratelimit.NewLimiter(redisClient, cfg.Rate.Prefix, cfg.Rate.CreateLimit, cfg.Rate.CreateWindow)

	app := &httpapi.App{
		Health: &httpapi.HealthHandler{DB: d.Pool, Redis: redisClient},
		Users: &httpapi.UsersHandler{
			Service:       usrService,
			CreateLimiter: createLimiter,
		},
		Actors: &httpapi.HeaderActorResolver{Users: usrRepo},
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
