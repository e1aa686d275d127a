package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	_ "github.com/jackc/pgx/v5/stdlib"

	"moving-voice-agent/internal/audit"
	"moving-voice-agent/internal/auth"
	"moving-voice-agent/internal/booking"
	"moving-voice-agent/internal/config"
	"moving-voice-agent/internal/dialogue"
	"moving-voice-agent/internal/distance"
	"moving-voice-agent/internal/httpapi"
	"moving-voice-agent/internal/nlu"
	"moving-voice-agent/internal/notify"
	"moving-voice-agent/internal/pricing"
	"moving-voice-agent/internal/reporting"
	"moving-voice-agent/internal/scheduling"
	"moving-voice-agent/internal/session"
	"moving-voice-agent/internal/telephony"

	"moving-voice-agent/pkg/logger"
	"moving-voice-agent/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local convenience; missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Booking store: Postgres rows behind a short-TTL Redis date cache.
	store := booking.NewCachedStore(booking.NewPostgresRepo(db), rdb, time.Minute, log)

	sessions := session.NewRedis[dialogue.Session](rdb, "voice:session", 2*time.Hour)

	smsSender := notify.NewTwilioSMS(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken,
		cfg.Twilio.FromNumber, cfg.Twilio.SMSEnabled, log)
	company := notify.Company{
		Name:         cfg.Company.Name,
		Phone:        cfg.Company.OfficePhone,
		ManagerPhone: cfg.Company.ManagerPhone,
	}
	notifier := notify.NewNotifier(smsSender, company, log)

	var emailSender notify.EmailSender
	if cfg.SMTP.Host != "" {
		emailSender = notify.NewSMTPEmail(cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}

	// NLU: OpenAI when configured, always with the deterministic fallback.
	var classifier nlu.Classifier = nlu.Heuristic{}
	if cfg.OpenAI.APIKey != "" {
		classifier = nlu.NewFallback(nlu.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nlu.Heuristic{}, log)
	}

	var distSvc distance.Service = distance.Static{}
	if cfg.Maps.APIKey != "" {
		distSvc = distance.NewGoogle(cfg.Maps.APIKey, cfg.Maps.OfficeAddress, log)
	}

	scheduler := scheduling.NewEngine(scheduling.Config{
		WorkStart:           cfg.Scheduling.WorkStart,
		WorkEnd:             cfg.Scheduling.WorkEnd,
		DefaultBookingHours: cfg.Scheduling.DefaultBookingHours,
		MorningJobCapacity:  cfg.Scheduling.MorningJobCapacity,
		MaxAlternatives:     cfg.Scheduling.MaxAlternatives,
		OfficePhone:         cfg.Company.OfficePhone,
	}, store, log)

	pricer := pricing.NewEngine(pricing.Config{
		MileageFreeRadius: cfg.Pricing.MileageFreeRadius,
		MileageRate:       cfg.Pricing.MileageRate,
		TravelTimeHours:   cfg.Pricing.TravelTimeHours,
		PackingFee:        cfg.Pricing.PackingFee,
		OfficePhone:       cfg.Company.OfficePhone,
	})

	machine := dialogue.NewMachine(dialogue.Config{
		CompanyName:             cfg.Company.Name,
		ManagerPhone:            cfg.Company.ManagerPhone,
		OfficePhoneSpoken:       cfg.Company.OfficePhoneSpoken,
		LongDistanceTravelHours: cfg.Scheduling.LongDistanceTravelHours,
		PrewarmDays:             cfg.Scheduling.PrewarmDays,
		ZipGuidance:             cfg.Speech.ZipGuidance,
		ManagerEmail:            cfg.SMTP.ManagerEmail,
	}, dialogue.Deps{
		Sessions:   sessions,
		Store:      store,
		Pricer:     pricer,
		Scheduler:  scheduler,
		Distance:   distSvc,
		Classifier: classifier,
		Notifier:   notifier,
		SMS:        smsSender,
		Email:      emailSender,
		Prewarm:    store.Prewarm,
		Log:        log,
	})

	var caller *telephony.Caller
	if cfg.Twilio.AccountSID != "" {
		caller = telephony.NewCaller(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber)
	}

	reports := reporting.NewService(store)
	auditor := audit.NewService(audit.NewPostgresRepo(db))

	handlers := httpapi.Handlers{
		Machine: machine,
		Store:   store,
		SMS:     smsSender,
		Caller:  caller,
		Reports: reports,
		Audit:   auditor,
		Gather: telephony.GatherConfig{
			Language: cfg.Speech.Language,
			Voice:    cfg.Speech.Voice,
			Hints:    cfg.Speech.Hints,
			Enhanced: true,
		},
		VoiceURL:     cfg.WebhookURL("/voice/outbound"),
		StatusURL:    cfg.WebhookURL("/voice/status"),
		ManagerPhone: cfg.Company.ManagerPhone,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, handlers, authManager)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
