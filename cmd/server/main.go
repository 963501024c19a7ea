package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/cinema-receipt-service/internal/config"
	"github.com/iliyamo/cinema-receipt-service/internal/handler"
	"github.com/iliyamo/cinema-receipt-service/internal/logging"
	"github.com/iliyamo/cinema-receipt-service/internal/mailer"
	"github.com/iliyamo/cinema-receipt-service/internal/queue"
	"github.com/iliyamo/cinema-receipt-service/internal/receipt"
	"github.com/iliyamo/cinema-receipt-service/internal/router"
	"github.com/iliyamo/cinema-receipt-service/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logging.Init(cfg.Env, cfg.LogLevel)
	log := logrus.WithField("service", "cinema-receipts")

	rdb := config.NewRedisClient(config.LoadRedisConfig(), log)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	sender := mailer.NewSMTPSender(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	if !sender.Configured() {
		log.Warn("SMTP is not configured; receipts will be rendered but not emailed")
	}

	opts := service.Options{
		Renderer:       receipt.NewRenderer(venue(cfg.Venue)),
		Dispatcher:     sender,
		EmailCustomers: cfg.EmailCustomers,
		NotifyTo:       cfg.NotifyTo,
	}
	if cfg.Queue.Enabled {
		opts.Publisher = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, log)
	}

	e := router.New(router.Deps{
		Receipts:    &handler.ReceiptHandler{Service: service.New(opts)},
		Redis:       rdb,
		RateLimit:   config.LoadRateLimitConfig(),
		Cache:       config.LoadCacheConfig(),
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if cfg.Queue.Enabled && cfg.Queue.ConsumerEnabled {
		g.Go(func() error {
			return queue.StartReceiptConsumer(ctx, queue.ConsumerConfig{
				URL:     cfg.Queue.URL,
				Queue:   cfg.Queue.Name,
				LogPath: cfg.Queue.LogPath,
			}, log)
		})
	}

	if err := g.Wait(); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}

// venue applies configured overrides on top of the built-in venue.
func venue(vc config.VenueConfig) receipt.Venue {
	v := receipt.DefaultVenue()
	v.Name, _ = lo.Coalesce(vc.Name, v.Name)
	v.Address, _ = lo.Coalesce(vc.Address, v.Address)
	v.Phone, _ = lo.Coalesce(vc.Phone, v.Phone)
	v.Currency, _ = lo.Coalesce(vc.Currency, v.Currency)
	return v
}
