package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dcode-github/property_tours/cache"
	"github.com/dcode-github/property_tours/catalog"
	"github.com/dcode-github/property_tours/config"
	"github.com/dcode-github/property_tours/events"
	"github.com/dcode-github/property_tours/logging"
	"github.com/dcode-github/property_tours/repository"
	"github.com/dcode-github/property_tours/routes"
	"github.com/dcode-github/property_tours/utils"
	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func newLogger(cfg *config.AppConfig) (*slog.Logger, *fluent.Fluent) {
	logCfg := logging.Config{
		Service: cfg.AppName,
		Level:   logging.ParseLevel(cfg.LogLevel),
		NoColor: cfg.LogNoColor,
	}

	var fluentClient *fluent.Fluent
	if cfg.FluentBit.Enabled {
		client, err := logging.NewFluentClient(cfg.FluentBit.Host, cfg.FluentBit.Port, cfg.AppName)
		if err != nil {
			log.Printf("Failed to create Fluent Bit client, continuing with stdout only: %v", err)
		} else {
			fluentClient = client
			logCfg.Fluent = client
			logCfg.FluentLevel = logging.ParseLevel(cfg.FluentBit.Level)
		}
	}
	return logging.New(os.Stdout, logCfg), fluentClient
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, fluentClient := newLogger(cfg)
	slog.SetDefault(logger)
	if fluentClient != nil {
		defer fluentClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Service stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Server gracefully stopped")
}

func run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	client, err := config.ConnectDB(ctx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("connecting to the database: %w", err)
	}
	defer config.CloseDBConnection(client, logger)

	db := client.Database(cfg.Mongo.Database)
	if err := config.InitCollections(ctx, db); err != nil {
		return err
	}

	redisClient, err := config.InitRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	listings := repository.NewListingStore(db)
	listingCache := cache.NewListingCache(redisClient, cfg.Redis.CacheTTL)
	sessions := cache.NewSessionStore(redisClient)

	cat := catalog.New(listings, listingCache, logger)
	if err := cat.Load(ctx); err != nil {
		return err
	}

	var publisher events.Publisher = events.NoopPublisher{}
	router := events.NewRouter()
	router.Handle("listing.#", cat.HandleEvent)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQP.Enabled {
		conn, err := events.Dial(cfg.AMQP.URL)
		if err != nil {
			return err
		}
		defer conn.Close()

		amqpPublisher, err := events.NewAMQPPublisher(conn, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher

		subscriber := events.NewSubscriber(conn, cfg.AMQP.Exchange, router, logger)
		g.Go(func() error {
			return subscriber.Run(gctx)
		})
	} else {
		logger.Info("Event bus disabled, events will be dropped")
	}

	muxRouter := mux.NewRouter()
	routes.Routes(muxRouter, routes.Deps{
		Listings:     listings,
		Favorites:    repository.NewFavoriteStore(db),
		Tours:        repository.NewTourStore(db),
		Users:        repository.NewUserStore(db),
		Profiles:     repository.NewProfileStore(db),
		Catalog:      cat,
		ListingCache: listingCache,
		Sessions:     sessions,
		Tokens:       utils.NewTokenManager(cfg.Auth.JWTKey, cfg.Auth.TokenTTL),
		Publisher:    publisher,
		TokenTTL:     cfg.Auth.TokenTTL,
		ResetTTL:     cfg.Auth.ResetTTL,
		Logger:       logger,
	})

	corsOptions := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: true,
	})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        corsOptions.Handler(muxRouter),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	g.Go(func() error {
		logger.Info("Server running", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("starting server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("during server shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
