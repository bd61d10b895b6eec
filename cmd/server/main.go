package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	cartapp "softhub/internal/cart/app"
	carthttp "softhub/internal/cart/http"
	"softhub/internal/cart/infra/adapter"
	cartmem "softhub/internal/cart/infra/memory"
	cartpg "softhub/internal/cart/infra/postgres"
	cartredis "softhub/internal/cart/infra/redis"

	catalogapp "softhub/internal/catalog/app"
	cataloghttp "softhub/internal/catalog/http"
	"softhub/internal/catalog/infra/static"

	"softhub/internal/notify"
	"softhub/pkg/config"
	"softhub/pkg/logger"
	"softhub/pkg/postgres"
	"softhub/pkg/shutdown"
)

// @title SoftHub API
// @version 1.0
// @description Catalog and shopping cart API for SoftHub Solutions
// @BasePath /
func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "softhub", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Error("trace exporter init failed", slog.Any("err", err))
		os.Exit(1)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	catalog, err := static.New()
	if err != nil {
		log.Error("catalog load failed", slog.Any("err", err))
		os.Exit(1)
	}
	catalogSvc := catalogapp.NewService(catalog)

	slot, closeSlot := mustSlot(ctx, cfg, log)
	defer closeSlot()

	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil || !taxRate.IsPositive() {
		log.Warn("invalid TAX_RATE, using default", slog.String("value", cfg.TaxRate))
		taxRate = cartapp.DefaultTaxRate
	}

	center := notify.NewCenter()
	catalogReader := adapter.NewCatalogServiceReader(catalogSvc)
	storeFactory := func(key string) *cartapp.Store {
		return cartapp.NewStore(slot, catalogReader, cartapp.Options{
			Key:     key,
			TaxRate: taxRate,
			Logger:  log,
		})
	}

	r := mux.NewRouter()
	r.Use(tracing)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	cataloghttp.NewServer(catalogSvc, log).Register(r)
	carthttp.NewServer(cfg.CartKeyPrefix, storeFactory, center, log).Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr), slog.String("cart_backend", cfg.CartBackend))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

// mustSlot builds the configured cart persistence backend. The memory backend
// keeps carts for the process lifetime only.
func mustSlot(ctx context.Context, cfg config.Config, log *slog.Logger) (cartapp.Slot, func()) {
	switch cfg.CartBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		slot := cartredis.New(client)
		if err := slot.Ping(ctx); err != nil {
			log.Error("redis ping failed", slog.Any("err", err), slog.String("addr", cfg.RedisAddr))
			os.Exit(1)
		}
		return slot, func() { client.Close() }

	case "postgres":
		db, err := postgres.Open(postgres.Config{
			Host: cfg.PostgresHost,
			Port: cfg.PostgresPort,
			User: cfg.PostgresUser,
			Pass: cfg.PostgresPass,
			DB:   cfg.PostgresDB,
		})
		if err != nil {
			log.Error("db open failed", slog.Any("err", err))
			os.Exit(1)
		}
		slot := cartpg.New(db)
		if err := slot.EnsureSchema(ctx); err != nil {
			log.Error("schema init failed", slog.Any("err", err))
			os.Exit(1)
		}
		return slot, func() { db.Close() }

	default:
		return cartmem.New(), func() {}
	}
}

// tracing opens one span per request.
func tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("softhub/http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
