// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mortgage-workers/internal/common/cache"
	"mortgage-workers/internal/common/camunda"
	"mortgage-workers/internal/common/config"
	"mortgage-workers/internal/common/database"
	"mortgage-workers/internal/common/logger"
	"mortgage-workers/internal/common/observability"
	"mortgage-workers/internal/common/validation"
	"mortgage-workers/internal/policy"
	"mortgage-workers/internal/workers/eligibility/support"
	"mortgage-workers/pkg/registry"

	cfe "mortgage-workers/internal/workers/eligibility/compute-full-eligibility"
	cpl "mortgage-workers/internal/workers/eligibility/compute-partial-limit"
	er "mortgage-workers/internal/workers/eligibility/evaluate-readiness"
	ero "mortgage-workers/internal/workers/eligibility/evaluate-refinance-outlook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	constants, err := loadPolicy(cfg.Policy)
	if err != nil {
		zapLog.Fatal("policy load failed", zap.Error(err))
	}
	zapLog.Info("Policy constants loaded", zap.String("policyVersion", constants.Version()))

	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.String("path", cfg.Registry.Path), zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("input schema compilation failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name, cfg.Tracing)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var results *cache.ResultCache
	var redisClient *database.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedis(cfg.Redis)
		if err != nil {
			zapLog.Fatal("redis client init failed", zap.Error(err))
		}
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx); err != nil {
			zapLog.Warn("Redis unavailable at startup, results will be recomputed until it recovers", zap.Error(err))
		} else {
			zapLog.Info("Redis connected successfully")
		}
		cancel()
		results = cache.NewResultCache(redisClient.GetClient(), cache.DefaultPrefix)
	}

	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	deps := support.Dependencies{
		Policy:        constants,
		Results:       results,
		Validator:     validator,
		Observability: obs,
		Logger:        log,
	}

	workers, err := startWorkers(cfg, zeebe, deps, log)
	if err != nil {
		zapLog.Fatal("worker start failed", zap.Error(err))
	}

	server := &http.Server{
		Addr:              cfg.Metrics.ListenAddress,
		Handler:           routes(zeebe, redisClient, constants, workers),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Worker manager stopped")
}

// loadPolicy reads the configured policy document, or the built-in one when
// no path is configured.
func loadPolicy(cfg config.PolicyConfig) (*policy.Constants, error) {
	if cfg.Path == "" {
		return policy.Default()
	}
	return policy.LoadFile(cfg.Path)
}

func startWorkers(cfg *config.Config, zeebe *camunda.Client, deps support.Dependencies, log logger.Logger) ([]*camunda.CamundaWorker, error) {
	var workers []*camunda.CamundaWorker

	if wcfg := config.GetWorkerConfig(cfg, cpl.TaskType); wcfg.Enabled {
		handler, err := cpl.NewHandler(cpl.HandlerOptions{Config: cpl.FromWorkerConfig(wcfg), Dependencies: deps})
		if err != nil {
			return nil, err
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), cpl.TaskType, wcfg, handler, log))
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": cpl.TaskType})
	}

	if wcfg := config.GetWorkerConfig(cfg, cfe.TaskType); wcfg.Enabled {
		handler, err := cfe.NewHandler(cfe.HandlerOptions{Config: cfe.FromWorkerConfig(wcfg), Dependencies: deps})
		if err != nil {
			return nil, err
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), cfe.TaskType, wcfg, handler, log))
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": cfe.TaskType})
	}

	if wcfg := config.GetWorkerConfig(cfg, er.TaskType); wcfg.Enabled {
		handler, err := er.NewHandler(er.HandlerOptions{Config: er.FromWorkerConfig(wcfg), Dependencies: deps})
		if err != nil {
			return nil, err
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), er.TaskType, wcfg, handler, log))
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": er.TaskType})
	}

	if wcfg := config.GetWorkerConfig(cfg, ero.TaskType); wcfg.Enabled {
		handler, err := ero.NewHandler(ero.HandlerOptions{Config: ero.FromWorkerConfig(wcfg), Dependencies: deps})
		if err != nil {
			return nil, err
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), ero.TaskType, wcfg, handler, log))
	} else {
		log.Info("worker disabled", map[string]interface{}{"taskType": ero.TaskType})
	}

	return workers, nil
}

func routes(zeebe *camunda.Client, redisClient *database.RedisClient, constants *policy.Constants, workers []*camunda.CamundaWorker) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":        "healthy",
			"policyVersion": constants.Version(),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"zeebe": "ok"}
		status := http.StatusOK
		if err := zeebe.HealthCheck(ctx); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		// Redis is reported but never fails readiness.
		if redisClient != nil {
			checks["redis"] = "ok"
			if err := redisClient.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
			}
		}

		taskTypes := make([]string, 0, len(workers))
		for _, wk := range workers {
			taskTypes = append(taskTypes, wk.TaskType())
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"checks":  checks,
			"workers": taskTypes,
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
