// cmd/analyzer/main.go
package main

import (
	"bufio"
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

	"scam-analyzer/internal/agents/decision"
	"scam-analyzer/internal/agents/extractor"
	"scam-analyzer/internal/agents/knowledge"
	"scam-analyzer/internal/agents/patterns"
	"scam-analyzer/internal/agents/salary"
	"scam-analyzer/internal/agents/verifier"
	"scam-analyzer/internal/common/aws"
	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/database"
	"scam-analyzer/internal/common/logger"
	"scam-analyzer/internal/common/observability"
	"scam-analyzer/internal/intel"
	"scam-analyzer/internal/models"
	"scam-analyzer/internal/pipeline"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting scam analyzer...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL (knowledge store) ---
	// A dead store degrades the learning loop to process memory; it never
	// blocks analysis.
	var store knowledge.Store
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 3, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Warn("postgres unavailable, knowledge base falls back to in-memory", zap.Error(err))
		store = knowledge.NewMemoryStore(cfg.Knowledge.ConfidenceDecay)
	} else {
		defer pg.Close()
		pgStore := knowledge.NewPostgresStore(pg.DB, cfg.Knowledge.ConfidenceDecay)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("knowledge schema migration failed", zap.Error(err))
		}
		store = pgStore
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Redis (verifier cache) ---
	var cache verifier.Cache
	if redisClient, err := database.NewRedis(cfg.Database.Redis); err != nil {
		zapLog.Warn("redis unavailable, verifier cache disabled", zap.Error(err))
	} else if err := redisClient.Ping(ctx); err != nil {
		zapLog.Warn("redis unavailable, verifier cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cache = verifier.NewRedisCache(redisClient.Client)
		zapLog.Info("Redis connected successfully")
	}

	// --- Init Elasticsearch (scam report index) ---
	var reports verifier.ReportCounter
	if cfg.Verifier.ReportIndex != "" {
		if esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
			zapLog.Warn("elasticsearch unavailable, report lookups disabled", zap.Error(err))
		} else if err := esClient.Ping(); err != nil {
			zapLog.Warn("elasticsearch unavailable, report lookups disabled", zap.Error(err))
		} else {
			reports = verifier.NewESReportIndex(esClient.Client, cfg.Verifier.ReportIndex)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Build the pipeline stages ---
	var llm extractor.ReasoningClient
	if cfg.Extractor.LLMEnabled && cfg.Extractor.LLMEndpoint != "" {
		llm = extractor.NewHTTPReasoningClient(cfg.Extractor)
	}
	ext := extractor.New(&extractor.Config{
		LLMTimeout: time.Duration(cfg.Extractor.LLMTimeout) * time.Millisecond,
	}, llm, log)

	matcher := patterns.NewDefault(log)
	if cfg.Rules.PatternsPath != "" {
		matcher, err = patterns.NewFromFile(cfg.Rules.PatternsPath, log)
		if err != nil {
			zapLog.Fatal("pattern rules load failed", zap.Error(err))
		}
	}

	reasoner := salary.New(salary.DefaultTable(), log)
	if cfg.Rules.SalaryTablePath != "" {
		reasoner, err = salary.NewFromFile(cfg.Rules.SalaryTablePath, log)
		if err != nil {
			zapLog.Fatal("salary table load failed", zap.Error(err))
		}
	}

	analyzer := pipeline.New(
		ext,
		matcher,
		knowledge.NewBase(store, cfg.Knowledge, log),
		verifier.New(verifier.NewHTTPSearchClient(cfg.Verifier), reports, cache, cfg.Verifier, log),
		reasoner,
		decision.New(cfg.Decision, cfg.Knowledge, log),
		cfg.Pipeline,
		log,
		obs,
	)

	// --- Market intelligence and alerting ---
	var notifiers []intel.Notifier
	if cfg.Alerts.Enabled {
		if cfg.Alerts.AWS.SES.Enabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Alerts.AWS.Region)
			if err != nil {
				zapLog.Fatal("SES client init failed", zap.Error(err))
			}
			notifiers = append(notifiers, intel.NewSESNotifier(sesClient, cfg.Alerts.AWS.SES.FromEmail, cfg.Alerts.AWS.SES.ToEmails))
		}
		if cfg.Alerts.AWS.SNS.Enabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Alerts.AWS.Region)
			if err != nil {
				zapLog.Fatal("SNS client init failed", zap.Error(err))
			}
			notifiers = append(notifiers, intel.NewSNSNotifier(snsClient, cfg.Alerts.AWS.SNS.TopicARN))
		}
	}
	market := intel.New(cfg.Alerts, intel.NewAlertSystem(log, notifiers...), log)

	// --- Health/Metrics Server ---
	go func() {
		http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/intel", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(market.Snapshot())
		})
		http.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
		zapLog.Info("Health/Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Analysis loop: one JSON request per stdin line ---
	done := make(chan struct{})
	go func() {
		defer close(done)
		encoder := json.NewEncoder(os.Stdout)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var req models.AnalysisRequest
			if err := json.Unmarshal(line, &req); err != nil {
				log.Error("malformed request line", map[string]interface{}{"error": err.Error()})
				continue
			}
			verdict, err := analyzer.Analyze(ctx, &req)
			if err != nil {
				log.Error("analysis failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			market.Record(ctx, req.JobRole, verdict)
			if err := encoder.Encode(verdict); err != nil {
				log.Error("verdict encode failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received")
	case <-done:
		zapLog.Info("Input stream closed")
	}

	zapLog.Info("Scam analyzer stopped gracefully")
}
