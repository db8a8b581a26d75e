// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from multiple possible locations so the binary works
// when launched from the repo root, a cmd dir, or a test dir.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "scam-analyzer"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.MetricsPort == 0 {
		cfg.App.MetricsPort = 9090
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Pipeline.AnalysisTimeout == 0 {
		cfg.Pipeline.AnalysisTimeout = 15000
	}

	if cfg.Extractor.LLMTimeout == 0 {
		cfg.Extractor.LLMTimeout = 5000
	}

	if cfg.Verifier.MaxResults == 0 {
		cfg.Verifier.MaxResults = 5
	}
	if cfg.Verifier.Timeout == 0 {
		cfg.Verifier.Timeout = 3000
	}
	if cfg.Verifier.CacheTTL == 0 {
		cfg.Verifier.CacheTTL = 600
	}

	if cfg.Knowledge.HighConfidenceThreshold == 0 {
		cfg.Knowledge.HighConfidenceThreshold = 0.8
	}
	if cfg.Knowledge.ConfidenceDecay == 0 {
		cfg.Knowledge.ConfidenceDecay = 0.6
	}

	applyDecisionDefaults(&cfg.Decision)

	if cfg.Alerts.FraudRateThreshold == 0 {
		cfg.Alerts.FraudRateThreshold = 20.0
	}
	if cfg.Alerts.MinSampleSize == 0 {
		cfg.Alerts.MinSampleSize = 10
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// applyDecisionDefaults fills scoring constants. The relative ordering is
// load-bearing: knowledge-match override > conjunction rule > additive score.
func applyDecisionDefaults(d *DecisionConfig) {
	if d.PatternHighWeight == 0 {
		d.PatternHighWeight = 25
	}
	if d.PatternMediumWeight == 0 {
		d.PatternMediumWeight = 10
	}
	if d.PatternLowWeight == 0 {
		d.PatternLowWeight = 3
	}
	if d.KnowledgeWeight == 0 {
		d.KnowledgeWeight = 25
	}
	if d.TrustHighRiskWeight == 0 {
		d.TrustHighRiskWeight = 25
	}
	if d.TrustLowWeight == 0 {
		d.TrustLowWeight = 10
	}
	if d.TrustModerateWeight == 0 {
		d.TrustModerateWeight = -5
	}
	if d.TrustHighWeight == 0 {
		d.TrustHighWeight = -10
	}
	if d.SalaryHighWeight == 0 {
		d.SalaryHighWeight = 15
	}
	if d.SalaryMediumWeight == 0 {
		d.SalaryMediumWeight = 5
	}
	if d.FreeMailWeight == 0 {
		d.FreeMailWeight = 5
	}
	if d.ContextWeight == 0 {
		d.ContextWeight = 5
	}
	if d.WarningThreshold == 0 {
		d.WarningThreshold = 20
	}
	if d.FakeThreshold == 0 {
		d.FakeThreshold = 50
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Decision.WarningThreshold >= cfg.Decision.FakeThreshold {
		return fmt.Errorf("decision.warning_threshold (%v) must be below decision.fake_threshold (%v)",
			cfg.Decision.WarningThreshold, cfg.Decision.FakeThreshold)
	}
	if cfg.Knowledge.HighConfidenceThreshold <= 0 || cfg.Knowledge.HighConfidenceThreshold > 1 {
		return fmt.Errorf("knowledge.high_confidence_threshold must be in (0, 1], got %v",
			cfg.Knowledge.HighConfidenceThreshold)
	}
	if cfg.Knowledge.ConfidenceDecay <= 0 || cfg.Knowledge.ConfidenceDecay >= 1 {
		return fmt.Errorf("knowledge.confidence_decay must be in (0, 1), got %v",
			cfg.Knowledge.ConfidenceDecay)
	}
	if cfg.Verifier.Timeout <= 0 {
		return fmt.Errorf("verifier.timeout must be positive, got %d", cfg.Verifier.Timeout)
	}
	return nil
}
