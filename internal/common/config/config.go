// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Verifier  VerifierConfig  `mapstructure:"verifier"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Decision  DecisionConfig  `mapstructure:"decision"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Alerts    AlertsConfig    `mapstructure:"alerts"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field.
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// --- Pipeline Configuration ---

// PipelineConfig bounds the whole analysis call.
type PipelineConfig struct {
	AnalysisTimeout int `mapstructure:"analysis_timeout"` // milliseconds
}

// ExtractorConfig covers the optional LLM-assisted extraction path.
type ExtractorConfig struct {
	LLMEnabled  bool   `mapstructure:"llm_enabled"`
	LLMEndpoint string `mapstructure:"llm_endpoint"`
	LLMAPIKey   string `mapstructure:"llm_api_key"`
	LLMModel    string `mapstructure:"llm_model"`
	LLMTimeout  int    `mapstructure:"llm_timeout"` // milliseconds
}

// VerifierConfig covers the external reputation lookup.
type VerifierConfig struct {
	SearchURL    string `mapstructure:"search_url"`
	SearchAPIKey string `mapstructure:"search_api_key"`
	MaxResults   int    `mapstructure:"max_results"`
	Timeout      int    `mapstructure:"timeout"`      // milliseconds, bounds the whole verify call
	CacheTTL     int    `mapstructure:"cache_ttl"`    // seconds
	ReportIndex  string `mapstructure:"report_index"` // elasticsearch index, empty disables
}

// KnowledgeConfig tunes the learning loop.
type KnowledgeConfig struct {
	// Verdict confidence a Fake must reach before the aggregator proposes
	// a knowledge update, and the entry confidence that triggers the hard
	// override.
	HighConfidenceThreshold float64 `mapstructure:"high_confidence_threshold"`
	// Base of the saturating confidence function: conf(n) = 1 - decay^n.
	ConfidenceDecay float64 `mapstructure:"confidence_decay"`
}

// DecisionConfig is the scoring surface: increment sizes and the two
// category thresholds. The relative ordering matters more than the exact
// values; they are tunable here.
type DecisionConfig struct {
	PatternHighWeight   float64 `mapstructure:"pattern_high_weight"`
	PatternMediumWeight float64 `mapstructure:"pattern_medium_weight"`
	PatternLowWeight    float64 `mapstructure:"pattern_low_weight"`
	KnowledgeWeight     float64 `mapstructure:"knowledge_weight"`
	TrustHighRiskWeight float64 `mapstructure:"trust_high_risk_weight"`
	TrustLowWeight      float64 `mapstructure:"trust_low_weight"`
	TrustModerateWeight float64 `mapstructure:"trust_moderate_weight"` // negative: exonerating
	TrustHighWeight     float64 `mapstructure:"trust_high_weight"`     // negative: exonerating
	SalaryHighWeight    float64 `mapstructure:"salary_high_weight"`
	SalaryMediumWeight  float64 `mapstructure:"salary_medium_weight"`
	FreeMailWeight      float64 `mapstructure:"free_mail_weight"`
	ContextWeight       float64 `mapstructure:"context_weight"`
	WarningThreshold    float64 `mapstructure:"warning_threshold"`
	FakeThreshold       float64 `mapstructure:"fake_threshold"`
}

// RulesConfig points at optional external rule/reference files; empty paths
// fall back to the compiled-in defaults.
type RulesConfig struct {
	PatternsPath    string `mapstructure:"patterns_path"`
	SalaryTablePath string `mapstructure:"salary_table_path"`
}

// AlertsConfig covers the market-intelligence alerting channel.
type AlertsConfig struct {
	Enabled            bool    `mapstructure:"enabled"`
	FraudRateThreshold float64 `mapstructure:"fraud_rate_threshold"` // percent
	MinSampleSize      int     `mapstructure:"min_sample_size"`

	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool     `mapstructure:"enabled"`
			FromEmail string   `mapstructure:"from_email"`
			ToEmails  []string `mapstructure:"to_emails"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled  bool   `mapstructure:"enabled"`
			TopicARN string `mapstructure:"topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
