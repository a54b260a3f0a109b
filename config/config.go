package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PIIPattern describes one PII detector: a regex, how bad a hit is, and
// how the matched span gets masked.
type PIIPattern struct {
	Regex        string `yaml:"regex" validate:"required"`
	Severity     string `yaml:"severity" validate:"oneof=critical high medium"`
	MaskStrategy string `yaml:"mask_strategy" validate:"oneof=full_mask last_4_digits domain_only partial_mask"`
	// Priority orders detectors: lower runs first. Specific identifier
	// formats must claim their spans before generic numeric patterns.
	Priority int `yaml:"priority"`
}

// ValidationConfig bounds and screens raw input text.
type ValidationConfig struct {
	MinLength         int      `yaml:"min_length" validate:"min=1"`
	MaxLength         int      `yaml:"max_length" validate:"min=1"`
	InjectionPatterns []string `yaml:"injection_patterns"`
	BlockedSubstrings []string `yaml:"blocked_substrings"`
}

// NormalizationConfig toggles the normalizer stages.
type NormalizationConfig struct {
	Lowercase          bool `yaml:"lowercase"`
	CollapseWhitespace bool `yaml:"collapse_whitespace"`
	ExpandContractions bool `yaml:"expand_contractions"`
}

// ContextConfig controls per-session conversation state.
type ContextConfig struct {
	MaxHistory            int `yaml:"max_history" validate:"min=1"`
	SessionTimeoutMinutes int `yaml:"session_timeout_minutes" validate:"min=1"`
}

// IntentKeywords is one intent with its ordered keyword list.
type IntentKeywords struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"min=1"`
}

// IntentCategory groups intents under a category label.
type IntentCategory struct {
	Name    string   `yaml:"name"`
	Intents []string `yaml:"intents"`
}

// IntentConfig holds the keyword tables. Intent order is significant:
// classification ties break toward the earliest entry.
type IntentConfig struct {
	Intents    []IntentKeywords `yaml:"intents"`
	Categories []IntentCategory `yaml:"categories"`
}

// RateLimitConfig is a per-session sliding window.
type RateLimitConfig struct {
	Enabled       bool `yaml:"enabled"`
	MaxRequests   int  `yaml:"max_requests_per_session" validate:"min=1"`
	WindowSeconds int  `yaml:"window_seconds" validate:"min=1"`
}

// GuardrailsConfig controls the pre-routing gate.
type GuardrailsConfig struct {
	Enabled          bool            `yaml:"enabled"`
	BlockOnPII       bool            `yaml:"block_on_pii"`
	CriticalPIITypes []string        `yaml:"critical_pii_types"`
	BlockOnInjection bool            `yaml:"block_on_injection"`
	RateLimit        RateLimitConfig `yaml:"rate_limit"`
}

// RoutingConfig holds tier thresholds and per-tier intent sets.
type RoutingConfig struct {
	Tier1MinConfidence  float64  `yaml:"tier1_min_confidence" validate:"min=0,max=1"`
	Tier1MinSimilarity  float64  `yaml:"tier1_min_similarity" validate:"min=0,max=1"`
	Tier2MinConfidence  float64  `yaml:"tier2_min_confidence" validate:"min=0,max=1"`
	Tier2MaxConfidence  float64  `yaml:"tier2_max_confidence" validate:"min=0,max=1"`
	EscalationThreshold float64  `yaml:"escalation_threshold" validate:"min=0,max=1"`
	Tier1Intents        []string `yaml:"tier1_intents"`
	Tier2Intents        []string `yaml:"tier2_intents"`
	Tier3Intents        []string `yaml:"tier3_intents"`
}

// ProhibitedPattern is one compliance rule.
type ProhibitedPattern struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern" validate:"required"`
	Message  string `yaml:"message"`
	Severity string `yaml:"severity" validate:"oneof=critical high medium low"`
}

// KeywordCategory is a set of prohibited keywords sharing a severity.
type KeywordCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Severity string   `yaml:"severity" validate:"oneof=critical high medium low"`
}

// OutputValidationConfig bounds generated responses.
type OutputValidationConfig struct {
	MinLength    int      `yaml:"min_length" validate:"min=1"`
	MaxLength    int      `yaml:"max_length" validate:"min=1"`
	BlockGeneric []string `yaml:"block_generic"`
}

// SafetyConfig holds every post-generation check table.
type SafetyConfig struct {
	SafetyEnabled      bool                   `yaml:"safety_enabled"`
	ComplianceEnabled  bool                   `yaml:"compliance_enabled"`
	ProhibitedPatterns []ProhibitedPattern    `yaml:"prohibited_patterns"`
	HarmfulKeywords    []KeywordCategory      `yaml:"harmful_keywords"`
	Disclaimers        map[string]string      `yaml:"disclaimers"`
	Output             OutputValidationConfig `yaml:"output_validation"`
	FallbackMessage    string                 `yaml:"fallback_message" validate:"required"`
}

// KBConfig tunes the tier-1 knowledge-base generator.
type KBConfig struct {
	MinScore        float64 `yaml:"min_score" validate:"min=0,max=1"`
	ConfidenceBoost float64 `yaml:"confidence_boost" validate:"min=0,max=1"`
}

// SLMConfig tunes the tier-2 fine-tuned model generator.
type SLMConfig struct {
	Confidence   float64           `yaml:"confidence" validate:"min=0,max=1"`
	Instructions map[string]string `yaml:"instructions"`
}

// RAGConfig tunes the tier-3 retrieval generator.
type RAGConfig struct {
	Enabled           bool    `yaml:"enabled"`
	AcceptThreshold   float64 `yaml:"accept_threshold" validate:"min=0,max=1"`
	TopK              int     `yaml:"top_k" validate:"min=1"`
	ScoreThreshold    float64 `yaml:"score_threshold" validate:"min=0,max=1"`
	EscalationMessage string  `yaml:"escalation_message" validate:"required"`
}

// TiersConfig groups per-tier generator settings.
type TiersConfig struct {
	KB  KBConfig  `yaml:"tier1"`
	SLM SLMConfig `yaml:"tier2"`
	RAG RAGConfig `yaml:"tier3"`
}

// SearchConfig controls similarity search against the knowledge base.
type SearchConfig struct {
	TopK           int     `yaml:"top_k" validate:"min=1"`
	ScoreThreshold float64 `yaml:"score_threshold" validate:"min=0,max=1"`
}

// OpenAIConfig configures the OpenAI-compatible backend used for
// embeddings and tier-2 generation.
type OpenAIConfig struct {
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	EmbeddingModel    string  `yaml:"embedding_model"`
	ChatModel         string  `yaml:"chat_model"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0"`
	Burst             int     `yaml:"burst" validate:"min=1"`
}

// WeaviateConfig configures the vector search backend.
type WeaviateConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Host      string `yaml:"host"`
	Scheme    string `yaml:"scheme"`
	ClassName string `yaml:"class_name"`
}

// DatabaseConfig holds the PII audit database settings.
type DatabaseConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Database     string `yaml:"database"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxLifetime  int    `yaml:"max_lifetime_seconds"`
	CleanupHours int    `yaml:"cleanup_hours"`
}

// ServerConfig holds the HTTP layer settings.
type ServerConfig struct {
	Port                  string `yaml:"port"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" validate:"min=1"`
}

// Config is the single typed configuration for the whole pipeline. It is
// built once at process start and handed to each component constructor.
type Config struct {
	PIIPatterns        map[string]PIIPattern `yaml:"pii_patterns" validate:"dive"`
	Validation         ValidationConfig      `yaml:"validation"`
	Normalization      NormalizationConfig   `yaml:"normalization"`
	Context            ContextConfig         `yaml:"context"`
	Intent             IntentConfig          `yaml:"intent"`
	Guardrails         GuardrailsConfig      `yaml:"guardrails"`
	Routing            RoutingConfig         `yaml:"routing"`
	Safety             SafetyConfig          `yaml:"safety"`
	Tiers              TiersConfig           `yaml:"tiers"`
	Search             SearchConfig          `yaml:"search"`
	OpenAI             OpenAIConfig          `yaml:"openai"`
	Weaviate           WeaviateConfig        `yaml:"weaviate"`
	Database           DatabaseConfig        `yaml:"database"`
	Server             ServerConfig          `yaml:"server"`
	SentryDSN          string                `yaml:"sentry_dsn"`
	EmbeddingCacheSize int                   `yaml:"embedding_cache_size" validate:"min=1"`
}

// Load returns the default configuration, overlaid with the YAML file at
// path when path is non-empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 - path comes from operator flags, not user input
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field constraints the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if c.Validation.MinLength > c.Validation.MaxLength {
		return fmt.Errorf("validate config: validation min_length %d exceeds max_length %d",
			c.Validation.MinLength, c.Validation.MaxLength)
	}
	if c.Routing.Tier2MinConfidence >= c.Routing.Tier2MaxConfidence {
		return fmt.Errorf("validate config: tier2 confidence band [%v, %v) is empty",
			c.Routing.Tier2MinConfidence, c.Routing.Tier2MaxConfidence)
	}
	if c.Routing.EscalationThreshold >= c.Routing.Tier2MinConfidence {
		return fmt.Errorf("validate config: escalation threshold %v must sit below the tier2 band",
			c.Routing.EscalationThreshold)
	}
	if c.Safety.Output.MinLength > c.Safety.Output.MaxLength {
		return fmt.Errorf("validate config: output min_length %d exceeds max_length %d",
			c.Safety.Output.MinLength, c.Safety.Output.MaxLength)
	}
	return nil
}

// SessionTimeout returns the context expiry gap as a duration.
func (c *ContextConfig) SessionTimeout() time.Duration {
	return time.Duration(c.SessionTimeoutMinutes) * time.Minute
}

// Window returns the rate-limit window as a duration.
func (c *RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}
