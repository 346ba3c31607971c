package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8000"`

	// Observability server (health, readiness, metrics).
	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`

	// LLM capability (translation, entity extraction).
	LLMAPIKey       string        `env:"LLM_API_KEY"`
	LLMModel        string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMRateLimitRPS int           `env:"LLM_RATE_LIMIT_RPS" envDefault:"2"`
	LLMTimeout      time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`

	// Sentence encoder (embeddings).
	EmbeddingAPIKey     string `env:"EMBEDDING_API_KEY"`
	EmbeddingModel      string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions int    `env:"EMBEDDING_DIMENSIONS" envDefault:"1536"`
	EmbeddingRateLimit  int    `env:"EMBEDDING_RATE_LIMIT_RPS" envDefault:"2"`
	CohereAPIKey        string `env:"COHERE_API_KEY"`
	CohereModel         string `env:"COHERE_MODEL" envDefault:"embed-multilingual-v3.0"`

	// Quote extraction.
	QuoteMinLength int `env:"QUOTE_MIN_LENGTH" envDefault:"6"`

	// Keyword ranking.
	KeywordTopN       int     `env:"KEYWORD_TOP_N" envDefault:"15"`
	KeywordAlpha      float64 `env:"KEYWORD_ALPHA" envDefault:"0.7"`
	KeywordBeta       float64 `env:"KEYWORD_BETA" envDefault:"0.3"`
	QueryTopK         int     `env:"QUERY_TOP_K" envDefault:"3"`
	QueryMaxLength    int     `env:"QUERY_MAX_LENGTH" envDefault:"150"`
	WikidataEnabled   bool    `env:"WIKIDATA_ENABLED" envDefault:"true"`
	WikidataRateLimit float64 `env:"WIKIDATA_RATE_LIMIT_RPS" envDefault:"2"`

	// Match scoring.
	MatchMinScore    float64 `env:"MATCH_MIN_SCORE" envDefault:"0.55"`
	MatchSpanBefore  int     `env:"MATCH_SPAN_BEFORE" envDefault:"1"`
	MatchSpanAfter   int     `env:"MATCH_SPAN_AFTER" envDefault:"1"`
	MatchMaxSnippets int     `env:"MATCH_MAX_SNIPPETS" envDefault:"20"`

	// Search providers.
	SearchTimeout        time.Duration `env:"SEARCH_TIMEOUT" envDefault:"20s"`
	SearchMaxResults     int           `env:"SEARCH_MAX_RESULTS" envDefault:"5"`
	GoogleCSEAPIKey      string        `env:"GOOGLE_CSE_API_KEY"`
	GoogleCSECX          string        `env:"GOOGLE_CSE_CX"`
	GoogleCSERateLimit   float64       `env:"GOOGLE_CSE_RATE_LIMIT_RPS" envDefault:"5"`
	GoogleCSERetries     int           `env:"GOOGLE_CSE_RETRIES" envDefault:"3"`
	GoogleCSEDomains     []string      `env:"GOOGLE_CSE_DOMAINS" envSeparator:","`
	RollcallEnabled      bool          `env:"ROLLCALL_ENABLED" envDefault:"true"`
	RollcallBaseURL      string        `env:"ROLLCALL_BASE_URL" envDefault:"https://rollcall.com"`
	RollcallRateLimit    float64       `env:"ROLLCALL_RATE_LIMIT_RPS" envDefault:"1"`
	PageFetchEnabled     bool          `env:"PAGE_FETCH_ENABLED" envDefault:"true"`
	PageFetchTimeout     time.Duration `env:"PAGE_FETCH_TIMEOUT" envDefault:"12s"`
	PageFetchMinHTMLSize int           `env:"PAGE_FETCH_MIN_HTML_SIZE" envDefault:"500"`

	// Circuit breakers shared by capability clients and search providers.
	CircuitThreshold int           `env:"CIRCUIT_THRESHOLD" envDefault:"5"`
	CircuitReset     time.Duration `env:"CIRCUIT_RESET" envDefault:"1m"`
}

// Load reads .env when present, then parses the environment. A missing .env
// file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.MatchMinScore < 0 || c.MatchMinScore > 1 {
		return fmt.Errorf("MATCH_MIN_SCORE must be in [0,1], got %v", c.MatchMinScore)
	}

	if c.KeywordTopN <= 0 {
		return fmt.Errorf("KEYWORD_TOP_N must be positive, got %d", c.KeywordTopN)
	}

	if c.QueryTopK <= 0 {
		return fmt.Errorf("QUERY_TOP_K must be positive, got %d", c.QueryTopK)
	}

	return nil
}
