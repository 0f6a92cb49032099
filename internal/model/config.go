package model

import "time"

// Config holds every tunable of a coreg run
type Config struct {
	LogLevel    string            `yaml:"log_level"`
	HTTP        HTTPConfig        `yaml:"http"`
	Sources     SourcesConfig     `yaml:"sources"`
	NCBI        NCBIConfig        `yaml:"ncbi"`
	Search      SearchConfig      `yaml:"search"`
	Throttle    ThrottleConfig    `yaml:"throttle"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Storage     StorageConfig     `yaml:"storage"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	LLM         LLMConfig         `yaml:"llm"`
}

// HTTPConfig configures the scraping and reciprocal-search HTTP client
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	MaxRetries    int           `yaml:"max_retries"`
	RespectRobots bool          `yaml:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty"`
}

// SourcesConfig holds base URLs of the external gene databases
type SourcesConfig struct {
	FGDBaseURL         string `yaml:"fgd_base_url"`
	TGDBaseURL         string `yaml:"tgd_base_url"`
	ReciprocalBlastURL string `yaml:"reciprocal_blast_url"`
	ReciprocalDatabase string `yaml:"reciprocal_database"`
}

// NCBIConfig identifies this tool to NCBI. Email is required by NCBI usage policy.
type NCBIConfig struct {
	Tool     string `yaml:"tool"`
	Email    string `yaml:"email"`
	Database string `yaml:"database"`
	// PollInterval is the wait between BLAST status checks
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxPolls     int           `yaml:"max_polls"`
}

// SearchConfig selects what a run searches
type SearchConfig struct {
	Mode        SearchMode `yaml:"mode"`
	Clade       string     `yaml:"clade"`
	CladeLabel  string     `yaml:"clade_label,omitempty"`  // custom clade only
	EntrezQuery string     `yaml:"entrez_query,omitempty"` // custom clade only
	Threshold   float64    `yaml:"threshold"`
	GeneticCode int        `yaml:"genetic_code"`
}

// ThrottleConfig is the cooperative pause between batches of forward searches
type ThrottleConfig struct {
	Every int           `yaml:"every"`
	Pause time.Duration `yaml:"pause"`
}

// RateLimitConfig bounds requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// StorageConfig places the document store and reports
type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`
	ReportDir string `yaml:"report_dir"`
	MirrorDir string `yaml:"mirror_dir,omitempty"` // Optional synced folder receiving report copies
}

// CacheConfig configures the resolved-sequence cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig sets the number of genes processed at once
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// LLMConfig configures the optional annotation notes
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	BaseURL   string `yaml:"base_url,omitempty"`
	Timeout   int    `yaml:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens"`
}

// DefaultConfig returns the defaults used when no config file is present
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		HTTP: HTTPConfig{
			Timeout:       60 * time.Second,
			UserAgent:     "coreg/0.1 (+https://github.com/ppiankov/coreg)",
			MaxBodyBytes:  10_000_000,
			MaxRetries:    3,
			RespectRobots: true,
		},
		Sources: SourcesConfig{
			FGDBaseURL:         "http://tfgd.ihb.ac.cn",
			TGDBaseURL:         "http://ciliate.org",
			ReciprocalBlastURL: "http://www.ciliate.org/blast/blast_link_result.cgi",
			ReciprocalDatabase: "tetrahymena/ttherm.aa",
		},
		NCBI: NCBIConfig{
			Tool:         "coreg",
			Database:     "nr",
			PollInterval: 30 * time.Second,
			MaxPolls:     120,
		},
		Search: SearchConfig{
			Mode:        ModeBoth,
			Clade:       "not-ciliates",
			Threshold:   20,
			GeneticCode: 6, // Ciliate Nuclear
		},
		Throttle: ThrottleConfig{
			Every: 25,
			Pause: 60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Storage: StorageConfig{
			DataDir:   "./coreg-data",
			ReportDir: ".",
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "./coreg-data/cache",
			TTL:     30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 300,
		},
	}
}
