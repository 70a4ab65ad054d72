package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the party-site archiver.
type Config struct {
	Fetcher Fetcher `mapstructure:"fetcher" yaml:"fetcher"`
	Retry   Retry   `mapstructure:"retry"   yaml:"retry"`
	Scraper Scraper `mapstructure:"scraper" yaml:"scraper"`
	Media   Media   `mapstructure:"media"   yaml:"media"`
	Storage Storage `mapstructure:"storage" yaml:"storage"`
	Logging Logging `mapstructure:"logging" yaml:"logging"`
}

// Fetcher controls the HTTP layer.
type Fetcher struct {
	// Type selects the fetcher implementation: "http" or "browser".
	Type            string        `mapstructure:"type"              yaml:"type"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`

	// RequestsPerSecond paces all outbound requests to the origin.
	// Zero disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// Retry controls the shared retry/backoff policy. Listing and post fetches
// use the same bounded budget; HTTP 429 uses the separate unbounded
// rate-limit window.
type Retry struct {
	MaxAttempts  int           `mapstructure:"max_attempts"   yaml:"max_attempts"`
	BackoffMin   time.Duration `mapstructure:"backoff_min"    yaml:"backoff_min"`
	BackoffMax   time.Duration `mapstructure:"backoff_max"    yaml:"backoff_max"`
	RateLimitMin time.Duration `mapstructure:"ratelimit_min"  yaml:"ratelimit_min"`
	RateLimitMax time.Duration `mapstructure:"ratelimit_max"  yaml:"ratelimit_max"`
}

// Scraper controls pagination.
type Scraper struct {
	// PageSize is the upstream listing-page convention. The party sites
	// serve 50 posts per page.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// Media controls attachment materialization.
type Media struct {
	OutputDir string `mapstructure:"output_dir"  yaml:"output_dir"`
	MaxSizeMB int64  `mapstructure:"max_size_mb" yaml:"max_size_mb"`
}

// Storage controls the optional archive sink used after a scrape.
type Storage struct {
	Type       string `mapstructure:"type"        yaml:"type"` // none, json, jsonl, mongodb
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
	MongoURI   string `mapstructure:"mongo_uri"   yaml:"mongo_uri"`
	MongoDB    string `mapstructure:"mongo_db"    yaml:"mongo_db"`
	MongoColl  string `mapstructure:"mongo_coll"  yaml:"mongo_coll"`
}

// Logging controls logging behavior.
type Logging struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns a Config with the reference scrape behavior: five bounded
// attempts with 6-7s gaps, unbounded 10-15s waits while rate limited, 50
// posts per listing page.
func Default() *Config {
	return &Config{
		Fetcher: Fetcher{
			Type:            "http",
			RequestTimeout:  30 * time.Second,
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     32 * 1024 * 1024,
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Retry: Retry{
			MaxAttempts:  5,
			BackoffMin:   6 * time.Second,
			BackoffMax:   7 * time.Second,
			RateLimitMin: 10 * time.Second,
			RateLimitMax: 15 * time.Second,
		},
		Scraper: Scraper{
			PageSize: 50,
		},
		Media: Media{
			OutputDir: "./media",
			MaxSizeMB: 512,
		},
		Storage: Storage{
			Type:       "none",
			OutputPath: "./output/scrape.json",
			MongoURI:   "mongodb://localhost:27017",
			MongoDB:    "partyarchive",
			MongoColl:  "content",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}
