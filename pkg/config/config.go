package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration adds YAML decoding of "6h" / "15s" style values, which yaml.v3
// does not do for time.Duration itself.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: bad duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type MongoConfig struct {
	Host       string `yaml:"host"`
	DBName     string `yaml:"dbname"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"authSource"`
}

type RedisConfig struct {
	URL string `yaml:"url"` // redis://[user:pass@]host:port/db
}

type ScrapeConfig struct {
	BatchSize    int      `yaml:"batchSize"`    // sources scraped concurrently per chunk
	MaxPages     int      `yaml:"maxPages"`     // page ceiling for the scheduled deep sync
	LiveMaxPages int      `yaml:"liveMaxPages"` // smaller ceiling for on-demand scrapes
	SyncInterval Duration `yaml:"syncInterval"` // cron cadence for the deep sync
	StaleAfter   Duration `yaml:"staleAfter"`   // purge horizon; 0 disables purging
	FetchTimeout Duration `yaml:"fetchTimeout"` // per-request timeout against portals
	ProxyBaseURL string   `yaml:"proxyBaseUrl"` // optional: route fetches through a deployed proxy
	SourcesFile  string   `yaml:"sourcesFile"`  // roster of portals to scrape
}

type EssayConfig struct {
	Models []string `yaml:"models"` // fallback order for Gemini generateContent
}

type Config struct {
	ListenAddr string       `yaml:"listenAddr"`
	Mongo      MongoConfig  `yaml:"mongo"`
	Redis      RedisConfig  `yaml:"redis"`
	Scrape     ScrapeConfig `yaml:"scrape"`
	Essay      EssayConfig  `yaml:"essay"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Scrape.BatchSize <= 0 {
		c.Scrape.BatchSize = 10
	}
	if c.Scrape.MaxPages <= 0 {
		c.Scrape.MaxPages = 8
	}
	if c.Scrape.LiveMaxPages <= 0 {
		c.Scrape.LiveMaxPages = 3
	}
	if c.Scrape.SyncInterval <= 0 {
		c.Scrape.SyncInterval = Duration(6 * time.Hour)
	}
	if c.Scrape.FetchTimeout <= 0 {
		c.Scrape.FetchTimeout = Duration(15 * time.Second)
	}
	if c.Scrape.SourcesFile == "" {
		c.Scrape.SourcesFile = "config/sources.yaml"
	}
	if len(c.Essay.Models) == 0 {
		c.Essay.Models = []string{
			"gemini-flash-latest",
			"gemini-flash-lite-latest",
			"gemini-3-pro-preview",
		}
	}
}

func (c *Config) validate() error {
	if c.Mongo.Host == "" {
		return fmt.Errorf("config: mongo.host is required")
	}
	if c.Mongo.DBName == "" {
		return fmt.Errorf("config: mongo.dbname is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("config: redis.url is required")
	}
	return nil
}
