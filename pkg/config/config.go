// Package config loads and validates the batch configuration from a YAML
// file with environment-variable overrides. It covers the input sources,
// run generation, weighting parameters, logging, metrics and the optional
// Kafka publisher.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Collection CollectionConfig `yaml:"collection"`
	Run        RunConfig        `yaml:"run"`
	Weighting  WeightingConfig  `yaml:"weighting"`
	Queries    []QueryConfig    `yaml:"queries"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// CollectionConfig points at the input files.
type CollectionConfig struct {
	Path          string `yaml:"path"`
	StopwordsPath string `yaml:"stopwordsPath"`
	QueriesPath   string `yaml:"queriesPath"`
	AllowComments bool   `yaml:"allowComments"`
}

// RunConfig controls how runs are produced and where they are written.
type RunConfig struct {
	TopK            int    `yaml:"topK"`
	Team            string `yaml:"team"`
	OutputDir       string `yaml:"outputDir"`
	Archive         bool   `yaml:"archive"`
	Pad             bool   `yaml:"pad"`
	ParallelQueries int    `yaml:"parallelQueries"`
	ParallelBuilds  int    `yaml:"parallelBuilds"`
	// Schemes restricts generation to the named weighting schemes; empty
	// means all of them. Run IDs do not change with the selection.
	Schemes []string `yaml:"schemes"`
}

// WeightingConfig holds the scheme parameters.
type WeightingConfig struct {
	LtcQueryMode string  `yaml:"ltcQueryMode"`
	BM25K1       float64 `yaml:"bm25K1"`
	BM25B        float64 `yaml:"bm25B"`
}

// QueryConfig is one inline query.
type QueryConfig struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// KafkaConfig enables publishing run lines when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether a Kafka publisher should be created.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// DefaultQueries is the topic set used when neither inline queries nor a
// queries file are configured.
var DefaultQueries = []QueryConfig{
	{ID: "2009011", Text: "olive oil health benefit"},
	{ID: "2009036", Text: "notting hill film actors"},
	{ID: "2009067", Text: "probabilistic models in information retrieval"},
	{ID: "2009073", Text: "web link network analysis"},
	{ID: "2009074", Text: "web ranking scoring algorithm"},
	{ID: "2009078", Text: "supervised machine learning algorithm"},
	{ID: "2009085", Text: "operating system mutual exclusion"},
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// Default returns a Config with the values used by the reference runs.
func Default() *Config {
	return &Config{
		Collection: CollectionConfig{
			Path:          "Practice_03_data/Text_Only_Ascii_Coll_NoSem",
			StopwordsPath: "Practice_03_data/stop-words-english4.txt",
			AllowComments: true,
		},
		Run: RunConfig{
			TopK:            1500,
			Team:            "AdrienSoleneWilliam",
			OutputDir:       "generated_runs",
			Archive:         true,
			Pad:             true,
			ParallelQueries: 4,
			ParallelBuilds:  2,
		},
		Weighting: WeightingConfig{
			LtcQueryMode: "lnn",
			BM25K1:       1.2,
			BM25B:        0.75,
		},
		Kafka: KafkaConfig{
			Topic: "ranked-runs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
		},
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Run.TopK <= 0 {
		return fmt.Errorf("run.topK must be positive, got %d", c.Run.TopK)
	}
	if c.Run.Team == "" || strings.ContainsAny(c.Run.Team, " \t\n") {
		return fmt.Errorf("run.team must be a single non-empty token, got %q", c.Run.Team)
	}
	if c.Weighting.BM25K1 < 0 {
		return fmt.Errorf("weighting.bm25K1 must be >= 0, got %g", c.Weighting.BM25K1)
	}
	if c.Weighting.BM25B < 0 || c.Weighting.BM25B > 1 {
		return fmt.Errorf("weighting.bm25B must be in [0,1], got %g", c.Weighting.BM25B)
	}
	c.Weighting.LtcQueryMode = strings.ToLower(strings.TrimSpace(c.Weighting.LtcQueryMode))
	switch c.Weighting.LtcQueryMode {
	case "lnn", "ltc":
	default:
		return fmt.Errorf("weighting.ltcQueryMode must be lnn or ltc, got %q", c.Weighting.LtcQueryMode)
	}
	for _, q := range c.Queries {
		if q.ID == "" || strings.ContainsAny(q.ID, " \t\n") {
			return fmt.Errorf("query id must be a single non-empty token, got %q", q.ID)
		}
	}
	return nil
}

// applyEnvOverrides reads RI_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RI_COLLECTION_PATH"); v != "" {
		cfg.Collection.Path = v
	}
	if v := os.Getenv("RI_STOPWORDS_PATH"); v != "" {
		cfg.Collection.StopwordsPath = v
	}
	if v := os.Getenv("RI_QUERIES_PATH"); v != "" {
		cfg.Collection.QueriesPath = v
	}
	if v := os.Getenv("RI_RUN_TOPK"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Run.TopK = k
		}
	}
	if v := os.Getenv("RI_RUN_TEAM"); v != "" {
		cfg.Run.Team = v
	}
	if v := os.Getenv("RI_RUN_OUTPUT_DIR"); v != "" {
		cfg.Run.OutputDir = v
	}
	if v := os.Getenv("RI_RUN_SCHEMES"); v != "" {
		cfg.Run.Schemes = strings.Split(v, ",")
	}
	if v := os.Getenv("RI_LTC_QUERY_MODE"); v != "" {
		cfg.Weighting.LtcQueryMode = v
	}
	if v := os.Getenv("RI_BM25_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Weighting.BM25K1 = f
		}
	}
	if v := os.Getenv("RI_BM25_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Weighting.BM25B = f
		}
	}
	if v := os.Getenv("RI_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RI_KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}
	if v := os.Getenv("RI_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RI_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("RI_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Metrics.Port = port
			cfg.Metrics.Enabled = true
		}
	}
}
