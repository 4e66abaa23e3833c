package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Neo4j     Neo4jConfig
	Zilliz    ZillizConfig
	LLM       LLMConfig
	Pipeline  PipelineConfig
	Cleaner   CleanerConfig
	Analytics AnalyticsConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    int
	WriteTimeout   int
	BodyLimit      int
	AllowedOrigins []string
	Development    bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLSec   int
}

type Neo4jConfig struct {
	Enabled  bool
	URI      string
	Username string
	Password string
	Database string
}

type ZillizConfig struct {
	Enabled        bool
	Endpoint       string
	APIKey         string
	CollectionName string
	VectorDim      int
}

type LLMConfig struct {
	Enabled        bool
	APIKey         string
	EmbeddingModel string
	TimeoutSec     int
}

type PipelineConfig struct {
	MaxChunkSize        int
	DefaultSourceType   string
	DefaultTargetSchema string
}

type CleanerConfig struct {
	DefaultAggressiveness string
	DefaultOperations     []string
}

type AnalyticsConfig struct {
	LexiconPath string
}

type RateLimitConfig struct {
	Enabled              bool
	MaxRequestsPerMinute int
	Burst                int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/normalizer")

	return load(v)
}

// LoadFile reads configuration from an explicit path, still honouring env overrides.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("NORMALIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Pipeline.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("pipeline.maxChunkSize must be positive, got %d", config.Pipeline.MaxChunkSize)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 10485760)
	v.SetDefault("server.allowedOrigins", []string{})
	v.SetDefault("server.development", false)

	v.SetDefault("sqlite.path", "./data/normalizer.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttlSec", 3600)

	v.SetDefault("neo4j.enabled", false)
	v.SetDefault("neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("neo4j.username", "neo4j")
	v.SetDefault("neo4j.password", "password")
	v.SetDefault("neo4j.database", "neo4j")

	v.SetDefault("zilliz.enabled", false)
	v.SetDefault("zilliz.endpoint", "localhost:19530")
	v.SetDefault("zilliz.collectionName", "canonical_records")
	v.SetDefault("zilliz.vectorDim", 1536)

	v.SetDefault("llm.enabled", false)
	v.SetDefault("llm.embeddingModel", "text-embedding-3-small")
	v.SetDefault("llm.timeoutSec", 30)

	v.SetDefault("pipeline.maxChunkSize", 1000)
	v.SetDefault("pipeline.defaultSourceType", "generic")
	v.SetDefault("pipeline.defaultTargetSchema", "document")

	v.SetDefault("cleaner.defaultAggressiveness", "moderate")
	v.SetDefault("cleaner.defaultOperations", []string{"text_cleaning", "deduplication", "validation", "enhancement"})

	v.SetDefault("analytics.lexiconPath", "")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.maxRequestsPerMinute", 120)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
