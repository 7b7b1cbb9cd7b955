// internal/config/config.go
//
// Configuration for the wordgame server.
//
// Sources, lowest to highest precedence:
//   1. Defaults below.
//   2. Optional config.yaml in the given directory or the working directory.
//   3. Environment variables. Nested keys map to upper-case names with '.'
//      replaced by '_' (store.redis.addr → STORE_REDIS_ADDR). The legacy names
//      PORT, LOG_LEVEL, CLIENT_ORIGIN, WORDS_ALLOWED_FILE, WORDS_ANSWERS_FILE
//      and DAILY_SALT are bound explicitly.
//
// main loads `.env` with godotenv before calling Load.

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Words  WordsConfig  `mapstructure:"words"`
	Game   GameConfig   `mapstructure:"game"`
	Store  Store        `mapstructure:"store"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Daily  DailyConfig  `mapstructure:"daily"`
}

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // zerolog level name
	Format string `mapstructure:"format"` // "json" | "console"
}

// WordsConfig points at the word lists. Empty paths use the embedded lists.
type WordsConfig struct {
	AllFile    string `mapstructure:"all_file"`
	CommonFile string `mapstructure:"common_file"`
}

type GameConfig struct {
	WordLength int `mapstructure:"word_length"`
	GuessLimit int `mapstructure:"guess_limit"`
}

// Store selects and configures the persistence backend.
type Store struct {
	Backend  string        `mapstructure:"backend"` // memory | file | sqlite | redis | dynamodb
	History  string        `mapstructure:"history"` // overwrite | archive
	File     FileStore     `mapstructure:"file"`
	SQLite   SQLiteStore   `mapstructure:"sqlite"`
	Redis    RedisStore    `mapstructure:"redis"`
	DynamoDB DynamoDBStore `mapstructure:"dynamodb"`
}

type FileStore struct {
	Path string `mapstructure:"path"`
}

type SQLiteStore struct {
	DSN string `mapstructure:"dsn"`
}

type RedisStore struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"` // 0 keeps games forever
}

type DynamoDBStore struct {
	Table           string `mapstructure:"table"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`  // e.g. DynamoDB Local
	AuthType        string `mapstructure:"auth_type"` // static_credentials | iam_role
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	CreateTable     bool   `mapstructure:"create_table"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type DailyConfig struct {
	Salt string `mapstructure:"salt"`
}

// History policies.
const (
	HistoryOverwrite = "overwrite"
	HistoryArchive   = "archive"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5175")
	v.SetDefault("server.handler_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("words.all_file", "")
	v.SetDefault("words.common_file", "")
	v.SetDefault("game.word_length", 5)
	v.SetDefault("game.guess_limit", 6)
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.history", HistoryOverwrite)
	v.SetDefault("store.file.path", "game_state.json")
	v.SetDefault("store.sqlite.dsn", "./data/wordgame.db")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.ttl", time.Duration(0))
	v.SetDefault("store.dynamodb.table", "wordgame-state")
	v.SetDefault("store.dynamodb.region", "us-east-1")
	v.SetDefault("store.dynamodb.endpoint", "")
	v.SetDefault("store.dynamodb.auth_type", "iam_role")
	v.SetDefault("store.dynamodb.access_key_id", "")
	v.SetDefault("store.dynamodb.secret_access_key", "")
	v.SetDefault("store.dynamodb.create_table", true)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 300)
	v.SetDefault("daily.salt", "local_dev_salt")
}

// legacy env names kept from earlier deployments.
var legacyEnv = map[string]string{
	"server.port":          "PORT",
	"log.level":            "LOG_LEVEL",
	"cors.allowed_origins": "CLIENT_ORIGIN",
	"words.all_file":       "WORDS_ALLOWED_FILE",
	"words.common_file":    "WORDS_ANSWERS_FILE",
	"daily.salt":           "DAILY_SALT",
}

// Load reads configuration from dir (may be empty) and the environment.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	c.Store.History = strings.ToLower(strings.TrimSpace(c.Store.History))
	// CLIENT_ORIGIN arrives as a single comma-separated string
	var origins []string
	for _, o := range c.CORS.AllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if p := strings.TrimSpace(part); p != "" {
				origins = append(origins, p)
			}
		}
	}
	c.CORS.AllowedOrigins = origins
	if !strings.HasPrefix(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "sqlite", "redis", "dynamodb":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Store.History {
	case HistoryOverwrite, HistoryArchive:
	default:
		return fmt.Errorf("config: unknown history policy %q", c.Store.History)
	}
	if c.Game.WordLength <= 0 {
		return fmt.Errorf("config: game.word_length must be positive, got %d", c.Game.WordLength)
	}
	if c.Game.GuessLimit <= 0 {
		return fmt.Errorf("config: game.guess_limit must be positive, got %d", c.Game.GuessLimit)
	}
	return nil
}
