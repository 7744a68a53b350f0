package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var ErrMissingAPIKey = errors.New("missing api key")

type Config struct {
	Data   DataConfig   `mapstructure:"data"`
	Engine EngineConfig `mapstructure:"engine"`
	LLM    LLMConfig    `mapstructure:"llm"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Server ServerConfig `mapstructure:"server"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Log    LogConfig    `mapstructure:"log"`
}

type DataConfig struct {
	Path  string `mapstructure:"path"`
	Table string `mapstructure:"table"`
}

type EngineConfig struct {
	Driver string `mapstructure:"driver"`
}

type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
}

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-3.5-turbo-instruct",
	ProviderGemini: "gemini-1.5-flash",
}

// ModelName returns the configured model, or the provider's default when unset.
func (c LLMConfig) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	ExposeHeaders    []string `mapstructure:"expose_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// LoadConfig layers defaults, the YAML file at configPath, the .env file at envPath,
// the process environment and finally any flags bound through flags.
// Both paths are optional.
func LoadConfig(configPath string, envPath string, flags *pflag.FlagSet) (*Config, error) {
	// Load .env file first so viper sees its variables as environment
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %q: %w", envPath, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// OPENAPI is the variable name older deployments of this tool exported.
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY", "OPENAPI"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("gemini.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", configPath, err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks that the credential for the selected provider is present.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.OpenAI.APIKey) == "" {
			return fmt.Errorf("%w: set OPENAI_API_KEY (or OPENAPI)", ErrMissingAPIKey)
		}
	case ProviderGemini:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	return nil
}

func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.path", "../data/sales_data_sample.csv")
	v.SetDefault("data.table", "Sales")
	v.SetDefault("engine.driver", "sqlite")
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("cors.allow_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allow_headers", []string{"Content-Type"})
	v.SetDefault("cors.expose_headers", []string{"Content-Type"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// flagKeys maps command-line flag names onto config keys.
var flagKeys = map[string]string{
	"data":      "data.path",
	"table":     "data.table",
	"engine":    "engine.driver",
	"provider":  "llm.provider",
	"model":     "llm.model",
	"addr":      "server.addr",
	"log-json":  "log.json",
	"log-level": "log.level",
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}
