// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	LLM() LLMConfig
	Agent() AgentConfig
	Worker() WorkerConfig
	Server() ServerConfig

	// CLI overrides.
	SetLoggerLevel(string)
	SetWorkerConcurrency(int)
	SetServerAddr(string)
	SetAgentMaxAttempts(int)
}

// Config holds the entire application configuration.
// It uses private fields to enforce access through the Interface's getter methods.
type Config struct {
	logger LoggerConfig
	llm    LLMConfig
	agent  AgentConfig
	worker WorkerConfig
	server ServerConfig
}

// fileConfig mirrors Config with exported fields so viper can decode into it.
type fileConfig struct {
	Logger LoggerConfig `mapstructure:"logger" yaml:"logger"`
	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Agent  AgentConfig  `mapstructure:"agent" yaml:"agent"`
	Worker WorkerConfig `mapstructure:"worker" yaml:"worker"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

func (c *Config) Logger() LoggerConfig { return c.logger }
func (c *Config) LLM() LLMConfig       { return c.llm }
func (c *Config) Agent() AgentConfig   { return c.agent }
func (c *Config) Worker() WorkerConfig { return c.worker }
func (c *Config) Server() ServerConfig { return c.server }

func (c *Config) SetLoggerLevel(level string) { c.logger.Level = level }
func (c *Config) SetWorkerConcurrency(n int)  { c.worker.Concurrency = n }
func (c *Config) SetServerAddr(addr string)   { c.server.Addr = addr }
func (c *Config) SetAgentMaxAttempts(n int)   { c.agent.MaxAttempts = n }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// LLMProvider defines the supported LLM providers.
type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderGemini LLMProvider = "gemini"
)

// OpenAIAPI selects which OpenAI endpoint family a client talks to.
type OpenAIAPI string

const (
	APIChat      OpenAIAPI = "chat"      // Chat Completions, single message content.
	APIResponses OpenAIAPI = "responses" // Responses API, list of output blocks.
)

// LLMConfig configures the generation clients and how workflow roles map onto them.
type LLMConfig struct {
	// DefaultClient names the entry in Clients used for roles without a mapping.
	DefaultClient string                    `mapstructure:"default_client" yaml:"default_client"`
	Clients       map[string]LLMModelConfig `mapstructure:"clients" yaml:"clients"`
	// Roles maps a workflow role (compose, judge, extract) to a client name.
	Roles   map[string]string `mapstructure:"roles" yaml:"roles"`
	Tracing bool              `mapstructure:"tracing" yaml:"tracing"`
}

// LLMModelConfig defines the configuration for a single generation client.
type LLMModelConfig struct {
	Provider   LLMProvider   `mapstructure:"provider" yaml:"provider"`
	API        OpenAIAPI     `mapstructure:"api" yaml:"api"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	Endpoint   string        `mapstructure:"endpoint" yaml:"endpoint"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	// RateLimit is the sustained number of calls per second. Zero disables limiting.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	Burst     int     `mapstructure:"burst" yaml:"burst"`
}

// AgentConfig holds the defaults of the generation tasks.
type AgentConfig struct {
	MaxAttempts int            `mapstructure:"max_attempts" yaml:"max_attempts"`
	LinkedIn    LinkedInConfig `mapstructure:"linkedin" yaml:"linkedin"`
	Twitter     TwitterConfig  `mapstructure:"twitter" yaml:"twitter"`
	Research    ResearchConfig `mapstructure:"research" yaml:"research"`
}

type LinkedInConfig struct {
	Model       string  `mapstructure:"model" yaml:"model"`
	Tone        string  `mapstructure:"tone" yaml:"tone"`
	Audience    string  `mapstructure:"audience" yaml:"audience"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

type TwitterConfig struct {
	ComposeModel       string  `mapstructure:"compose_model" yaml:"compose_model"`
	JudgeModel         string  `mapstructure:"judge_model" yaml:"judge_model"`
	Tone               string  `mapstructure:"tone" yaml:"tone"`
	ComposeTemperature float64 `mapstructure:"compose_temperature" yaml:"compose_temperature"`
	JudgeTemperature   float64 `mapstructure:"judge_temperature" yaml:"judge_temperature"`
}

type ResearchConfig struct {
	Model         string        `mapstructure:"model" yaml:"model"`
	Temperature   float64       `mapstructure:"temperature" yaml:"temperature"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxCharacters int           `mapstructure:"max_characters" yaml:"max_characters"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// WorkerConfig controls batch execution.
type WorkerConfig struct {
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	TaskTimeout time.Duration `mapstructure:"task_timeout" yaml:"task_timeout"`
}

// ServerConfig controls the HTTP host surface.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Mode           string        `mapstructure:"mode" yaml:"mode"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	cfg, err := decode(v)
	if err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "quill")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- LLM --
	v.SetDefault("llm.default_client", "openai-chat")
	v.SetDefault("llm.tracing", false)
	v.SetDefault("llm.clients.openai-chat.provider", string(ProviderOpenAI))
	v.SetDefault("llm.clients.openai-chat.api", string(APIChat))
	v.SetDefault("llm.clients.openai-chat.model", "gpt-4o-mini")
	v.SetDefault("llm.clients.openai-chat.api_timeout", "60s")
	v.SetDefault("llm.clients.openai-responses.provider", string(ProviderOpenAI))
	v.SetDefault("llm.clients.openai-responses.api", string(APIResponses))
	v.SetDefault("llm.clients.openai-responses.model", "gpt-4o-mini")
	v.SetDefault("llm.clients.openai-responses.api_timeout", "60s")
	v.SetDefault("llm.roles.compose", "openai-chat")
	v.SetDefault("llm.roles.judge", "openai-chat")
	v.SetDefault("llm.roles.extract", "openai-responses")

	// -- Agent --
	v.SetDefault("agent.max_attempts", 3)
	v.SetDefault("agent.linkedin.model", "gpt-4o-mini")
	v.SetDefault("agent.linkedin.tone", "professional")
	v.SetDefault("agent.linkedin.audience", "LinkedIn audience")
	v.SetDefault("agent.linkedin.temperature", 0.7)
	v.SetDefault("agent.twitter.compose_model", "gpt-4o-mini")
	v.SetDefault("agent.twitter.judge_model", "gpt-4o-mini")
	v.SetDefault("agent.twitter.tone", "punchy")
	v.SetDefault("agent.twitter.compose_temperature", 0.8)
	v.SetDefault("agent.twitter.judge_temperature", 0.2)
	v.SetDefault("agent.research.model", "gpt-4o-mini")
	v.SetDefault("agent.research.temperature", 0.0)
	v.SetDefault("agent.research.timeout", "15s")
	v.SetDefault("agent.research.max_characters", 20000)
	v.SetDefault("agent.research.user_agent", "quill-cli/1.0")

	// -- Worker --
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.task_timeout", "5m")

	// -- Server --
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout", "2m")
	v.SetDefault("server.mode", "release")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	cfg, err := decode(v)
	if err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// API keys live in the provider's conventional environment variables rather
	// than the config file. A key set explicitly on a client wins.
	openAIKey := v.GetString("openai_api_key")
	geminiKey := v.GetString("gemini_api_key")
	for name, client := range cfg.llm.Clients {
		if client.APIKey != "" {
			continue
		}
		switch client.Provider {
		case ProviderOpenAI:
			client.APIKey = openAIKey
		case ProviderGemini:
			client.APIKey = geminiKey
		}
		cfg.llm.Clients[name] = client
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// BindEnv wires the QUILL_ prefixed environment and the provider API key
// variables into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("openai_api_key", "OPENAI_API_KEY", "QUILL_OPENAI_API_KEY")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY", "GOOGLE_API_KEY", "QUILL_GEMINI_API_KEY")
}

func decode(v *viper.Viper) (*Config, error) {
	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}
	return &Config{
		logger: fc.Logger,
		llm:    fc.LLM,
		agent:  fc.Agent,
		worker: fc.Worker,
		server: fc.Server,
	}, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.agent.MaxAttempts < 1 {
		return fmt.Errorf("agent.max_attempts must be at least 1")
	}
	if c.worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be a positive integer")
	}
	if err := c.llm.Validate(); err != nil {
		return fmt.Errorf("llm configuration invalid: %w", err)
	}
	if c.agent.Research.MaxCharacters < 1000 || c.agent.Research.MaxCharacters > 100000 {
		return fmt.Errorf("agent.research.max_characters must be between 1000 and 100000")
	}
	return nil
}

// Validate checks that every referenced client exists and is well formed.
func (l *LLMConfig) Validate() error {
	if len(l.Clients) == 0 {
		return fmt.Errorf("at least one client must be configured")
	}
	if _, ok := l.Clients[l.DefaultClient]; !ok {
		return fmt.Errorf("default_client %q is not defined in clients", l.DefaultClient)
	}
	for role, name := range l.Roles {
		if _, ok := l.Clients[name]; !ok {
			return fmt.Errorf("role %q refers to undefined client %q", role, name)
		}
	}
	for name, client := range l.Clients {
		switch client.Provider {
		case ProviderOpenAI:
			if client.API != "" && client.API != APIChat && client.API != APIResponses {
				return fmt.Errorf("client %q: unknown openai api %q", name, client.API)
			}
		case ProviderGemini:
		default:
			return fmt.Errorf("client %q: unsupported provider %q", name, client.Provider)
		}
		if client.RateLimit < 0 {
			return fmt.Errorf("client %q: rate_limit must not be negative", name)
		}
	}
	return nil
}
