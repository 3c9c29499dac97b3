package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config holds every tunable the agent consumes. It is read once at startup
// and treated as read-only afterwards; operations receive it explicitly
// rather than through a package-level singleton.
type Config struct {
	GitHubUsername string `mapstructure:"github_username"`
	GitHubAPIKey   string `mapstructure:"github_api_key"`

	SmartLLMModel  string  `mapstructure:"smart_llm_model"`
	FastLLMModel   string  `mapstructure:"fast_llm_model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float64 `mapstructure:"temperature"`
	DebugMode      bool    `mapstructure:"debug_mode"`

	OpenAIAPIKey  string `mapstructure:"openai_api_key"`
	OpenAIAPIBase string `mapstructure:"openai_api_base"`

	UseAzure        bool              `mapstructure:"use_azure"`
	AzureAPIBase    string            `mapstructure:"azure_api_base"`
	AzureAPIVersion string            `mapstructure:"azure_api_version"`
	AzureModelMap   map[string]string `mapstructure:"azure_model_map"`

	// ParamPrefix, when set, switches secret resolution to AWS SSM
	// Parameter Store under that prefix.
	ParamPrefix string `mapstructure:"param_prefix"`
}

// Load reads configuration from an optional config.yaml and from AGENT_*
// environment variables. Environment values win over file values.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("smart_llm_model", "gpt-4")
	v.SetDefault("fast_llm_model", "gpt-3.5-turbo")
	v.SetDefault("embedding_model", "text-embedding-ada-002")
	v.SetDefault("temperature", 0.0)
	v.SetDefault("openai_api_base", "https://api.openai.com/v1")
	v.SetDefault("azure_api_version", "2023-05-15")

	// Bind explicitly so AutomaticEnv sees keys that never appear in a file.
	for _, key := range []string{
		"github_username", "github_api_key",
		"smart_llm_model", "fast_llm_model", "embedding_model",
		"temperature", "debug_mode",
		"openai_api_key", "openai_api_base",
		"use_azure", "azure_api_base", "azure_api_version",
		"param_prefix",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("config: bind env %q: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; env-only configuration is supported.
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var c Config
	// Environment values arrive as strings; decode them weakly so booleans
	// and floats set via AGENT_* variables still land in typed fields.
	weak := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = true }
	if err := v.Unmarshal(&c, weak); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config: temperature must be within [0, 2], got %g", c.Temperature)
	}
	if c.UseAzure {
		if strings.TrimSpace(c.AzureAPIBase) == "" {
			return errors.New("config: azure_api_base must be set when use_azure is enabled")
		}
		if strings.TrimSpace(c.AzureAPIVersion) == "" {
			return errors.New("config: azure_api_version must be set when use_azure is enabled")
		}
	}
	return nil
}

// AzureDeploymentIDForModel resolves a model name to the Azure deployment id
// configured for it. Azure-hosted requests address deployments, not models.
func (c *Config) AzureDeploymentIDForModel(model string) (string, error) {
	id, ok := c.AzureModelMap[model]
	if !ok || strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("config: no azure deployment mapped for model %q", model)
	}
	return id, nil
}

// GitHubConfigured reports whether both GitHub credentials are present.
// The clone command is only offered at all when this returns true.
func (c *Config) GitHubConfigured() bool {
	return strings.TrimSpace(c.GitHubUsername) != "" && strings.TrimSpace(c.GitHubAPIKey) != ""
}
