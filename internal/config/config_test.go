package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "gpt-4", cfg.SmartLLMModel)
	require.Equal(t, "gpt-3.5-turbo", cfg.FastLLMModel)
	require.Equal(t, "text-embedding-ada-002", cfg.EmbeddingModel)
	require.Equal(t, "https://api.openai.com/v1", cfg.OpenAIAPIBase)
	require.Equal(t, "2023-05-15", cfg.AzureAPIVersion)
	require.Zero(t, cfg.Temperature)
	require.False(t, cfg.UseAzure)
	require.False(t, cfg.DebugMode)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("AGENT_FAST_LLM_MODEL", "M")
	t.Setenv("AGENT_TEMPERATURE", "0.5")
	t.Setenv("AGENT_DEBUG_MODE", "true")
	t.Setenv("AGENT_OPENAI_API_KEY", "sk-env")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "M", cfg.FastLLMModel)
	require.InDelta(t, 0.5, cfg.Temperature, 1e-9)
	require.True(t, cfg.DebugMode)
	require.Equal(t, "sk-env", cfg.OpenAIAPIKey)
}

func TestLoad_RejectsOutOfRangeTemperature(t *testing.T) {
	t.Setenv("AGENT_TEMPERATURE", "3.5")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "temperature")
}

func TestLoad_AzureRequiresBase(t *testing.T) {
	t.Setenv("AGENT_USE_AZURE", "true")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "azure_api_base")
}

func TestAzureDeploymentIDForModel(t *testing.T) {
	cfg := &Config{AzureModelMap: map[string]string{"gpt-4": "gpt4-deploy"}}

	id, err := cfg.AzureDeploymentIDForModel("gpt-4")
	require.NoError(t, err)
	require.Equal(t, "gpt4-deploy", id)

	_, err = cfg.AzureDeploymentIDForModel("gpt-3.5-turbo")
	require.Error(t, err)
	require.Contains(t, err.Error(), "gpt-3.5-turbo")
}

func TestGitHubConfigured(t *testing.T) {
	require.False(t, (&Config{}).GitHubConfigured())
	require.False(t, (&Config{GitHubUsername: "octocat"}).GitHubConfigured())
	require.False(t, (&Config{GitHubUsername: "octocat", GitHubAPIKey: "  "}).GitHubConfigured())
	require.True(t, (&Config{GitHubUsername: "octocat", GitHubAPIKey: "ghp_x"}).GitHubConfigured())
}
