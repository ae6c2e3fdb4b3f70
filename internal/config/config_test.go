package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envMap returns a LookupFunc backed by a map
func envMap(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, `{
		"port": 9090,
		"template": "compact",
		"slots": [{"name": "api_2", "provider": "openrouter", "model": "meta/llama"}],
		"default_slot": "api_2",
		"llm_timeout": "45s",
		"rendering_rules": {"max_items_per_section": 4},
		"verbose": true
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "compact", cfg.Template)
	require.Len(t, cfg.Slots, 1)
	assert.Equal(t, llm.ProviderOpenRouter, cfg.Slots[0].Provider)
	assert.Equal(t, "meta/llama", cfg.Slots[0].Model)
	assert.Equal(t, 45*time.Second, cfg.Timeout())
	assert.Equal(t, 4, cfg.RenderingRules.MaxItemsPerSection)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_APIKeyIsNotReadFromFile(t *testing.T) {
	path := writeConfig(t, `{"slots": [{"name": "api_1", "provider": "gemini", "APIKey": "leaked", "api_key": "leaked"}]}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Slots[0].APIKey)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `{ invalid json }`))
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestApplyEnv_Slots(t *testing.T) {
	cfg := &Config{}
	err := cfg.ApplyEnv(envMap(map[string]string{
		"API_3_PROVIDER":     "OpenRouter",
		"API_3_KEY":          "or-key",
		"API_3_MODEL":        "anthropic/claude",
		"API_1_KEY":          "gem-key",
		"API_2_PROVIDER":     "gemini",
		"GEMINI_API_KEY":     "shared-gemini",
		"OPENROUTER_API_KEY": "shared-or",
		"API_9_KEY":          "ignored",
	}))
	require.NoError(t, err)

	require.Len(t, cfg.Slots, 3)
	assert.Equal(t, llm.Slot{Name: "api_1", Provider: llm.ProviderGemini, APIKey: "gem-key"}, cfg.Slots[0])
	assert.Equal(t, llm.Slot{Name: "api_2", Provider: llm.ProviderGemini, APIKey: "shared-gemini"}, cfg.Slots[1])
	assert.Equal(t, llm.Slot{Name: "api_3", Provider: llm.ProviderOpenRouter, APIKey: "or-key", Model: "anthropic/claude"}, cfg.Slots[2])
}

func TestApplyEnv_ProviderKeysOnly(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"GEMINI_API_KEY":     "g",
		"OPENROUTER_API_KEY": "o",
	})))

	require.Len(t, cfg.Slots, 2)
	assert.Equal(t, llm.Slot{Name: "api_1", Provider: llm.ProviderGemini, APIKey: "g"}, cfg.Slots[0])
	assert.Equal(t, llm.Slot{Name: "api_2", Provider: llm.ProviderOpenRouter, APIKey: "o"}, cfg.Slots[1])

	cfg = &Config{}
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{"OPENROUTER_API_KEY": "o"})))
	require.Len(t, cfg.Slots, 1)
	assert.Equal(t, "api_1", cfg.Slots[0].Name)
	assert.Equal(t, llm.ProviderOpenRouter, cfg.Slots[0].Provider)
}

func TestApplyEnv_FileSlotsGetKeys(t *testing.T) {
	cfg := &Config{Slots: []llm.Slot{
		{Name: "api_2", Provider: llm.ProviderOpenRouter},
		{Name: "api_1", Provider: llm.ProviderGemini, Model: "gemini-2.5-pro"},
	}}
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"API_1_KEY":          "slot-key",
		"OPENROUTER_API_KEY": "shared-or",
	})))

	require.Len(t, cfg.Slots, 2)
	assert.Equal(t, "api_1", cfg.Slots[0].Name)
	assert.Equal(t, "slot-key", cfg.Slots[0].APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Slots[0].Model)
	assert.Equal(t, "shared-or", cfg.Slots[1].APIKey)
}

func TestApplyEnv_Scalars(t *testing.T) {
	cfg := &Config{Port: 1}
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		"PORT":             "3000",
		"RENDER_TEMPLATE":  "compact",
		"LLM_TIMEOUT":      "30s",
		"LLM_MAX_ATTEMPTS": "5",
		"LLM_DEFAULT_SLOT": "api_2",
	})))

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "compact", cfg.Template)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, 5, cfg.RetryPolicy().MaxAttempts)
	assert.Equal(t, "api_2", cfg.DefaultSlot)
}

func TestApplyEnv_BadNumbers(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.ApplyEnv(envMap(map[string]string{"PORT": "eighty"})))
	assert.Error(t, cfg.ApplyEnv(envMap(map[string]string{"LLM_MAX_ATTEMPTS": "many"})))
}

func TestValidate(t *testing.T) {
	negative := -1

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid config",
			cfg: Config{
				Port:        8080,
				Template:    "classic",
				Slots:       []llm.Slot{{Name: "api_1", Provider: llm.ProviderGemini}},
				DefaultSlot: "api_1",
				LLMTimeout:  "1m",
			},
		},
		{name: "empty config", cfg: Config{}},
		{name: "port out of range", cfg: Config{Port: 70000}, wantErr: "config error"},
		{name: "unknown template", cfg: Config{Template: "fancy"}, wantErr: "unknown template"},
		{name: "bad timeout", cfg: Config{LLMTimeout: "soon"}, wantErr: "llm_timeout"},
		{name: "negative timeout", cfg: Config{LLMTimeout: "-5s"}, wantErr: "llm_timeout"},
		{name: "too many attempts", cfg: Config{MaxAttempts: 50}, wantErr: "config error"},
		{
			name:    "negative rendering rule",
			cfg:     Config{RenderingRules: types.RenderingRules{TruncateDescriptionsAt: &negative}},
			wantErr: "rendering_rules",
		},
		{
			name:    "bad slot name",
			cfg:     Config{Slots: []llm.Slot{{Name: "primary", Provider: llm.ProviderGemini}}},
			wantErr: "invalid slot name",
		},
		{
			name:    "unknown provider",
			cfg:     Config{Slots: []llm.Slot{{Name: "api_1", Provider: "acme"}}},
			wantErr: "slot 1",
		},
		{
			name: "duplicate slot",
			cfg: Config{Slots: []llm.Slot{
				{Name: "api_1", Provider: llm.ProviderGemini},
				{Name: "api_1", Provider: llm.ProviderOpenRouter},
			}},
			wantErr: "configured twice",
		},
		{
			name:    "default slot not configured",
			cfg:     Config{Slots: []llm.Slot{{Name: "api_1", Provider: llm.ProviderGemini}}, DefaultSlot: "api_4"},
			wantErr: "default_slot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{Port: 9000, Template: "compact"}
	merged := cfg.MergeWithDefaults(Default())

	assert.Equal(t, 9000, merged.Port)
	assert.Equal(t, "compact", merged.Template)
	assert.Equal(t, DefaultLLMTimeout, merged.LLMTimeout)
	assert.Equal(t, 3, merged.MaxAttempts)
	assert.Equal(t, int64(DefaultMaxUploadBytes), merged.MaxUploadBytes)

	// Original should be unchanged
	assert.Empty(t, cfg.LLMTimeout)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{Port: 9000}
	merged := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 9000, merged.Port)
	assert.Empty(t, merged.Template)
	assert.Empty(t, merged.Slots)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{"template": "compact", "slots": [{"name": "api_2", "provider": "openrouter"}]}`)

	cfg, err := Load(path, envMap(map[string]string{
		"OPENROUTER_API_KEY": "or",
		"PORT":               "7000",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "compact", cfg.Template)
	assert.Equal(t, 2*time.Minute, cfg.Timeout())
	slot, ok := cfg.Slot("api_2")
	require.True(t, ok)
	assert.Equal(t, "or", slot.APIKey)

	_, ok = cfg.Slot("api_1")
	assert.False(t, ok)

	cfg, err = Load("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Empty(t, cfg.Slots)

	_, err = Load("", envMap(map[string]string{"RENDER_TEMPLATE": "fancy"}))
	assert.Error(t, err)
}
