package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("TAVILY_API_KEY", "tvly-test")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)

		require.Equal(t, "tvly-test", cfg.TavilyAPIKey)
		require.Equal(t, "https://api.tavily.com", cfg.TavilyBaseURL)
		require.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
		require.Equal(t, "mixtral-8x7b-32768", cfg.GroqModel)
		require.Equal(t, "ru", cfg.AnswerLanguage)
		require.InDelta(t, 0.7, cfg.AnswerTemperature, 1e-9)
		require.Equal(t, 1000, cfg.AnswerMaxTokens)
		require.Equal(t, 30*time.Second, cfg.UpstreamTimeout)
		require.Equal(t, 5000, cfg.ServerPort)
		require.False(t, cfg.PartialAnswerOnFailure)
		require.False(t, cfg.AnswersEnabled(), "answers need a Groq key")
		require.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.CORSAllowedOrigins)
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("TAVILY_API_KEY", "tvly-test")
		t.Setenv("GROQ_API_KEY", " gsk-test ")
		t.Setenv("ANSWER_LANGUAGE", "de")
		t.Setenv("UPSTREAM_TIMEOUT", "5s")
		t.Setenv("PARTIAL_ANSWER_ON_FAILURE", "true")
		t.Setenv("PORT", "8080")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://search.example.com , *,,")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)

		require.Equal(t, "gsk-test", cfg.GroqAPIKey)
		require.True(t, cfg.AnswersEnabled())
		require.Equal(t, "de", cfg.AnswerLanguage)
		require.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
		require.True(t, cfg.PartialAnswerOnFailure)
		require.Equal(t, 8080, cfg.ServerPort)
		require.Equal(t, []string{"https://search.example.com", "*"}, cfg.CORSAllowedOrigins)
	})

	t.Run("clamps token budget", func(t *testing.T) {
		t.Setenv("TAVILY_API_KEY", "tvly-test")
		t.Setenv("ANSWER_MAX_TOKENS", "-5")

		cfg, err := LoadFromEnv()
		require.NoError(t, err)
		require.Equal(t, 1, cfg.AnswerMaxTokens)
	})
}

func TestLoadFromEnvValidation(t *testing.T) {
	testcases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing tavily key",
			env:  map[string]string{"TAVILY_API_KEY": "   "},
		},
		{
			name: "invalid language tag",
			env:  map[string]string{"TAVILY_API_KEY": "k", "ANSWER_LANGUAGE": "not a tag!"},
		},
		{
			name: "temperature out of range",
			env:  map[string]string{"TAVILY_API_KEY": "k", "ANSWER_TEMPERATURE": "3.5"},
		},
		{
			name: "bad base url",
			env:  map[string]string{"TAVILY_API_KEY": "k", "TAVILY_BASE_URL": "ftp://example.com"},
		},
		{
			name: "port out of range",
			env:  map[string]string{"TAVILY_API_KEY": "k", "PORT": "70000"},
		},
		{
			name: "zero upstream timeout",
			env:  map[string]string{"TAVILY_API_KEY": "k", "UPSTREAM_TIMEOUT": "0s"},
		},
		{
			name: "bad cors origin",
			env:  map[string]string{"TAVILY_API_KEY": "k", "CORS_ALLOWED_ORIGINS": "localhost"},
		},
	}

	for _, tt := range testcases {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := LoadFromEnv()
			require.Error(t, err)
		})
	}
}
