package types

import (
	"time"
)

// Config represents the gateway configuration loaded once at process start
type Config struct {
	// Tavily search provider
	TavilyAPIKey  string `json:"-" env:"TAVILY_API_KEY,required=true"`
	TavilyBaseURL string `json:"tavily_base_url" env:"TAVILY_BASE_URL,default=https://api.tavily.com"`

	// Groq answer provider
	GroqAPIKey        string  `json:"-" env:"GROQ_API_KEY"`
	GroqBaseURL       string  `json:"groq_base_url" env:"GROQ_BASE_URL,default=https://api.groq.com/openai/v1"`
	GroqModel         string  `json:"groq_model" env:"GROQ_MODEL,default=mixtral-8x7b-32768"`
	AnswerLanguage    string  `json:"answer_language" env:"ANSWER_LANGUAGE,default=ru"`
	AnswerTemperature float64 `json:"answer_temperature" env:"ANSWER_TEMPERATURE,default=0.7"`
	AnswerMaxTokens   int     `json:"answer_max_tokens" env:"ANSWER_MAX_TOKENS,default=1000"`

	// Orchestration
	UpstreamTimeout        time.Duration `json:"upstream_timeout" env:"UPSTREAM_TIMEOUT,default=30s"`
	PartialAnswerOnFailure bool          `json:"partial_answer_on_failure" env:"PARTIAL_ANSWER_ON_FAILURE,default=false"`
	ValidateKeysOnStartup  bool          `json:"validate_keys_on_startup" env:"VALIDATE_KEYS_ON_STARTUP,default=false"`

	// HTTP server
	ServerHost            string        `json:"server_host" env:"SERVER_HOST,default=0.0.0.0"`
	ServerPort            int           `json:"server_port" env:"PORT,default=5000"`
	ServerReadTimeout     time.Duration `json:"server_read_timeout" env:"SERVER_READ_TIMEOUT,default=30s"`
	ServerWriteTimeout    time.Duration `json:"server_write_timeout" env:"SERVER_WRITE_TIMEOUT,default=90s"`
	ServerIdleTimeout     time.Duration `json:"server_idle_timeout" env:"SERVER_IDLE_TIMEOUT,default=120s"`
	ServerShutdownTimeout time.Duration `json:"server_shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT,default=30s"`
	MaxRequestBytes       int           `json:"max_request_bytes" env:"MAX_REQUEST_BYTES,default=65536"`
	CORSAllowedOriginsStr string        `json:"-" env:"CORS_ALLOWED_ORIGINS"`
	CORSAllowedOrigins    []string      `json:"cors_allowed_origins"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=searchai"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}

// AnswersEnabled reports whether an answer provider credential is configured
func (c *Config) AnswersEnabled() bool {
	return c != nil && c.GroqAPIKey != ""
}
