package config

// Environment variables that may carry secrets. They override the JSON file
// but are themselves overridden by flags.
const (
	EnvSecretKey    = "CHATGATE_SECRET_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvQdrantAPIKey = "QDRANT_API_KEY"
	EnvDatabaseDSN  = "DATABASE_DSN"
)

func parseEnv(config *Config, getenv func(string) string) {
	if v := getenv(EnvSecretKey); v != "" {
		config.SecretKey = v
	}
	if v := getenv(EnvOpenAIAPIKey); v != "" {
		config.OpenAIAPIKey = v
	}
	if v := getenv(EnvQdrantAPIKey); v != "" {
		config.QdrantAPIKey = v
	}
	if v := getenv(EnvDatabaseDSN); v != "" {
		config.DatabaseDSN = v
	}
}
