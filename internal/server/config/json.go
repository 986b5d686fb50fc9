package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/chatgate/internal/flagx"
	"github.com/dmitrijs2005/chatgate/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept both
// "1h" strings and integer nanoseconds. Only fields present in the file
// override the defaults.
type JsonConfig struct {
	HTTPAddr           string            `json:"http_addr"`
	GRPCAddr           string            `json:"grpc_addr"`
	SecretKey          string            `json:"secret_key"`
	TokenLifetime      *timex.Duration   `json:"token_lifetime"`
	QueryTimeout       *timex.Duration   `json:"query_timeout"`
	LogLevel           string            `json:"log_level"`
	Users              map[string]string `json:"users"`
	EmbeddingBaseURL   string            `json:"embedding_base_url"`
	EmbeddingModel     string            `json:"embedding_model"`
	EmbeddingDimension int               `json:"embedding_dimension"`
	OpenAIAPIKey       string            `json:"openai_api_key"`
	IndexBackend       string            `json:"index_backend"`
	QdrantURL          string            `json:"qdrant_url"`
	QdrantAPIKey       string            `json:"qdrant_api_key"`
	Collection         string            `json:"collection"`
	DatabaseDSN        string            `json:"database_dsn"`
	SeedSource         string            `json:"seed_source"`
	RecreateCollection *bool             `json:"recreate_collection"`
	S3Region           string            `json:"s3_region"`
	S3BaseEndpoint     string            `json:"s3_base_endpoint"`
	S3RootUser         string            `json:"s3_root_user"`
	S3RootPassword     string            `json:"s3_root_password"`
}

// parseJSON loads the file named by -c/-config, if any, onto config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenLifetime != nil {
		config.TokenLifetime = c.TokenLifetime.Duration
	}
	if c.QueryTimeout != nil {
		config.QueryTimeout = c.QueryTimeout.Duration
	}
	setString(&config.LogLevel, c.LogLevel)
	if c.Users != nil {
		config.Users = c.Users
	}
	setString(&config.EmbeddingBaseURL, c.EmbeddingBaseURL)
	setString(&config.EmbeddingModel, c.EmbeddingModel)
	if c.EmbeddingDimension != 0 {
		config.EmbeddingDimension = c.EmbeddingDimension
	}
	setString(&config.OpenAIAPIKey, c.OpenAIAPIKey)
	setString(&config.IndexBackend, c.IndexBackend)
	setString(&config.QdrantURL, c.QdrantURL)
	setString(&config.QdrantAPIKey, c.QdrantAPIKey)
	setString(&config.Collection, c.Collection)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SeedSource, c.SeedSource)
	if c.RecreateCollection != nil {
		config.RecreateCollection = *c.RecreateCollection
	}
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
