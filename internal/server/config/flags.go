package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/chatgate/internal/flagx"
)

var flagNames = []string{"a", "g", "s", "t", "q", "l", "b", "i", "n", "d", "e", "m", "seed", "recreate"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string    HTTP bind address (e.g. ":8000")
//	-g string    gRPC health bind address (e.g. ":50051")
//	-s string    JWT HMAC secret key
//	-t int       token lifetime, minutes
//	-q int       query timeout, seconds
//	-l string    log level
//	-b string    index backend: qdrant, postgres or memory
//	-i string    Qdrant URL
//	-n string    collection name
//	-d string    PostgreSQL DSN
//	-e string    embedding API base URL
//	-m string    embedding model
//	-seed string seed documents (path, file:// or s3:// URL)
//	-recreate    drop and recreate the collection at startup
//
// Durations are given as integers and converted to time.Duration.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run HTTP server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to run gRPC health server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenLifetime := fs.Int("t", int(config.TokenLifetime.Minutes()), "token lifetime (in minutes)")
	queryTimeout := fs.Int("q", int(config.QueryTimeout.Seconds()), "query timeout (in seconds)")

	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.IndexBackend, "b", config.IndexBackend, "vector index backend")
	fs.StringVar(&config.QdrantURL, "i", config.QdrantURL, "Qdrant URL")
	fs.StringVar(&config.Collection, "n", config.Collection, "collection name")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.EmbeddingBaseURL, "e", config.EmbeddingBaseURL, "embedding API base URL")
	fs.StringVar(&config.EmbeddingModel, "m", config.EmbeddingModel, "embedding model")
	fs.StringVar(&config.SeedSource, "seed", config.SeedSource, "seed documents source")
	fs.BoolVar(&config.RecreateCollection, "recreate", config.RecreateCollection, "recreate collection at startup")

	if err := fs.Parse(flagx.FilterArgs(args, flagNames)); err != nil {
		return err
	}

	// Only explicit flags override durations, so sub-unit JSON values survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.TokenLifetime = time.Duration(*tokenLifetime) * time.Minute
		case "q":
			config.QueryTimeout = time.Duration(*queryTimeout) * time.Second
		}
	})
	return nil
}
