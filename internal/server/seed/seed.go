// Package seed loads the documents used to pre-populate the vector index.
// Sources are a local path, a file:// URL or an s3://bucket/key URL; the
// payload is a JSON array of vectorindex.Document.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/chatgate/internal/server/vectorindex"
)

// S3Config configures access to an S3-compatible object store (AWS or MinIO).
type S3Config struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// objectGetter is the subset of *s3.Client used here.
type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Seams for tests.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig
	newS3Client          = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Loader reads seed documents from the configured source.
type Loader struct {
	s3cfg S3Config
}

func NewLoader(s3cfg S3Config) *Loader {
	return &Loader{s3cfg: s3cfg}
}

// Load fetches and decodes the documents at source.
func (l *Loader) Load(ctx context.Context, source string) ([]vectorindex.Document, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a JSON array of documents, rejecting entries without an ID
// or content and duplicate IDs.
func Decode(data []byte) ([]vectorindex.Document, error) {
	var docs []vectorindex.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("decode seed documents: %w", err)
	}

	seen := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		if d.ID == "" || strings.TrimSpace(d.Content) == "" {
			return nil, fmt.Errorf("seed document %d: id and content are required", i)
		}
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("seed document %d: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return docs, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return readFile(source)
	}

	switch u.Scheme {
	case "file":
		return readFile(u.Path)
	case "s3":
		return l.readS3(ctx, u.Host, strings.TrimPrefix(u.Path, "/"))
	default:
		return nil, fmt.Errorf("unsupported seed source scheme %q", u.Scheme)
	}
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return data, nil
}

func (l *Loader) client(ctx context.Context) (objectGetter, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(l.s3cfg.Region)}
	if l.s3cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(l.s3cfg.AccessKey, l.s3cfg.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3Client(cfg, func(o *s3.Options) {
		if l.s3cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(l.s3cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (l *Loader) readS3(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 seed source needs bucket and key")
	}

	c, err := l.client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := c.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
