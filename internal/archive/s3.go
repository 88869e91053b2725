// Package archive uploads rendered invoice PDFs to an S3-compatible bucket
// (R2, MinIO, S3). It is optional; without endpoint and bucket configured
// New returns nil and no PDFs are archived.
package archive

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"rechnung-backend/internal/config"
	"rechnung-backend/internal/logger"
)

type Archive struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

func New(cfg *config.Config) (*Archive, error) {
	if cfg.Archive.Endpoint == "" || cfg.Archive.Bucket == "" {
		return nil, nil
	}
	log := logger.WithComponent("archive")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Archive.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Archive.AccessKey, cfg.Archive.SecretKey, "")),
	)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
		o.UsePathStyle = true
	})

	log.Info().Str("bucket", cfg.Archive.Bucket).Msg("pdf archive enabled")
	return &Archive{
		client:        client,
		bucket:        cfg.Archive.Bucket,
		publicBaseURL: strings.TrimSuffix(cfg.Archive.PublicBaseURL, "/"),
	}, nil
}

// Store uploads the PDF under the given key and returns its public URL.
func (a *Archive) Store(ctx context.Context, key string, data []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", err
	}
	return a.publicBaseURL + "/" + key, nil
}
