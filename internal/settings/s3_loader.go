package settings

import (
	"context"
	"fmt"

	"hirdavat/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// objectGetter is the subset of *s3.Client the loader needs.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// s3Loader reads the settings document from an S3 object.
type s3Loader struct {
	client objectGetter
	bucket string
	key    string
	logger zerolog.Logger
}

// NewS3Loader creates a new S3-based settings loader using the default AWS
// credential chain.
func NewS3Loader(ctx context.Context, bucket, region, key string, logger zerolog.Logger) (Loader, error) {
	logger = logger.With().Str("component", "s3-settings-loader").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Str("key", key).
		Msg("S3 settings loader initialised")

	return newS3Loader(s3.NewFromConfig(cfg), bucket, key, logger), nil
}

func newS3Loader(client objectGetter, bucket, key string, logger zerolog.Logger) *s3Loader {
	return &s3Loader{
		client: client,
		bucket: bucket,
		key:    key,
		logger: logger,
	}
}

func (l *s3Loader) Load(ctx context.Context) (model.ShippingSettings, error) {
	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", l.key).
			Msg("failed to get object from S3")
		return model.ShippingSettings{}, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", l.bucket, l.key, err)
	}
	defer result.Body.Close()

	s, err := Decode(result.Body)
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("bucket", l.bucket).
			Str("key", l.key).
			Msg("failed to read settings object")
		return model.ShippingSettings{}, err
	}

	l.logger.Debug().
		Str("key", l.key).
		Int("tiers", len(s.Tiers)).
		Msg("settings loaded from S3")

	return s, nil
}
