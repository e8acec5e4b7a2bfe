// Package artifacts persists trained model artifacts to object storage.
package artifacts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/blazesportsintel/forecast/internal/config"
	"github.com/blazesportsintel/forecast/internal/models"
)

// Store persists and loads model artifact documents.
type Store interface {
	Put(ctx context.Context, sport, modelType string, jobID uuid.UUID, artifact *models.ModelArtifact) (string, error)
	Get(ctx context.Context, path string) (*models.ModelArtifact, error)
}

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Store creates an S3-backed artifact store.
func NewS3Store(ctx context.Context, cfg *config.ArtifactsConfig) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// ArtifactPath builds the object key for a model artifact, namespaced by
// sport and job id: models/{sport}/{modelType}_{jobId}.json
func ArtifactPath(prefix, sport, modelType string, jobID uuid.UUID) string {
	key := fmt.Sprintf("models/%s/%s_%s.json", sport, modelType, jobID)
	if prefix != "" {
		return prefix + "/" + key
	}
	return key
}

// Put serializes the artifact to JSON and uploads it, returning the object key.
func (s *S3Store) Put(ctx context.Context, sport, modelType string, jobID uuid.UUID, artifact *models.ModelArtifact) (string, error) {
	data, err := json.Marshal(artifact)
	if err != nil {
		return "", fmt.Errorf("failed to marshal artifact: %w", err)
	}

	key := ArtifactPath(s.prefix, sport, modelType, jobID)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload artifact %s: %w", key, err)
	}

	return key, nil
}

// Get downloads and decodes an artifact document.
func (s *S3Store) Get(ctx context.Context, path string) (*models.ModelArtifact, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact %s: %w", path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	artifact := &models.ModelArtifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", path, err)
	}

	return artifact, nil
}
