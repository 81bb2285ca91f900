package ingest

import (
	"context"
	"fmt"
	"io"

	"refdata-manager/core/reconcile"
	"refdata-manager/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Service ingests vendor batch files: fetch, parse, reconcile, summarize.
type Service struct {
	client storage.Client
	bucket string
	runner *Runner
	logger *zap.Logger
}

// NewService creates a new ingest service.
func NewService(client storage.Client, bucket string, runner *Runner, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		runner: runner,
		logger: logger,
	}
}

// IngestObject fetches a vendor file from the bucket and runs it through the
// engine. An empty format is detected from the object name.
func (s *Service) IngestObject(ctx context.Context, object string, kind reconcile.Kind, source string, format Format) (*BatchSummary, error) {
	if format == "" {
		detected, err := DetectFormat(object)
		if err != nil {
			return nil, err
		}
		format = detected
	}

	obj, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s/%s: %w", s.bucket, object, err)
	}
	defer obj.Close()

	s.logger.Info("ingesting vendor file",
		zap.String("object", object),
		zap.String("source", source),
		zap.String("kind", string(kind)))

	return s.IngestReader(ctx, obj, kind, source, format)
}

// IngestReader parses a vendor batch from a reader and runs it through the
// engine. The CLI uses this directly for local files.
func (s *Service) IngestReader(ctx context.Context, r io.Reader, kind reconcile.Kind, source string, format Format) (*BatchSummary, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown entity kind %q", string(kind))
	}
	if source == "" {
		return nil, fmt.Errorf("source is required")
	}

	records, err := Parse(r, format, kind, source)
	if err != nil {
		return nil, err
	}

	return s.runner.Run(ctx, kind, source, records), nil
}
