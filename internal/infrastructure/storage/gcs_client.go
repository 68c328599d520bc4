package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

// objectWriter is the part of the GCS client the archive needs.
type objectWriter interface {
	Write(ctx context.Context, name string, body []byte) error
	Close() error
}

type gcsWriter struct {
	client     *storage.Client
	bucketName string
}

func (w *gcsWriter) Write(ctx context.Context, name string, body []byte) error {
	obj := w.client.Bucket(w.bucketName).Object(name).If(storage.Conditions{DoesNotExist: true})
	wc := obj.NewWriter(ctx)
	wc.ContentType = "application/json"

	if _, err := wc.Write(body); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write object: %v", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %v", err)
	}
	return nil
}

func (w *gcsWriter) Close() error {
	return w.client.Close()
}

// IncidentArchive stores incidents as JSON objects under
// incidents/<kind>/<yyyy>/<mm>/<dd>/<id>.json for manual reconciliation.
// Every incident is also logged, so nothing is lost if the write fails.
type IncidentArchive struct {
	writer objectWriter
	logger logger.Logger
}

func NewIncidentArchive(ctx context.Context, bucketName, credentialsPath string, log logger.Logger) (*IncidentArchive, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %v", err)
	}

	return &IncidentArchive{
		writer: &gcsWriter{client: client, bucketName: bucketName},
		logger: log,
	}, nil
}

// NewLogOnlyArchive records incidents in the log alone. Used when no
// bucket is configured.
func NewLogOnlyArchive(log logger.Logger) *IncidentArchive {
	return &IncidentArchive{logger: log}
}

func objectName(incident entity.Incident) string {
	day := incident.OccurredAt.UTC().Format("2006/01/02")
	return path.Join("incidents", string(incident.Kind), day, incident.ID+".json")
}

func (a *IncidentArchive) Archive(ctx context.Context, incident entity.Incident) error {
	body, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to encode incident: %v", err)
	}

	a.logger.Error("incident recorded", "kind", incident.Kind, "incidentId", incident.ID, "incident", string(body))

	if a.writer == nil {
		return nil
	}
	return a.writer.Write(ctx, objectName(incident), body)
}

func (a *IncidentArchive) Close() error {
	if a.writer == nil {
		return nil
	}
	return a.writer.Close()
}
