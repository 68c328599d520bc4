package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/internal/domain/entity"
	"github.com/MOODMNKY-LLC/mood-mnky-command-sub005/pkg/logger"
)

type memoryWriter struct {
	objects map[string][]byte
	err     error
}

func (w *memoryWriter) Write(ctx context.Context, name string, body []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.objects == nil {
		w.objects = make(map[string][]byte)
	}
	w.objects[name] = body
	return nil
}

func (w *memoryWriter) Close() error { return nil }

func TestArchiveWritesIncidentObject(t *testing.T) {
	w := &memoryWriter{}
	a := &IncidentArchive{writer: w, logger: logger.Nop()}

	incident := entity.Incident{
		ID:         "abc",
		Kind:       entity.IncidentClaimNotPersisted,
		ProfileID:  "p1",
		Code:       "MNKY-ABCDEF",
		CostXP:     50,
		OccurredAt: time.Date(2026, 4, 9, 23, 0, 0, 0, time.UTC),
	}
	require.NoError(t, a.Archive(context.Background(), incident))

	body, ok := w.objects["incidents/claim_not_persisted/2026/04/09/abc.json"]
	require.True(t, ok)

	var decoded entity.Incident
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "MNKY-ABCDEF", decoded.Code)
	assert.Equal(t, int64(50), decoded.CostXP)
}

func TestArchiveSurfacesWriteErrors(t *testing.T) {
	a := &IncidentArchive{writer: &memoryWriter{err: errors.New("403")}, logger: logger.Nop()}
	assert.Error(t, a.Archive(context.Background(), entity.Incident{ID: "x", Kind: entity.IncidentRefundFailed}))
}

func TestLogOnlyArchive(t *testing.T) {
	a := NewLogOnlyArchive(logger.Nop())
	assert.NoError(t, a.Archive(context.Background(), entity.Incident{ID: "x", Kind: entity.IncidentBalanceDrift}))
	assert.NoError(t, a.Close())
}
