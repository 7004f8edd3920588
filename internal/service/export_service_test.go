package service

import (
	"alcyxob/fitness-planner/internal/apperr"
	"alcyxob/fitness-planner/internal/logger"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStorage keeps objects in a map and signs URLs with a fake host.
type memoryStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	deleteErr error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) PutObject(ctx context.Context, objectKey string, contentType string, body io.Reader, size int64) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectKey] = data
	return nil
}

func (m *memoryStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://files.test/" + objectKey + "?expires=" + expires.String(), nil
}

func (m *memoryStorage) DeleteObject(ctx context.Context, objectKey string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectKey)
	return nil
}

func TestExportPlan(t *testing.T) {
	f := newFixture(t)
	f.customize(t, 8, f.routine.FirstSet(), 70)
	files := newMemoryStorage()
	clock := ClockFunc(func() time.Time { return f.now })
	exports := NewExportService(f.store, f.customizations, files, 5*time.Minute, clock, logger.Nop())

	link, err := exports.ExportPlan(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 28, link.DaysExported)
	assert.Equal(t, "application/json", link.ContentType)
	assert.True(t, strings.HasPrefix(link.ObjectKey, "exports/"+f.owner.String()+"/"+f.plan.ID.String()+"/"))
	assert.Contains(t, link.DownloadURL, link.ObjectKey)
	assert.Equal(t, f.now.Add(5*time.Minute), link.ExpiresAt)

	require.Contains(t, files.objects, link.ObjectKey)
	var doc struct {
		Days []DayView `json:"days"`
	}
	require.NoError(t, json.Unmarshal(files.objects[link.ObjectKey], &doc))
	require.Len(t, doc.Days, 28)
	assert.True(t, doc.Days[7].HasCustomizations)
	assert.Equal(t, int64(len(files.objects[link.ObjectKey])), link.SizeBytes)

	links, err := exports.ListExports(f.ctx, f.owner, f.plan.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, link.ID, links[0].ID)
}

func TestExportPlanUploadFailure(t *testing.T) {
	f := newFixture(t)
	files := newMemoryStorage()
	files.putErr = errors.New("bucket unavailable")
	exports := NewExportService(f.store, f.customizations, files, 0, nil, logger.Nop())

	_, err := exports.ExportPlan(f.ctx, f.owner, f.plan.ID)
	requireKind(t, err, apperr.KindInternal)

	stored, err := f.store.Exports.ListByPlan(f.ctx, f.plan.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
