package mocks

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// MockBlobStore implements services.BlobStore for testing without an
// object store.
type MockBlobStore struct {
	ShouldError bool

	Objects map[string]bool

	PresignUploadCalls   []PresignCall
	PresignDownloadCalls []PresignCall
	DeleteCalls          []PresignCall
}

type PresignCall struct {
	Key       string
	Timestamp time.Time
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{
		Objects: make(map[string]bool),
	}
}

func (m *MockBlobStore) PresignUpload(ctx context.Context, key, contentType string, sizeBytes int64) (string, error) {
	m.PresignUploadCalls = append(m.PresignUploadCalls, PresignCall{Key: key, Timestamp: time.Now()})
	if m.ShouldError {
		return "", errors.New("blob store unavailable")
	}
	m.Objects[key] = true
	return fmt.Sprintf("https://blobs.test/upload/%s", key), nil
}

func (m *MockBlobStore) PresignDownload(ctx context.Context, key string) (string, error) {
	m.PresignDownloadCalls = append(m.PresignDownloadCalls, PresignCall{Key: key, Timestamp: time.Now()})
	if m.ShouldError {
		return "", errors.New("blob store unavailable")
	}
	return fmt.Sprintf("https://blobs.test/download/%s", key), nil
}

func (m *MockBlobStore) DeleteObject(ctx context.Context, key string) error {
	m.DeleteCalls = append(m.DeleteCalls, PresignCall{Key: key, Timestamp: time.Now()})
	if m.ShouldError {
		return errors.New("blob store unavailable")
	}
	delete(m.Objects, key)
	return nil
}
