package repository

import (
	"context"
	"fmt"
	"time"
)

// TranscriptStore object storage for exported transcripts
type TranscriptStore interface {
	// Save 上傳後回傳 presigned 下載連結
	Save(ctx context.Context, objectKey string, data []byte) (string, error)
}

// objectStorage subset of *database.MinIOClient
type objectStorage interface {
	UploadBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	PresignGetURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

type minioTranscriptStore struct {
	storage objectStorage
	expiry  time.Duration
}

// NewMinIOTranscriptStore create TranscriptStore, expiry 為下載連結有效時間
func NewMinIOTranscriptStore(storage objectStorage, expiry time.Duration) TranscriptStore {
	return &minioTranscriptStore{storage: storage, expiry: expiry}
}

func (s *minioTranscriptStore) Save(ctx context.Context, objectKey string, data []byte) (string, error) {
	if err := s.storage.UploadBytes(ctx, objectKey, data, "application/json"); err != nil {
		return "", fmt.Errorf("upload transcript %s: %w", objectKey, err)
	}
	url, err := s.storage.PresignGetURL(ctx, objectKey, s.expiry)
	if err != nil {
		return "", err
	}
	return url, nil
}
