package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/qiniu/go-sdk/v7/auth"
	"github.com/qiniu/go-sdk/v7/storage"
	"go.uber.org/zap"
)

// ObjectStore archives voice recordings so a transcription can be audited or
// re-run later. Archival is best effort: a failed upload never blocks the
// transcription path.
type ObjectStore struct {
	mac    *auth.Credentials
	bucket string
	domain string
	logger *zap.Logger
}

// NewFromEnv builds an ObjectStore from STORAGE_ACCESS_KEY, STORAGE_SECRET_KEY,
// STORAGE_BUCKET and STORAGE_DOMAIN. It returns nil when credentials are not
// configured; callers treat a nil store as "archival disabled".
func NewFromEnv(logger *zap.Logger) *ObjectStore {
	accessKey := os.Getenv("STORAGE_ACCESS_KEY")
	secretKey := os.Getenv("STORAGE_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		return nil
	}

	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		bucket = "zevar-voice"
	}
	domain := os.Getenv("STORAGE_DOMAIN")
	if domain == "" {
		domain = bucket + ".example.com"
	}

	return &ObjectStore{
		mac:    auth.New(accessKey, secretKey),
		bucket: bucket,
		domain: domain,
		logger: logger,
	}
}

// SaveRecording uploads one audio blob under a per-user key and returns its
// public URL.
func (s *ObjectStore) SaveRecording(ctx context.Context, userID string, data []byte, format string) (string, error) {
	putPolicy := storage.PutPolicy{Scope: s.bucket}
	upToken := putPolicy.UploadToken(s.mac)

	cfg := storage.Config{UseHTTPS: true}
	uploader := storage.NewFormUploader(&cfg)
	ret := storage.PutRet{}

	key := fmt.Sprintf("voice/%s/%d.%s", userID, time.Now().UnixNano(), format)
	err := uploader.Put(ctx, &ret, upToken, key, bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to upload recording: %w", err)
	}

	url := fmt.Sprintf("https://%s/%s", s.domain, key)
	s.logger.Debug("recording archived", zap.String("key", key), zap.Int("bytes", len(data)))
	return url, nil
}
