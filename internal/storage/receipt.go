// Package storage persists uploaded payment receipts and hands back a URL
// the verification workflow can reference.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReceiptStore interface {
	Store(ctx context.Context, filename string, content io.Reader) (string, error)
}

// LocalReceiptStore writes receipts under a base directory and returns a
// path relative to the public base URL. Uploaded names are never trusted;
// only the extension survives.
type LocalReceiptStore struct {
	dir     string
	baseURL string
	log     *zap.Logger
}

func NewLocalReceiptStore(dir, baseURL string, log *zap.Logger) (*LocalReceiptStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt dir %s: %w", dir, err)
	}

	return &LocalReceiptStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With(zap.String("component", "receipt_store")),
	}, nil
}

func (s *LocalReceiptStore) Store(ctx context.Context, filename string, content io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".pdf":
	default:
		return "", fmt.Errorf("unsupported receipt type %q", ext)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		s.log.Error("Failed to create receipt file", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("create receipt file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(path)
		s.log.Error("Failed to write receipt file", zap.Error(err), zap.String("path", path))
		return "", fmt.Errorf("write receipt file: %w", err)
	}

	url := s.baseURL + "/receipts/" + name
	s.log.Info("Receipt stored", zap.String("url", url))
	return url, nil
}
