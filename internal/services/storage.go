package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrFileNotFound = errors.New("file not found")

// StorageService hosts uploaded originals under opaque keys.
type StorageService interface {
	SaveFile(ctx context.Context, filename, contentType string, data []byte) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	DeleteFile(ctx context.Context, key string) error
	FileURL(key string) string
	EnsureUploadDir(ctx context.Context) error
}

var extensionByType = map[string]string{
	MimePDF:  ".pdf",
	MimeDOC:  ".doc",
	MimeDOCX: ".docx",
	MimeJPEG: ".jpg",
	MimePNG:  ".png",
	MimeText: ".txt",
}

var typeByExtension = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
	".jpg":  MimeJPEG,
	".jpeg": MimeJPEG,
	".png":  MimePNG,
	".txt":  MimeText,
}

// newFileKey returns a unique key keeping a recognised extension.
func newFileKey(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := typeByExtension[ext]; !ok {
		ext = extensionByType[contentType]
	}
	return uuid.New().String() + ext
}

// ContentTypeForFilename maps a file extension to its accepted MIME type.
func ContentTypeForFilename(name string) string {
	if ct, ok := typeByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && filepath.Base(key) == key && !strings.ContainsAny(key, `/\`)
}

func fileURL(baseURL, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/files/" + key
}

type storageService struct {
	uploadPath string
	baseURL    string
}

// NewStorageService stores files on local disk under uploadPath.
func NewStorageService(uploadPath, baseURL string) StorageService {
	return &storageService{
		uploadPath: uploadPath,
		baseURL:    baseURL,
	}
}

func (s *storageService) EnsureUploadDir(ctx context.Context) error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

func (s *storageService) SaveFile(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	key := newFileKey(filename, contentType)
	filePath := filepath.Join(s.uploadPath, key)

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return key, nil
}

func (s *storageService) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !validKey(key) {
		return nil, "", ErrFileNotFound
	}

	f, err := os.Open(filepath.Join(s.uploadPath, key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrFileNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	return f, ContentTypeForFilename(key), nil
}

func (s *storageService) FileURL(key string) string {
	return fileURL(s.baseURL, key)
}

// DeleteFile removes the file. Missing files are not an error.
func (s *storageService) DeleteFile(ctx context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.uploadPath, key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
