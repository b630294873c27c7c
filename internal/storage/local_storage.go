package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"places-go/internal/config"
)

// FileStorage 保存上传的图片并返回其引用路径。
type FileStorage interface {
	SaveImage(reader io.Reader, originalName, subdir string) (string, error)
}

// LocalFileStorage 将上传文件写入本地磁盘，引用路径形如
// /assets/<subdir>/<uuid><ext>，由静态文件路由提供访问。
type LocalFileStorage struct {
	basePath string
	baseURL  string
}

// NewLocalFileStorage creates a LocalFileStorage rooted at the
// configured local path, served under baseURL.
func NewLocalFileStorage(cfg config.StorageConfig, baseURL string) (*LocalFileStorage, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory %q: %w", cfg.LocalPath, err)
	}
	return &LocalFileStorage{basePath: cfg.LocalPath, baseURL: baseURL}, nil
}

// SaveImage 以唯一文件名保存图片，保留原始扩展名。
func (s *LocalFileStorage) SaveImage(reader io.Reader, originalName, subdir string) (string, error) {
	dir := filepath.Join(s.basePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create storage subdirectory %q: %w", dir, err)
	}

	ext := filepath.Ext(originalName)
	fileName := uuid.New().String() + ext
	dstPath := filepath.Join(dir, fileName)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create file %q: %w", dstPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, reader); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("write file: %w", err)
	}

	return s.baseURL + "/" + subdir + "/" + fileName, nil
}
