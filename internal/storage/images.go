package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"hostel-catalog/internal/config"
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

type fileType struct {
	ext      string
	detected string
}

// tipos aceptados -> extensión del archivo guardado y tipo real esperado
var fileTypeMap = map[string]fileType{
	"image/jpeg": {ext: "jpeg", detected: "image/jpeg"},
	"image/png":  {ext: "png", detected: "image/png"},
	"image/jpg":  {ext: "jpg", detected: "image/jpeg"},
}

// ImageStore guarda las fotos de producto en un directorio local servido como público.
type ImageStore struct {
	dir        string
	publicPath string
	maxBytes   int64
	rewrites   []config.HostRewrite
	now        func() time.Time
}

func NewImageStore(cfg config.UploadConfig) (*ImageStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", cfg.Dir, err)
	}

	publicPath := "/" + strings.Trim(cfg.PublicPath, "/") + "/"
	if publicPath == "//" {
		publicPath = "/"
	}

	return &ImageStore{
		dir:        cfg.Dir,
		publicPath: publicPath,
		maxBytes:   cfg.MaxBytes,
		rewrites:   cfg.HostRewrites,
		now:        time.Now,
	}, nil
}

// Validate revisa el tipo declarado y que el contenido real sea de ese mismo tipo.
// Devuelve la extensión con la que se guardará.
func (s *ImageStore) Validate(file *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", ErrFileTooLarge
	}

	declared, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if err != nil {
		return "", ErrInvalidFileType
	}
	want, ok := fileTypeMap[strings.ToLower(declared)]
	if !ok {
		return "", ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	detected, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect upload type: %w", err)
	}
	// el contenido tiene que coincidir con el tipo declarado
	if !detected.Is(want.detected) {
		return "", ErrInvalidFileType
	}

	return want.ext, nil
}

// Save escribe el archivo como IMG-<millis>-<uuid>.<ext> y devuelve el nombre.
func (s *ImageStore) Save(file *multipart.FileHeader, ext string) (string, error) {
	name := fmt.Sprintf("IMG-%d-%s.%s", s.now().UnixMilli(), uuid.NewString(), ext)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	return name, nil
}

func (s *ImageStore) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.dir, filepath.Base(name))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// URL arma la dirección pública del archivo aplicando las reglas de reescritura de host
// (p. ej. 10.0.2.2 del emulador de Android -> localhost).
func (s *ImageStore) URL(scheme, host, name string) string {
	for _, rw := range s.rewrites {
		if strings.Contains(host, rw.From) {
			host = strings.Replace(host, rw.From, rw.To, 1)
		}
	}
	return scheme + "://" + host + s.publicPath + name
}
