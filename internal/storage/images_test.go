package storage

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-catalog/internal/config"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
)

func fileHeader(t *testing.T, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	s, err := NewImageStore(config.UploadConfig{
		Dir:          filepath.Join(t.TempDir(), "uploads"),
		PublicPath:   "public/uploads",
		MaxBytes:     1 << 10,
		HostRewrites: []config.HostRewrite{{From: "10.0.2.2", To: "localhost"}},
	})
	require.NoError(t, err)
	return s
}

func TestImageStore_Validate(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name        string
		contentType string
		content     []byte
		wantExt     string
		wantErr     error
	}{
		{name: "png", contentType: "image/png", content: pngBytes, wantExt: "png"},
		{name: "jpeg", contentType: "image/jpeg", content: jpegBytes, wantExt: "jpeg"},
		{name: "jpg alias", contentType: "image/jpg", content: jpegBytes, wantExt: "jpg"},
		{name: "gif declared", contentType: "image/gif", content: []byte("GIF89a"), wantErr: ErrInvalidFileType},
		{name: "jpeg declared as png", contentType: "image/png", content: jpegBytes, wantErr: ErrInvalidFileType},
		{name: "png declared as jpg", contentType: "image/jpg", content: pngBytes, wantErr: ErrInvalidFileType},
		{name: "text disguised as png", contentType: "image/png", content: []byte("hello world"), wantErr: ErrInvalidFileType},
		{name: "missing content type", contentType: "", content: pngBytes, wantErr: ErrInvalidFileType},
		{name: "too large", contentType: "image/png", content: append(pngBytes, make([]byte, 2<<10)...), wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := s.Validate(fileHeader(t, tt.contentType, tt.content))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestImageStore_SaveAndRemove(t *testing.T) {
	s := newTestStore(t)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	fh := fileHeader(t, "image/png", pngBytes)

	first, err := s.Save(fh, "png")
	require.NoError(t, err)
	second, err := s.Save(fh, "png")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^IMG-1700000000000-[0-9a-f-]{36}\.png$`), first)
	assert.NotEqual(t, first, second, "same millisecond must not collide")

	written, err := os.ReadFile(filepath.Join(s.dir, first))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, written)

	require.NoError(t, s.Remove(first))
	_, err = os.Stat(filepath.Join(s.dir, first))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(first), "removing twice is not an error")
}

func TestImageStore_URL(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, "http://localhost:3000/public/uploads/IMG-1.png", s.URL("http", "10.0.2.2:3000", "IMG-1.png"))
	assert.Equal(t, "https://api.example.com/public/uploads/IMG-1.png", s.URL("https", "api.example.com", "IMG-1.png"))
}
