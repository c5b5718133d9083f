package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"devchannels/internal/utils"
)

// MaxImageSize is the upload ceiling for attached images.
const MaxImageSize = 5 << 20 // 5 MB

// UploadService stores attached images on local disk under a public
// path. Files are not removed when their message goes away; the URL
// simply stops being referenced.
type UploadService struct {
	dir string
}

// NewUploadService ensures the upload directory exists.
func NewUploadService(dir string) (*UploadService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadService{dir: dir}, nil
}

// Dir returns the on-disk directory served at /uploads.
func (s *UploadService) Dir() string {
	return s.dir
}

// SaveImage validates and persists an uploaded image, returning the
// public URL path. Size and content type are checked server side, not
// trusted from the client: the first bytes of the file are sniffed.
func (s *UploadService) SaveImage(header *multipart.FileHeader) (string, error) {
	if header.Size > MaxImageSize {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Image must be smaller than 5MB", nil)
	}

	src, err := header.Open()
	if err != nil {
		return "", utils.NewAppError(utils.ErrInternal, "Failed to read upload", err)
	}
	defer src.Close()

	sniff := make([]byte, 512)
	n, err := src.Read(sniff)
	if err != nil && err != io.EOF {
		return "", utils.NewAppError(utils.ErrInternal, "Failed to read upload", err)
	}
	contentType := http.DetectContentType(sniff[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Only image files are allowed", nil)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", utils.NewAppError(utils.ErrInternal, "Failed to read upload", err)
	}

	name := utils.RandStringBytesMaskImpr(16) + strings.ToLower(filepath.Ext(header.Filename))
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", utils.NewAppError(utils.ErrInternal, "Failed to store upload", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", utils.NewAppError(utils.ErrInternal, "Failed to store upload", err)
	}

	return "/uploads/" + name, nil
}
