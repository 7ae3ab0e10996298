package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ErrNoFile       = errors.New("no file uploaded")
	ErrFileTooLarge = errors.New("file size exceeds limit")
	ErrNotAnImage   = errors.New("uploaded file is not an image")
	ErrEmptyImage   = errors.New("image is empty")
)

type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	ValidateImageFile(file *multipart.FileHeader) error
	ReadImageFile(file *multipart.FileHeader) ([]byte, error)
	DecodeBase64Image(data string) ([]byte, error)
	ValidateImageBytes(data []byte) error
}

type utils struct {
	maxFileSize int64
}

func New() IUtils {
	return &utils{
		maxFileSize: 10 * 1024 * 1024,
	}
}

func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	ms := ulid.Timestamp(t)
	entropy := ulid.Monotonic(rand.Reader, 0)

	id, err := ulid.New(ms, entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (u *utils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return ErrNoFile
	}

	if file.Size > u.maxFileSize {
		return ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}

	return nil
}

func (u *utils) ReadImageFile(file *multipart.FileHeader) ([]byte, error) {
	if err := u.ValidateImageFile(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, u.maxFileSize+1))
	if err != nil {
		return nil, err
	}

	return data, u.ValidateImageBytes(data)
}

// DecodeBase64Image accepts raw base64 or a data URL.
func (u *utils) DecodeBase64Image(data string) ([]byte, error) {
	if idx := strings.Index(data, ";base64,"); strings.HasPrefix(data, "data:") && idx != -1 {
		data = data[idx+len(";base64,"):]
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}

	return decoded, u.ValidateImageBytes(decoded)
}

func (u *utils) ValidateImageBytes(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyImage
	}
	if int64(len(data)) > u.maxFileSize {
		return ErrFileTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return ErrNotAnImage
	}
	return nil
}
