// Package attachment validates user-selected images and encodes them as
// data URIs for the chat request.
package attachment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxSize is the largest accepted image, in bytes.
const MaxSize = 5 * 1024 * 1024

var acceptedTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/webp": "image/webp",
}

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("image too large")
)

// EncodingError reports a file that passed validation but could not be
// converted to a data URI.
type EncodingError struct {
	Path string
	Err  error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Image is an attachment ready to be sent.
type Image struct {
	Name      string
	MediaType string
	Size      int64
	DataURI   string
}

// Validate checks media type first, then size.
func Validate(mediaType string, size int64) error {
	if _, ok := acceptedTypes[normalizeMediaType(mediaType)]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
	if size > MaxSize {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, size)
	}
	return nil
}

// Load sniffs, validates and encodes the file at path.
func Load(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &EncodingError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &EncodingError{Path: path, Err: errors.New("is a directory")}
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, &EncodingError{Path: path, Err: err}
	}
	mediaType := normalizeMediaType(mtype.String())
	if err := Validate(mediaType, info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &EncodingError{Path: path, Err: err}
	}
	defer f.Close()

	uri, err := Encode(acceptedTypes[mediaType], f)
	if err != nil {
		return nil, &EncodingError{Path: path, Err: err}
	}

	return &Image{
		Name:      filepath.Base(path),
		MediaType: acceptedTypes[mediaType],
		Size:      info.Size(),
		DataURI:   uri,
	}, nil
}

// Encode reads r fully and returns data:<mediaType>;base64,<payload>.
func Encode(mediaType string, r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("%w: more than %d bytes read", ErrTooLarge, MaxSize)
	}

	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mediaType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mediaType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String(), nil
}

func normalizeMediaType(mediaType string) string {
	mediaType, _, _ = strings.Cut(mediaType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
