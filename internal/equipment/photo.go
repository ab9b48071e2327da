package equipment

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/everstacklabs/fitplan/internal/llm"
)

// ErrUnsupportedPhoto is returned when a photo cannot be turned into an image.
var ErrUnsupportedPhoto = errors.New("unsupported photo format")

const defaultMIMEType = "image/jpeg"

// Kind tags the representation held by a PhotoInput.
type Kind int

const (
	KindUnknown Kind = iota
	KindInlineBase64
	KindRawBytes
	KindFilePath
)

func (k Kind) String() string {
	switch k {
	case KindInlineBase64:
		return "inline-base64"
	case KindRawBytes:
		return "raw-bytes"
	case KindFilePath:
		return "file-path"
	default:
		return "unknown"
	}
}

// PhotoInput is one caller-supplied photo. Build it with InlineBase64,
// RawBytes or FilePath; the zero value is rejected by Normalize.
type PhotoInput struct {
	kind     Kind
	mimeType string
	encoded  string
	raw      []byte
	path     string
}

// InlineBase64 wraps a base64 payload. data may also be a full data: URL, in
// which case its MIME type wins over mimeType.
func InlineBase64(data, mimeType string) PhotoInput {
	return PhotoInput{kind: KindInlineBase64, encoded: data, mimeType: mimeType}
}

// RawBytes wraps an in-memory image.
func RawBytes(b []byte) PhotoInput {
	return PhotoInput{kind: KindRawBytes, raw: b}
}

// FilePath refers to an image on disk, read during normalization.
func FilePath(path string) PhotoInput {
	return PhotoInput{kind: KindFilePath, path: path}
}

// Kind reports the representation of p.
func (p PhotoInput) Kind() Kind { return p.kind }

// Normalize converts any PhotoInput into raw image bytes plus a MIME type.
// Failures wrap ErrUnsupportedPhoto.
func Normalize(p PhotoInput) (llm.Image, error) {
	switch p.kind {
	case KindInlineBase64:
		return decodeInline(p.encoded, p.mimeType)
	case KindRawBytes:
		if len(p.raw) == 0 {
			return llm.Image{}, fmt.Errorf("%w: empty image", ErrUnsupportedPhoto)
		}
		return llm.Image{MIMEType: sniff(p.raw, ""), Data: p.raw}, nil
	case KindFilePath:
		data, err := os.ReadFile(p.path)
		if err != nil {
			return llm.Image{}, fmt.Errorf("%w: reading %s: %v", ErrUnsupportedPhoto, p.path, err)
		}
		if len(data) == 0 {
			return llm.Image{}, fmt.Errorf("%w: %s is empty", ErrUnsupportedPhoto, p.path)
		}
		return llm.Image{MIMEType: sniff(data, ""), Data: data}, nil
	default:
		return llm.Image{}, fmt.Errorf("%w: %s input", ErrUnsupportedPhoto, p.kind)
	}
}

func decodeInline(encoded, mimeType string) (llm.Image, error) {
	encoded = strings.TrimSpace(encoded)
	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(header, ";base64") {
			return llm.Image{}, fmt.Errorf("%w: malformed data URL", ErrUnsupportedPhoto)
		}
		mimeType = strings.TrimSuffix(header, ";base64")
		encoded = payload
	}
	if encoded == "" {
		return llm.Image{}, fmt.Errorf("%w: empty payload", ErrUnsupportedPhoto)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return llm.Image{}, fmt.Errorf("%w: invalid base64: %v", ErrUnsupportedPhoto, err)
	}
	return llm.Image{MIMEType: sniff(data, mimeType), Data: data}, nil
}

// sniff prefers a declared image/* type, then content sniffing, then JPEG.
func sniff(data []byte, declared string) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}
	if detected := http.DetectContentType(data); strings.HasPrefix(detected, "image/") {
		return detected
	}
	return defaultMIMEType
}
