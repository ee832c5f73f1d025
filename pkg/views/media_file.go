package views

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const octetStream = "application/octet-stream"

// DetectMediaType picks the media type of an upload: the declared type when
// it is specific, then the file extension, then content sniffing. Parameters
// such as charset are dropped.
func DetectMediaType(name, declared string, data []byte) string {
	byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	for _, candidate := range []string{declared, byExt} {
		if mt, _, err := mime.ParseMediaType(candidate); err == nil && mt != octetStream {
			return mt
		}
	}
	mt, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mt
}

// ReadMediaFile reads at most limit+1 bytes of path, so callers can tell an
// oversized file apart without loading all of it, and detects its type.
func ReadMediaFile(path string, limit int64) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening media: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading media: %w", err)
	}
	return data, DetectMediaType(path, "", data), nil
}
