// Package artwork loads cover images referenced by media metadata.
package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Ducheved/sharpmote/filesystem"
	"github.com/Ducheved/sharpmote/media"
	"github.com/Ducheved/sharpmote/network"
	"github.com/Ducheved/sharpmote/util"
	"github.com/h2non/filetype"
)

// MaxSize bounds a single image.
const MaxSize = 8 << 20

// Loader resolves artwork URLs. file:// paths go through the virtual filesystem,
// http(s) URLs through a retrying client.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader with a retrying client.
func NewLoader() *Loader {
	return &Loader{client: network.Retrying(2, 10*time.Second)}
}

// Load returns false when the URL is empty or unsupported.
func (l *Loader) Load(ctx context.Context, raw string) (media.Artwork, bool, error) {
	if raw == "" {
		return media.Artwork{}, false, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return media.Artwork{}, false, fmt.Errorf("parse art url: %w", err)
	}

	var data []byte
	var contentType string

	switch u.Scheme {
	case "file":
		data, err = readFile(u.Path)
	case "http", "https":
		data, contentType, err = l.fetch(ctx, raw)
	default:
		return media.Artwork{}, false, nil
	}

	if err != nil {
		return media.Artwork{}, false, err
	}
	if len(data) == 0 {
		return media.Artwork{}, false, nil
	}

	return media.Artwork{Data: data, ContentType: Sniff(contentType, data)}, true, nil
}

func readFile(path string) ([]byte, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, fmt.Errorf("open art file: %w", err)
	}
	defer util.Ignore(f.Close)

	return io.ReadAll(io.LimitReader(f, MaxSize))
}

func (l *Loader) fetch(ctx context.Context, raw string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch art: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch art: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize))
	if err != nil {
		return nil, "", fmt.Errorf("read art: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// Sniff keeps a declared image content type and otherwise detects it from the
// magic bytes of data.
func Sniff(declared string, data []byte) string {
	if strings.HasPrefix(declared, "image/") {
		return declared
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return http.DetectContentType(data)
	}
	return kind.MIME.Value
}
