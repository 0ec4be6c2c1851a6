package loader

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/machinebox/progress"
	"go.uber.org/zap"

	"github.com/wippyai/watim-playground/errors"
)

// HTTPConfig tunes the HTTP loader
type HTTPConfig struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// ProgressInterval is how often download progress is logged for
	// responses with a known length. 0 disables progress logging.
	ProgressInterval time.Duration
}

// HTTP returns a Func that GETs baseURL joined with the file path. Any
// non-2xx status is a load failure.
func HTTP(baseURL string, cfg *HTTPConfig) Func {
	client := http.DefaultClient
	var interval time.Duration
	if cfg != nil {
		if cfg.Client != nil {
			client = cfg.Client
		}
		interval = cfg.ProgressInterval
	}
	base := strings.TrimSuffix(baseURL, "/")

	return func(ctx context.Context, path string) (string, error) {
		url := base + "/" + strings.TrimPrefix(path, "/")
		data, err := fetch(ctx, client, url, interval)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// Fetch downloads url in full. It is used directly for binaries such as the
// compiler, which are not part of any tree.
func Fetch(ctx context.Context, url string, cfg *HTTPConfig) ([]byte, error) {
	client := http.DefaultClient
	var interval time.Duration
	if cfg != nil {
		if cfg.Client != nil {
			client = cfg.Client
		}
		interval = cfg.ProgressInterval
	}
	return fetch(ctx, client, url, interval)
}

func fetch(ctx context.Context, client *http.Client, url string, interval time.Duration) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "build request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindLoad, err, "GET "+url)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, errors.New(errors.PhaseLoad, errors.KindLoad).
			Value(resp.StatusCode).
			Detail("GET %s: %s", url, resp.Status).
			Build()
	}

	body := progress.NewReader(resp.Body)
	if interval > 0 && resp.ContentLength > 0 {
		tickCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go logProgress(tickCtx, body, resp.ContentLength, interval, url)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindLoad, err, "read "+url)
	}
	Logger().Debug("fetched", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}

func logProgress(ctx context.Context, r *progress.Reader, size int64, interval time.Duration, url string) {
	for p := range progress.NewTicker(ctx, r, size, interval) {
		Logger().Info("downloading",
			zap.String("url", url),
			zap.Float64("percent", p.Percent()),
			zap.Duration("remaining", p.Remaining().Round(time.Second)))
	}
}
