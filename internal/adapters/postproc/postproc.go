// Package postproc hands captured photos to downstream processing.
package postproc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
)

// Logger only records that a photo is ready.
type Logger struct{}

func (Logger) Process(ctx context.Context, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	log.Info().Str("module", "postproc").Str("path", path).Int64("size", st.Size()).Msg("photo ready")
	return nil
}

// Webhook posts the photo path to an external processor (OCR or similar).
type Webhook struct {
	url    string
	client *http.Client
}

type webhookRequest struct {
	Path       string    `json:"path"`
	CapturedAt time.Time `json:"captured_at"`
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{url: url, client: &http.Client{Timeout: timeout}}
}

func (w *Webhook) Process(ctx context.Context, path string) error {
	body, err := json.Marshal(webhookRequest{Path: path, CapturedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", w.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post %s: unexpected status %s", w.url, resp.Status)
	}
	log.Debug().Str("module", "postproc").Str("path", path).Msg("webhook delivered")
	return nil
}

// New picks the webhook processor when url is set.
func New(url string, timeout time.Duration) core.PostProcessor {
	if url == "" {
		return Logger{}
	}
	return NewWebhook(url, timeout)
}
