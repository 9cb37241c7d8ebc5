// Package notifier implements Notifier: an optional multipart webhook POST
// fired on every terminal media transition.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mbari-org/dettrackd/internal/logger"
)

// Notifier posts a multipart form {metadata, file} to a configured webhook
// URL. A zero-value Notifier (empty URL) is a deliberate no-op, matching
// "skipped when no webhook URL is configured" (§4.7).
type Notifier struct {
	url    string
	client *http.Client
	log    logger.Interface
}

// New constructs a Notifier. url may be empty, in which case Notify is a
// no-op.
func New(url string, log logger.Interface) *Notifier {
	return &Notifier{url: url, client: &http.Client{Timeout: 30 * time.Second}, log: log}
}

// Notify fires exactly one POST attempt, per invariant I5. metadata is the
// caller-provided mapping (JSON-serialised here, independent of the stored
// base64 encoding); archive may be nil/empty for a FAILED job, in which
// case an empty file part is still sent so subscribers observe the
// terminal transition.
func (n *Notifier) Notify(ctx context.Context, metadata map[string]any, archive []byte) error {
	if n.url == "" {
		return nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("notifier: marshal metadata: %w", err)
	}
	if err := w.WriteField("metadata", string(metaJSON)); err != nil {
		return fmt.Errorf("notifier: write metadata field: %w", err)
	}

	fw, err := w.CreateFormFile("file", "result.tar.gz")
	if err != nil {
		return fmt.Errorf("notifier: create file part: %w", err)
	}
	if _, err := fw.Write(archive); err != nil {
		return fmt.Errorf("notifier: write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("notifier: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, &body)
	if err != nil {
		return fmt.Errorf("notifier: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := n.client.Do(req)
	if err != nil {
		n.log.Warn("webhook POST failed", "url", n.url, "error", err)
		return nil // transient infrastructure error, §7: logged, not propagated
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		n.log.Info("webhook delivered", "url", n.url, "status", resp.StatusCode)
	} else {
		n.log.Warn("webhook rejected", "url", n.url, "status", resp.StatusCode)
	}
	return nil
}
