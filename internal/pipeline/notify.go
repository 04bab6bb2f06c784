package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hakim/domainvet/internal/models"
)

// NotifyConfig configures where to send completion notifications.
type NotifyConfig struct {
	WebhookURL string // if empty, no notifications
}

// completionPayload is the JSON body posted to the webhook endpoint.
type completionPayload struct {
	RunID          string              `json:"run_id"`
	InputFile      string              `json:"input_file"`
	Profile        string              `json:"profile"`
	Status         models.RunStatus    `json:"status"`
	Summary        models.BatchSummary `json:"summary"`
	ElapsedSeconds float64             `json:"elapsed_seconds"`
	ReportPaths    []string            `json:"report_paths"`
}

// SendCompletion posts a JSON summary of the run to the webhook URL.
// Returns nil if WebhookURL is empty (no-op). Callers should treat errors as
// warnings.
func (n *NotifyConfig) SendCompletion(meta *models.RunMeta, result *RunResult) error {
	if n == nil || n.WebhookURL == "" {
		return nil
	}

	payload := completionPayload{
		RunID:       meta.ID,
		InputFile:   meta.InputFile,
		Profile:     meta.Profile,
		Status:      result.Status,
		ReportPaths: result.ReportPaths,
	}
	if result.Batch != nil {
		payload.Summary = result.Batch.Summary
		payload.ElapsedSeconds = result.Batch.Elapsed.Seconds()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("notify: marshaling payload: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(n.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: posting to %s: %w", n.WebhookURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned non-2xx status %d", resp.StatusCode)
	}

	return nil
}
