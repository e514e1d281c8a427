// Package crm delivers run results to a downstream CRM webhook. Every
// delivery is a signed JSON POST; receivers verify the signature with the
// shared secret before trusting the payload.
package crm

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vcon-insights/internal/config"
	"vcon-insights/internal/logger"
	"vcon-insights/internal/pipeline"
	"vcon-insights/internal/types"
)

const (
	// SignatureHeader carries the hex HMAC-SHA256 of the request body.
	SignatureHeader = "X-Insights-Signature"
	// DeliveryHeader carries the unique id of one delivery attempt group.
	DeliveryHeader = "X-Insights-Delivery"

	eventRunSummary   = "run_summary"
	eventRecordsBatch = "records_batch"
)

// Client pushes enrichment output to a CRM endpoint with retry and backoff.
type Client struct {
	endpoint   string
	secret     string
	batchSize  int
	maxRetries int
	httpClient *http.Client
	log        *logrus.Entry

	// shortened by tests so retries don't sleep for real
	initialInterval time.Duration
}

// New builds a client from the CRM section of the config. The endpoint and
// secret must be set; Validate enforces that for enabled configs, but the
// client checks again so direct construction fails the same way.
func New(cfg config.CRM) (*Client, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("crm endpoint not configured")
	}
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("crm webhook secret not configured")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	batch := cfg.BatchSize
	if batch < 1 {
		batch = 50
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		secret:     cfg.Secret,
		batchSize:  batch,
		maxRetries: retries,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.New().WithField("component", "crm"),
	}, nil
}

// delivery is the envelope around every webhook payload.
type delivery struct {
	DeliveryID string `json:"delivery_id"`
	Event      string `json:"event"`
	SentAt     string `json:"sent_at"`
	Payload    any    `json:"payload"`
}

// recordsBatch is the payload of one records_batch event.
type recordsBatch struct {
	BatchIndex int                    `json:"batch_index"`
	BatchCount int                    `json:"batch_count"`
	Records    []types.EnrichedRecord `json:"records"`
}

// PushRunSummary delivers the summary of one enrichment run.
func (c *Client) PushRunSummary(ctx context.Context, summary *pipeline.Summary) error {
	return c.post(ctx, eventRunSummary, summary)
}

// PushRecords delivers enriched rows in batches of the configured size. Rows
// marshal with the same snake_case field names as the dataset export, so a
// receiver sees one schema regardless of channel. Delivery stops at the first
// batch that cannot be delivered.
func (c *Client) PushRecords(ctx context.Context, records []types.EnrichedRecord) error {
	if len(records) == 0 {
		return nil
	}
	total := (len(records) + c.batchSize - 1) / c.batchSize
	for index := 0; index < total; index++ {
		start := index * c.batchSize
		end := min(start+c.batchSize, len(records))
		batch := recordsBatch{
			BatchIndex: index,
			BatchCount: total,
			Records:    records[start:end],
		}
		if err := c.post(ctx, eventRecordsBatch, batch); err != nil {
			return err
		}
	}
	return nil
}

// post sends one signed delivery with retry/backoff. Server errors and
// transport failures retry; client errors are permanent.
func (c *Client) post(ctx context.Context, event string, payload any) error {
	deliveryID := uuid.NewString()
	body, err := json.Marshal(delivery{
		DeliveryID: deliveryID,
		Event:      event,
		SentAt:     time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("encode %s delivery: %w", event, err)
	}
	signature := Sign(c.secret, body)
	log := c.log.WithField("event", event).WithField("delivery_id", deliveryID)

	var lastErr error
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			lastErr = err
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(SignatureHeader, signature)
		req.Header.Set(DeliveryHeader, deliveryID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.WithField("error", err.Error()).Warn("crm delivery attempt failed")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			lastErr = nil
			return nil
		}
		lastErr = fmt.Errorf("crm endpoint returned %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Permanent: don't retry on client errors
			return backoff.Permanent(lastErr)
		}
		log.WithField("status", resp.StatusCode).Warn("crm delivery attempt failed")
		return lastErr
	}

	b := backoff.NewExponentialBackOff()
	if c.initialInterval > 0 {
		b.InitialInterval = c.initialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return fmt.Errorf("deliver %s: %w", event, lastErr)
	}

	log.WithField("bytes", len(body)).Info("crm delivery accepted")
	return nil
}

// Sign computes the signature header value for a request body: the hex
// HMAC-SHA256 of the body keyed by the shared secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under the shared secret.
// The comparison is constant time.
func Verify(secret string, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}
