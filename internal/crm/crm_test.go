package crm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vcon-insights/internal/config"
	"vcon-insights/internal/pipeline"
	"vcon-insights/internal/types"
)

const testSecret = "hunter2-webhook-secret"

func testClient(t *testing.T, endpoint string, maxRetries, batchSize int) *Client {
	t.Helper()
	c, err := New(config.CRM{
		Endpoint:       endpoint,
		Secret:         testSecret,
		TimeoutSeconds: 5,
		MaxRetries:     maxRetries,
		BatchSize:      batchSize,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.initialInterval = time.Millisecond
	return c
}

type capturedDelivery struct {
	body      []byte
	signature string
	delivery  string
	contentTy string
}

func TestPushRunSummarySignsPayload(t *testing.T) {
	var got capturedDelivery
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = capturedDelivery{
			body:      body,
			signature: r.Header.Get(SignatureHeader),
			delivery:  r.Header.Get(DeliveryHeader),
			contentTy: r.Header.Get("Content-Type"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0, 50)
	summary := &pipeline.Summary{RunID: "run-42", RecordsWritten: 3, OutputPath: "out/dataset.csv"}
	if err := c.PushRunSummary(context.Background(), summary); err != nil {
		t.Fatalf("PushRunSummary: %v", err)
	}

	if got.contentTy != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got.contentTy)
	}
	if !strings.HasPrefix(got.signature, "sha256=") {
		t.Errorf("signature %q missing sha256= prefix", got.signature)
	}
	if !Verify(testSecret, got.body, got.signature) {
		t.Error("signature does not verify with the shared secret")
	}
	if Verify("wrong-secret", got.body, got.signature) {
		t.Error("signature verified with the wrong secret")
	}

	var env struct {
		DeliveryID string           `json:"delivery_id"`
		Event      string           `json:"event"`
		SentAt     string           `json:"sent_at"`
		Payload    pipeline.Summary `json:"payload"`
	}
	if err := json.Unmarshal(got.body, &env); err != nil {
		t.Fatalf("decode delivery: %v", err)
	}
	if env.Event != "run_summary" {
		t.Errorf("event = %q, want run_summary", env.Event)
	}
	if env.DeliveryID == "" || env.DeliveryID != got.delivery {
		t.Errorf("delivery id %q does not match header %q", env.DeliveryID, got.delivery)
	}
	if env.SentAt == "" {
		t.Error("sent_at is empty")
	}
	if diff := cmp.Diff(*summary, env.Payload); diff != "" {
		t.Errorf("summary payload mismatch (-want +got):\n%s", diff)
	}
}

func TestPushRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 3, 50)
	if err := c.PushRunSummary(context.Background(), &pipeline.Summary{RunID: "retry"}); err != nil {
		t.Fatalf("PushRunSummary after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestPushClientErrorIsPermanent(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 3, 50)
	err := c.PushRunSummary(context.Background(), &pipeline.Summary{RunID: "reject"})
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("error %q does not mention the status", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (client errors must not retry)", attempts)
	}
}

func TestPushGivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 2, 50)
	err := c.PushRunSummary(context.Background(), &pipeline.Summary{RunID: "down"})
	if err == nil {
		t.Fatal("expected error when the endpoint never recovers")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not mention the status", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (first try plus two retries)", attempts)
	}
}

func TestPushRecordsBatches(t *testing.T) {
	type batchSeen struct {
		Index int
		Count int
		IDs   []string
	}
	var seen []batchSeen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !Verify(testSecret, body, r.Header.Get(SignatureHeader)) {
			t.Error("batch signature does not verify")
		}
		var env struct {
			Event   string `json:"event"`
			Payload struct {
				BatchIndex int `json:"batch_index"`
				BatchCount int `json:"batch_count"`
				Records    []struct {
					ConversationID string `json:"conversation_id"`
				} `json:"records"`
			} `json:"payload"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			t.Errorf("decode batch: %v", err)
		}
		if env.Event != "records_batch" {
			t.Errorf("event = %q, want records_batch", env.Event)
		}
		b := batchSeen{Index: env.Payload.BatchIndex, Count: env.Payload.BatchCount}
		for _, rec := range env.Payload.Records {
			b.IDs = append(b.IDs, rec.ConversationID)
		}
		seen = append(seen, b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	records := make([]types.EnrichedRecord, 5)
	for i := range records {
		records[i].ConversationID = string(rune('a' + i))
	}

	c := testClient(t, srv.URL, 0, 2)
	if err := c.PushRecords(context.Background(), records); err != nil {
		t.Fatalf("PushRecords: %v", err)
	}

	want := []batchSeen{
		{Index: 0, Count: 3, IDs: []string{"a", "b"}},
		{Index: 1, Count: 3, IDs: []string{"c", "d"}},
		{Index: 2, Count: 3, IDs: []string{"e"}},
	}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("batches mismatch (-want +got):\n%s", diff)
	}
}

func TestPushRecordsEmptyIsNoop(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL, 0, 2)
	if err := c.PushRecords(context.Background(), nil); err != nil {
		t.Fatalf("PushRecords(nil): %v", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestNewRequiresEndpointAndSecret(t *testing.T) {
	if _, err := New(config.CRM{Secret: "s"}); err == nil {
		t.Error("expected error for missing endpoint")
	}
	if _, err := New(config.CRM{Endpoint: "https://crm.example.com/hook"}); err == nil {
		t.Error("expected error for missing secret")
	}
	if _, err := New(config.CRM{Endpoint: "https://crm.example.com/hook", Secret: "s"}); err != nil {
		t.Errorf("New with endpoint and secret: %v", err)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	body := []byte(`{"delivery_id":"d1","event":"run_summary"}`)
	sig := Sign(testSecret, body)
	if !Verify(testSecret, body, sig) {
		t.Fatal("signature must verify for the original body")
	}
	tampered := []byte(`{"delivery_id":"d1","event":"run_summarY"}`)
	if Verify(testSecret, tampered, sig) {
		t.Error("signature verified for a tampered body")
	}
}
