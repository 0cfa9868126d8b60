package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestSMSService(url string) *SMSService {
	return &SMSService{
		client:     &http.Client{Timeout: time.Second},
		gatewayURL: url,
	}
}

func TestSMSSendPostsPayload(t *testing.T) {
	var got smsPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s, want application/json", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := newTestSMSService(server.URL)
	err := svc.Send(context.Background(), "+15550001111", "Reminder: Take your medicine Aspirin at 08:00")
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if got.Phone != "+15550001111" {
		t.Errorf("phone = %q", got.Phone)
	}
	if got.Message != "Reminder: Take your medicine Aspirin at 08:00" {
		t.Errorf("message = %q", got.Message)
	}
}

func TestSMSSendGatewayErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"twilio not configured"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := newTestSMSService(server.URL)
	if err := svc.Send(context.Background(), "+15550001111", "hello"); err == nil {
		t.Fatal("expected an error for a 500 response")
	}
}

func TestSMSSendUnreachableGatewayIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	svc := newTestSMSService(server.URL)
	if err := svc.Send(context.Background(), "+15550001111", "hello"); err == nil {
		t.Fatal("expected an error for an unreachable gateway")
	}
}

func TestSMSSendHonorsContextCancellation(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	svc := newTestSMSService(server.URL)
	if err := svc.Send(ctx, "+15550001111", "hello"); err == nil {
		t.Fatal("expected an error when the context is cancelled mid-send")
	}
}
