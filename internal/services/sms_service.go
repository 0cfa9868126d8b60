package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultSMSGatewayURL is the SMS microservice endpoint used when
// SMS_GATEWAY_URL is not set
const DefaultSMSGatewayURL = "http://localhost:8787/api/sms"

// SMSService delivers reminder texts through the external SMS gateway
type SMSService struct {
	client     *http.Client
	gatewayURL string
}

// NewSMSService creates an SMS client configured from the environment
func NewSMSService() *SMSService {
	gatewayURL := os.Getenv("SMS_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = DefaultSMSGatewayURL
	}

	timeout := 10 * time.Second
	if raw := os.Getenv("SMS_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			timeout = d
		}
	}

	return &SMSService{
		client:     &http.Client{Timeout: timeout},
		gatewayURL: gatewayURL,
	}
}

type smsPayload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send posts one message to the gateway. Transport errors and gateway
// responses of 400 or above are both reported as failures, so the caller
// can decide between retrying and giving up.
func (s *SMSService) Send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(smsPayload{Phone: phone, Message: message})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
