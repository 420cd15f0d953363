package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	round "github.com/okian/whackaword/internal/round"
)

// TapRequest is the body of POST /taps.
type TapRequest struct {
	TapID string `json:"tap_id"`
	Slot  string `json:"slot"`
	Token uint64 `json:"token"`
}

// AckResponse is returned for accepted or duplicate taps.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HTTPClient drives a remote session through its HTTP API.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Snapshot fetches GET /session.
func (c *HTTPClient) Snapshot(ctx context.Context) (round.Snapshot, error) {
	var snap round.Snapshot
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session", nil)
	if err != nil {
		return snap, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return snap, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return snap, err
	}
	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.Unmarshal(body, &snap); err != nil {
		return snap, fmt.Errorf("failed to decode session: %w", err)
	}
	return snap, nil
}

// Tap posts one tap with a fresh id.
func (c *HTTPClient) Tap(ctx context.Context, slotID string, token uint64) error {
	_, err := c.Submit(ctx, TapRequest{TapID: uuid.NewString(), Slot: slotID, Token: token})
	return err
}

// Submit posts req to /taps and reports whether the server saw it before.
func (c *HTTPClient) Submit(ctx context.Context, req TapRequest) (AckResponse, error) {
	var ack AckResponse
	data, err := json.Marshal(req)
	if err != nil {
		return ack, fmt.Errorf("failed to marshal request body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/taps", bytes.NewReader(data))
	if err != nil {
		return ack, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return ack, err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return ack, err
	}
	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		if err := json.Unmarshal(body, &ack); err != nil {
			ack = AckResponse{Status: "accepted", Duplicate: resp.StatusCode == http.StatusOK}
		}
		return ack, nil
	default:
		return ack, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}

func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
