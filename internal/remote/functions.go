package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

// Functions invokes named serverless endpoints on the hosted backend.
type Functions interface {
	Invoke(ctx context.Context, name string, body any, out any) error
}

type HTTPFunctions struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPFunctions(baseURL, token string, baseLog *logger.Logger) *HTTPFunctions {
	return &HTTPFunctions{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        baseLog.With("client", "HTTPFunctions"),
	}
}

func (f *HTTPFunctions) Invoke(ctx context.Context, name string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode function body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/"+name, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("function %q call failed: %w", name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("function %q read failed: %w", name, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("function %q returned status %d: %s", name, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("function %q returned unparseable body: %w", name, err)
	}
	return nil
}
