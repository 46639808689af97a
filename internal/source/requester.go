package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// requester issues GET requests that decode to a JSON array of records,
// keeping at least MinInterval between consecutive requests.
type requester struct {
	Client      *http.Client
	MinInterval time.Duration

	mu        sync.Mutex
	lastReqAt time.Time
}

func newRequester(timeout, minInterval time.Duration) *requester {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &requester{Client: &http.Client{Timeout: timeout}, MinInterval: minInterval}
}

func (r *requester) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sleepFor := time.Until(r.lastReqAt.Add(r.MinInterval)); sleepFor > 0 {
		timer := time.NewTimer(sleepFor)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	r.lastReqAt = time.Now()
	return nil
}

func (r *requester) getRecords(ctx context.Context, endpoint string, headers map[string]string) ([]map[string]any, error) {
	if r.Client == nil {
		r.Client = &http.Client{Timeout: 60 * time.Second}
	}
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("source http error: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// decodeRecords accepts a bare array, null, or an object wrapping the array
// under "data".
func decodeRecords(body []byte) ([]map[string]any, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if body[0] == '{' {
		var wrapped struct {
			Data []map[string]any `json:"data"`
		}
		if err := dec.Decode(&wrapped); err != nil {
			return nil, err
		}
		return wrapped.Data, nil
	}
	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
