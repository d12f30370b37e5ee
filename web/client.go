package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"opecbrain/entity"
)

// Client talks to the API of a running instance, so that writes from the
// command line go through the same lock as the tray.
type Client struct {
	base string
	http *http.Client
}

func NewClient(addr string) *Client {
	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// AddRecord posts text (plain name or "name | status") with status as the
// fallback.
func (c *Client) AddRecord(ctx context.Context, text string, status entity.Status) (*entity.Record, error) {
	payload, err := json.Marshal(addRequest{Text: text, Status: string(status)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/records", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("AddRecord: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("AddRecord: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var rec entity.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("AddRecord: %w", err)
	}
	return &rec, nil
}

// Import sends records to the merge import of the running instance.
func (c *Client) Import(ctx context.Context, records []entity.Record) (int, int, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return 0, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/import", bytes.NewReader(payload))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("Import: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return 0, 0, fmt.Errorf("Import: %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var out struct {
		Added  int `json:"added"`
		Merged int `json:"merged"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, 0, fmt.Errorf("Import: %w", err)
	}
	return out.Added, out.Merged, nil
}
