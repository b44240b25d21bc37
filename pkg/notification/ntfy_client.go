package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultServer is the public ntfy instance.
const DefaultServer = "https://ntfy.sh"

const requestTimeout = 10 * time.Second

// NtfyClient publishes notifications to an ntfy topic using the JSON
// publishing API.
type NtfyClient struct {
	server     string
	topic      string
	httpClient *http.Client
}

// ntfyMessage is the JSON body accepted at the server root.
type ntfyMessage struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title,omitempty"`
	Message  string   `json:"message"`
	Tags     []string `json:"tags,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

// NewNtfyClient creates a client for topic on server. An empty server means
// DefaultServer.
func NewNtfyClient(server, topic string) *NtfyClient {
	if server == "" {
		server = DefaultServer
	}
	return &NtfyClient{
		server:     strings.TrimRight(server, "/"),
		topic:      topic,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Send implements Notifier.
func (c *NtfyClient) Send(n Notification) error {
	body, err := json.Marshal(ntfyMessage{
		Topic:    c.topic,
		Title:    n.Title,
		Message:  n.Message,
		Tags:     n.Tags,
		Priority: n.Priority,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.server+"/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
