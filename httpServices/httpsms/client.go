package httpsms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.httpsms.com"

// Client talks to the httpSMS message-send API. One sending attempt is
// bounded by the client timeout; delivery failure is reported through
// SendOutcome, a returned error means the request never completed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
}

// NewClientWithBaseURL points the client at a non-default API host.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = baseURL
	return c
}

type sendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Content string `json:"content"`
}

// errorResponse mirrors the API's failure payload. Field-level errors
// come back under data; an entry for "from" means the sending identity
// itself was rejected.
type errorResponse struct {
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

// SendOutcome is the result of a completed send request.
type SendOutcome struct {
	StatusCode   int
	Delivered    bool
	Body         string
	FromRejected bool
}

// SendText submits one message from the given sender identity.
func (c *Client) SendText(to, from, content string) (*SendOutcome, error) {
	body, err := json.Marshal(sendRequest{To: to, From: from, Content: content})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/messages/send", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("httpsms request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	outcome := &SendOutcome{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		outcome.Delivered = true
		return outcome, nil
	}

	var apiErr errorResponse
	if err := json.Unmarshal(respBody, &apiErr); err == nil {
		outcome.FromRejected = fieldError(apiErr.Data, "from")
	}

	return outcome, nil
}

// fieldError reports whether the failure payload carries a non-empty
// error for the named field. A null or empty entry is not a field error;
// only a populated one marks the sending identity as rejected.
func fieldError(data map[string]interface{}, field string) bool {
	switch v := data[field].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return true
	}
}
