package sift

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one tracking call. Event dispatch blocks the
// triggering request, so the bound stays tight.
const DefaultTimeout = 2 * time.Second

const defaultBaseURL = "https://api.sift.com/v205"

// Event names in the vendor vocabulary.
const (
	EventLogin              = "$login"
	EventLogout             = "$logout"
	EventCreateAccount      = "$create_account"
	EventUpdateAccount      = "$update_account"
	EventAddItemToCart      = "$add_item_to_cart"
	EventRemoveItemFromCart = "$remove_item_from_cart"
)

// Login status values.
const (
	LoginStatusSuccess = "$success"
	LoginStatusFailure = "$failure"
)

// Client is a thin wrapper over the events endpoint. One call per event, no
// retries.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
}

// Track submits one event with its property map. When returnScore is set the
// response carries the labeled risk-score data. The returned Response must
// be checked for a non-zero Status; HTTP-level success does not mean the
// event was accepted.
func (c *Client) Track(ctx context.Context, event string, properties map[string]any, returnScore bool) (*Response, error) {
	if c.apiKey == "" {
		return nil, errors.New("sift api key is required")
	}

	body := make(map[string]any, len(properties)+2)
	for k, v := range properties {
		body[k] = v
	}
	body["$type"] = event
	body["$api_key"] = c.apiKey

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/events"
	if returnScore {
		url += "?return_score=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, errors.New("sift_response_invalid")
	}
	out.HTTPStatus = resp.StatusCode
	return &out, nil
}
