package sift

import "encoding/json"

// Response is the body returned by the events endpoint. Status zero means
// the event was accepted; anything else carries the API error in
// ErrorMessage.
type Response struct {
	Status        int             `json:"status"`
	ErrorMessage  string          `json:"error_message"`
	Time          int64           `json:"time"`
	Request       string          `json:"request"`
	ScoreResponse json.RawMessage `json:"score_response,omitempty"`

	HTTPStatus int `json:"-"`
}

// OK reports whether the API accepted the event.
func (r *Response) OK() bool {
	return r != nil && r.Status == 0
}
