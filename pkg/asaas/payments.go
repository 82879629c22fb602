package asaas

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// GetPayment returns the parsed payment and its raw JSON for snapshots.
func (c *Client) GetPayment(ctx context.Context, id string, opts ...CallOption) (*Payment, json.RawMessage, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil, errors.New("payment id is required")
	}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "payments/"+url.PathEscape(id), nil, nil, &raw, opts); err != nil {
		return nil, nil, err
	}
	var out Payment
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, nil, &APIError{Message: "decode payment: " + err.Error(), Original: err, Method: http.MethodGet, Endpoint: "payments/" + id}
	}
	return &out, raw, nil
}
