package asaas

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) CreateSubscription(ctx context.Context, req SubscriptionRequest, opts ...CallOption) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPost, "subscriptions", nil, req, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSubscription(ctx context.Context, id string, opts ...CallOption) (*Subscription, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("subscription id is required")
	}
	var out Subscription
	if err := c.do(ctx, http.MethodGet, "subscriptions/"+url.PathEscape(id), nil, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateSubscription(ctx context.Context, id string, req SubscriptionUpdateRequest, opts ...CallOption) (*Subscription, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("subscription id is required")
	}
	var out Subscription
	if err := c.do(ctx, http.MethodPut, "subscriptions/"+url.PathEscape(id), nil, req, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSubscription cancels the subscription at the gateway. The gateway
// keeps the record and reports it with deleted=true afterwards.
func (c *Client) DeleteSubscription(ctx context.Context, id string, opts ...CallOption) (*DeleteResponse, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("subscription id is required")
	}
	var out DeleteResponse
	if err := c.do(ctx, http.MethodDelete, "subscriptions/"+url.PathEscape(id), nil, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}
