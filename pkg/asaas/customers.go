package asaas

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

func (c *Client) CreateCustomer(ctx context.Context, req CustomerRequest, opts ...CallOption) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "customers", nil, req, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCustomer returns soft-deleted customers too; callers must check Deleted.
func (c *Client) GetCustomer(ctx context.Context, id string, opts ...CallOption) (*Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("customer id is required")
	}
	var out Customer
	if err := c.do(ctx, http.MethodGet, "customers/"+url.PathEscape(id), nil, nil, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, req CustomerRequest, opts ...CallOption) (*Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("customer id is required")
	}
	var out Customer
	if err := c.do(ctx, http.MethodPut, "customers/"+url.PathEscape(id), nil, req, &out, opts); err != nil {
		return nil, err
	}
	return &out, nil
}
