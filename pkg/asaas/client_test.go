package asaas

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{APIKey: "root-key", BaseURL: srv.URL + "/v3/"}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresKeyAndBaseURL(t *testing.T) {
	if _, err := NewClient(Config{BaseURL: "http://x"}, nil, nil); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewClient(Config{APIKey: "k"}, nil, nil); err == nil {
		t.Fatalf("expected missing base url error")
	}
}

func TestCreateSubscriptionSendsPrunedPayloadAndAuthHeader(t *testing.T) {
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/subscriptions" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get(HeaderAccessToken); got != "root-key" {
			t.Fatalf("unexpected access token %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if strings.Contains(string(raw), `"value":"`) {
			t.Fatalf("value must be a bare number: %s", raw)
		}
		_, _ = w.Write([]byte(`{"id":"sub_1","status":"ACTIVE","value":123.45,"cycle":"MONTHLY","nextDueDate":"2024-02-01"}`))
	})

	sub, err := client.CreateSubscription(context.Background(), SubscriptionRequest{
		Customer:    "cus_1",
		BillingType: "BOLETO",
		Value:       NewAmount(decimal.RequireFromString("123.45")),
		NextDueDate: "2024-02-01",
		Cycle:       "MONTHLY",
		Discount:    map[string]any{"value": nil},
	})
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if sub.ID != "sub_1" || !sub.Value.Decimal().Equal(decimal.RequireFromString("123.45")) {
		t.Fatalf("unexpected subscription %+v", sub)
	}
	if gotBody["value"].(float64) != 123.45 {
		t.Fatalf("unexpected value %v", gotBody["value"])
	}
	for _, absent := range []string{"creditCard", "creditCardHolderInfo", "creditCardToken", "remoteIp", "description"} {
		if _, ok := gotBody[absent]; ok {
			t.Fatalf("%s should be omitted", absent)
		}
	}
	if discount, ok := gotBody["discount"].(map[string]any); !ok || len(discount) != 0 {
		t.Fatalf("expected nil discount value pruned, got %v", gotBody["discount"])
	}
}

func TestWithHeadersOverridesAccessToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get(HeaderAccessToken); got != "subaccount-key" {
			t.Fatalf("expected subaccount key, got %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"cus_9","cpfCnpj":"123.456.789-01"}`))
	})

	customer, err := client.GetCustomer(context.Background(), "cus_9", WithHeaders(map[string]string{HeaderAccessToken: "subaccount-key"}))
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if customer.TaxIDDigits() != "12345678901" {
		t.Fatalf("unexpected tax id %q", customer.TaxIDDigits())
	}
}

func TestErrorMessagePriority(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "joined descriptions", status: 400, body: `{"errors":[{"code":"a","description":"first"},{"code":"b","description":"second"}],"message":"ignored"}`, message: "first; second"},
		{name: "gateway message", status: 400, body: `{"message":"bad things"}`, message: "bad things"},
		{name: "status text", status: 503, body: `<html>`, message: "Service Unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.GetSubscription(context.Background(), "sub_1")
			apiErr, ok := AsAPIError(err)
			if !ok {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Message != tc.message || apiErr.Status != tc.status {
				t.Fatalf("got message %q status %d", apiErr.Message, apiErr.Status)
			}
		})
	}
}

func TestTransportFailureUsesOriginalError(t *testing.T) {
	client, err := NewClient(Config{APIKey: "k", BaseURL: "http://127.0.0.1:1"}, nil, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.GetCustomer(context.Background(), "cus_1")
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 0 || apiErr.Original == nil || apiErr.Message == "" {
		t.Fatalf("unexpected transport error %+v", apiErr)
	}
	if Classify(err) != ErrorKindUnavailable {
		t.Fatalf("expected unavailable kind, got %s", Classify(err))
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "removed pt", err: &APIError{Status: 400, Errors: []ErrorItem{{Code: "invalid_customer", Description: "Cliente removido."}}}, want: ErrorKindCustomerRemoved},
		{name: "removed en", err: &APIError{Status: 400, Errors: []ErrorItem{{Description: "The customer was deleted"}}}, want: ErrorKindCustomerRemoved},
		{name: "tax id", err: &APIError{Status: 400, Errors: []ErrorItem{{Code: "invalid_customer", Description: "Para criar esta cobrança é necessário preencher o CPF ou CNPJ do cliente."}}}, want: ErrorKindCustomerTaxID},
		{name: "not found", err: &APIError{Status: 404}, want: ErrorKindNotFound},
		{name: "unauthorized", err: &APIError{Status: 401}, want: ErrorKindUnauthorized},
		{name: "rate limited", err: &APIError{Status: 429}, want: ErrorKindRateLimited},
		{name: "server", err: &APIError{Status: 502}, want: ErrorKindUnavailable},
		{name: "validation", err: &APIError{Status: 400, Errors: []ErrorItem{{Description: "valor inválido"}}}, want: ErrorKindValidation},
		{name: "plain error", err: errors.New("boom"), want: ErrorKindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.err); got != tc.want {
				t.Fatalf("Classify = %s want %s", got, tc.want)
			}
		})
	}
}

func TestDeleteAndGetPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/v3/subscriptions/sub_1":
			_, _ = w.Write([]byte(`{"deleted":true,"id":"sub_1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v3/payments/pay_1":
			_, _ = w.Write([]byte(`{"id":"pay_1","customer":"cus_1","subscription":"sub_1","value":50,"netValue":48.01,"status":"RECEIVED"}`))
		default:
			t.Fatalf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	del, err := client.DeleteSubscription(context.Background(), "sub_1")
	if err != nil || !del.Deleted {
		t.Fatalf("DeleteSubscription: %+v %v", del, err)
	}
	payment, raw, err := client.GetPayment(context.Background(), "pay_1")
	if err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if payment.Subscription != "sub_1" || !payment.NetValue.Decimal().Equal(decimal.RequireFromString("48.01")) {
		t.Fatalf("unexpected payment %+v", payment)
	}
	if !strings.Contains(string(raw), `"pay_1"`) {
		t.Fatalf("raw snapshot missing id: %s", raw)
	}
}
