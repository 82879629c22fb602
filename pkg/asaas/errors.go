package asaas

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorItem is a single entry of the gateway's structured error list.
type ErrorItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// APIError is returned for every non-2xx response and every transport failure.
type APIError struct {
	// Message follows the priority: joined error descriptions, the gateway's
	// own message, the HTTP status text, then the transport error.
	Message  string
	Status   int
	Errors   []ErrorItem
	Original error
	Method   string
	Endpoint string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status > 0 {
		return fmt.Sprintf("asaas %s %s: %s (status %d)", e.Method, e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("asaas %s %s: %s", e.Method, e.Endpoint, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Original
}

// Upstream reports the failed endpoint and its HTTP status. Status 0 means
// no response was received.
func (e *APIError) Upstream() (string, int) {
	if e == nil {
		return "", 0
	}
	return strings.TrimSpace(e.Method + " " + e.Endpoint), e.Status
}

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type errorBody struct {
	Errors  []ErrorItem `json:"errors"`
	Message string      `json:"message"`
}

func buildMessage(status int, body errorBody, original error) string {
	descriptions := make([]string, 0, len(body.Errors))
	for _, item := range body.Errors {
		if d := strings.TrimSpace(item.Description); d != "" {
			descriptions = append(descriptions, d)
		}
	}
	if len(descriptions) > 0 {
		return strings.Join(descriptions, "; ")
	}
	if m := strings.TrimSpace(body.Message); m != "" {
		return m
	}
	if status > 0 {
		if text := http.StatusText(status); text != "" {
			return text
		}
	}
	if original != nil {
		return original.Error()
	}
	return "unknown gateway error"
}

// ErrorKind is the classification the subscription self-heal policy branches on.
type ErrorKind int

const (
	ErrorKindUnknown ErrorKind = iota
	ErrorKindCustomerRemoved
	ErrorKindCustomerTaxID
	ErrorKindNotFound
	ErrorKindUnauthorized
	ErrorKindValidation
	ErrorKindRateLimited
	ErrorKindUnavailable
)

var errorKindNames = map[ErrorKind]string{
	ErrorKindUnknown:         "unknown",
	ErrorKindCustomerRemoved: "customer_removed",
	ErrorKindCustomerTaxID:   "customer_tax_id",
	ErrorKindNotFound:        "not_found",
	ErrorKindUnauthorized:    "unauthorized",
	ErrorKindValidation:      "validation",
	ErrorKindRateLimited:     "rate_limited",
	ErrorKindUnavailable:     "unavailable",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown"
}

var removedMarkers = []string{
	"cliente removido",
	"customer removed",
	"customer was removed",
	"customer has been removed",
	"customer deleted",
}

var taxIDMarkers = []string{
	"cpfcnpj",
	"cpf/cnpj",
	"cpf ou cnpj",
	"cpf",
	"cnpj",
	"tax id",
	"taxid",
}

// Classify derives an ErrorKind once from the structured error list and status.
func Classify(err error) ErrorKind {
	if err == nil {
		return ErrorKindUnknown
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return ErrorKindUnknown
	}

	texts := make([]string, 0, len(apiErr.Errors)+1)
	for _, item := range apiErr.Errors {
		texts = append(texts, strings.ToLower(item.Code+" "+item.Description))
	}
	texts = append(texts, strings.ToLower(apiErr.Message))

	if matchesAny(texts, removedMarkers) || mentionsRemovedCustomer(texts) {
		return ErrorKindCustomerRemoved
	}
	if apiErr.Status == http.StatusBadRequest && matchesAny(texts, taxIDMarkers) {
		return ErrorKindCustomerTaxID
	}

	switch {
	case apiErr.Status == 0:
		return ErrorKindUnavailable
	case apiErr.Status == http.StatusNotFound:
		return ErrorKindNotFound
	case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
		return ErrorKindUnauthorized
	case apiErr.Status == http.StatusTooManyRequests:
		return ErrorKindRateLimited
	case apiErr.Status >= http.StatusInternalServerError:
		return ErrorKindUnavailable
	case apiErr.Status >= http.StatusBadRequest:
		return ErrorKindValidation
	}
	return ErrorKindUnknown
}

func matchesAny(texts, markers []string) bool {
	for _, text := range texts {
		for _, marker := range markers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}

func mentionsRemovedCustomer(texts []string) bool {
	for _, text := range texts {
		if !strings.Contains(text, "client") && !strings.Contains(text, "customer") {
			continue
		}
		if strings.Contains(text, "removid") || strings.Contains(text, "excluíd") || strings.Contains(text, "deleted") {
			return true
		}
	}
	return false
}
