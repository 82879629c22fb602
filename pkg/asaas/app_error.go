package asaas

import (
	"net/http"

	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
)

// GatewayErrorDetails is attached to GATEWAY_ERROR responses.
type GatewayErrorDetails struct {
	Status  int         `json:"status,omitempty"`
	Errors  []ErrorItem `json:"errors,omitempty"`
	Payload any         `json:"payload,omitempty"`
}

// ToAppError converts a gateway failure into a typed application error. The
// HTTP status mirrors the gateway's when one was returned. payload is the
// request that was sent; it is redacted before being attached.
func ToAppError(err error, payload any) *pkgerrors.Error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway request failed")
	}

	details := GatewayErrorDetails{
		Status: apiErr.Status,
		Errors: apiErr.Errors,
	}
	if payload != nil {
		details.Payload = format.RedactSensitive(payload)
	}

	out := pkgerrors.Wrap(pkgerrors.CodeGateway, err, apiErr.Message).WithDetails(details)
	if apiErr.Status >= http.StatusBadRequest {
		out = out.WithStatus(apiErr.Status)
	}
	return out
}
