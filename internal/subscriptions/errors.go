package subscriptions

import (
	"errors"
	"fmt"

	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
)

// BuildErrorKind classifies payload construction failures.
type BuildErrorKind string

const (
	BuildErrInvalidValue       BuildErrorKind = "invalid_value"
	BuildErrInvalidBillingType BuildErrorKind = "invalid_billing_type"
	BuildErrInvalidPostalCode  BuildErrorKind = "invalid_postal_code"
	BuildErrMissingRemoteIP    BuildErrorKind = "missing_remote_ip"
	BuildErrMissingCardHolder  BuildErrorKind = "missing_card_holder"
	BuildErrInvalidCard        BuildErrorKind = "invalid_card"
	BuildErrInvalidTaxID       BuildErrorKind = "invalid_tax_id"
	BuildErrDateFormat         BuildErrorKind = "date_format"
)

// BuildError is returned by the payload builder for input it cannot turn
// into a gateway request.
type BuildError struct {
	Kind    BuildErrorKind
	Field   string
	Message string
	Err     error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func buildErr(kind BuildErrorKind, field, message string) *BuildError {
	return &BuildError{Kind: kind, Field: field, Message: message}
}

// buildFailure maps builder errors to API errors. Input problems keep their
// message as a 400; date formatting and anything unexpected become a 500.
func buildFailure(err error) *pkgerrors.Error {
	var be *BuildError
	if !errors.As(err, &be) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "internal server error")
	}
	if be.Kind == BuildErrDateFormat {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "internal server error").
			WithDetails(map[string]string{"field": be.Field})
	}
	out := pkgerrors.Wrap(pkgerrors.CodeValidation, err, be.Message)
	if be.Field != "" {
		out = out.WithDetails(map[string]string{"field": be.Field, "reason": string(be.Kind)})
	}
	return out
}
