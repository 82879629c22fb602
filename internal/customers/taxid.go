package customers

import (
	"strings"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

const (
	msgTaxIDMissing = "tax id (CPF/CNPJ) is required to create a subscription"
	msgTaxIDFormat  = "tax id (CPF/CNPJ) must contain 11 or 14 digits"
)

// ResolveTaxID picks the tax id by priority: billing info, the owner's store
// info, the owner's own record, then the card holder info. Masked values are
// never used. The result is digits only.
func ResolveTaxID(owner *owners.Owner, billing types.BillingInfo) (string, error) {
	candidates := []string{billing.TaxID}
	if owner != nil {
		candidates = append(candidates, owner.StoreInfo.TaxID, owner.TaxID)
	}
	if billing.CardHolderInfo != nil {
		candidates = append(candidates, billing.CardHolderInfo.TaxID)
	}

	seen := false
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" || format.IsMasked(candidate) {
			continue
		}
		seen = true
		if format.IsValidTaxID(candidate) {
			return format.DigitsOnly(candidate), nil
		}
	}
	if seen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, msgTaxIDFormat)
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, msgTaxIDMissing)
}
