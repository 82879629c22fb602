package subscriptions

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

const minCardDigits = 13

// cardHolderInfo builds the holder block from the explicit one when given,
// else from billing and store data. taxID replaces masked or invalid values.
func cardHolderInfo(billing types.BillingInfo, owner *owners.Owner, taxID string) (*asaas.CreditCardHolderInfo, error) {
	var store types.StoreInfo
	ownerName, ownerEmail, ownerPhone := "", "", ""
	if owner != nil {
		store = owner.StoreInfo
		ownerName, ownerEmail, ownerPhone = owner.Name, owner.Email, owner.Phone
	}

	src := types.CardHolderInfo{}
	if billing.CardHolderInfo != nil {
		src = *billing.CardHolderInfo
	}

	holder := &asaas.CreditCardHolderInfo{
		Name:              types.FirstNonEmpty(src.Name, billing.Name, store.Name, ownerName),
		Email:             types.FirstNonEmpty(src.Email, billing.Email, store.Email, ownerEmail),
		PostalCode:        format.DigitsOnly(types.FirstNonEmpty(src.PostalCode, billing.PostalCode, store.PostalCode)),
		AddressNumber:     types.FirstNonEmpty(src.AddressNumber, billing.AddressNumber, store.AddressNumber, "0"),
		AddressComplement: types.FirstNonEmpty(src.AddressComplement, billing.Complement, store.Complement),
	}
	if billing.CardHolderInfo == nil && (holder.Name == "" || holder.Email == "" || holder.PostalCode == "") {
		return nil, buildErr(BuildErrMissingCardHolder, "credit_card_holder_info",
			"credit card holder info is required for credit card payments")
	}
	if holder.Name == "" || holder.Email == "" {
		return nil, buildErr(BuildErrMissingCardHolder, "credit_card_holder_info",
			"credit card holder name and email are required")
	}

	if !validPostalCode(holder.PostalCode) {
		return nil, buildErr(BuildErrInvalidPostalCode, "postal_code",
			"postal code must have 8 digits and cannot be a placeholder")
	}

	phone := format.DigitsOnly(types.FirstNonEmpty(src.Phone, billing.Phone, store.Phone, ownerPhone))
	mobile := format.DigitsOnly(types.FirstNonEmpty(src.MobilePhone, billing.MobilePhone, store.MobilePhone))
	holder.Phone = types.FirstNonEmpty(phone, mobile)
	holder.MobilePhone = types.FirstNonEmpty(mobile, phone)

	holderTaxID := strings.TrimSpace(src.TaxID)
	if holderTaxID != "" && format.IsValidTaxID(holderTaxID) {
		holder.CpfCnpj = format.DigitsOnly(holderTaxID)
	} else {
		holder.CpfCnpj = taxID
	}
	if !format.IsValidTaxID(holder.CpfCnpj) {
		return nil, buildErr(BuildErrInvalidTaxID, "credit_card_holder_info.tax_id",
			"credit card holder tax id must contain 11 or 14 digits")
	}
	return holder, nil
}

// validPostalCode requires 8 digits that are not all the same digit.
func validPostalCode(digits string) bool {
	if len(digits) != 8 {
		return false
	}
	return strings.Count(digits, digits[:1]) != len(digits)
}

func validateCard(card *types.CreditCard) (*asaas.CreditCard, error) {
	if card == nil {
		return nil, buildErr(BuildErrInvalidCard, "credit_card", "credit card or credit card token is required")
	}

	raw := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(card.Number))
	if format.IsMasked(raw) {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.number", "credit card number is masked; send the full number or a token")
	}
	if raw == "" || format.DigitsOnly(raw) != raw {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.number", "credit card number must contain digits only")
	}
	if len(raw) < minCardDigits {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.number",
			"credit card number is truncated: got "+strconv.Itoa(len(raw))+" digits")
	}

	ccv := strings.TrimSpace(card.CCV)
	if len(ccv) < 3 || len(ccv) > 4 || format.DigitsOnly(ccv) != ccv {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.ccv", "credit card CVV must have 3 or 4 digits")
	}

	month, err := strconv.Atoi(strings.TrimSpace(card.ExpiryMonth))
	if err != nil || month < 1 || month > 12 {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.expiry_month", "credit card expiry month must be between 1 and 12")
	}

	year := strings.TrimSpace(card.ExpiryYear)
	if len(year) != 4 || format.DigitsOnly(year) != year {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.expiry_year", "credit card expiry year must have 4 digits")
	}

	holderName := strings.TrimSpace(card.HolderName)
	if countNonNumeric(holderName) < 2 {
		return nil, buildErr(BuildErrInvalidCard, "credit_card.holder_name", "credit card holder name must have at least 2 letters")
	}

	return &asaas.CreditCard{
		HolderName:  holderName,
		Number:      raw,
		ExpiryMonth: fmt.Sprintf("%02d", month),
		ExpiryYear:  year,
		CCV:         ccv,
	}, nil
}

func countNonNumeric(value string) int {
	n := 0
	for _, r := range value {
		if !unicode.IsDigit(r) && !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
