package types

import "strings"

// CreditCard is a raw card as typed by the customer.
type CreditCard struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CCV         string `json:"ccv"`
}

// CardHolderInfo is the billing identity attached to a card charge.
type CardHolderInfo struct {
	Name              string `json:"name"`
	Email             string `json:"email" validate:"omitempty,email"`
	TaxID             string `json:"tax_id"`
	PostalCode        string `json:"postal_code"`
	AddressNumber     string `json:"address_number"`
	AddressComplement string `json:"address_complement,omitempty"`
	Phone             string `json:"phone,omitempty"`
	MobilePhone       string `json:"mobile_phone,omitempty"`
}

// BillingInfo carries payer data supplied with a subscription request. Any
// field left empty falls back to the owner's stored StoreInfo.
type BillingInfo struct {
	BillingType     string          `json:"billing_type" validate:"required"`
	TaxID           string          `json:"tax_id,omitempty"`
	Name            string          `json:"name,omitempty"`
	Email           string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone           string          `json:"phone,omitempty"`
	MobilePhone     string          `json:"mobile_phone,omitempty"`
	PostalCode      string          `json:"postal_code,omitempty"`
	Address         string          `json:"address,omitempty"`
	AddressNumber   string          `json:"address_number,omitempty"`
	Complement      string          `json:"complement,omitempty"`
	Province        string          `json:"province,omitempty"`
	RemoteIP        string          `json:"remote_ip,omitempty"`
	CreditCard      *CreditCard     `json:"credit_card,omitempty"`
	CardHolderInfo  *CardHolderInfo `json:"credit_card_holder_info,omitempty"`
	CreditCardToken string          `json:"credit_card_token,omitempty"`
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
