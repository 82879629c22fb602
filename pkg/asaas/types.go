package asaas

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketbill-backend/pkg/format"
)

// Amount marshals a decimal as a bare JSON number, the shape the gateway expects.
type Amount decimal.Decimal

func NewAmount(d decimal.Decimal) Amount {
	return Amount(d)
}

func (a Amount) Decimal() decimal.Decimal {
	return decimal.Decimal(a)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Amount(d)
	return nil
}

type CustomerRequest struct {
	Name                 string `json:"name,omitempty"`
	Email                string `json:"email,omitempty"`
	CpfCnpj              string `json:"cpfCnpj,omitempty"`
	PersonType           string `json:"personType,omitempty"`
	Phone                string `json:"phone,omitempty"`
	MobilePhone          string `json:"mobilePhone,omitempty"`
	PostalCode           string `json:"postalCode,omitempty"`
	Address              string `json:"address,omitempty"`
	AddressNumber        string `json:"addressNumber,omitempty"`
	Complement           string `json:"complement,omitempty"`
	Province             string `json:"province,omitempty"`
	ExternalReference    string `json:"externalReference,omitempty"`
	NotificationDisabled bool   `json:"notificationDisabled,omitempty"`
}

type Customer struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	CpfCnpj           string `json:"cpfCnpj"`
	PersonType        string `json:"personType"`
	Phone             string `json:"phone"`
	MobilePhone       string `json:"mobilePhone"`
	PostalCode        string `json:"postalCode"`
	Address           string `json:"address"`
	AddressNumber     string `json:"addressNumber"`
	Complement        string `json:"complement"`
	Province          string `json:"province"`
	ExternalReference string `json:"externalReference"`
	Deleted           bool   `json:"deleted"`
}

// TaxIDDigits returns the customer's tax id stripped of punctuation.
func (c *Customer) TaxIDDigits() string {
	if c == nil {
		return ""
	}
	return format.DigitsOnly(c.CpfCnpj)
}

type CreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CCV         string `json:"ccv"`
}

type CreditCardHolderInfo struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	CpfCnpj           string `json:"cpfCnpj"`
	PostalCode        string `json:"postalCode"`
	AddressNumber     string `json:"addressNumber"`
	AddressComplement string `json:"addressComplement,omitempty"`
	Phone             string `json:"phone,omitempty"`
	MobilePhone       string `json:"mobilePhone,omitempty"`
}

type SubscriptionRequest struct {
	Customer             string                `json:"customer"`
	BillingType          string                `json:"billingType"`
	Value                Amount                `json:"value"`
	NextDueDate          string                `json:"nextDueDate"`
	Cycle                string                `json:"cycle"`
	Description          string                `json:"description,omitempty"`
	ExternalReference    string                `json:"externalReference,omitempty"`
	EndDate              string                `json:"endDate,omitempty"`
	MaxPayments          *int                  `json:"maxPayments,omitempty"`
	Discount             map[string]any        `json:"discount,omitempty"`
	Interest             map[string]any        `json:"interest,omitempty"`
	Fine                 map[string]any        `json:"fine,omitempty"`
	Split                []map[string]any      `json:"split,omitempty"`
	CreditCard           *CreditCard           `json:"creditCard,omitempty"`
	CreditCardHolderInfo *CreditCardHolderInfo `json:"creditCardHolderInfo,omitempty"`
	CreditCardToken      string                `json:"creditCardToken,omitempty"`
	RemoteIP             string                `json:"remoteIp,omitempty"`
}

// Payload returns the request as the pruned JSON object actually sent.
func (r SubscriptionRequest) Payload() (map[string]any, error) {
	return format.PruneJSON(r)
}

type SubscriptionUpdateRequest struct {
	Value                 *Amount `json:"value,omitempty"`
	NextDueDate           string  `json:"nextDueDate,omitempty"`
	Cycle                 string  `json:"cycle,omitempty"`
	Description           string  `json:"description,omitempty"`
	EndDate               string  `json:"endDate,omitempty"`
	MaxPayments           *int    `json:"maxPayments,omitempty"`
	BillingType           string  `json:"billingType,omitempty"`
	Status                string  `json:"status,omitempty"`
	UpdatePendingPayments *bool   `json:"updatePendingPayments,omitempty"`
}

// IsEmpty reports whether no field would be sent.
func (r SubscriptionUpdateRequest) IsEmpty() bool {
	return r.Value == nil && r.NextDueDate == "" && r.Cycle == "" && r.Description == "" &&
		r.EndDate == "" && r.MaxPayments == nil && r.BillingType == "" && r.Status == ""
}

type Subscription struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	BillingType       string `json:"billingType"`
	Cycle             string `json:"cycle"`
	Value             Amount `json:"value"`
	NextDueDate       string `json:"nextDueDate"`
	EndDate           string `json:"endDate"`
	Description       string `json:"description"`
	Status            string `json:"status"`
	ExternalReference string `json:"externalReference"`
	DateCreated       string `json:"dateCreated"`
	Deleted           bool   `json:"deleted"`
}

type Payment struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Subscription      string `json:"subscription"`
	Value             Amount `json:"value"`
	NetValue          Amount `json:"netValue"`
	Status            string `json:"status"`
	BillingType       string `json:"billingType"`
	DueDate           string `json:"dueDate"`
	PaymentDate       string `json:"paymentDate"`
	ClientPaymentDate string `json:"clientPaymentDate"`
	ConfirmedDate     string `json:"confirmedDate"`
	InvoiceURL        string `json:"invoiceUrl"`
	Description       string `json:"description"`
	ExternalReference string `json:"externalReference"`
	Deleted           bool   `json:"deleted"`
}

type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}
