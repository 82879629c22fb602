package payments

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
)

// Owner is the subscription a payment belongs to.
type Owner struct {
	Type enums.PaymentOwnerType
	ID   uuid.UUID
}

// OwnerOf returns the payment owner for a local subscription.
func OwnerOf(sub *models.Subscription) Owner {
	return Owner{Type: sub.OwnerKind.PaymentOwnerType(), ID: sub.ID}
}

// FromGateway maps a gateway payment onto the local row. raw is stored as the
// transaction snapshot after redaction.
func FromGateway(p *asaas.Payment, raw json.RawMessage, owner Owner) *models.Payment {
	row := &models.Payment{
		ExternalID:            p.ID,
		OwnerType:             owner.Type,
		OwnerID:               owner.ID,
		GatewaySubscriptionID: optional(p.Subscription),
		GatewayCustomerID:     optional(p.Customer),
		Status:                format.GatewayPaymentStatusToLocal(p.Status),
		BillingType:           optional(p.BillingType),
		Value:                 p.Value.Decimal(),
		InvoiceURL:            optional(p.InvoiceURL),
		Description:           optional(p.Description),
		RawTransaction:        snapshot(raw),
	}
	if net := p.NetValue.Decimal(); !net.IsZero() {
		row.NetValue = &net
	}
	if due, err := format.ParseDate(p.DueDate); err == nil {
		row.DueDate = &due
	}
	paid := p.PaymentDate
	if paid == "" {
		paid = p.ClientPaymentDate
	}
	if paid == "" {
		paid = p.ConfirmedDate
	}
	if paidAt, err := format.ParseDate(paid); err == nil {
		row.PaymentDate = &paidAt
	}
	return row
}

func snapshot(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 {
		return datatypes.JSON("{}")
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return datatypes.JSON("{}")
	}
	redacted, err := json.Marshal(format.RedactSensitive(decoded))
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(redacted)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
