package owners

import (
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

// Owner is the billing view of a seller or shopper.
type Owner struct {
	Kind              enums.OwnerKind
	ID                uuid.UUID
	Name              string
	Email             string
	Phone             string
	TaxID             string
	StoreInfo         types.StoreInfo
	GatewayCustomerID string
}

// ExternalReference is the stable gateway reference for the owner.
func (o *Owner) ExternalReference() string {
	return string(o.Kind) + ":" + o.ID.String()
}

// FromSeller adapts a seller row.
func FromSeller(s *models.Seller) *Owner {
	if s == nil {
		return nil
	}
	return &Owner{
		Kind:              enums.OwnerKindSeller,
		ID:                s.ID,
		Name:              s.Name,
		Email:             deref(s.Email),
		Phone:             deref(s.Phone),
		TaxID:             deref(s.TaxID),
		StoreInfo:         s.StoreInfo,
		GatewayCustomerID: deref(s.GatewayCustomerID),
	}
}

// FromShopper adapts a shopper row.
func FromShopper(s *models.Shopper) *Owner {
	if s == nil {
		return nil
	}
	return &Owner{
		Kind:              enums.OwnerKindShopper,
		ID:                s.ID,
		Name:              s.Name,
		Email:             deref(s.Email),
		Phone:             deref(s.Phone),
		TaxID:             deref(s.TaxID),
		StoreInfo:         s.StoreInfo,
		GatewayCustomerID: deref(s.GatewayCustomerID),
	}
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
