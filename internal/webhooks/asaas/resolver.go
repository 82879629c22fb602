package asaaswebhook

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

var ownerRefPattern = regexp.MustCompile(`(?i)(?:\b(seller|shopper)\b[^0-9a-f]{0,16})?([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})`)

// Resolution names the chain step that matched.
type Resolution string

const (
	ResolvedByCustomer     Resolution = "customer"
	ResolvedBySubscription Resolution = "subscription"
	ResolvedByDescription  Resolution = "description"
)

type resolver struct {
	owners owners.Repository
	subs   subscriptions.Repository
}

// resolve finds the local subscription a payment belongs to: by gateway
// customer, then by gateway subscription id, then by an owner reference in
// the external reference or description. nil means unassociated.
func (r resolver) resolve(ctx context.Context, p *asaas.Payment) (*models.Subscription, Resolution, error) {
	if customerID := strings.TrimSpace(p.Customer); customerID != "" {
		owner, err := r.owners.FindByCustomerID(ctx, customerID)
		if err != nil {
			return nil, "", err
		}
		if owner != nil {
			sub, err := r.forOwner(ctx, owner.Kind, owner.ID, p.Subscription)
			if err != nil || sub != nil {
				return sub, ResolvedByCustomer, err
			}
		}
	}

	if externalID := strings.TrimSpace(p.Subscription); externalID != "" {
		sub, err := r.subs.FindByExternalID(ctx, externalID, true)
		if err != nil {
			return nil, "", err
		}
		if sub != nil {
			return sub, ResolvedBySubscription, nil
		}
	}

	for _, text := range []string{p.ExternalReference, p.Description} {
		kind, id, ok := parseOwnerRef(text)
		if !ok {
			continue
		}
		kinds := []enums.OwnerKind{enums.OwnerKindSeller, enums.OwnerKindShopper}
		if kind != "" {
			kinds = []enums.OwnerKind{kind}
		}
		for _, k := range kinds {
			owner, err := r.owners.Find(ctx, k, id)
			if err != nil {
				return nil, "", err
			}
			if owner == nil {
				continue
			}
			sub, err := r.forOwner(ctx, owner.Kind, owner.ID, p.Subscription)
			if err != nil || sub != nil {
				return sub, ResolvedByDescription, err
			}
		}
	}
	return nil, "", nil
}

// forOwner prefers the subscription named by the payment when it belongs to
// the owner, else the owner's most recent live subscription.
func (r resolver) forOwner(ctx context.Context, kind enums.OwnerKind, ownerID uuid.UUID, externalID string) (*models.Subscription, error) {
	if externalID = strings.TrimSpace(externalID); externalID != "" {
		sub, err := r.subs.FindByExternalID(ctx, externalID, true)
		if err != nil {
			return nil, err
		}
		if sub != nil && sub.OwnerKind == kind && sub.OwnerID == ownerID {
			return sub, nil
		}
	}
	subs, err := r.subs.ListByOwner(ctx, kind, ownerID)
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return &subs[0], nil
}

// parseOwnerRef reads "seller:<uuid>", "shopper <uuid>" or a bare uuid.
func parseOwnerRef(text string) (enums.OwnerKind, uuid.UUID, bool) {
	m := ownerRefPattern.FindStringSubmatch(text)
	if m == nil {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(m[2])
	if err != nil {
		return "", uuid.Nil, false
	}
	return enums.OwnerKind(strings.ToLower(m[1])), id, true
}
