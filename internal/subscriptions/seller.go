package subscriptions

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketbill-backend/internal/owners"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
)

// sellerStrategy bills a seller directly; there is no backing order.
type sellerStrategy struct {
	owners owners.Repository
}

func (sellerStrategy) kind() enums.OwnerKind { return enums.OwnerKindSeller }

func (sellerStrategy) targetName() string { return "seller id" }

func (st sellerStrategy) resolve(ctx context.Context, target uuid.UUID, in CreateInput) (*createTarget, error) {
	owner, err := st.owners.Find(ctx, enums.OwnerKindSeller, target)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load seller")
	}
	if owner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	if in.Value == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription value is required")
	}
	return &createTarget{
		owner:  owner,
		value:  *in.Value,
		cycle:  in.Cycle,
		name:   in.Name,
		lockID: target.String(),
	}, nil
}

func (sellerStrategy) findExisting(ctx context.Context, repo Repository, t *createTarget) (bool, error) {
	existing, err := repo.FindActiveByOwner(ctx, enums.OwnerKindSeller, t.owner.ID)
	return existing != nil, err
}
