package owners

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketbill-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/types"
)

func strPtr(v string) *string { return &v }

func TestFindByCustomerIDPrefersSellers(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := models.Seller{Name: "Loja", GatewayCustomerID: strPtr("cus_shared")}
	shopper := models.Shopper{Name: "Ana", GatewayCustomerID: strPtr("cus_shared")}
	other := models.Shopper{Name: "Bia", GatewayCustomerID: strPtr("cus_bia")}
	require.NoError(t, db.Create(&seller).Error)
	require.NoError(t, db.Create(&shopper).Error)
	require.NoError(t, db.Create(&other).Error)

	owner, err := repo.FindByCustomerID(ctx, "cus_shared")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, enums.OwnerKindSeller, owner.Kind)
	assert.Equal(t, seller.ID, owner.ID)

	owner, err = repo.FindByCustomerID(ctx, "cus_bia")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, enums.OwnerKindShopper, owner.Kind)
	assert.Equal(t, "shopper:"+other.ID.String(), owner.ExternalReference())

	owner, err = repo.FindByCustomerID(ctx, "cus_unknown")
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestFindParsesWrappedStoreInfo(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	id := uuid.New()

	require.NoError(t, db.Exec(
		`INSERT INTO sellers (id, name, store_info) VALUES (?, ?, ?)`,
		id.String(), "Loja", `"{\"tax_id\":\"12345678000199\",\"email\":\"loja@example.com\"}"`,
	).Error)

	owner, err := repo.Find(context.Background(), enums.OwnerKindSeller, id)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "12345678000199", owner.StoreInfo.TaxID)
	assert.Equal(t, "loja@example.com", owner.StoreInfo.Email)
}

func TestFindMissingOwnerReturnsNil(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	owner, err := repo.Find(context.Background(), enums.OwnerKindShopper, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, owner)

	_, err = repo.Find(context.Background(), enums.OwnerKind("admin"), uuid.New())
	require.Error(t, err)
}

func TestSaveGatewayCustomerID(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	shopper := models.Shopper{Name: "Ana", StoreInfo: types.StoreInfo{Name: "Ana"}}
	require.NoError(t, db.Create(&shopper).Error)

	require.NoError(t, repo.SaveGatewayCustomerID(ctx, enums.OwnerKindShopper, shopper.ID, "cus_new"))
	got, err := repo.FindShopper(ctx, shopper.ID)
	require.NoError(t, err)
	require.NotNil(t, got.GatewayCustomerID)
	assert.Equal(t, "cus_new", *got.GatewayCustomerID)

	err = repo.SaveGatewayCustomerID(ctx, enums.OwnerKindSeller, uuid.New(), "cus_x")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
