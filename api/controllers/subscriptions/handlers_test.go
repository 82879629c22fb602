package subscriptions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	subsvc "github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	"github.com/angelmondragon/marketbill-backend/pkg/asaas"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/pagination"
)

type stubService struct {
	kind enums.OwnerKind
	sub  *models.Subscription
	err  error

	createTarget uuid.UUID
	createInput  subsvc.CreateInput
	updateInput  subsvc.UpdateInput
	status       enums.SubscriptionStatus
	params       pagination.Params
	deleted      uuid.UUID
}

func (s *stubService) Kind() enums.OwnerKind { return s.kind }

func (s *stubService) Create(_ context.Context, target uuid.UUID, in subsvc.CreateInput) (*subsvc.CreateResult, error) {
	s.createTarget = target
	s.createInput = in
	if s.err != nil {
		return nil, s.err
	}
	return &subsvc.CreateResult{
		Subscription: s.sub,
		Gateway:      &asaas.Subscription{ID: s.sub.External(), Customer: "cus_1", Status: "ACTIVE", NextDueDate: "2025-06-10"},
	}, nil
}

func (s *stubService) Update(_ context.Context, _ uuid.UUID, in subsvc.UpdateInput) (*models.Subscription, error) {
	s.updateInput = in
	return s.sub, s.err
}

func (s *stubService) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func (s *stubService) UpdateStatusLocal(_ context.Context, _ uuid.UUID, status enums.SubscriptionStatus) (*models.Subscription, error) {
	s.status = status
	return s.sub, s.err
}

func (s *stubService) Get(context.Context, uuid.UUID) (*models.Subscription, error) {
	return s.sub, s.err
}

func (s *stubService) GetAll(_ context.Context, params pagination.Params) (*subsvc.Page, error) {
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return &subsvc.Page{Items: []models.Subscription{*s.sub}, NextCursor: "next"}, nil
}

func (s *stubService) GetByOwnerID(context.Context, uuid.UUID) ([]models.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []models.Subscription{*s.sub}, nil
}

func (s *stubService) GetByOrderID(context.Context, uuid.UUID) (*models.Subscription, error) {
	return s.sub, s.err
}

func (s *stubService) GetByExternalID(context.Context, string) (*models.Subscription, error) {
	return s.sub, s.err
}

func sampleSubscription() *models.Subscription {
	external := "sub_123"
	orderID := uuid.New()
	return &models.Subscription{
		ID:          uuid.New(),
		OwnerKind:   enums.OwnerKindShopper,
		OwnerID:     uuid.New(),
		OrderID:     &orderID,
		ExternalID:  &external,
		Name:        "Café mensal",
		Value:       decimal.RequireFromString("123.45"),
		Status:      enums.SubscriptionStatusPending,
		Cycle:       enums.BillingCycleMonthly,
		BillingType: enums.BillingTypeBoleto,
		NextDueDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		StartDate:   time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	}
}

func newRouter(svc *stubService) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test"})
	r := chi.NewRouter()
	r.Post("/orders/{orderId}/subscription", Create(svc, "orderId", logg))
	r.Get("/orders/{orderId}/subscription", GetByOrder(svc, logg))
	r.Get("/shopper-subscriptions", List(svc, logg))
	r.Get("/shopper-subscriptions/external/{externalId}", GetByExternal(svc, logg))
	r.Get("/shopper-subscriptions/{id}", Get(svc, logg))
	r.Patch("/shopper-subscriptions/{id}", Update(svc, logg))
	r.Delete("/shopper-subscriptions/{id}", Delete(svc, logg))
	r.Put("/shopper-subscriptions/{id}/status", UpdateStatus(svc, logg))
	r.Get("/shoppers/{shopperId}/subscriptions", ListByOwner(svc, "shopperId", logg))
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.RemoteAddr = "203.0.113.9:4321"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Error.Code, payload.Error.Message
}

func TestCreateMapsRequestAndReturns201(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	orderID := uuid.New()
	body := `{"name":"  Café mensal  ","value":"123.45","cycle":"mensal","billing":{"billing_type":"BOLETO","tax_id":"52998224725"}}`

	rec := serve(t, newRouter(svc), http.MethodPost, "/orders/"+orderID.String()+"/subscription", body)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, orderID, svc.createTarget)
	assert.Equal(t, "Café mensal", svc.createInput.Name)
	assert.Equal(t, "mensal", svc.createInput.Cycle)
	assert.True(t, svc.createInput.Value.Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, "203.0.113.9", svc.createInput.Billing.RemoteIP)

	var envelope struct {
		Data createResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "sub_123", envelope.Data.Subscription.ExternalID)
	assert.Equal(t, "2025-06-10", envelope.Data.Subscription.NextDueDate)
	assert.Equal(t, "pending", envelope.Data.Subscription.Status)
	require.NotNil(t, envelope.Data.Gateway)
	assert.Equal(t, "cus_1", envelope.Data.Gateway.Customer)
}

func TestCreateRequiresBillingType(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	rec := serve(t, newRouter(svc), http.MethodPost, "/orders/"+uuid.NewString()+"/subscription", `{"billing":{}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, _ := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeValidation), code)
	assert.Equal(t, uuid.Nil, svc.createTarget)
}

func TestCreateRejectsInvalidOrderID(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	rec := serve(t, newRouter(svc), http.MethodPost, "/orders/not-a-uuid/subscription", `{"billing":{"billing_type":"PIX"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRendersServiceErrors(t *testing.T) {
	svc := &stubService{
		kind: enums.OwnerKindShopper,
		sub:  sampleSubscription(),
		err:  pkgerrors.New(pkgerrors.CodeConflict, "subscription already exists for this order"),
	}
	rec := serve(t, newRouter(svc), http.MethodPost, "/orders/"+uuid.NewString()+"/subscription", `{"billing":{"billing_type":"PIX"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, msg := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeConflict), code)
	assert.Equal(t, "subscription already exists for this order", msg)
}

func TestCreatePropagatesGatewayStatus(t *testing.T) {
	svc := &stubService{
		kind: enums.OwnerKindShopper,
		sub:  sampleSubscription(),
		err:  pkgerrors.New(pkgerrors.CodeGateway, "O CEP informado é inválido.").WithStatus(http.StatusBadRequest),
	}
	rec := serve(t, newRouter(svc), http.MethodPost, "/orders/"+uuid.NewString()+"/subscription", `{"billing":{"billing_type":"PIX"}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	code, msg := decodeError(t, rec)
	assert.Equal(t, string(pkgerrors.CodeGateway), code)
	assert.Equal(t, "O CEP informado é inválido.", msg)
}

func TestListPassesPagination(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	rec := serve(t, newRouter(svc), http.MethodGet, "/shopper-subscriptions?limit=10&cursor=abc", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pagination.Params{Limit: 10, Cursor: "abc"}, svc.params)
	var envelope struct {
		Data listResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Items, 1)
	assert.Equal(t, "next", envelope.Data.NextCursor)
}

func TestListRejectsLimitOutOfRange(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	rec := serve(t, newRouter(svc), http.MethodGet, "/shopper-subscriptions?limit=1000", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadRoutes(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	router := newRouter(svc)
	for _, path := range []string{
		"/orders/" + uuid.NewString() + "/subscription",
		"/shopper-subscriptions/" + uuid.NewString(),
		"/shopper-subscriptions/external/sub_123",
		"/shoppers/" + uuid.NewString() + "/subscriptions",
	} {
		rec := serve(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGetNotFound(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, err: pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")}
	rec := serve(t, newRouter(svc), http.MethodGet, "/shopper-subscriptions/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateValidatesStatus(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	router := newRouter(svc)

	rec := serve(t, router, http.MethodPatch, "/shopper-subscriptions/"+uuid.NewString(), `{"status":"paused"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, router, http.MethodPatch, "/shopper-subscriptions/"+uuid.NewString(), `{"value":"150.00","cycle":"YEARLY"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updateInput.Value)
	assert.True(t, svc.updateInput.Value.Equal(decimal.RequireFromString("150")))
	assert.Equal(t, "YEARLY", *svc.updateInput.Cycle)
	assert.Nil(t, svc.updateInput.Status)
}

func TestUpdateStatusLocal(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	rec := serve(t, newRouter(svc), http.MethodPut, "/shopper-subscriptions/"+uuid.NewString()+"/status", `{"status":"overdue"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, enums.SubscriptionStatusOverdue, svc.status)
}

func TestDelete(t *testing.T) {
	svc := &stubService{kind: enums.OwnerKindShopper, sub: sampleSubscription()}
	id := uuid.New()
	rec := serve(t, newRouter(svc), http.MethodDelete, "/shopper-subscriptions/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, svc.deleted)
}
