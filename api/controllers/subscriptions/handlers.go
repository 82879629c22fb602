package subscriptions

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketbill-backend/api/middleware"
	"github.com/angelmondragon/marketbill-backend/api/responses"
	"github.com/angelmondragon/marketbill-backend/api/validators"
	subsvc "github.com/angelmondragon/marketbill-backend/internal/subscriptions"
	"github.com/angelmondragon/marketbill-backend/pkg/db/models"
	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketbill-backend/pkg/errors"
	"github.com/angelmondragon/marketbill-backend/pkg/logger"
	"github.com/angelmondragon/marketbill-backend/pkg/pagination"
)

// Service is the subscription lifecycle for one owner kind.
type Service interface {
	Kind() enums.OwnerKind
	Create(ctx context.Context, target uuid.UUID, in subsvc.CreateInput) (*subsvc.CreateResult, error)
	Update(ctx context.Context, id uuid.UUID, in subsvc.UpdateInput) (*models.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStatusLocal(ctx context.Context, id uuid.UUID, status enums.SubscriptionStatus) (*models.Subscription, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	GetAll(ctx context.Context, params pagination.Params) (*subsvc.Page, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]models.Subscription, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Subscription, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Subscription, error)
}

// Create provisions a subscription for the seller or order named by param.
func Create(svc Service, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target, err := validators.ParseUUIDParam(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.Name = validators.SanitizeString(payload.Name, 255)
		payload.Description = validators.SanitizeString(payload.Description, 500)

		ctx := logg.WithFields(r.Context(), map[string]any{
			"owner_kind": string(svc.Kind()),
			param:        target.String(),
		})
		result, err := svc.Create(ctx, target, payload.input(middleware.ClientIP(r)))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp := createResponse{Subscription: newSubscriptionResponse(result.Subscription)}
		if gw := result.Gateway; gw != nil {
			resp.Gateway = &gatewaySummary{
				ID:          gw.ID,
				Customer:    gw.Customer,
				Status:      gw.Status,
				NextDueDate: gw.NextDueDate,
			}
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

func Get(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

// List pages through the kind's subscriptions with ?limit and ?cursor.
func List(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.GetAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, listResponse{
			Items:      newSubscriptionList(page.Items),
			NextCursor: page.NextCursor,
		})
	}
}

func ListByOwner(svc Service, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := validators.ParseUUIDParam(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		subs, err := svc.GetByOwnerID(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionList(subs))
	}
}

func GetByOrder(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.GetByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

func GetByExternal(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		externalID, err := validators.RequiredParam(r, "externalId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.GetByExternalID(r.Context(), externalID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

func Update(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sub, err := svc.Update(r.Context(), id, payload.input())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}

func Delete(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true})
	}
}

// UpdateStatus changes the local status only; the gateway is not called.
func UpdateStatus(svc Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseSubscriptionStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		sub, err := svc.UpdateStatusLocal(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSubscriptionResponse(sub))
	}
}
