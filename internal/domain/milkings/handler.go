package milkings

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AnimalRoutes cuelga /animals/{animalID}/milkings del sub-router de animals.
func AnimalRoutes(svc *Service) func(chi.Router) {
	return func(ar chi.Router) {
		ar.Post("/{animalID}/milkings", recordMilkingHandler(svc))
		ar.Get("/{animalID}/milkings", listMilkingsHandler(svc))
	}
}

type recordMilkingRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	At       *time.Time      `json:"at"` // RFC3339 opcional
}

type milkingResponse struct {
	ID             string          `json:"id"`
	AnimalID       string          `json:"animalId"`
	OrganizationID string          `json:"organizationId"`
	AnimalTypeID   string          `json:"animalTypeId"`
	Quantity       decimal.Decimal `json:"quantity"`
	UserCreatedID  string          `json:"userCreatedId"`
	CreatedAt      time.Time       `json:"createdAt"`
}

func recordMilkingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req recordMilkingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Record(r.Context(), chi.URLParam(r, "animalID"), RecordInput{
			Quantity: req.Quantity,
			At:       req.At,
			UserID:   claims.UserID,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMilkingResponse(m))
	}
}

func listMilkingsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireUser(w, r); !ok {
			return
		}

		items, err := svc.ListByAnimal(r.Context(), strings.TrimSpace(chi.URLParam(r, "animalID")))
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]milkingResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMilkingResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func toMilkingResponse(m Milking) milkingResponse {
	return milkingResponse{
		ID:             m.ID,
		AnimalID:       m.AnimalID,
		OrganizationID: m.OrganizationID,
		AnimalTypeID:   m.AnimalTypeID,
		Quantity:       m.Quantity,
		UserCreatedID:  m.UserCreatedID,
		CreatedAt:      m.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
