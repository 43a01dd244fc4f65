package animals

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /animals. nested recibe el sub-router para que otros módulos
// cuelguen rutas por animal (/animals/{animalID}/sales, /animals/{animalID}/milkings).
func RegisterRoutes(r chi.Router, svc *Service, nested ...func(chi.Router)) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/", listAnimalsHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc))

		for _, n := range nested {
			n(ar)
		}
	})
}

type createAnimalRequest struct {
	Code           string `json:"code"`
	OrganizationID string `json:"organizationId"` // vacío = organización del caller
	AnimalTypeID   string `json:"animalTypeId"`
	Gender         string `json:"gender"`
}

type animalResponse struct {
	ID             string    `json:"id"`
	Code           string    `json:"code"`
	OrganizationID string    `json:"organizationId"`
	AnimalTypeID   string    `json:"animalTypeId"`
	Gender         Gender    `json:"gender"`
	Status         Status    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req createAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.OrganizationID) == "" {
			req.OrganizationID = claims.OrganizationID
		}

		a, err := svc.Create(r.Context(), CreateInput{
			Code:           req.Code,
			OrganizationID: req.OrganizationID,
			AnimalTypeID:   req.AnimalTypeID,
			Gender:         req.Gender,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		org := strings.TrimSpace(q.Get("organizationId"))
		if org == "" {
			org = claims.OrganizationID
		}

		items, err := svc.List(r.Context(), ListFilter{
			OrganizationID: org,
			AnimalTypeID:   strings.TrimSpace(q.Get("animalTypeId")),
			Status:         Status(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireUser(w, r); !ok {
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:             a.ID,
		Code:           a.Code,
		OrganizationID: a.OrganizationID,
		AnimalTypeID:   a.AnimalTypeID,
		Gender:         a.Gender,
		Status:         a.Status,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// writeJSON/writeError están duplicados en cada módulo a propósito, como en el resto de handlers.
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
