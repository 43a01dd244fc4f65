package lifecycle

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/sales", func(sr chi.Router) {
		sr.Post("/bulk", recordBulkSaleHandler(svc))
		sr.Get("/", listSalesHandler(svc))
		sr.Get("/{saleID}", getSaleHandler(svc))
		sr.Patch("/{saleID}/status", updateSaleStatusHandler(svc))
	})
	r.Get("/deaths", listDeathsHandler(svc))
}

// AnimalRoutes cuelga POST /animals/{animalID}/sales del sub-router de animals.
func AnimalRoutes(svc *Service) func(chi.Router) {
	return func(ar chi.Router) {
		ar.Post("/{animalID}/sales", recordSaleHandler(svc))
	}
}

type saleRequest struct {
	Date   string           `json:"date"` // YYYY-MM-DD o RFC3339, opcional
	Price  *decimal.Decimal `json:"price"`
	SoldTo *string          `json:"soldTo"`
	Note   *string          `json:"note"`
}

type bulkSaleRequest struct {
	saleRequest
	OrganizationID string   `json:"organizationId"` // vacío = organización del caller
	Codes          []string `json:"codes"`
}

type updateStatusRequest struct {
	saleRequest
	Status string `json:"status"`
}

type saleResponse struct {
	ID             string          `json:"id"`
	AnimalID       string          `json:"animalId"`
	OrganizationID string          `json:"organizationId"`
	Status         SaleStatus      `json:"status"`
	Date           time.Time       `json:"date"`
	Price          decimal.Decimal `json:"price"`
	SoldTo         string          `json:"soldTo"`
	Note           string          `json:"note"`
	UserCreatedID  string          `json:"userCreatedId"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      *time.Time      `json:"deletedAt,omitempty"`
}

type deathResponse struct {
	ID             string    `json:"id"`
	AnimalID       string    `json:"animalId"`
	OrganizationID string    `json:"organizationId"`
	AnimalTypeID   string    `json:"animalTypeId"`
	Number         int       `json:"number"`
	Male           int       `json:"male"`
	Female         int       `json:"female"`
	UserCreatedID  string    `json:"userCreatedId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// recordSaleHandler godoc
// @Summary Registrar venta de un animal
// @Description Crea la venta (ACTIVE) y pasa el animal a SOLD en una sola transacción. Falla con 409 si el animal ya está vendido, muerto o tiene una venta abierta.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param animalID path string true "ID del animal"
// @Param payload body saleRequest false "date YYYY-MM-DD o RFC3339; price decimal"
// @Success 201 {object} saleResponse
// @Failure 400 {string} string "invalid json / date o price inválidos"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "animal not found"
// @Failure 409 {string} string "conflict"
// @Router /animals/{animalID}/sales [post]
func recordSaleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req saleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		in, err := req.toInput(claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		sale, err := svc.RecordSale(r.Context(), chi.URLParam(r, "animalID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSaleResponse(sale))
	}
}

// recordBulkSaleHandler godoc
// @Summary Venta en lote por códigos
// @Description Todo o nada: si un código falla no se registra ninguna venta y el error nombra el código.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Param payload body bulkSaleRequest true "Códigos de animales y datos comunes de la venta"
// @Success 201 {array} saleResponse
// @Failure 400 {string} string "codes vacíos o duplicados"
// @Failure 404 {string} string "animal code not found"
// @Failure 409 {string} string "conflict"
// @Router /sales/bulk [post]
func recordBulkSaleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req bulkSaleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		in, err := req.toInput(claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		org := strings.TrimSpace(req.OrganizationID)
		if org == "" {
			org = claims.OrganizationID
		}

		sales, err := svc.RecordBulkSale(r.Context(), org, req.Codes, in)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]saleResponse, 0, len(sales))
		for _, s := range sales {
			out = append(out, toSaleResponse(s))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// updateSaleStatusHandler godoc
// @Summary Cambiar estado del animal de una venta
// @Description SOLD confirma la venta; ACTIVE la revierte (soft-delete); DEAD registra la muerte y anula la venta.
// @Tags lifecycle
// @Accept json
// @Param saleID path string true "ID de la venta"
// @Param payload body updateStatusRequest true "status: SOLD | ACTIVE | DEAD"
// @Success 204
// @Failure 400 {string} string "status inválido"
// @Failure 404 {string} string "sale not found"
// @Failure 409 {string} string "animal muerto / conflicto de escritura"
// @Router /sales/{saleID}/status [patch]
func updateSaleStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		in, err := req.toInput(claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		status := animals.Status(strings.ToUpper(strings.TrimSpace(req.Status)))
		if err := svc.UpdateSaleStatus(r.Context(), chi.URLParam(r, "saleID"), status, in); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getSaleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.RequireUser(w, r); !ok {
			return
		}

		sale, err := svc.GetSale(r.Context(), chi.URLParam(r, "saleID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSaleResponse(sale))
	}
}

func listSalesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		f := SaleFilter{
			AnimalID:       strings.TrimSpace(q.Get("animalId")),
			OrganizationID: strings.TrimSpace(q.Get("organizationId")),
			Status:         SaleStatus(strings.ToUpper(strings.TrimSpace(q.Get("status")))),
		}
		if f.OrganizationID == "" && f.AnimalID == "" {
			f.OrganizationID = claims.OrganizationID
		}
		if v := strings.TrimSpace(q.Get("includeDeleted")); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "includeDeleted must be a boolean", http.StatusBadRequest)
				return
			}
			f.IncludeDeleted = b
		}

		sales, err := svc.ListSales(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]saleResponse, 0, len(sales))
		for _, s := range sales {
			out = append(out, toSaleResponse(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listDeathsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		f := DeathFilter{
			AnimalID:       strings.TrimSpace(q.Get("animalId")),
			OrganizationID: strings.TrimSpace(q.Get("organizationId")),
			AnimalTypeID:   strings.TrimSpace(q.Get("animalTypeId")),
		}
		if f.OrganizationID == "" && f.AnimalID == "" {
			f.OrganizationID = claims.OrganizationID
		}

		deaths, err := svc.ListDeaths(r.Context(), f)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]deathResponse, 0, len(deaths))
		for _, d := range deaths {
			out = append(out, deathResponse{
				ID:             d.ID,
				AnimalID:       d.AnimalID,
				OrganizationID: d.OrganizationID,
				AnimalTypeID:   d.AnimalTypeID,
				Number:         d.Number,
				Male:           d.Male,
				Female:         d.Female,
				UserCreatedID:  d.UserCreatedID,
				CreatedAt:      d.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (req saleRequest) toInput(userID string) (SaleInput, error) {
	in := SaleInput{
		Price:  req.Price,
		SoldTo: req.SoldTo,
		Note:   req.Note,
		UserID: userID,
	}
	if d := strings.TrimSpace(req.Date); d != "" {
		t, err := parseDate(d)
		if err != nil {
			return SaleInput{}, apperr.Invalid("date", "must be YYYY-MM-DD or RFC3339")
		}
		in.Date = &t
	}
	return in, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func toSaleResponse(s Sale) saleResponse {
	return saleResponse{
		ID:             s.ID,
		AnimalID:       s.AnimalID,
		OrganizationID: s.OrganizationID,
		Status:         s.Status,
		Date:           s.Date,
		Price:          s.Price,
		SoldTo:         s.SoldTo,
		Note:           s.Note,
		UserCreatedID:  s.UserCreatedID,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		DeletedAt:      s.DeletedAt,
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
