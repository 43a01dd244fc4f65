package analytics

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/apperr"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/analytics/{source}", seriesHandler(svc))
}

type bucketResponse struct {
	Key   string          `json:"key"`
	Label string          `json:"label"`
	Start time.Time       `json:"start"`
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

type seriesResponse struct {
	OrganizationID string           `json:"organizationId"`
	AnimalTypeID   string           `json:"animalTypeId"`
	Buckets        []bucketResponse `json:"buckets"`
}

type reportResponse struct {
	Source      Source           `json:"source"`
	Mode        Mode             `json:"mode"`
	Granularity Granularity      `json:"granularity"`
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	Series      []seriesResponse `json:"series"`
}

// seriesHandler: GET /analytics/{source}?periode=N | year=Y[&months=M] [&organizationId][&animalTypeId]
// seriesHandler godoc
// @Summary Serie temporal de muertes, leche o ventas
// @Description periode=N da N+1 días hasta hoy; year da 12 meses; year+months da los días del mes. Agrupa por organización y tipo de animal.
// @Tags analytics
// @Produce json
// @Param source path string true "deaths | milk | sales"
// @Param periode query int false "Días hacia atrás"
// @Param year query int false "Año"
// @Param months query int false "Mes 1..12, requiere year"
// @Param organizationId query string false "Default: organización del caller"
// @Param animalTypeId query string false "Tipo de animal"
// @Success 200 {object} reportResponse
// @Failure 400 {string} string "período o source inválido"
// @Router /analytics/{source} [get]
func seriesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.RequireUser(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		var spec PeriodSpec
		for _, p := range []struct {
			name string
			dst  *int
			has  *bool
		}{
			{"periode", &spec.Periode, &spec.HasPeriode},
			{"year", &spec.Year, nil},
			{"months", &spec.Months, &spec.HasMonths},
		} {
			v := strings.TrimSpace(q.Get(p.name))
			if v == "" {
				continue
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, p.name+" must be an integer", http.StatusBadRequest)
				return
			}
			*p.dst = n
			if p.has != nil {
				*p.has = true
			}
		}

		dims := Dimensions{
			OrganizationID: strings.TrimSpace(q.Get("organizationId")),
			AnimalTypeID:   strings.TrimSpace(q.Get("animalTypeId")),
		}
		if dims.OrganizationID == "" {
			dims.OrganizationID = claims.OrganizationID
		}

		rep, err := svc.Series(r.Context(), Source(strings.ToLower(chi.URLParam(r, "source"))), spec, dims)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				http.Error(w, "internal error", status)
				return
			}
			http.Error(w, err.Error(), status)
			return
		}

		writeJSON(w, http.StatusOK, toReportResponse(rep))
	}
}

func toReportResponse(rep Report) reportResponse {
	out := reportResponse{
		Source:      rep.Source,
		Mode:        rep.Mode,
		Granularity: rep.Granularity,
		From:        rep.From,
		To:          rep.To,
		Series:      make([]seriesResponse, 0, len(rep.Series)),
	}
	for _, s := range rep.Series {
		sr := seriesResponse{
			OrganizationID: s.OrganizationID,
			AnimalTypeID:   s.AnimalTypeID,
			Buckets:        make([]bucketResponse, 0, len(s.Buckets)),
		}
		for _, b := range s.Buckets {
			sr.Buckets = append(sr.Buckets, bucketResponse(b))
		}
		out.Series = append(out.Series, sr)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
