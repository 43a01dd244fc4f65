package router

import (
	"net/http"
	"time"

	_ "livestock-ledger/docs" // registra el documento OpenAPI para /swagger

	mem "livestock-ledger/internal/adapters/storage/memory"
	"livestock-ledger/internal/adapters/storage/sqlstore"
	"livestock-ledger/internal/domain/analytics"
	"livestock-ledger/internal/domain/animals"
	"livestock-ledger/internal/domain/lifecycle"
	"livestock-ledger/internal/domain/milkings"
	"livestock-ledger/internal/middleware"
	"livestock-ledger/internal/platform/logger"
	"livestock-ledger/internal/platform/metrics"
	"livestock-ledger/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa SQL (Postgres o SQLite). Si no, in-memory.
	DB *sqlstore.DB

	Logger  logger.Logger     // nil = Nop
	Metrics *metrics.Registry // nil = se crea uno

	CORSAllowedOrigins []string
	LedgerTxTimeout    time.Duration
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log))
	r.Use(chimw.Recoverer)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Debug-User-ID", "X-Debug-Organization-ID"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", reg.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		animalRepo    animals.Repository
		ledgerStore   lifecycle.Store
		milkingRepo   milkings.Repository
		analyticsRepo analytics.Repository
	)

	if opts.DB != nil {
		animalRepo = sqlstore.NewAnimalsRepo(opts.DB)
		ledgerStore = sqlstore.NewLedgerStore(opts.DB)
		milkingRepo = sqlstore.NewMilkingsRepo(opts.DB)
		analyticsRepo = sqlstore.NewAnalyticsRepo(opts.DB)
	} else {
		db := mem.NewDB()
		animalRepo = mem.NewAnimalsRepo(db)
		ledgerStore = mem.NewLedgerStore(db)
		milkingRepo = mem.NewMilkingsRepo(db)
		analyticsRepo = mem.NewAnalyticsRepo(db)
	}

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo)
	lifecycleSvc := lifecycle.NewService(ledgerStore,
		lifecycle.WithLogger(log.With(map[string]any{"module": "lifecycle"})),
		lifecycle.WithMetrics(reg),
		lifecycle.WithTxTimeout(opts.LedgerTxTimeout),
	)
	milkingsSvc := milkings.NewService(milkingRepo, animalsSvc)
	analyticsSvc := analytics.NewService(analyticsRepo, log.With(map[string]any{"module": "analytics"}), reg)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc,
		lifecycle.AnimalRoutes(lifecycleSvc),
		milkings.AnimalRoutes(milkingsSvc),
	)
	lifecycle.RegisterRoutes(r, lifecycleSvc)
	analytics.RegisterRoutes(r, analyticsSvc)

	return r
}
