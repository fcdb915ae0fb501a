package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"chat-casino/internal/app/wager"
	"chat-casino/internal/config"
	"chat-casino/internal/mcpserver"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *wager.Service, cfg config.ServerConfig, logCfg config.LogConfig) *chi.Mux {
	wallet := NewWalletHandlers(svc)
	duels := NewDuelHandlers(svc)
	banker := NewBankerHandlers(svc)
	ratings := NewRatingHandlers(svc)
	admin := NewAdminHandlers(svc)

	accessLog := passthrough
	if logCfg.AccessLog {
		accessLog = APILogMiddleware()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(accessLog).Get("/healthz", admin.Health())

	if cfg.MCPEnabled {
		mcpSrv := mcpserver.New(svc)
		r.With(accessLog).MethodFunc(http.MethodOptions, "/mcp", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Allow", "POST, GET, DELETE, OPTIONS")
			w.WriteHeader(http.StatusNoContent)
		})
		r.With(accessLog).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
		r.With(accessLog).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
		r.With(accessLog).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	} else {
		log.Info().Msg("mcp endpoint disabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(accessLog)

		r.Get("/balances/{user_id}", wallet.Balance())
		r.Post("/transfers", wallet.Transfer())

		r.Post("/duels", duels.Create())
		r.Get("/duels", duels.ListOpen())
		r.Get("/duels/{duel_id}", duels.Get())
		r.Post("/duels/{duel_id}/join", duels.Join())
		r.Post("/duels/{duel_id}/cancel", duels.Cancel())
		r.Get("/users/{user_id}/duels", duels.UserHistory())
		r.Get("/users/{user_id}/transfers", wallet.UserTransfers())

		r.Get("/banker/round", banker.Round())
		r.Post("/banker/bets", banker.PlaceBet())
		r.Delete("/banker/bets/{user_id}", banker.CancelBet())

		r.Get("/ratings/duels", ratings.Duels())
		r.Get("/ratings/banker", ratings.Banker())

		r.Get("/events", EventsSSEHandler(svc.Events()))

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminAPIKey))
			if logCfg.AccessLog {
				r.Use(BodyCaptureMiddleware(4096))
			}
			r.Put("/balances/{user_id}", admin.SetBalance())
			r.Post("/banker/draw", admin.ForceDraw())
			r.Get("/outbox", admin.Outbox())
			r.Post("/outbox/replay", admin.ReplayOutbox())
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		})
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 32)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
