package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	"autopier/internal/config"
	"autopier/internal/http-server/handlers/car"
	"autopier/internal/http-server/handlers/chat"
	"autopier/internal/http-server/handlers/errors"
	"autopier/internal/http-server/handlers/negotiation"
	"autopier/internal/http-server/handlers/order"
	"autopier/internal/http-server/handlers/stats"
	"autopier/internal/http-server/handlers/typing"
	"autopier/internal/http-server/middleware/authenticate"
	"autopier/internal/http-server/middleware/logger"
	"autopier/internal/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	car.Core
	chat.Core
	negotiation.Core
	order.Core
	stats.Core
	typing.Core
}

// Router builds the full route tree. Split out of New so tests can
// drive it through httptest without a listener.
func Router(log *slog.Logger, handler Handler) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(5 * time.Second))
	router.Use(render.SetContentType(render.ContentTypeJSON))
	router.Use(logger.New(log))
	router.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		v1.Route("/cars", func(r chi.Router) {
			r.Get("/", car.List(log, handler))
			r.Get("/{id}", car.Get(log, handler))
		})
		v1.Route("/negotiations", func(r chi.Router) {
			r.Post("/", negotiation.Create(log, handler))
			r.Post("/quick", negotiation.QuickStart(log, handler))
			r.Get("/{id}", negotiation.Get(log, handler))
			r.Post("/{id}/messages", negotiation.SendMessage(log, handler))
		})
		v1.Post("/checkout", order.Checkout(log, handler))
		v1.Route("/orders", func(r chi.Router) {
			r.Get("/{id}/chat", order.Messages(log, handler))
			r.Post("/{id}/chat", order.SendMessage(log, handler))
		})
		v1.Route("/client", func(r chi.Router) {
			r.Get("/negotiations", negotiation.ClientList(log, handler))
			r.Get("/orders", order.ClientList(log, handler))
		})
		v1.Route("/chats", func(r chi.Router) {
			r.Get("/active", chat.Active(log, handler))
			r.Post("/check", chat.Check(log, handler))
		})
		v1.Get("/typing", typing.Status(log, handler))
		v1.Post("/typing", typing.Signal(log, handler))

		v1.Route("/dashboard", func(d chi.Router) {
			d.Use(authenticate.New(log, handler))
			d.Get("/stats", stats.Overview(log, handler))
			d.Route("/negotiations", func(r chi.Router) {
				r.Get("/", negotiation.List(log, handler))
				r.Patch("/{id}", negotiation.UpdateStatus(log, handler))
				r.Get("/{id}/messages", negotiation.StaffMessages(log, handler))
				r.Post("/{id}/messages", negotiation.StaffReply(log, handler))
			})
			d.Route("/orders", func(r chi.Router) {
				r.Get("/", order.List(log, handler))
				r.Get("/{id}", order.Get(log, handler))
				r.Patch("/{id}", order.UpdateStatus(log, handler))
				r.Get("/{id}/messages", order.StaffMessages(log, handler))
				r.Post("/{id}/messages", order.SendMessage(log, handler))
			})
			d.Route("/chats", func(r chi.Router) {
				r.Get("/active", chat.AllActive(log, handler))
				r.Post("/read", chat.MarkRead(log, handler))
			})
		})
	})

	return router
}

// New builds the router and serves it on the configured address,
// blocking for the life of the process.
func New(conf *config.Config, log *slog.Logger, handler Handler) error {
	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := Router(log, handler)

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
