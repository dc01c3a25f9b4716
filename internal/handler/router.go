package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	custommiddleware "github.com/roberto3101/sistema-control/internal/middleware"
	"github.com/roberto3101/sistema-control/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware системы.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Get("/health", h.Health)

	admin := custommiddleware.RequireRole(model.RoleAdmin)
	sales := custommiddleware.RequireRole(model.RoleAdmin, model.RoleSeller)
	clerks := custommiddleware.RequireRole(model.RoleAdmin, model.RoleAssistant)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Get("/auth/me", h.Me)
			r.With(admin).Post("/usuarios", h.CreateUser)

			r.Route("/productos", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Get("/stock-bajo", h.ListLowStock)
				r.Get("/{id}", h.GetProduct)
				r.Post("/{id}/verificar-stock", h.CheckStock)
				r.With(admin).Post("/", h.CreateProduct)
				r.With(admin).Put("/{id}/stock", h.ReplenishStock)
			})

			r.Route("/clientes", func(r chi.Router) {
				r.With(sales).Post("/", h.CreateClient)
				r.Get("/{id}", h.GetClient)
			})

			r.With(sales).Post("/visitas", h.CreateVisit)

			r.Route("/pedidos", func(r chi.Router) {
				r.Get("/", h.ListOrders)
				r.Get("/mis-pedidos", h.MyOrders)
				r.Get("/{id}", h.GetOrder)
				r.With(sales).Post("/", h.PlaceOrder)
				r.With(admin).Put("/{id}/estado", h.ChangeOrderStatus)
			})

			r.Route("/boletas", func(r chi.Router) {
				r.Get("/", h.ListReceipts)
				r.Get("/{id}", h.GetReceipt)
				r.With(custommiddleware.RequireRole(model.RoleAdmin, model.RoleAssistant, model.RoleSeller)).
					Post("/generar", h.GenerateReceipt)
				r.With(clerks).Put("/{id}/emitir", h.IssueReceipt)
				r.With(clerks).Put("/{id}/anular", h.VoidReceipt)
			})

			r.Route("/asignaciones", func(r chi.Router) {
				r.Use(admin)

				r.Get("/", h.ListAssignments)
				r.Get("/clientes-sin-asignar", h.UnassignedClients)
				r.Get("/vendedores", h.SellerWorkload)
				r.Post("/asignar", h.Assign)
				r.Put("/reasignar", h.Reassign)
				r.Delete("/{id}", h.Unassign)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), nil)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), nil)
	})

	return r
}
