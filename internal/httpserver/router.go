package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bizcore/internal/auth"
	"bizcore/internal/httpserver/handlers"
	"bizcore/internal/models"
	"bizcore/internal/service"
)

// Services bundles what the router wires into handlers.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Customers     *service.CustomerService
	Projects      *service.ProjectService
	Catalog       *service.ServiceCatalog
	Appointments  *service.AppointmentService
	Requests      *service.ContactRequestService
	Notifications *service.NotificationService
}

type RouterConfig struct {
	JWTSecret         string
	LoginRateCapacity int
	LoginRateWindowMS int
}

func NewRouter(svcs Services, cfg RouterConfig, rdb *redis.Client, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	loginLimit := LoginRateLimit(rdb, cfg.LoginRateCapacity, cfg.LoginRateWindowMS, lg)

	r.Group(func(pub chi.Router) {
		pub.Use(loginLimit)
		pub.Post("/v1/auth/login", handlers.Login(svcs.Auth, lg))
		pub.Post("/v1/auth/forgot-password", handlers.ForgotPassword(svcs.Auth, lg))
	})
	r.Post("/v1/auth/refresh", handlers.Refresh(svcs.Auth, lg))
	r.Post("/v1/auth/validate-reset-token", handlers.ValidateResetToken(svcs.Auth, lg))
	r.Post("/v1/auth/reset-password", handlers.ResetPassword(svcs.Auth, lg))

	// Public intake for the website contact form.
	r.Post("/v1/requests", handlers.CreateContactRequest(svcs.Requests, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(cfg.JWTSecret))
		protected.Get("/v1/me", handlers.Me(svcs.Users, lg))
		protected.Post("/v1/auth/logout", handlers.Logout(svcs.Auth, lg))

		protected.Post("/v1/customers", handlers.CreateCustomer(svcs.Customers, lg))
		protected.Get("/v1/customers", handlers.ListCustomers(svcs.Customers, lg))
		protected.Get("/v1/customers/{id}", handlers.GetCustomer(svcs.Customers, lg))
		protected.Patch("/v1/customers/{id}", handlers.UpdateCustomer(svcs.Customers, lg))
		protected.Delete("/v1/customers/{id}", handlers.DeleteCustomer(svcs.Customers, lg))

		protected.Post("/v1/projects", handlers.CreateProject(svcs.Projects, lg))
		protected.Get("/v1/projects", handlers.ListProjects(svcs.Projects, lg))
		protected.Get("/v1/projects/{id}", handlers.GetProject(svcs.Projects, lg))
		protected.Patch("/v1/projects/{id}", handlers.UpdateProject(svcs.Projects, lg))
		protected.Delete("/v1/projects/{id}", handlers.DeleteProject(svcs.Projects, lg))

		protected.Post("/v1/services", handlers.CreateService(svcs.Catalog, lg))
		protected.Get("/v1/services", handlers.ListServices(svcs.Catalog, lg))
		protected.Get("/v1/services/{id}", handlers.GetService(svcs.Catalog, lg))
		protected.Patch("/v1/services/{id}", handlers.UpdateService(svcs.Catalog, lg))
		protected.Delete("/v1/services/{id}", handlers.DeleteService(svcs.Catalog, lg))

		protected.Post("/v1/appointments", handlers.CreateAppointment(svcs.Appointments, lg))
		protected.Get("/v1/appointments", handlers.ListAppointments(svcs.Appointments, lg))
		protected.Get("/v1/appointments/{id}", handlers.GetAppointment(svcs.Appointments, lg))
		protected.Patch("/v1/appointments/{id}", handlers.UpdateAppointment(svcs.Appointments, lg))
		protected.Delete("/v1/appointments/{id}", handlers.DeleteAppointment(svcs.Appointments, lg))

		protected.Get("/v1/requests", handlers.ListContactRequests(svcs.Requests, lg))
		protected.Get("/v1/requests/{id}", handlers.GetContactRequest(svcs.Requests, lg))
		protected.Patch("/v1/requests/{id}", handlers.UpdateContactRequest(svcs.Requests, lg))
		protected.Post("/v1/requests/{id}/convert", handlers.ConvertContactRequest(svcs.Requests, lg))
		protected.Delete("/v1/requests/{id}", handlers.DeleteContactRequest(svcs.Requests, lg))

		protected.Get("/v1/notifications", handlers.ListNotifications(svcs.Notifications, lg))
		protected.Get("/v1/notifications/unread-count", handlers.UnreadNotificationCount(svcs.Notifications, lg))
		protected.Patch("/v1/notifications/{id}/read", handlers.MarkNotificationRead(svcs.Notifications, lg))
		protected.Patch("/v1/notifications/read-all", handlers.MarkAllNotificationsRead(svcs.Notifications, lg))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(models.RoleAdmin))
			admin.Get("/v1/admin/users", handlers.ListUsers(svcs.Users, lg))
			admin.Post("/v1/admin/users", handlers.CreateUser(svcs.Users, lg))
			admin.Get("/v1/admin/users/{id}", handlers.GetUser(svcs.Users, lg))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(svcs.Users, lg))
			admin.Patch("/v1/admin/users/{id}/status", handlers.UpdateUserStatus(svcs.Users, lg))
			admin.Patch("/v1/admin/users/status", handlers.BulkUpdateUserStatus(svcs.Users, lg))
			admin.Delete("/v1/admin/users/{id}", handlers.DeleteUser(svcs.Users, lg))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
