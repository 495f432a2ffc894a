package api

import (
	"database/sql"
	"net/http"

	"github.com/medinv/medinv/internal/config"
	"github.com/medinv/medinv/internal/ledger"
	"github.com/medinv/medinv/internal/model"
)

// NewRouter builds the API routing table. Read endpoints require any
// authenticated role, stock movements require user or above, catalog and
// transfer resolution require manager, and org/user administration requires
// admin.
func NewRouter(db *sql.DB, engine *ledger.Engine, jwtSecret string, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{DB: db}
	orgHandler := &OrgHandler{DB: db}
	usersHandler := &UsersHandler{DB: db}
	stockHandler := &StockHandler{Engine: engine}
	transfersHandler := &TransfersHandler{Engine: engine}
	viewsHandler := &ViewsHandler{
		Engine:           engine,
		CriticalFraction: cfg.CriticalFraction,
		RecentWindow:     cfg.RecentWindow,
	}

	authed := AuthMiddleware(jwtSecret, db)
	asUser := func(h http.HandlerFunc) http.Handler { return authed(RequireRole(model.RoleUser)(h)) }
	asManager := func(h http.HandlerFunc) http.Handler { return authed(RequireRole(model.RoleManager)(h)) }
	asAdmin := func(h http.HandlerFunc) http.Handler { return authed(RequireRole(model.RoleAdmin)(h)) }
	asReader := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", asReader(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", asReader(authHandler.ChangePassword))

	mux.Handle("GET /api/items", asReader(itemsHandler.List))
	mux.Handle("GET /api/items/{id}", asReader(itemsHandler.Get))
	mux.Handle("POST /api/items", asManager(itemsHandler.Create))
	mux.Handle("PUT /api/items/{id}", asManager(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", asManager(itemsHandler.Delete))
	mux.Handle("GET /api/items/{id}/photo", asReader(itemsHandler.GetPhoto))
	mux.Handle("PUT /api/items/{id}/photo", asManager(itemsHandler.UploadPhoto))

	mux.Handle("GET /api/hospitals", asReader(orgHandler.Tree))
	mux.Handle("POST /api/hospitals", asAdmin(orgHandler.CreateHospital))
	mux.Handle("PUT /api/hospitals/{id}", asAdmin(orgHandler.UpdateHospital))
	mux.Handle("DELETE /api/hospitals/{id}", asAdmin(orgHandler.DeleteHospital))
	mux.Handle("GET /api/departments", asReader(orgHandler.ListDepartments))
	mux.Handle("POST /api/departments", asAdmin(orgHandler.CreateDepartment))
	mux.Handle("PUT /api/departments/{id}", asAdmin(orgHandler.UpdateDepartment))
	mux.Handle("DELETE /api/departments/{id}", asAdmin(orgHandler.DeleteDepartment))

	mux.Handle("GET /api/users", asAdmin(usersHandler.List))
	mux.Handle("POST /api/users", asAdmin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", asAdmin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", asAdmin(usersHandler.Update))
	mux.Handle("DELETE /api/users/{id}", asAdmin(usersHandler.Delete))

	mux.Handle("GET /api/stock", asReader(stockHandler.Get))
	mux.Handle("POST /api/stock/bookin", asUser(stockHandler.BookIn))
	mux.Handle("POST /api/stock/bookout", asUser(stockHandler.BookOut))
	mux.Handle("PUT /api/stock/threshold", asManager(stockHandler.SetThreshold))

	mux.Handle("POST /api/transfers", asUser(transfersHandler.Create))
	mux.Handle("GET /api/transfers", asReader(transfersHandler.List))
	mux.Handle("GET /api/transfers/{id}", asReader(transfersHandler.Get))
	mux.Handle("POST /api/transfers/{id}/approve", asManager(transfersHandler.Approve))
	mux.Handle("POST /api/transfers/{id}/reject", asManager(transfersHandler.Reject))

	mux.Handle("GET /api/inventory", asReader(viewsHandler.Inventory))
	mux.Handle("GET /api/transactions", asReader(viewsHandler.Transactions))
	mux.Handle("GET /api/alerts", asReader(viewsHandler.Alerts))
	mux.Handle("GET /api/dashboard", asReader(viewsHandler.Dashboard))

	return ObservabilityMiddleware(mux)
}
