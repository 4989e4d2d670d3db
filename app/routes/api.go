package routes

import (
	"net/http"

	"eshop/app/controllers"
	"eshop/pkg/middleware"
	"eshop/pkg/response"
	"eshop/pkg/router"
)

// RegisterAPI mounts the resource controllers. Derived-query routes
// live under /get/ so they never collide with the {id} parameter.
func RegisterAPI(r *router.Router, orders *controllers.OrderController, users *controllers.UserController) {
	o := r.Group("/orders")
	o.Get("/", "orders.list", orders.List)
	o.Post("/", "orders.create", orders.Create)
	o.Get("/get/totalsales", "orders.totalsales", orders.TotalSales)
	o.Get("/get/count", "orders.count", orders.Count)
	o.Get("/get/userorders/{userid}", "orders.byuser", orders.ListByUser)
	o.Get("/{id}", "orders.get", orders.Get)
	o.Put("/{id}", "orders.update", orders.Update)
	o.Delete("/{id}", "orders.delete", orders.Delete)

	u := r.Group("/users")
	u.Get("/", "users.list", users.List)
	u.Post("/register", "users.register", users.Register)
	u.Post("/login", "users.login", users.Login)
	u.Get("/get/count", "users.count", users.Count)
	u.Get("/{id}", "users.get", users.Get)
	u.Put("/{id}", "users.update", users.Update)
	u.Delete("/{id}", "users.delete", users.Delete)

	// Token introspection for clients; also exercises the auth middleware.
	r.Get("/profile", "auth.profile", profile, middleware.Auth)
}

func profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		response.Unauthorized(w)
		return
	}
	response.OK(w, map[string]interface{}{
		"userId":  claims.UserID,
		"isAdmin": claims.IsAdmin,
	})
}
