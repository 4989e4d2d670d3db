package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eshop/app/models"
	"eshop/app/services"
	"eshop/pkg/bind"
	"eshop/pkg/logger"
	"eshop/pkg/response"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

// List handles GET /users. The password hash field never serialises, on
// this or any other path.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	users, err := c.service.List(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list users", "error", err)
		response.ServerError(w, err)
		return
	}
	response.OK(w, users)
}

// Get handles GET /users/{id}.
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	user, err := c.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Failure(w, http.StatusInternalServerError, "The user with the given ID was not found.")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.OK(w, user)
}

// Register handles POST /users/register.
func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  errs,
		})
		return
	}

	user, err := c.service.Register(r.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrSaveFailed) {
			response.Text(w, http.StatusBadRequest, "The user cannot be created!")
			return
		}
		logger.WithCtx(r.Context()).Error("register user", "error", err)
		response.ServerError(w, err)
		return
	}
	response.OK(w, user)
}

// Update handles PUT /users/{id}.
func (c *UserController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	var in services.UpdateUserInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  errs,
		})
		return
	}

	user, err := c.service.Update(r.Context(), id, in)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Text(w, http.StatusBadRequest, "The user cannot be updated!")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.OK(w, user)
}

// Login handles POST /users/login. Both failure cases share a 400
// status and differ only in the message body.
func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	errs, err := bind.JSON(r, &in)
	if err != nil {
		response.Failure(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		response.JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  errs,
		})
		return
	}

	user, token, err := c.service.Login(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			response.Text(w, http.StatusBadRequest, "The user not found")
		case errors.Is(err, services.ErrWrongPassword):
			response.Text(w, http.StatusBadRequest, "Password is wrong!")
		default:
			logger.WithCtx(r.Context()).Error("login", "error", err)
			response.ServerError(w, err)
		}
		return
	}

	response.OK(w, map[string]string{
		"user":  user.Email,
		"token": token,
	})
}

// Delete handles DELETE /users/{id}.
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.ServerError(w, err)
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.Failure(w, http.StatusNotFound, "User not found!")
			return
		}
		response.ServerError(w, err)
		return
	}
	response.Deleted(w, "The user is deleted!")
}

// Count handles GET /users/get/count, with the same zero-as-failure
// contract as the order count.
func (c *UserController) Count(w http.ResponseWriter, r *http.Request) {
	count, err := c.service.Count(r.Context())
	if err != nil {
		response.ServerError(w, err)
		return
	}
	if count == 0 {
		response.Failure(w, http.StatusInternalServerError, "")
		return
	}
	response.OK(w, map[string]int64{"userCount": count})
}
