package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/mepla/Enchilada/internal/middleware"
	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
)

const msgUserNotFound = "User does not exist."

// UserHandler serves /users/:user_id behind the request gate. The gate has
// already resolved "self" in the user_id parameter.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(us *services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

type updateUserRequest struct {
	FirstName *string `json:"f_name"`
	LastName  *string `json:"l_name"`
	Gender    *string `json:"gender"`
	BirthDate *string `json:"birth_date"`
	Password  *string `json:"password"`
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

// UpdateUser applies the fields present in the body. Email, uid and udid
// cannot be changed.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	user, err := h.userService.UpdateUser(
		c.Request.Context(),
		callerUID(c),
		c.Param("user_id"),
		services.UpdateUserRequest(req),
	)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Profile())
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), callerUID(c), c.Param("user_id")); err != nil {
		respondUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func callerUID(c *gin.Context) string {
	if result, ok := middleware.GateResultFrom(c); ok {
		return result.UID
	}
	return ""
}

func respondUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		respondMessage(c, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, services.ErrPasswordRequired):
		respondMessage(c, http.StatusBadRequest, "A password is required.")
	default:
		log.Printf("[Users] Request failed: %v", err)
		respondInternalError(c)
	}
}
