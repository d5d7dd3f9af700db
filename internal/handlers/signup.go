package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
)

type SignUpHandler struct {
	clientService *services.ClientService
	userService   *services.UserService
}

func NewSignUpHandler(cs *services.ClientService, us *services.UserService) *SignUpHandler {
	return &SignUpHandler{clientService: cs, userService: us}
}

type signUpRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"f_name"`
	LastName  string `json:"l_name"`
	Gender    string `json:"gender"`
	BirthDate string `json:"birth_date"`
	Device    string `json:"device"`
	UDID      string `json:"udid"`
}

// SignUp handles POST /signup and returns the new user's profile.
func (h *SignUpHandler) SignUp(c *gin.Context) {
	clientID, clientSecret, ok := clientCredentials(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, msgClientAuthRequired)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.clientService.VerifyClient(ctx, clientID, clientSecret); err != nil {
		respondClientError(c, err)
		return
	}

	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	user, err := h.userService.SignUp(ctx, services.SignUpRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Gender:    req.Gender,
		BirthDate: req.BirthDate,
		Device:    req.Device,
		UDID:      req.UDID,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, user.Profile())
	case errors.Is(err, services.ErrInvalidEmail):
		respondMessage(c, http.StatusBadRequest, "The email address you entered is invalid.")
	case errors.Is(err, services.ErrPasswordRequired):
		respondMessage(c, http.StatusBadRequest, "A password is required.")
	case errors.Is(err, services.ErrEmailTaken):
		respondMessage(c, http.StatusBadRequest, "A user is already registered with this email address.")
	case errors.Is(err, services.ErrTooManyUsersForDevice):
		respondMessage(c, http.StatusBadRequest, "Too many users are signed up with this udid.")
	default:
		log.Printf("[SignUp] Failed: %v", err)
		respondInternalError(c)
	}
}
