package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/mepla/Enchilada/internal/models"
	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
)

// ScopeHeader carries the space-separated scope requested at login.
const ScopeHeader = "scope"

const (
	msgClientAuthRequired = "Your HTTP Authorization header must be set to Basic HTTP authentication of your client_id and client_secret."
	msgScopeRequired      = "Your HTTP headers must have a 'scope' parameter which is a space separated list of needed scopes."
	msgWrongCredentials   = "Your username and password combination is not correct."
	msgInvalidJSON        = "Your JSON is invalid."
)

type LoginHandler struct {
	clientService *services.ClientService
	userService   *services.UserService
	tokenService  *services.TokenService
}

func NewLoginHandler(
	cs *services.ClientService,
	us *services.UserService,
	ts *services.TokenService,
) *LoginHandler {
	return &LoginHandler{clientService: cs, userService: us, tokenService: ts}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the body returned for a successful grant.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

func newTokenResponse(tok *models.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken:  tok.RawAccessToken,
		RefreshToken: tok.RawRefreshToken,
		ExpiresIn:    tok.ExpiresIn,
		TokenType:    tok.TokenType,
		Scope:        tok.Scope,
	}
}

// Login handles POST /login. The grant type comes from the query string or
// form and defaults to password.
func (h *LoginHandler) Login(c *gin.Context) {
	grantType := c.Query("grant_type")
	if grantType == "" {
		grantType = c.PostForm("grant_type")
	}

	switch grantType {
	case "", services.GrantTypePassword:
		h.passwordGrant(c)
	case services.GrantTypeRefreshToken:
		h.refreshGrant(c)
	default:
		respondMessage(c, http.StatusBadRequest, "Supported grant types: password, refresh_token")
	}
}

func (h *LoginHandler) passwordGrant(c *gin.Context) {
	clientID, clientSecret, ok := clientCredentials(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, msgClientAuthRequired)
		return
	}

	scope := c.GetHeader(ScopeHeader)
	if scope == "" {
		respondMessage(c, http.StatusUnauthorized, msgScopeRequired)
		return
	}

	ctx := c.Request.Context()
	if err := h.clientService.AuthenticateClient(ctx, clientID, clientSecret, scope); err != nil {
		respondClientError(c, err)
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	uid, err := h.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		respondMessage(c, http.StatusUnauthorized, msgWrongCredentials)
		return
	}

	tok, err := h.tokenService.Issue(ctx, uid, clientID, scope, 0)
	if err != nil {
		log.Printf("[Login] Failed to issue token for %s: %v", uid, err)
		respondInternalError(c)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(tok))
}

func (h *LoginHandler) refreshGrant(c *gin.Context) {
	clientID, clientSecret, ok := clientCredentials(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, msgClientAuthRequired)
		return
	}

	refresh := c.Query("refresh_token")
	if refresh == "" {
		refresh = c.PostForm("refresh_token")
	}

	ctx := c.Request.Context()
	if _, err := h.clientService.VerifyClient(ctx, clientID, clientSecret); err != nil {
		respondClientError(c, err)
		return
	}

	tok, err := h.tokenService.Refresh(ctx, refresh, clientID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidRefreshToken) {
			respondMessage(c, http.StatusUnauthorized, "Invalid refresh token.")
			return
		}
		log.Printf("[Login] Refresh failed for client %s: %v", clientID, err)
		respondInternalError(c)
		return
	}

	c.JSON(http.StatusOK, newTokenResponse(tok))
}

func respondClientError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrClientDoesNotExist):
		respondMessage(c, http.StatusUnauthorized, "Your client_id and client_secret combination is not correct.")
	case errors.Is(err, services.ErrClientNotAuthorized):
		respondMessage(c, http.StatusUnauthorized, "You are not an authorized client.")
	case errors.Is(err, services.ErrClientWithWrongScopes):
		respondMessage(c, http.StatusUnauthorized, "Your client is not granted the requested scopes.")
	default:
		respondInternalError(c)
	}
}
