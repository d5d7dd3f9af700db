package bootstrap

import (
	"github.com/mepla/Enchilada/internal/handlers"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	login  *handlers.LoginHandler
	signUp *handlers.SignUpHandler
	users  *handlers.UserHandler
}

func initializeHandlers(s serviceSet) handlerSet {
	return handlerSet{
		login:  handlers.NewLoginHandler(s.client, s.user, s.token),
		signUp: handlers.NewSignUpHandler(s.client, s.user),
		users:  handlers.NewUserHandler(s.user),
	}
}
