package middleware

import (
	"net/http"

	"github.com/mepla/Enchilada/internal/services"

	"github.com/gin-gonic/gin"
)

// DefaultClientIDHeader carries the calling client's id on protected routes.
const DefaultClientIDHeader = "X-Client-Id"

const gateResultKey = "gate_result"

type gateOptions struct {
	clientIDHeader string
	callerParam    string
}

type GateOption func(*gateOptions)

// WithClientIDHeader overrides the header read for the client id.
func WithClientIDHeader(name string) GateOption {
	return func(o *gateOptions) {
		if name != "" {
			o.clientIDHeader = name
		}
	}
}

// WithCallerParam names a route parameter that is always set to the caller's uid.
func WithCallerParam(name string) GateOption {
	return func(o *gateOptions) {
		o.callerParam = name
	}
}

// RequireToken guards a route with the request gate. On success the
// *services.GateResult is available through GateResultFrom and the rewritten
// route parameters replace c.Params.
func RequireToken(g *services.Gate, opts ...GateOption) gin.HandlerFunc {
	o := gateOptions{clientIDHeader: DefaultClientIDHeader}
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *gin.Context) {
		params := make(map[string]string, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
		}

		result, gerr := g.Check(c.Request.Context(), services.GateRequest{
			ClientID:      c.GetHeader(o.clientIDHeader),
			Authorization: c.GetHeader("Authorization"),
			Method:        c.Request.Method,
			Path:          c.Request.URL.Path,
			Params:        params,
			CallerParam:   o.callerParam,
		})
		if gerr != nil {
			if gerr.Status == http.StatusUnauthorized {
				c.Header("WWW-Authenticate", `Bearer realm="Enchilada"`)
			}
			c.AbortWithStatusJSON(gerr.Status, gin.H{
				"error":   gerr.Code,
				"message": gerr.Message,
			})
			return
		}

		rewritten := make(gin.Params, 0, len(result.Params))
		for _, p := range c.Params {
			rewritten = append(rewritten, gin.Param{Key: p.Key, Value: result.Params[p.Key]})
		}
		if o.callerParam != "" && c.Param(o.callerParam) == "" {
			rewritten = append(rewritten, gin.Param{Key: o.callerParam, Value: result.UID})
		}
		c.Params = rewritten

		c.Set(gateResultKey, result)
		c.Next()
	}
}

// GateResultFrom returns the result stored by RequireToken.
func GateResultFrom(c *gin.Context) (*services.GateResult, bool) {
	v, ok := c.Get(gateResultKey)
	if !ok {
		return nil, false
	}
	result, ok := v.(*services.GateResult)
	return result, ok && result != nil
}
