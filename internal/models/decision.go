package models

// AuthorizationDecision is the outcome of evaluating a request against a
// token's scope. It is derived per request and never persisted.
type AuthorizationDecision struct {
	UID            string
	RewrittenPath  string
	Allow          bool
	Reason         string
	MatchedPattern string // Template that allowed the request, empty on deny
}
