package auth

import "github.com/mepla/Enchilada/internal/core"

// Result is a type alias for core.AuthResult.
type Result = core.AuthResult
