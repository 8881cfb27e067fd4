package auth

import (
	"errors"

	"go.uber.org/fx"
)

// ErrForbidden is raised when an authenticated caller lacks the required role.
var ErrForbidden = errors.New("forbidden")

var Module = fx.Module("auth",
	fx.Provide(NewManager),
)
