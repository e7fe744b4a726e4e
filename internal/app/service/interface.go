package service

import (
	"context"

	"github.com/emirkoc/shortlink/internal/storage"
)

// CodeStore is the slice of the URL store the resolver needs.
type CodeStore interface {
	CodeExists(context.Context, string) (bool, error)
}

// AuthIface is the token side of the authentication collaborator, consumed
// by the HTTP middleware and the gRPC interceptor.
type AuthIface interface {
	BuildJWTString(userID string) (string, error)
	ParseRawJWT(tokenString string) (*Claims, error)
}

// RedirectStore is the slice of the URL store the redirect resolver needs.
type RedirectStore interface {
	FindByCode(context.Context, string) (*storage.URLRecord, error)
}
