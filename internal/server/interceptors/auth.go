package interceptors

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"sessiongate/internal/auth/service"
)

const bearerPrefix = "bearer "

// Authorizer verifies an access token against the session store and the
// required permission set. Implemented by the auth service.
type Authorizer interface {
	Authorize(ctx context.Context, accessToken string, required []string) (*service.AccountContext, error)
}

// AuthUnary returns a unary server interceptor that validates the Bearer
// (access) token from gRPC metadata and attaches the account context for
// protected RPCs. publicMethods is the set of full method names that do not
// require a token (e.g. Login, Refresh). methodPermissions maps a full method
// name to the permissions it requires; unlisted protected methods require a
// valid token but no particular permission.
func AuthUnary(authz Authorizer, publicMethods map[string]bool, methodPermissions map[string][]string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if publicMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		token := extractBearer(ctx)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		acct, err := authz.Authorize(ctx, token, methodPermissions[info.FullMethod])
		if err != nil {
			return nil, statusFromAuthError(err)
		}

		return handler(WithAccount(ctx, acct), req)
	}
}

// statusFromAuthError maps the auth error taxonomy onto gRPC status codes.
func statusFromAuthError(err error) error {
	switch {
	case errors.Is(err, service.ErrForbidden):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, service.ErrUnavailable):
		return status.Error(codes.Unavailable, "service unavailable")
	default:
		// Expired, invalid, and revoked-session tokens all look the same to
		// the client.
		return status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
