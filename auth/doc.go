// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies the principal behind a request or connection.

# Principal Tokens

Tokens are HS256 JWTs issued by the registration service. The subject is the
user ID; role, branch, and year travel as claims:

	token, err := auth.SignPrincipal(secret, principal, time.Hour)
	principal, err := auth.ParsePrincipal(secret, token)

Only HS256 is accepted and tokens must carry an expiry. Failures wrap
ErrInvalidToken; an empty token returns ErrMissingToken.

# Extracting Tokens

BearerToken reads "Authorization: Bearer <token>", falling back to the
token query parameter for WebSocket clients that cannot set headers:

	GET /ws?token=eyJhbGci...

# Context

Middleware stores the verified principal on the request context:

	ctx = auth.WithPrincipal(ctx, principal)
	principal, ok := auth.PrincipalFromContext(ctx)
*/
package auth
