package pipeline

import (
	"context"

	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/errors"
)

// BearerTokenPolicy sets "Authorization: Bearer <token>" on every attempt.
// Token caching is the credential's concern; wrap it in credential.Cached.
func BearerTokenPolicy(cred credential.TokenCredential, scopes []string) Policy {
	opts := credential.TokenRequestOptions{Scopes: append([]string(nil), scopes...)}
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, req *Request) (*Response, error) {
			tok, err := cred.GetToken(ctx, opts)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, contextError(ctxErr)
				}
				if _, ok := errors.AsAppError(err); !ok {
					err = errors.CredentialUnavailable("bearer token policy", err)
				}
				return nil, err
			}
			req.Header().Set(HeaderAuthorization, "Bearer "+tok.Token)
			return next.Send(ctx, req)
		})
	}
}
