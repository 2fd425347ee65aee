package credential

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/validation"
)

// ClientSecretCredential authenticates an application with a client secret.
type ClientSecretCredential struct {
	tenantID     string
	clientID     string
	clientSecret string
	authority    string
	client       *http.Client
}

// NewClientSecretCredential creates a ClientSecretCredential. opts may be nil.
func NewClientSecretCredential(tenantID, clientID, clientSecret string, opts *Options) (*ClientSecretCredential, error) {
	v := validation.New()
	v.Required("tenant_id", tenantID).Required("client_id", clientID).Required("client_secret", clientSecret)
	if err := v.Err(); err != nil {
		return nil, err
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()
	return &ClientSecretCredential{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		authority:    o.AuthorityHost,
		client:       newTokenHTTPClient(o),
	}, nil
}

// GetToken requests a token for opts.Scopes from the tenant's v2.0 endpoint.
func (c *ClientSecretCredential) GetToken(ctx context.Context, opts TokenRequestOptions) (AccessToken, error) {
	scopes := NormalizeScopes(opts.Scopes)
	if len(scopes) == 0 {
		return AccessToken{}, errors.CredentialUnavailable("ClientSecretCredential", nil).WithDetail("reason", "no scopes")
	}
	tenant := c.tenantID
	if opts.TenantID != "" {
		tenant = opts.TenantID
	}
	cfg := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     tokenURL(c.authority, tenant),
		Scopes:       scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return requestToken(ctx, "ClientSecretCredential", c.client, cfg)
}
