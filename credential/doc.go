// Package credential acquires the bearer tokens the request pipeline attaches
// to every call.
//
// Credentials implement TokenCredential:
//
//   - StaticToken serves a fixed token and reads the expiry of a JWT.
//   - ClientSecretCredential and ClientCertificateCredential run the OAuth2
//     client credentials flow against the tenant's v2.0 token endpoint.
//   - AzureCore adapts any Azure SDK credential, for example
//     azidentity.DefaultAzureCredential.
//
// Wrap the credential in Cached so that tokens are reused until five minutes
// before they expire:
//
//	cred, err := credential.NewClientSecretCredential(tenant, app, secret, nil)
//	cached := credential.NewCached(cred, 0)
//	tok, err := cached.GetToken(ctx, credential.TokenRequestOptions{
//	    Scopes: []string{"https://management.azure.com/"},
//	})
//
// Failures are CREDENTIAL_UNAVAILABLE errors.
package credential
