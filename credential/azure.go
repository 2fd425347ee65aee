package credential

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"

	"github.com/kbukum/armkit/errors"
)

// AzureCore adapts an Azure SDK credential, such as one from azidentity.
type AzureCore struct {
	name string
	cred azcore.TokenCredential
}

// FromAzureCore wraps cred. name labels errors and logs.
func FromAzureCore(name string, cred azcore.TokenCredential) *AzureCore {
	if name == "" {
		name = "AzureCoreCredential"
	}
	return &AzureCore{name: name, cred: cred}
}

// NewDefaultAzureCredential wraps azidentity.DefaultAzureCredential, which
// tries environment, workload identity, managed identity and developer tool
// credentials in turn.
func NewDefaultAzureCredential(tenantID string) (*AzureCore, error) {
	cred, err := azidentity.NewDefaultAzureCredential(&azidentity.DefaultAzureCredentialOptions{TenantID: tenantID})
	if err != nil {
		return nil, errors.CredentialUnavailable("DefaultAzureCredential", err)
	}
	return FromAzureCore("DefaultAzureCredential", cred), nil
}

// GetToken implements TokenCredential.
func (a *AzureCore) GetToken(ctx context.Context, opts TokenRequestOptions) (AccessToken, error) {
	tk, err := a.cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes:   NormalizeScopes(opts.Scopes),
		TenantID: opts.TenantID,
	})
	if err != nil {
		return AccessToken{}, errors.CredentialUnavailable(a.name, err)
	}
	return AccessToken{Token: tk.Token, ExpiresOn: tk.ExpiresOn}, nil
}

// ToAzureCore exposes cred to Azure SDK clients.
func ToAzureCore(cred TokenCredential) azcore.TokenCredential {
	return azcoreCredential{cred: cred}
}

type azcoreCredential struct {
	cred TokenCredential
}

func (a azcoreCredential) GetToken(ctx context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tk, err := a.cred.GetToken(ctx, TokenRequestOptions{Scopes: opts.Scopes, TenantID: opts.TenantID})
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: tk.Token, ExpiresOn: tk.ExpiresOn}, nil
}
