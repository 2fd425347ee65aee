package credential

import (
	"fmt"

	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/errors"
)

// FromConfig builds the cached credential selected by cfg.Auth.Mode.
// cfg must have defaults applied.
func FromConfig(cfg *config.ClientConfig) (TokenCredential, error) {
	opts := &Options{AuthorityHost: cfg.AuthorityHost()}
	auth := cfg.Auth

	var (
		cred TokenCredential
		err  error
	)
	switch auth.Mode {
	case config.AuthModeStatic:
		return NewStaticToken(auth.Token), nil
	case config.AuthModeSecret:
		cred, err = NewClientSecretCredential(auth.TenantID, auth.ClientID, auth.ClientSecret, opts)
	case config.AuthModeCertificate:
		cred, err = NewClientCertificateCredentialFromFile(auth.TenantID, auth.ClientID,
			auth.CertificatePath, auth.CertificatePassword, &CertificateOptions{Options: *opts})
	case config.AuthModeDefault, "":
		cred, err = NewDefaultAzureCredential(auth.TenantID)
	default:
		return nil, errors.InvalidInput("auth.mode", fmt.Sprintf("unknown auth mode %q", auth.Mode))
	}
	if err != nil {
		return nil, err
	}
	return NewCached(cred, 0), nil
}
