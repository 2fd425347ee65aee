package credential

import (
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha1" //nolint:gosec // x5t is defined as the SHA-1 thumbprint
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/pkcs12"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/validation"
)

const (
	assertionType     = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
	assertionLifetime = 10 * time.Minute
)

// ClientCertificateCredential authenticates an application with a
// certificate. Each token request carries a freshly signed RS256 client
// assertion.
type ClientCertificateCredential struct {
	tenantID  string
	clientID  string
	cert      *x509.Certificate
	chain     []*x509.Certificate
	key       *rsa.PrivateKey
	sendChain bool
	authority string
	client    *http.Client
}

// CertificateOptions extend Options for certificate credentials.
type CertificateOptions struct {
	Options
	// SendCertificateChain adds the x5c header, needed for subject name/issuer auth.
	SendCertificateChain bool
}

// NewClientCertificateCredential creates a credential from certificates and
// their RSA private key, as returned by ParseCertificates. opts may be nil.
func NewClientCertificateCredential(tenantID, clientID string, certs []*x509.Certificate, key crypto.PrivateKey, opts *CertificateOptions) (*ClientCertificateCredential, error) {
	v := validation.New()
	v.Required("tenant_id", tenantID).Required("client_id", clientID)
	if len(certs) == 0 {
		v.AddError("certificate", "at least one certificate is required")
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		v.AddError("private_key", "an RSA private key is required")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	var o CertificateOptions
	if opts != nil {
		o = *opts
	}
	o.applyDefaults()

	leaf := certs[0]
	for _, c := range certs {
		if pub, ok := c.PublicKey.(*rsa.PublicKey); ok && pub.Equal(&rsaKey.PublicKey) {
			leaf = c
			break
		}
	}
	return &ClientCertificateCredential{
		tenantID:  tenantID,
		clientID:  clientID,
		cert:      leaf,
		chain:     certs,
		key:       rsaKey,
		sendChain: o.SendCertificateChain,
		authority: o.AuthorityHost,
		client:    newTokenHTTPClient(o.Options),
	}, nil
}

// NewClientCertificateCredentialFromFile loads a PFX or PEM file and creates
// the credential.
func NewClientCertificateCredentialFromFile(tenantID, clientID, path, password string, opts *CertificateOptions) (*ClientCertificateCredential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidInput("certificate_path", err.Error())
	}
	certs, key, err := ParseCertificates(data, []byte(password))
	if err != nil {
		return nil, err
	}
	return NewClientCertificateCredential(tenantID, clientID, certs, key, opts)
}

// ParseCertificates reads certificates and a private key from PEM or PKCS#12
// data. password is ignored for PEM.
func ParseCertificates(data, password []byte) ([]*x509.Certificate, crypto.PrivateKey, error) {
	var (
		certs []*x509.Certificate
		key   crypto.PrivateKey
	)
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		switch block.Type {
		case "CERTIFICATE":
			c, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, nil, errors.InvalidInput("certificate", fmt.Sprintf("parse certificate: %v", err))
			}
			certs = append(certs, c)
		case "PRIVATE KEY":
			k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
			if err != nil {
				return nil, nil, errors.InvalidInput("private_key", fmt.Sprintf("parse PKCS#8 key: %v", err))
			}
			key = k
		case "RSA PRIVATE KEY":
			k, err := x509.ParsePKCS1PrivateKey(block.Bytes)
			if err != nil {
				return nil, nil, errors.InvalidInput("private_key", fmt.Sprintf("parse PKCS#1 key: %v", err))
			}
			key = k
		}
	}
	if len(certs) > 0 || key != nil {
		if len(certs) == 0 || key == nil {
			return nil, nil, errors.InvalidInput("certificate", "PEM data must hold a certificate and its private key")
		}
		return certs, key, nil
	}

	k, c, err := pkcs12.Decode(data, string(password))
	if err != nil {
		return nil, nil, errors.InvalidInput("certificate", fmt.Sprintf("decode PKCS#12: %v", err))
	}
	return []*x509.Certificate{c}, k, nil
}

// GetToken signs a client assertion and exchanges it for a token.
func (c *ClientCertificateCredential) GetToken(ctx context.Context, opts TokenRequestOptions) (AccessToken, error) {
	const name = "ClientCertificateCredential"
	scopes := NormalizeScopes(opts.Scopes)
	if len(scopes) == 0 {
		return AccessToken{}, errors.CredentialUnavailable(name, nil).WithDetail("reason", "no scopes")
	}
	tenant := c.tenantID
	if opts.TenantID != "" {
		tenant = opts.TenantID
	}
	endpoint := tokenURL(c.authority, tenant)
	assertion, err := c.assertion(endpoint, time.Now())
	if err != nil {
		return AccessToken{}, errors.CredentialUnavailable(name, err)
	}
	cfg := &clientcredentials.Config{
		ClientID:  c.clientID,
		TokenURL:  endpoint,
		Scopes:    scopes,
		AuthStyle: oauth2.AuthStyleInParams,
		EndpointParams: url.Values{
			"client_assertion_type": {assertionType},
			"client_assertion":      {assertion},
		},
	}
	return requestToken(ctx, name, c.client, cfg)
}

// assertion returns the signed client assertion for audience.
func (c *ClientCertificateCredential) assertion(audience string, now time.Time) (string, error) {
	claims := gojwt.RegisteredClaims{
		Issuer:    c.clientID,
		Subject:   c.clientID,
		Audience:  gojwt.ClaimStrings{audience},
		ID:        uuid.NewString(),
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(assertionLifetime)),
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodRS256, claims)
	token.Header["x5t"] = Thumbprint(c.cert)
	if c.sendChain {
		x5c := make([]string, 0, len(c.chain))
		for _, cert := range c.chain {
			x5c = append(x5c, base64.StdEncoding.EncodeToString(cert.Raw))
		}
		token.Header["x5c"] = x5c
	}
	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign client assertion: %w", err)
	}
	return signed, nil
}

// Thumbprint returns the base64 SHA-1 thumbprint of cert used as x5t.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw) //nolint:gosec // x5t is defined as the SHA-1 thumbprint
	return base64.StdEncoding.EncodeToString(sum[:])
}
