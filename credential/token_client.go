package credential

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/kbukum/armkit/errors"
	"github.com/kbukum/armkit/logger"
)

// Options configure credentials that call the token endpoint.
type Options struct {
	// AuthorityHost defaults to DefaultAuthorityHost.
	AuthorityHost string
	// HTTPClient is the base client wrapped by the retrying client.
	HTTPClient *http.Client
	// RetryMax is the number of token request retries. Negative disables retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

func (o *Options) applyDefaults() {
	if o.AuthorityHost == "" {
		o.AuthorityHost = DefaultAuthorityHost
	}
	if o.RetryMax == 0 {
		o.RetryMax = 3
	}
	if o.RetryMax < 0 {
		o.RetryMax = 0
	}
	if o.RetryWaitMin <= 0 {
		o.RetryWaitMin = 500 * time.Millisecond
	}
	if o.RetryWaitMax <= 0 {
		o.RetryWaitMax = 5 * time.Second
	}
}

// newTokenHTTPClient builds the retrying client used for token requests.
// The token endpoint is outside the request pipeline, so it retries 429 and
// 5xx on its own.
func newTokenHTTPClient(o Options) *http.Client {
	rc := retryablehttp.NewClient()
	if o.HTTPClient != nil {
		rc.HTTPClient = o.HTTPClient
	}
	rc.RetryMax = o.RetryMax
	rc.RetryWaitMin = o.RetryWaitMin
	rc.RetryWaitMax = o.RetryWaitMax
	rc.Logger = leveledLogger{log: logger.WithComponent("credential")}
	return rc.StandardClient()
}

// leveledLogger routes retryablehttp output to the component logger.
type leveledLogger struct {
	log *logger.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.log.Error(msg, logger.Fields(kv...)) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.log.Debug(msg, logger.Fields(kv...)) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.log.Debug(msg, logger.Fields(kv...)) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.log.Warn(msg, logger.Fields(kv...)) }

var _ retryablehttp.LeveledLogger = leveledLogger{}

// requestToken runs one client credentials exchange.
func requestToken(ctx context.Context, name string, client *http.Client, cfg *clientcredentials.Config) (AccessToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	tok, err := cfg.Token(ctx)
	if err != nil {
		appErr := errors.CredentialUnavailable(name, err)
		var re *oauth2.RetrieveError
		if stderrors.As(err, &re) {
			if re.Response != nil {
				appErr.HTTPStatus = re.Response.StatusCode
			}
			appErr.ServerCode = re.ErrorCode
		}
		return AccessToken{}, appErr
	}
	logger.WithComponent("credential").Debug("token acquired", logger.Fields(
		"credential", name,
		"scopes", cfg.Scopes,
		"expires_on", tok.Expiry.UTC().Format(time.RFC3339),
	))
	return AccessToken{Token: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}
