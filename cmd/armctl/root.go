package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/armkit/config"
	"github.com/kbukum/armkit/credential"
	"github.com/kbukum/armkit/logger"
	"github.com/kbukum/armkit/observability"
	"github.com/kbukum/armkit/util"
	"github.com/kbukum/armkit/version"
)

const appName = "armctl"

// globalOptions are the persistent flags. Flags that are set win over the
// config file and the environment.
type globalOptions struct {
	configFile     string
	envFile        string
	endpoint       string
	queueEndpoint  string
	subscriptionID string
	output         string
	verbose        bool

	authMode     string
	tenantID     string
	clientID     string
	clientSecret string
	certificate  string
	token        string
}

// app is the state shared by every command of one invocation.
type app struct {
	opts globalOptions
	cfg  config.ClientConfig

	// newCredential is replaced in tests.
	newCredential func(*config.ClientConfig) (credential.TokenCredential, error)
	cred          credential.TokenCredential

	// initMeter is replaced in tests.
	initMeter func(context.Context, observability.MeterConfig) (*sdkmetric.MeterProvider, error)
	shutdown  []func(context.Context) error
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(&app{newCredential: credential.FromConfig, initMeter: observability.InitMeter})
}

func newRootCommandWith(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Azure Resource Manager and queue storage CLI",
		Long: `armctl calls the Microsoft.DataMigration management API and the Azure
Queue storage data plane through the armkit request pipeline.

Configuration is read from config.yml and .env, then ARMKIT_* environment
variables, then flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd.Context()) },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&a.opts.configFile, "config", "c", "", "config file (default is ./config.yml)")
	f.StringVar(&a.opts.envFile, "env-file", "", "dotenv file (default is ./.env)")
	f.StringVar(&a.opts.endpoint, "endpoint", "", "management endpoint")
	f.StringVar(&a.opts.queueEndpoint, "queue-endpoint", "", "storage account queue endpoint")
	f.StringVarP(&a.opts.subscriptionID, "subscription", "s", "", "subscription id")
	f.StringVarP(&a.opts.output, "output", "o", outputTable, "output format (table, json, yaml)")
	f.BoolVarP(&a.opts.verbose, "verbose", "v", false, "log every request")
	f.StringVar(&a.opts.authMode, "auth-mode", "", "credential: default, secret, certificate or static")
	f.StringVar(&a.opts.tenantID, "tenant-id", "", "Entra ID tenant")
	f.StringVar(&a.opts.clientID, "client-id", "", "application (client) id")
	f.StringVar(&a.opts.clientSecret, "client-secret", "", "client secret")
	f.StringVar(&a.opts.certificate, "certificate", "", "PEM or PFX client certificate")
	f.StringVar(&a.opts.token, "token", "", "static bearer token")

	root.AddCommand(
		newVersionCommand(),
		newTokenCommand(a),
		newSQLMigrationCommand(a),
		newOperationsCommand(a),
		newQueuesCommand(a),
	)
	return root
}

// setup loads the configuration, initialises logging and, when enabled,
// telemetry.
func (a *app) setup(ctx context.Context) error {
	if err := validateOutput(a.opts.output); err != nil {
		return err
	}

	var loadOpts []config.LoaderOption
	if a.opts.configFile != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(a.opts.configFile))
	}
	if a.opts.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(a.opts.envFile))
	}
	if err := config.LoadConfig(appName, &a.cfg, loadOpts...); err != nil {
		return err
	}
	a.applyFlags()
	if a.cfg.Name == "" {
		a.cfg.Name = appName
	}
	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Init(a.cfg.Logging)
	return a.initTelemetry(ctx)
}

func (a *app) applyFlags() {
	o, c := a.opts, &a.cfg
	c.Endpoint = util.Coalesce(o.endpoint, c.Endpoint)
	c.Storage.QueueEndpoint = util.Coalesce(o.queueEndpoint, c.Storage.QueueEndpoint)
	c.SubscriptionID = util.Coalesce(o.subscriptionID, c.SubscriptionID)
	c.Auth.Mode = util.Coalesce(o.authMode, c.Auth.Mode)
	c.Auth.TenantID = util.Coalesce(o.tenantID, c.Auth.TenantID)
	c.Auth.ClientID = util.Coalesce(o.clientID, c.Auth.ClientID)
	c.Auth.ClientSecret = util.Coalesce(o.clientSecret, c.Auth.ClientSecret)
	c.Auth.CertificatePath = util.Coalesce(o.certificate, c.Auth.CertificatePath)
	c.Auth.Token = util.Coalesce(o.token, c.Auth.Token)
	if a.opts.verbose {
		a.cfg.Logging.Level = "debug"
	}
}

// initTelemetry starts the enabled providers. On failure the providers
// already started are shut down.
func (a *app) initTelemetry(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(err, a.close(ctx))
		}
	}()
	t := a.cfg.Telemetry
	if t.Tracing {
		tp, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName:    appName,
			ServiceVersion: version.GetShortVersion(),
			Endpoint:       t.OTLPEndpoint,
			Insecure:       t.Insecure,
			SampleRate:     t.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.shutdown = append(a.shutdown, tp.Shutdown)
	}
	if t.Metrics {
		mc := observability.DefaultMeterConfig(appName)
		mc.ServiceVersion = version.GetShortVersion()
		mc.Insecure = t.Insecure
		if t.OTLPEndpoint != "" {
			mc.Endpoint = t.OTLPEndpoint
		}
		initMeter := a.initMeter
		if initMeter == nil {
			initMeter = observability.InitMeter
		}
		mp, err := initMeter(ctx, mc)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		a.shutdown = append(a.shutdown, mp.Shutdown)
	}
	return nil
}

// close flushes telemetry.
func (a *app) close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	var errs []error
	for _, fn := range a.shutdown {
		errs = append(errs, fn(ctx))
	}
	a.shutdown = nil
	return errors.Join(errs...)
}

// credential builds the configured credential once.
func (a *app) credential() (credential.TokenCredential, error) {
	if a.cred != nil {
		return a.cred, nil
	}
	cred, err := a.newCredential(&a.cfg)
	if err != nil {
		return nil, err
	}
	a.cred = cred
	return cred, nil
}

func (a *app) subscription() (string, error) {
	if a.cfg.SubscriptionID == "" {
		return "", errors.New("no subscription: set --subscription, subscription_id or ARMKIT_SUBSCRIPTION_ID")
	}
	return a.cfg.SubscriptionID, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// No configuration is needed to print the version.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			return err
		},
	}
}
