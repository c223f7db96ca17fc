package opcua

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-kit/log"

	"github.com/pulseiot/opcua/ua"
	"github.com/pulseiot/opcua/uacp"
	"github.com/pulseiot/opcua/uasc"
)

// Config is the client's immutable-per-instance configuration (spec §3).
// It is assembled from functional Options, mirroring the teacher's own
// Option/Config pattern (github.com/gopcua/opcua/options.go).
type Config struct {
	Endpoint string `env:"OPCUA_ENDPOINT"`

	TimeoutMS                int64 `env:"OPCUA_TIMEOUT_MS" envDefault:"5000"`
	SecureChannelLifetimeMS  int64 `env:"OPCUA_SECURE_CHANNEL_LIFETIME_MS" envDefault:"3600000"`
	OutstandingPublishReqs   int   `env:"OPCUA_OUTSTANDING_PUBLISH_REQUESTS" envDefault:"0"`
	SecurityPolicyURI        string `env:"OPCUA_SECURITY_POLICY" envDefault:"None"`
	SecurityMode             ua.MessageSecurityMode

	sechanCfg  *uasc.Config
	sessionCfg *uasc.SessionConfig

	dialFn      DialFunc
	stateCB     func(ConnState)
	customTypes *ua.Registry
	logger      log.Logger
	metrics     *ClientMetrics
}

// Timeout returns TimeoutMS as a time.Duration, the deadline every
// synchronous Service call uses (spec §4.4 step 4).
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// SecureChannelLifetime returns SecureChannelLifetimeMS as a
// time.Duration, the lifetime requested on OpenSecureChannel (spec §3).
func (c *Config) SecureChannelLifetime() time.Duration {
	return time.Duration(c.SecureChannelLifetimeMS) * time.Millisecond
}

// Option configures a Client at construction, following the teacher's
// functional-options convention.
type Option func(*Config)

// Lifetime sets the requested secure channel token lifetime.
func Lifetime(d time.Duration) Option {
	return func(c *Config) { c.SecureChannelLifetimeMS = int64(d / time.Millisecond) }
}

// Timeout sets the synchronous Service call deadline.
func Timeout(d time.Duration) Option {
	return func(c *Config) { c.TimeoutMS = int64(d / time.Millisecond) }
}

// SecurityMode sets the desired MessageSecurityMode used to select an
// endpoint during Connect (spec §4.8 step 3).
func SecurityMode(mode ua.MessageSecurityMode) Option {
	return func(c *Config) { c.SecurityMode = mode }
}

// SecurityPolicy sets the desired security policy URI (short form or full
// URI; FormatSecurityPolicyURI expands it).
func SecurityPolicy(policy string) Option {
	return func(c *Config) { c.SecurityPolicyURI = policy }
}

// AutoPublish enables the publish pump (spec §4.6) and sets the target
// number of outstanding PublishRequests. 0 (the default) disables it.
func AutoPublish(n int) Option {
	return func(c *Config) { c.OutstandingPublishReqs = n }
}

// WithDialFunc overrides how Connect opens the underlying transport (spec
// §3 `connect_fn`); tests use this to substitute an in-memory pipe.
func WithDialFunc(fn DialFunc) Option {
	return func(c *Config) { c.dialFn = fn }
}

// StateCallback registers the observer fired synchronously on every state
// transition (spec §3 `state_callback`, invariant "fires exactly once").
func StateCallback(fn func(ConnState)) Option {
	return func(c *Config) { c.stateCB = fn }
}

// CustomDataTypes merges extra TypeDescriptors into the registry the
// Client keeps (spec §3 `custom_data_types`). Response decoding does not
// consult that registry: ExtensionObject bodies are resolved against the
// ua package's default registry, so these descriptors are not used there.
func CustomDataTypes(reg *ua.Registry) Option {
	return func(c *Config) { c.customTypes = reg }
}

// Logger sets the structured application logger used for state
// transitions, renewals, and publish-pump throttling. Defaults to a
// no-op logger if unset.
func Logger(l log.Logger) Option {
	return func(c *Config) { c.logger = l }
}

// Metrics attaches a ClientMetrics built with NewMetrics, so every state
// transition, renewal and publish-pump tick updates it (SPEC_FULL.md
// DOMAIN STACK). Unset, the client updates an unregistered no-op set.
func Metrics(m *ClientMetrics) Option {
	return func(c *Config) { c.metrics = m }
}

// ApplicationURI / SessionName / Locales configure the Session the client
// creates on Connect (spec §4.3).
func ApplicationURI(uri string) Option {
	return func(c *Config) { c.sessionCfg.ApplicationURI = uri }
}

func SessionName(name string) Option {
	return func(c *Config) { c.sessionCfg.SessionName = name }
}

func Locales(locales ...string) Option {
	return func(c *Config) { c.sessionCfg.Locales = locales }
}

func newConfig(endpoint string, opts ...Option) *Config {
	cfg := &Config{
		Endpoint:                endpoint,
		TimeoutMS:               5000,
		SecureChannelLifetimeMS: 60 * 60 * 1000,
		SecurityPolicyURI:       "None",
		dialFn:                  uacp.DialTCP,
		logger:                  log.NewNopLogger(),
		sechanCfg:               &uasc.Config{},
		sessionCfg:              &uasc.SessionConfig{SessionName: "pulseiot-opcua", RequestedSessionTimeout: 20 * time.Minute},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.sechanCfg.SecurityPolicyURI = ua.FormatSecurityPolicyURI(cfg.SecurityPolicyURI)
	cfg.sechanCfg.SecurityMode = cfg.SecurityMode
	cfg.sechanCfg.RequestedLifetime = uint32(cfg.SecureChannelLifetimeMS)
	return cfg
}

// LoadConfig builds a Config by parsing environment variables (the
// OPCUA_* tags above) with github.com/caarlos0/env, then applies opts on
// top -- mirroring how the pack's adapter (absmach-magistrala's
// cmd/opcua/main.go) loads its client config with env.Parse before
// connecting.
func LoadConfig(opts ...Option) (*Config, error) {
	cfg := newConfig("", opts...)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.sechanCfg.SecurityPolicyURI = ua.FormatSecurityPolicyURI(cfg.SecurityPolicyURI)
	cfg.sechanCfg.SecurityMode = cfg.SecurityMode
	cfg.sechanCfg.RequestedLifetime = uint32(cfg.SecureChannelLifetimeMS)
	return cfg, nil
}
