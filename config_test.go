package opcua

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseiot/opcua/ua"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := newConfig("opc.tcp://localhost:4840")
	assert.Equal(t, 5*time.Second, cfg.Timeout())
	assert.Equal(t, time.Hour, cfg.SecureChannelLifetime())
	assert.Equal(t, ua.SecurityPolicyURINone, cfg.sechanCfg.SecurityPolicyURI)
	assert.Equal(t, 0, cfg.OutstandingPublishReqs)
}

func TestOptionsOverrideDefaults(t *testing.T) {
	cfg := newConfig("opc.tcp://localhost:4840",
		Timeout(2*time.Second),
		Lifetime(10*time.Minute),
		SecurityPolicy("Basic256"),
		SecurityMode(ua.MessageSecurityModeSign),
		AutoPublish(3),
	)
	assert.Equal(t, 2*time.Second, cfg.Timeout())
	assert.Equal(t, 10*time.Minute, cfg.SecureChannelLifetime())
	assert.Equal(t, ua.FormatSecurityPolicyURI("Basic256"), cfg.sechanCfg.SecurityPolicyURI)
	assert.Equal(t, ua.MessageSecurityModeSign, cfg.sechanCfg.SecurityMode)
	assert.Equal(t, 3, cfg.OutstandingPublishReqs)
}

func TestLoadConfigAppliesEnvThenOptions(t *testing.T) {
	t.Setenv("OPCUA_ENDPOINT", "opc.tcp://env-host:4840")
	t.Setenv("OPCUA_TIMEOUT_MS", "1500")

	cfg, err := LoadConfig(SessionName("from-option"))
	require.NoError(t, err)
	assert.Equal(t, "opc.tcp://env-host:4840", cfg.Endpoint)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout())
	assert.Equal(t, "from-option", cfg.sessionCfg.SessionName)
}

func TestNewClientFromConfigFallsBackToNopMetrics(t *testing.T) {
	c := NewClient("opc.tcp://localhost:4840")
	assert.NotNil(t, c.Metrics())
	assert.Equal(t, Disconnected, c.GetState())
}
