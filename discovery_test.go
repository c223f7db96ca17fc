package opcua

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pulseiot/opcua/ua"
)

func endpoint(policy string, mode ua.MessageSecurityMode, level byte) *ua.EndpointDescription {
	return &ua.EndpointDescription{
		SecurityPolicyURI: ua.FormatSecurityPolicyURI(policy),
		SecurityMode:      mode,
		SecurityLevel:     level,
	}
}

func TestSelectEndpointNilOnEmptyList(t *testing.T) {
	assert.Nil(t, SelectEndpoint(nil, "", ua.MessageSecurityModeInvalid))
}

func TestSelectEndpointHighestSecurityLevelWhenUnconstrained(t *testing.T) {
	endpoints := []*ua.EndpointDescription{
		endpoint("None", ua.MessageSecurityModeNone, 0),
		endpoint("Basic256", ua.MessageSecurityModeSignAndEncrypt, 100),
		endpoint("Basic256", ua.MessageSecurityModeSign, 50),
	}
	got := SelectEndpoint(endpoints, "", ua.MessageSecurityModeInvalid)
	assert.Equal(t, byte(100), got.SecurityLevel)
}

func TestSelectEndpointMatchesRequestedPolicyAndMode(t *testing.T) {
	none := endpoint("None", ua.MessageSecurityModeNone, 0)
	signed := endpoint("Basic256", ua.MessageSecurityModeSign, 50)
	endpoints := []*ua.EndpointDescription{none, signed}

	got := SelectEndpoint(endpoints, "None", ua.MessageSecurityModeNone)
	assert.Same(t, none, got)

	got = SelectEndpoint(endpoints, "Basic256", ua.MessageSecurityModeSign)
	assert.Same(t, signed, got)
}

func TestSelectEndpointMatchesModeAloneWhenPolicyUnset(t *testing.T) {
	endpoints := []*ua.EndpointDescription{
		endpoint("None", ua.MessageSecurityModeNone, 0),
		endpoint("Basic256", ua.MessageSecurityModeSign, 50),
	}
	got := SelectEndpoint(endpoints, "", ua.MessageSecurityModeSign)
	assert.Equal(t, ua.MessageSecurityModeSign, got.SecurityMode)
}

func TestSelectEndpointNoMatchReturnsNil(t *testing.T) {
	endpoints := []*ua.EndpointDescription{
		endpoint("None", ua.MessageSecurityModeNone, 0),
	}
	assert.Nil(t, SelectEndpoint(endpoints, "Basic256", ua.MessageSecurityModeSignAndEncrypt))
}

func TestAnonymousPolicyIDFromNoneEndpoint(t *testing.T) {
	ep := endpoint("None", ua.MessageSecurityModeNone, 0)
	ep.UserIdentityTokens = []*ua.UserTokenPolicy{
		{PolicyID: "anon-policy", TokenType: ua.UserTokenTypeAnonymous},
		{PolicyID: "user-policy", TokenType: ua.UserTokenTypeUserName},
	}
	got := anonymousPolicyID([]*ua.EndpointDescription{ep})
	assert.Equal(t, "anon-policy", got)
}

func TestAnonymousPolicyIDFallsBackToDefault(t *testing.T) {
	ep := endpoint("Basic256", ua.MessageSecurityModeSign, 50)
	got := anonymousPolicyID([]*ua.EndpointDescription{ep})
	assert.Equal(t, defaultAnonymousPolicyID, got)
}
