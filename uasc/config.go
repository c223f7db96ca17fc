package uasc

import (
	"time"

	"github.com/pulseiot/opcua/ua"
)

// Config is the secure channel's static configuration (spec §3): the
// requested token lifetime, local buffer/chunk limits, and security
// policy. Only SecurityPolicyURINone is implemented directly; for any
// other policy Open derives key material from the nonce pair with HKDF,
// but chunks are neither signed nor encrypted, matching the spec's
// framing of cryptographic policies as "pluggable".
type Config struct {
	SecurityPolicyURI string
	SecurityMode      ua.MessageSecurityMode
	RequestedLifetime uint32 // ms
	Certificate       []byte
	PrivateKey        []byte

	MaxMessageSize int
	MaxChunkCount  int
}

// SessionConfig carries the parameters ActivateSession needs once a
// channel and a CreateSessionResponse exist (spec §4.3).
type SessionConfig struct {
	SessionName             string
	ApplicationURI          string
	ServerURI               string
	Locales                 []string
	UserIdentity            ua.UserIdentityToken
	RequestedSessionTimeout time.Duration
}

// defaultLifetime is used when Config.RequestedLifetime is zero.
const defaultLifetime = 60 * 60 * 1000 // 1 hour, ms

// renewalThreshold is the fraction of the revised lifetime after which a
// renewal is due (spec §3 "renewal deadline = created_at + 0.75 ×
// lifetime").
const renewalThreshold = 0.75
