package ua

import "github.com/pulseiot/opcua/id"

// UserIdentityToken is the sum type ActivateSessionRequest.UserIdentityToken
// carries, wrapped in an ExtensionObject (Part 4, 7.36).
type UserIdentityToken interface {
	PolicyIDOf() string
}

// AnonymousIdentityToken is used when no credentials are presented
// (Part 4, 7.36.2).
type AnonymousIdentityToken struct {
	PolicyID string
}

func (t *AnonymousIdentityToken) PolicyIDOf() string { return t.PolicyID }

func (t *AnonymousIdentityToken) Encode(enc *Encoder) error {
	enc.WriteString(t.PolicyID)
	return nil
}
func (t *AnonymousIdentityToken) Decode(dec *Decoder) error {
	t.PolicyID = dec.ReadString()
	return nil
}

// UserNameIdentityToken carries a username and, once ActivateSession
// encrypts it, an opaque password blob (Part 4, 7.36.4). Per spec §4.3 the
// password is "encrypted under the server's certificate's public key"; this
// client treats that encryption step as pluggable/opaque (spec §1) and
// stores whatever ciphertext the policy produced.
type UserNameIdentityToken struct {
	PolicyID            string
	UserName            string
	Password            []byte
	EncryptionAlgorithm string
}

func (t *UserNameIdentityToken) PolicyIDOf() string { return t.PolicyID }

func (t *UserNameIdentityToken) Encode(enc *Encoder) error {
	enc.WriteString(t.PolicyID)
	enc.WriteString(t.UserName)
	enc.WriteByteString(t.Password)
	enc.WriteString(t.EncryptionAlgorithm)
	return nil
}
func (t *UserNameIdentityToken) Decode(dec *Decoder) error {
	t.PolicyID = dec.ReadString()
	t.UserName = dec.ReadString()
	t.Password = dec.ReadByteString()
	t.EncryptionAlgorithm = dec.ReadString()
	return nil
}

// X509IdentityToken authenticates with a client certificate (Part 4, 7.36.5).
type X509IdentityToken struct {
	PolicyID        string
	CertificateData []byte
}

func (t *X509IdentityToken) PolicyIDOf() string { return t.PolicyID }

func (t *X509IdentityToken) Encode(enc *Encoder) error {
	enc.WriteString(t.PolicyID)
	enc.WriteByteString(t.CertificateData)
	return nil
}
func (t *X509IdentityToken) Decode(dec *Decoder) error {
	t.PolicyID = dec.ReadString()
	t.CertificateData = dec.ReadByteString()
	return nil
}

// IssuedIdentityToken carries a WS-SecurityToken-issued blob (Part 4, 7.36.6).
type IssuedIdentityToken struct {
	PolicyID            string
	TokenData           []byte
	EncryptionAlgorithm string
}

func (t *IssuedIdentityToken) PolicyIDOf() string { return t.PolicyID }

func (t *IssuedIdentityToken) Encode(enc *Encoder) error {
	enc.WriteString(t.PolicyID)
	enc.WriteByteString(t.TokenData)
	enc.WriteString(t.EncryptionAlgorithm)
	return nil
}
func (t *IssuedIdentityToken) Decode(dec *Decoder) error {
	t.PolicyID = dec.ReadString()
	t.TokenData = dec.ReadByteString()
	t.EncryptionAlgorithm = dec.ReadString()
	return nil
}

// identityTokenID returns the binary encoding id an identity token must be
// tagged with inside its ExtensionObject wrapper.
func identityTokenID(tok UserIdentityToken) uint32 {
	switch tok.(type) {
	case *AnonymousIdentityToken:
		return id.AnonymousIdentityToken_Encoding_DefaultBinary
	case *UserNameIdentityToken:
		return id.UserNameIdentityToken_Encoding_DefaultBinary
	case *X509IdentityToken:
		return id.X509IdentityToken_Encoding_DefaultBinary
	case *IssuedIdentityToken:
		return id.IssuedIdentityToken_Encoding_DefaultBinary
	default:
		return 0
	}
}
