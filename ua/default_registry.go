package ua

import "github.com/pulseiot/opcua/id"

// DefaultRegistry returns a fresh registry pre-populated with the
// polymorphic payloads this client needs to decode on its own (identity
// tokens echoed back by diagnostics, and the three NotificationData
// variants a Subscription's publish pump routes per spec §4.6). NewClient
// starts from a fresh DefaultRegistry and merges in the registry given to
// the CustomDataTypes option (spec §3). ExtensionObject.Decode resolves
// against the package-level instance below, not a client's merged registry.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeDescriptor{ID: id.AnonymousIdentityToken_Encoding_DefaultBinary, New: func() interface{} { return &AnonymousIdentityToken{} }})
	r.Register(TypeDescriptor{ID: id.UserNameIdentityToken_Encoding_DefaultBinary, New: func() interface{} { return &UserNameIdentityToken{} }})
	r.Register(TypeDescriptor{ID: id.X509IdentityToken_Encoding_DefaultBinary, New: func() interface{} { return &X509IdentityToken{} }})
	r.Register(TypeDescriptor{ID: id.IssuedIdentityToken_Encoding_DefaultBinary, New: func() interface{} { return &IssuedIdentityToken{} }})

	r.Register(TypeDescriptor{ID: id.DataChangeNotification_Encoding_DefaultBinary, New: func() interface{} { return &DataChangeNotification{} }})
	r.Register(TypeDescriptor{ID: id.EventNotificationList_Encoding_DefaultBinary, New: func() interface{} { return &EventNotificationList{} }})
	r.Register(TypeDescriptor{ID: id.StatusChangeNotification_Encoding_DefaultBinary, New: func() interface{} { return &StatusChangeNotification{} }})

	r.Register(TypeDescriptor{ID: id.ReadRawModifiedDetails_Encoding_DefaultBinary, New: func() interface{} { return &ReadRawModifiedDetails{} }})
	return r
}

var defaultRegistry = DefaultRegistry()
