// Package id holds the namespace-0 numeric identifiers used to tag the
// binary encoding of each Service request/response and of the polymorphic
// structures (identity tokens, notification data, history details) carried
// inside an ExtensionObject. These mirror the role of the UA_TYPES array
// and its NodeId-keyed descriptors in the original C client: a process-wide
// table handed to callers as IDs they can match against, rather than
// string names.
package id

const (
	ReadRequest_Encoding_DefaultBinary  = 631
	ReadResponse_Encoding_DefaultBinary = 634

	WriteRequest_Encoding_DefaultBinary  = 673
	WriteResponse_Encoding_DefaultBinary = 676

	BrowseRequest_Encoding_DefaultBinary  = 527
	BrowseResponse_Encoding_DefaultBinary = 530

	BrowseNextRequest_Encoding_DefaultBinary  = 533
	BrowseNextResponse_Encoding_DefaultBinary = 536

	TranslateBrowsePathsToNodeIdsRequest_Encoding_DefaultBinary  = 554
	TranslateBrowsePathsToNodeIdsResponse_Encoding_DefaultBinary = 557

	RegisterNodesRequest_Encoding_DefaultBinary  = 560
	RegisterNodesResponse_Encoding_DefaultBinary = 563

	UnregisterNodesRequest_Encoding_DefaultBinary  = 566
	UnregisterNodesResponse_Encoding_DefaultBinary = 569

	AddNodesRequest_Encoding_DefaultBinary  = 488
	AddNodesResponse_Encoding_DefaultBinary = 491

	AddReferencesRequest_Encoding_DefaultBinary  = 494
	AddReferencesResponse_Encoding_DefaultBinary = 497

	DeleteNodesRequest_Encoding_DefaultBinary  = 500
	DeleteNodesResponse_Encoding_DefaultBinary = 503

	DeleteReferencesRequest_Encoding_DefaultBinary  = 506
	DeleteReferencesResponse_Encoding_DefaultBinary = 509

	CallRequest_Encoding_DefaultBinary  = 712
	CallResponse_Encoding_DefaultBinary = 715

	QueryFirstRequest_Encoding_DefaultBinary  = 616
	QueryFirstResponse_Encoding_DefaultBinary = 619

	QueryNextRequest_Encoding_DefaultBinary  = 622
	QueryNextResponse_Encoding_DefaultBinary = 625

	CreateMonitoredItemsRequest_Encoding_DefaultBinary  = 751
	CreateMonitoredItemsResponse_Encoding_DefaultBinary = 754

	DeleteMonitoredItemsRequest_Encoding_DefaultBinary  = 784
	DeleteMonitoredItemsResponse_Encoding_DefaultBinary = 787

	CreateSubscriptionRequest_Encoding_DefaultBinary  = 790
	CreateSubscriptionResponse_Encoding_DefaultBinary = 793

	ModifySubscriptionRequest_Encoding_DefaultBinary  = 796
	ModifySubscriptionResponse_Encoding_DefaultBinary = 799

	DeleteSubscriptionsRequest_Encoding_DefaultBinary  = 845
	DeleteSubscriptionsResponse_Encoding_DefaultBinary = 848

	PublishRequest_Encoding_DefaultBinary  = 826
	PublishResponse_Encoding_DefaultBinary = 829

	OpenSecureChannelRequest_Encoding_DefaultBinary  = 446
	OpenSecureChannelResponse_Encoding_DefaultBinary = 449

	CloseSecureChannelRequest_Encoding_DefaultBinary  = 452
	CloseSecureChannelResponse_Encoding_DefaultBinary = 455

	GetEndpointsRequest_Encoding_DefaultBinary  = 428
	GetEndpointsResponse_Encoding_DefaultBinary = 431

	FindServersRequest_Encoding_DefaultBinary  = 422
	FindServersResponse_Encoding_DefaultBinary = 425

	FindServersOnNetworkRequest_Encoding_DefaultBinary  = 12208
	FindServersOnNetworkResponse_Encoding_DefaultBinary = 12209

	CreateSessionRequest_Encoding_DefaultBinary  = 461
	CreateSessionResponse_Encoding_DefaultBinary = 464

	ActivateSessionRequest_Encoding_DefaultBinary  = 467
	ActivateSessionResponse_Encoding_DefaultBinary = 470

	CloseSessionRequest_Encoding_DefaultBinary  = 473
	CloseSessionResponse_Encoding_DefaultBinary = 476

	// Polymorphic payloads carried inside an ExtensionObject.
	AnonymousIdentityToken_Encoding_DefaultBinary = 319
	UserNameIdentityToken_Encoding_DefaultBinary  = 325
	X509IdentityToken_Encoding_DefaultBinary      = 331
	IssuedIdentityToken_Encoding_DefaultBinary    = 938

	DataChangeNotification_Encoding_DefaultBinary  = 811
	EventNotificationList_Encoding_DefaultBinary   = 915
	StatusChangeNotification_Encoding_DefaultBinary = 821

	ReadRawModifiedDetails_Encoding_DefaultBinary = 669
)
