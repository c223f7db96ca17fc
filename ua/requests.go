package ua

import (
	"time"

	"github.com/pulseiot/opcua/id"
)

// Every Request/Response pair below mirrors the corresponding
// UA_Client_Service_* wrapper in the original header (spec §6): one Go
// struct per side, a RequestHeader/ResponseHeader embedded first (wire
// order), and an entry in TypeID so the dispatch layer (spec §4.4) can tag
// the outgoing envelope and check the incoming one.

// --- Discovery --------------------------------------------------------

type GetEndpointsRequest struct {
	RequestHeader RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ProfileURIs   []string
}

func (r *GetEndpointsRequest) Header() *RequestHeader { return &r.RequestHeader }

type GetEndpointsResponse struct {
	ResponseHeader ResponseHeader
	Endpoints      []*EndpointDescription
}

func (r *GetEndpointsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type FindServersRequest struct {
	RequestHeader RequestHeader
	EndpointURL   string
	LocaleIDs     []string
	ServerURIs    []string
}

func (r *FindServersRequest) Header() *RequestHeader { return &r.RequestHeader }

type FindServersResponse struct {
	ResponseHeader ResponseHeader
	Servers        []*ApplicationDescription
}

func (r *FindServersResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type FindServersOnNetworkRequest struct {
	RequestHeader      RequestHeader
	StartingRecordID   uint32
	MaxRecordsToReturn uint32
	ServerCapabilityFilter []string
}

func (r *FindServersOnNetworkRequest) Header() *RequestHeader { return &r.RequestHeader }

type FindServersOnNetworkResponse struct {
	ResponseHeader ResponseHeader
	LastCounterResetTime time.Time
	Servers        []*ServerOnNetwork
}

func (r *FindServersOnNetworkResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- SecureChannel service set -----------------------------------------

// SecurityTokenRequestType distinguishes an initial OPN from a renewal
// (spec §4.2 step 2).
type SecurityTokenRequestType uint32

const (
	SecurityTokenIssue SecurityTokenRequestType = iota
	SecurityTokenRenew
)

type OpenSecureChannelRequest struct {
	RequestHeader          RequestHeader
	ClientProtocolVersion  uint32
	RequestType            SecurityTokenRequestType
	SecurityMode           MessageSecurityMode
	ClientNonce            []byte
	RequestedLifetime      uint32
}

func (r *OpenSecureChannelRequest) Header() *RequestHeader { return &r.RequestHeader }

type ChannelSecurityToken struct {
	ChannelID       uint32
	TokenID         uint32
	CreatedAt       time.Time
	RevisedLifetime uint32
}

type OpenSecureChannelResponse struct {
	ResponseHeader        ResponseHeader
	ServerProtocolVersion uint32
	SecurityToken         ChannelSecurityToken
	ServerNonce           []byte
}

func (r *OpenSecureChannelResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type CloseSecureChannelRequest struct {
	RequestHeader RequestHeader
}

func (r *CloseSecureChannelRequest) Header() *RequestHeader { return &r.RequestHeader }

type CloseSecureChannelResponse struct {
	ResponseHeader ResponseHeader
}

func (r *CloseSecureChannelResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- Session service set -------------------------------------------------

type CreateSessionRequest struct {
	RequestHeader           RequestHeader
	ClientDescription       ApplicationDescription
	ServerURI               string
	EndpointURL             string
	SessionName             string
	ClientNonce             []byte
	ClientCertificate       []byte
	RequestedSessionTimeout float64
	MaxResponseMessageSize  uint32
}

func (r *CreateSessionRequest) Header() *RequestHeader { return &r.RequestHeader }

type CreateSessionResponse struct {
	ResponseHeader             ResponseHeader
	SessionID                  *NodeID
	AuthenticationToken        *NodeID
	RevisedSessionTimeout      float64
	ServerNonce                []byte
	ServerCertificate          []byte
	ServerEndpoints            []*EndpointDescription
	ServerSignature            SignatureData
	MaxRequestMessageSize      uint32
}

func (r *CreateSessionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type ActivateSessionRequest struct {
	RequestHeader              RequestHeader
	ClientSignature            SignatureData
	LocaleIDs                  []string
	UserIdentityToken          *ExtensionObject
	UserTokenSignature         SignatureData
}

func (r *ActivateSessionRequest) Header() *RequestHeader { return &r.RequestHeader }

type ActivateSessionResponse struct {
	ResponseHeader ResponseHeader
	ServerNonce    []byte
	Results        []StatusCode
}

func (r *ActivateSessionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type CloseSessionRequest struct {
	RequestHeader       RequestHeader
	DeleteSubscriptions bool
}

func (r *CloseSessionRequest) Header() *RequestHeader { return &r.RequestHeader }

type CloseSessionResponse struct {
	ResponseHeader ResponseHeader
}

func (r *CloseSessionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- Attribute service set ----------------------------------------------

type ReadRequest struct {
	RequestHeader      RequestHeader
	MaxAge             float64
	TimestampsToReturn uint32
	NodesToRead        []*ReadValueID
}

func (r *ReadRequest) Header() *RequestHeader { return &r.RequestHeader }

type ReadResponse struct {
	ResponseHeader ResponseHeader
	Results        []*DataValue
}

func (r *ReadResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type WriteRequest struct {
	RequestHeader RequestHeader
	NodesToWrite  []*WriteValue
}

func (r *WriteRequest) Header() *RequestHeader { return &r.RequestHeader }

type WriteResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *WriteResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- Method service set ---------------------------------------------------

type CallRequest struct {
	RequestHeader RequestHeader
	MethodsToCall []*CallMethodRequest
}

func (r *CallRequest) Header() *RequestHeader { return &r.RequestHeader }

type CallResponse struct {
	ResponseHeader ResponseHeader
	Results        []*CallMethodResult
}

func (r *CallResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- View service set ------------------------------------------------------

type BrowseRequest struct {
	RequestHeader          RequestHeader
	RequestedMaxReferencesPerNode uint32
	NodesToBrowse          []*BrowseDescription
}

func (r *BrowseRequest) Header() *RequestHeader { return &r.RequestHeader }

type BrowseResult struct {
	StatusCode        StatusCode
	ContinuationPoint []byte
	References        []*ReferenceDescription
}

type BrowseResponse struct {
	ResponseHeader ResponseHeader
	Results        []*BrowseResult
}

func (r *BrowseResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type BrowseNextRequest struct {
	RequestHeader        RequestHeader
	ReleaseContinuationPoints bool
	ContinuationPoints   [][]byte
}

func (r *BrowseNextRequest) Header() *RequestHeader { return &r.RequestHeader }

type BrowseNextResponse struct {
	ResponseHeader ResponseHeader
	Results        []*BrowseResult
}

func (r *BrowseNextResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type BrowsePath struct {
	StartingNode  *NodeID
	RelativePath  []*QualifiedName
}

type BrowsePathTarget struct {
	TargetID        ExpandedNodeID
	RemainingPathIndex uint32
}

type BrowsePathResult struct {
	StatusCode StatusCode
	Targets    []*BrowsePathTarget
}

type TranslateBrowsePathsToNodeIdsRequest struct {
	RequestHeader RequestHeader
	BrowsePaths   []*BrowsePath
}

func (r *TranslateBrowsePathsToNodeIdsRequest) Header() *RequestHeader { return &r.RequestHeader }

type TranslateBrowsePathsToNodeIdsResponse struct {
	ResponseHeader ResponseHeader
	Results        []*BrowsePathResult
}

func (r *TranslateBrowsePathsToNodeIdsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type RegisterNodesRequest struct {
	RequestHeader RequestHeader
	NodesToRegister []*NodeID
}

func (r *RegisterNodesRequest) Header() *RequestHeader { return &r.RequestHeader }

type RegisterNodesResponse struct {
	ResponseHeader  ResponseHeader
	RegisteredNodeIDs []*NodeID
}

func (r *RegisterNodesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type UnregisterNodesRequest struct {
	RequestHeader     RequestHeader
	NodesToUnregister []*NodeID
}

func (r *UnregisterNodesRequest) Header() *RequestHeader { return &r.RequestHeader }

type UnregisterNodesResponse struct {
	ResponseHeader ResponseHeader
}

func (r *UnregisterNodesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- NodeManagement service set --------------------------------------------

type AddNodesItem struct {
	ParentNodeID     ExpandedNodeID
	ReferenceTypeID  *NodeID
	RequestedNewNodeID ExpandedNodeID
	BrowseName       QualifiedName
	NodeClass        uint32
	NodeAttributes   *ExtensionObject
	TypeDefinition   ExpandedNodeID
}

type AddNodesResult struct {
	StatusCode StatusCode
	AddedNodeID *NodeID
}

type AddNodesRequest struct {
	RequestHeader RequestHeader
	NodesToAdd    []*AddNodesItem
}

func (r *AddNodesRequest) Header() *RequestHeader { return &r.RequestHeader }

type AddNodesResponse struct {
	ResponseHeader ResponseHeader
	Results        []*AddNodesResult
}

func (r *AddNodesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type AddReferencesItem struct {
	SourceNodeID     *NodeID
	ReferenceTypeID  *NodeID
	IsForward        bool
	TargetServerURI  string
	TargetNodeID     ExpandedNodeID
	TargetNodeClass  uint32
}

type AddReferencesRequest struct {
	RequestHeader   RequestHeader
	ReferencesToAdd []*AddReferencesItem
}

func (r *AddReferencesRequest) Header() *RequestHeader { return &r.RequestHeader }

type AddReferencesResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *AddReferencesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type DeleteNodesItem struct {
	NodeID                     *NodeID
	DeleteTargetReferences bool
}

type DeleteNodesRequest struct {
	RequestHeader RequestHeader
	NodesToDelete []*DeleteNodesItem
}

func (r *DeleteNodesRequest) Header() *RequestHeader { return &r.RequestHeader }

type DeleteNodesResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteNodesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type DeleteReferencesItem struct {
	SourceNodeID    *NodeID
	ReferenceTypeID *NodeID
	IsForward       bool
	TargetNodeID    ExpandedNodeID
	DeleteBidirectional bool
}

type DeleteReferencesRequest struct {
	RequestHeader      RequestHeader
	ReferencesToDelete []*DeleteReferencesItem
}

func (r *DeleteReferencesRequest) Header() *RequestHeader { return &r.RequestHeader }

type DeleteReferencesResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteReferencesResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- Query service set ------------------------------------------------------

type NodeTypeDescription struct {
	TypeDefinitionNode ExpandedNodeID
	IncludeSubTypes    bool
}

type QueryDataDescription struct {
	RelativePath []*QualifiedName
	AttributeID  uint32
	IndexRange   string
}

type QueryFirstRequest struct {
	RequestHeader      RequestHeader
	NodeTypes          []*NodeTypeDescription
	Filter             *ExtensionObject
	MaxDataSetsToReturn uint32
	MaxReferencesToReturn uint32
}

func (r *QueryFirstRequest) Header() *RequestHeader { return &r.RequestHeader }

type QueryDataSet struct {
	NodeID         ExpandedNodeID
	TypeDefinitionNode ExpandedNodeID
	Values         []*Variant
}

type QueryFirstResponse struct {
	ResponseHeader    ResponseHeader
	QueryDataSets     []*QueryDataSet
	ContinuationPoint []byte
}

func (r *QueryFirstResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type QueryNextRequest struct {
	RequestHeader             RequestHeader
	ReleaseContinuationPoint bool
	ContinuationPoint        []byte
}

func (r *QueryNextRequest) Header() *RequestHeader { return &r.RequestHeader }

type QueryNextResponse struct {
	ResponseHeader    ResponseHeader
	QueryDataSets     []*QueryDataSet
	RevisedContinuationPoint []byte
}

func (r *QueryNextResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- MonitoredItem / Subscription service sets -----------------------------

type CreateMonitoredItemsRequest struct {
	RequestHeader      RequestHeader
	SubscriptionID     uint32
	TimestampsToReturn uint32
	ItemsToCreate      []*MonitoredItemCreateRequest
}

func (r *CreateMonitoredItemsRequest) Header() *RequestHeader { return &r.RequestHeader }

type CreateMonitoredItemsResponse struct {
	ResponseHeader ResponseHeader
	Results        []*MonitoredItemCreateResult
}

func (r *CreateMonitoredItemsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type DeleteMonitoredItemsRequest struct {
	RequestHeader  RequestHeader
	SubscriptionID uint32
	MonitoredItemIDs []uint32
}

func (r *DeleteMonitoredItemsRequest) Header() *RequestHeader { return &r.RequestHeader }

type DeleteMonitoredItemsResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteMonitoredItemsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type CreateSubscriptionRequest struct {
	RequestHeader               RequestHeader
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	PublishingEnabled           bool
	Priority                    byte
}

func (r *CreateSubscriptionRequest) Header() *RequestHeader { return &r.RequestHeader }

type CreateSubscriptionResponse struct {
	ResponseHeader            ResponseHeader
	SubscriptionID            uint32
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

func (r *CreateSubscriptionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type ModifySubscriptionRequest struct {
	RequestHeader               RequestHeader
	SubscriptionID              uint32
	RequestedPublishingInterval float64
	RequestedLifetimeCount      uint32
	RequestedMaxKeepAliveCount  uint32
	MaxNotificationsPerPublish  uint32
	Priority                    byte
}

func (r *ModifySubscriptionRequest) Header() *RequestHeader { return &r.RequestHeader }

type ModifySubscriptionResponse struct {
	ResponseHeader            ResponseHeader
	RevisedPublishingInterval float64
	RevisedLifetimeCount      uint32
	RevisedMaxKeepAliveCount  uint32
}

func (r *ModifySubscriptionResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type DeleteSubscriptionsRequest struct {
	RequestHeader   RequestHeader
	SubscriptionIDs []uint32
}

func (r *DeleteSubscriptionsRequest) Header() *RequestHeader { return &r.RequestHeader }

type DeleteSubscriptionsResponse struct {
	ResponseHeader ResponseHeader
	Results        []StatusCode
}

func (r *DeleteSubscriptionsResponse) Header() *ResponseHeader { return &r.ResponseHeader }

type SubscriptionAcknowledgement struct {
	SubscriptionID uint32
	SequenceNumber uint32
}

type PublishRequest struct {
	RequestHeader                  RequestHeader
	SubscriptionAcknowledgements []*SubscriptionAcknowledgement
}

func (r *PublishRequest) Header() *RequestHeader { return &r.RequestHeader }

type PublishResponse struct {
	ResponseHeader           ResponseHeader
	SubscriptionID           uint32
	AvailableSequenceNumbers []uint32
	MoreNotifications        bool
	NotificationMessage      *NotificationMessage
	Results                  []StatusCode
}

func (r *PublishResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// --- History service set -----------------------------------------------

const (
	TimestampsToReturnSource = iota
	TimestampsToReturnServer
	TimestampsToReturnBoth
	TimestampsToReturnNeither
)

type HistoryReadRequest struct {
	RequestHeader      RequestHeader
	HistoryReadDetails *ExtensionObject
	TimestampsToReturn uint32
	ReleaseContinuationPoints bool
	NodesToRead        []*HistoryReadValueID
}

func (r *HistoryReadRequest) Header() *RequestHeader { return &r.RequestHeader }

type HistoryReadResponse struct {
	ResponseHeader ResponseHeader
	Results        []*HistoryReadResult
}

func (r *HistoryReadResponse) Header() *ResponseHeader { return &r.ResponseHeader }

// TypeID returns the namespace-0 binary encoding id used to tag v's wire
// envelope and to validate an incoming response against the descriptor the
// caller expected (spec §4.4 "BadResponseTypeMismatch"). It is the client's
// concrete stand-in for "registry lookup by NodeId" on the way out.
func TypeID(v interface{}) uint32 {
	switch v.(type) {
	case *GetEndpointsRequest:
		return id.GetEndpointsRequest_Encoding_DefaultBinary
	case *GetEndpointsResponse:
		return id.GetEndpointsResponse_Encoding_DefaultBinary
	case *FindServersRequest:
		return id.FindServersRequest_Encoding_DefaultBinary
	case *FindServersResponse:
		return id.FindServersResponse_Encoding_DefaultBinary
	case *FindServersOnNetworkRequest:
		return id.FindServersOnNetworkRequest_Encoding_DefaultBinary
	case *FindServersOnNetworkResponse:
		return id.FindServersOnNetworkResponse_Encoding_DefaultBinary
	case *OpenSecureChannelRequest:
		return id.OpenSecureChannelRequest_Encoding_DefaultBinary
	case *OpenSecureChannelResponse:
		return id.OpenSecureChannelResponse_Encoding_DefaultBinary
	case *CloseSecureChannelRequest:
		return id.CloseSecureChannelRequest_Encoding_DefaultBinary
	case *CloseSecureChannelResponse:
		return id.CloseSecureChannelResponse_Encoding_DefaultBinary
	case *CreateSessionRequest:
		return id.CreateSessionRequest_Encoding_DefaultBinary
	case *CreateSessionResponse:
		return id.CreateSessionResponse_Encoding_DefaultBinary
	case *ActivateSessionRequest:
		return id.ActivateSessionRequest_Encoding_DefaultBinary
	case *ActivateSessionResponse:
		return id.ActivateSessionResponse_Encoding_DefaultBinary
	case *CloseSessionRequest:
		return id.CloseSessionRequest_Encoding_DefaultBinary
	case *CloseSessionResponse:
		return id.CloseSessionResponse_Encoding_DefaultBinary
	case *ReadRequest:
		return id.ReadRequest_Encoding_DefaultBinary
	case *ReadResponse:
		return id.ReadResponse_Encoding_DefaultBinary
	case *WriteRequest:
		return id.WriteRequest_Encoding_DefaultBinary
	case *WriteResponse:
		return id.WriteResponse_Encoding_DefaultBinary
	case *CallRequest:
		return id.CallRequest_Encoding_DefaultBinary
	case *CallResponse:
		return id.CallResponse_Encoding_DefaultBinary
	case *BrowseRequest:
		return id.BrowseRequest_Encoding_DefaultBinary
	case *BrowseResponse:
		return id.BrowseResponse_Encoding_DefaultBinary
	case *BrowseNextRequest:
		return id.BrowseNextRequest_Encoding_DefaultBinary
	case *BrowseNextResponse:
		return id.BrowseNextResponse_Encoding_DefaultBinary
	case *TranslateBrowsePathsToNodeIdsRequest:
		return id.TranslateBrowsePathsToNodeIdsRequest_Encoding_DefaultBinary
	case *TranslateBrowsePathsToNodeIdsResponse:
		return id.TranslateBrowsePathsToNodeIdsResponse_Encoding_DefaultBinary
	case *RegisterNodesRequest:
		return id.RegisterNodesRequest_Encoding_DefaultBinary
	case *RegisterNodesResponse:
		return id.RegisterNodesResponse_Encoding_DefaultBinary
	case *UnregisterNodesRequest:
		return id.UnregisterNodesRequest_Encoding_DefaultBinary
	case *UnregisterNodesResponse:
		return id.UnregisterNodesResponse_Encoding_DefaultBinary
	case *AddNodesRequest:
		return id.AddNodesRequest_Encoding_DefaultBinary
	case *AddNodesResponse:
		return id.AddNodesResponse_Encoding_DefaultBinary
	case *AddReferencesRequest:
		return id.AddReferencesRequest_Encoding_DefaultBinary
	case *AddReferencesResponse:
		return id.AddReferencesResponse_Encoding_DefaultBinary
	case *DeleteNodesRequest:
		return id.DeleteNodesRequest_Encoding_DefaultBinary
	case *DeleteNodesResponse:
		return id.DeleteNodesResponse_Encoding_DefaultBinary
	case *DeleteReferencesRequest:
		return id.DeleteReferencesRequest_Encoding_DefaultBinary
	case *DeleteReferencesResponse:
		return id.DeleteReferencesResponse_Encoding_DefaultBinary
	case *QueryFirstRequest:
		return id.QueryFirstRequest_Encoding_DefaultBinary
	case *QueryFirstResponse:
		return id.QueryFirstResponse_Encoding_DefaultBinary
	case *QueryNextRequest:
		return id.QueryNextRequest_Encoding_DefaultBinary
	case *QueryNextResponse:
		return id.QueryNextResponse_Encoding_DefaultBinary
	case *CreateMonitoredItemsRequest:
		return id.CreateMonitoredItemsRequest_Encoding_DefaultBinary
	case *CreateMonitoredItemsResponse:
		return id.CreateMonitoredItemsResponse_Encoding_DefaultBinary
	case *DeleteMonitoredItemsRequest:
		return id.DeleteMonitoredItemsRequest_Encoding_DefaultBinary
	case *DeleteMonitoredItemsResponse:
		return id.DeleteMonitoredItemsResponse_Encoding_DefaultBinary
	case *CreateSubscriptionRequest:
		return id.CreateSubscriptionRequest_Encoding_DefaultBinary
	case *CreateSubscriptionResponse:
		return id.CreateSubscriptionResponse_Encoding_DefaultBinary
	case *ModifySubscriptionRequest:
		return id.ModifySubscriptionRequest_Encoding_DefaultBinary
	case *ModifySubscriptionResponse:
		return id.ModifySubscriptionResponse_Encoding_DefaultBinary
	case *DeleteSubscriptionsRequest:
		return id.DeleteSubscriptionsRequest_Encoding_DefaultBinary
	case *DeleteSubscriptionsResponse:
		return id.DeleteSubscriptionsResponse_Encoding_DefaultBinary
	case *PublishRequest:
		return id.PublishRequest_Encoding_DefaultBinary
	case *PublishResponse:
		return id.PublishResponse_Encoding_DefaultBinary
	default:
		return 0
	}
}
