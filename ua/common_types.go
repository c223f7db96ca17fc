package ua

import "time"

// QualifiedName is Part 3, 8.3.
type QualifiedName struct {
	NamespaceIndex uint16
	Name           string
}

// LocalizedText is Part 3, 8.5. The encoding mask bits (locale present,
// text present) are inferred from field emptiness rather than stored, which
// is sufficient for a client that only ever round-trips values it produced.
type LocalizedText struct {
	Locale string
	Text   string
}

const (
	ltHasLocale = 1 << 0
	ltHasText   = 1 << 1
)

func (l LocalizedText) Encode(enc *Encoder) error {
	mask := uint8(0)
	if l.Locale != "" {
		mask |= ltHasLocale
	}
	if l.Text != "" {
		mask |= ltHasText
	}
	enc.WriteUint8(mask)
	if mask&ltHasLocale != 0 {
		enc.WriteString(l.Locale)
	}
	if mask&ltHasText != 0 {
		enc.WriteString(l.Text)
	}
	return nil
}

func (l *LocalizedText) Decode(dec *Decoder) error {
	mask := dec.ReadUint8()
	if mask&ltHasLocale != 0 {
		l.Locale = dec.ReadString()
	}
	if mask&ltHasText != 0 {
		l.Text = dec.ReadString()
	}
	return nil
}

// SignatureData is Part 4, 7.32: the client/session signature carried on
// ActivateSessionRequest. Per spec §4.3, with SecurityPolicyURINone this is
// empty (zero value) rather than omitted.
type SignatureData struct {
	Algorithm string
	Signature []byte
}

// UserTokenPolicy is Part 4, 7.41.
type UserTokenPolicy struct {
	PolicyID          string
	TokenType         UserTokenType
	IssuedTokenType   string
	IssuerEndpointURL string
	SecurityPolicyURI string
}

// UserTokenType enumerates the identity token kinds a server may accept.
type UserTokenType uint32

const (
	UserTokenTypeAnonymous UserTokenType = iota
	UserTokenTypeUserName
	UserTokenTypeCertificate
	UserTokenTypeIssuedToken
)

// ApplicationDescription is Part 4, 7.1.
type ApplicationDescription struct {
	ApplicationURI      string
	ProductURI          string
	ApplicationName     LocalizedText
	ApplicationType     uint32
	GatewayServerURI    string
	DiscoveryProfileURI string
	DiscoveryURLs       []string
}

// MessageSecurityMode is Part 4, 7.15.
type MessageSecurityMode uint32

const (
	MessageSecurityModeInvalid MessageSecurityMode = iota
	MessageSecurityModeNone
	MessageSecurityModeSign
	MessageSecurityModeSignAndEncrypt
)

// SecurityPolicyURINone is the only security policy this client implements
// directly; others are pluggable per spec §1.
const SecurityPolicyURINone = "http://opcfoundation.org/UA/SecurityPolicy#None"

// FormatSecurityPolicyURI expands a short policy name ("None", "Basic256")
// into its full URI form, leaving an already-qualified URI untouched.
func FormatSecurityPolicyURI(policy string) string {
	switch policy {
	case "", "None":
		return SecurityPolicyURINone
	default:
		if len(policy) > 7 && policy[:7] == "http://" {
			return policy
		}
		return "http://opcfoundation.org/UA/SecurityPolicy#" + policy
	}
}

// EndpointDescription is Part 4, 7.10.
type EndpointDescription struct {
	EndpointURL         string
	Server              ApplicationDescription
	ServerCertificate   []byte
	SecurityMode        MessageSecurityMode
	SecurityPolicyURI   string
	UserIdentityTokens  []*UserTokenPolicy
	TransportProfileURI string
	SecurityLevel       byte
}

// ReadValueID is Part 4, 7.26.
type ReadValueID struct {
	NodeID       *NodeID
	AttributeID  uint32
	IndexRange   string
	DataEncoding QualifiedName
}

// AttributeIDValue is the attribute id for a node's Value (Part 6, A.1).
const AttributeIDValue uint32 = 13

// WriteValue is Part 4, 7.42.
type WriteValue struct {
	NodeID      *NodeID
	AttributeID uint32
	IndexRange  string
	Value       DataValue
}

// BrowseDescription is Part 4, 7.4.
type BrowseDescription struct {
	NodeID          *NodeID
	BrowseDirection uint32
	ReferenceTypeID *NodeID
	IncludeSubtypes bool
	NodeClassMask   uint32
	ResultMask      uint32
}

// ReferenceDescription is Part 4, 7.25.
type ReferenceDescription struct {
	ReferenceTypeID *NodeID
	IsForward       bool
	NodeID          ExpandedNodeID
	BrowseName      QualifiedName
	DisplayName     LocalizedText
	NodeClass       uint32
	TypeDefinition  ExpandedNodeID
}

// ExpandedNodeID is Part 6, 5.2.2.10: a NodeID plus an optional
// out-of-band namespace/server qualifier. Only the embedded NodeID is
// modeled; the extra qualifiers are rarely used and are out of scope.
type ExpandedNodeID struct {
	NodeID *NodeID
}

func (e ExpandedNodeID) Encode(enc *Encoder) error {
	return e.NodeID.Encode(enc)
}
func (e *ExpandedNodeID) Decode(dec *Decoder) error {
	e.NodeID = &NodeID{}
	return e.NodeID.Decode(dec)
}

// CallMethodRequest/Result are Part 4, 7.5.
type CallMethodRequest struct {
	ObjectID       *NodeID
	MethodID       *NodeID
	InputArguments []*Variant
}

type CallMethodResult struct {
	StatusCode          StatusCode
	InputArgumentResults []StatusCode
	OutputArguments      []*Variant
}

// MonitoredItemCreateRequest/Result are Part 4, 7.17-7.18.
type MonitoringParameters struct {
	ClientHandle     uint32
	SamplingInterval float64
	Filter           *ExtensionObject
	QueueSize        uint32
	DiscardOldest    bool
}

type MonitoredItemCreateRequest struct {
	ItemToMonitor   ReadValueID
	MonitoringMode  uint32
	RequestedParameters MonitoringParameters
}

type MonitoredItemCreateResult struct {
	StatusCode                StatusCode
	MonitoredItemID           uint32
	RevisedSamplingInterval   float64
	RevisedQueueSize          uint32
	FilterResult              *ExtensionObject
}

// NotificationMessage is Part 4, 7.21.
type NotificationMessage struct {
	SequenceNumber   uint32
	PublishTime      time.Time
	NotificationData []*ExtensionObject
}

// MonitoredItemNotification is Part 4, 7.20.2.
type MonitoredItemNotification struct {
	ClientHandle uint32
	Value        DataValue
}

// DataChangeNotification is Part 4, 7.20.2.
type DataChangeNotification struct {
	MonitoredItems []*MonitoredItemNotification
	DiagnosticInfos []DiagnosticInfo
}

// EventFieldList is Part 4, 7.20.3.
type EventFieldList struct {
	ClientHandle uint32
	EventFields  []*Variant
}

// EventNotificationList is Part 4, 7.20.3.
type EventNotificationList struct {
	Events []*EventFieldList
}

// StatusChangeNotification is Part 4, 7.20.4.
type StatusChangeNotification struct {
	Status         StatusCode
	DiagnosticInfo DiagnosticInfo
}

// ReadRawModifiedDetails is Part 11, 6.4.3.
type ReadRawModifiedDetails struct {
	IsReadModified   bool
	StartTime        time.Time
	EndTime          time.Time
	NumValuesPerNode uint32
	ReturnBounds     bool
}

// HistoryReadValueID is Part 4, 7.14.
type HistoryReadValueID struct {
	NodeID             *NodeID
	IndexRange         string
	DataEncoding       QualifiedName
	ContinuationPoint  []byte
}

// HistoryReadResult is Part 4, 7.14.
type HistoryReadResult struct {
	StatusCode        StatusCode
	ContinuationPoint []byte
	HistoryData       *ExtensionObject
}

// ServerOnNetwork is Part 12, 5.3.2.
type ServerOnNetwork struct {
	RecordID           uint32
	ServerName         string
	DiscoveryURL       string
	ServerCapabilities []string
}
