package ua

import "fmt"

// StatusCode is the OPC UA status code namespace (Part 4, 7.34). The high
// two bits classify severity; 0 (Good) always means success.
type StatusCode uint32

const (
	severityMask = 0xC0000000
	severityGood = 0x00000000
	severityBad  = 0x80000000
)

// Error implements the error interface so a StatusCode can be returned and
// compared directly wherever Go idiom expects an error.
func (s StatusCode) Error() string {
	if name, ok := statusCodeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StatusCode(0x%08X)", uint32(s))
}

// IsGood reports whether the code indicates success.
func (s StatusCode) IsGood() bool { return uint32(s)&severityMask == severityGood }

// IsBad reports whether the code indicates failure.
func (s StatusCode) IsBad() bool { return uint32(s)&severityMask == severityBad }

// The subset of the StatusCode namespace this client produces or consumes
// directly. Values match the OPC UA Part 6 Annex A assignments.
const (
	StatusOK                        StatusCode = 0x00000000
	StatusGood                                 = StatusOK
	StatusBadUnexpectedError        StatusCode = 0x80010000
	StatusBadInvalidArgument        StatusCode = 0x80020000
	StatusBadConnectionClosed       StatusCode = 0x80030000
	StatusBadCommunicationError     StatusCode = 0x80050000
	StatusBadTimeout                StatusCode = 0x800A0000
	StatusBadShutdown               StatusCode = 0x80230000
	StatusBadSecureChannelClosed    StatusCode = 0x80310000
	StatusBadSecureChannelIDInvalid StatusCode = 0x80320000
	StatusBadSecurityChecksFailed   StatusCode = 0x80130000
	StatusBadTcpMessageTypeInvalid  StatusCode = 0x807C0000
	StatusBadTcpMessageTooLarge     StatusCode = 0x80800000
	StatusBadResponseTypeMismatch   StatusCode = 0x80E10000
	StatusBadRequestHeaderInvalid   StatusCode = 0x802E0000
	StatusBadSessionIDInvalid       StatusCode = 0x80250000
	StatusBadSessionClosed          StatusCode = 0x80260000
	StatusBadServerNotConnected     StatusCode = 0x80AD0000
	StatusBadTooManyPublishRequests StatusCode = 0x80450000
	StatusBadMessageNotAvailable    StatusCode = 0x803D0000
	StatusBadSubscriptionIDInvalid  StatusCode = 0x80280000
	StatusBadCertificateInvalid     StatusCode = 0x80120000
	StatusBadUnknownResponse        StatusCode = 0x80E20000
	StatusBadNoSubscription         StatusCode = 0x80420000
	StatusBadOutOfService           StatusCode = 0x808E0000
)

var statusCodeNames = map[StatusCode]string{
	StatusOK:                       "Good",
	StatusBadUnexpectedError:       "BadUnexpectedError",
	StatusBadInvalidArgument:       "BadInvalidArgument",
	StatusBadConnectionClosed:      "BadConnectionClosed",
	StatusBadCommunicationError:    "BadCommunicationError",
	StatusBadTimeout:               "BadTimeout",
	StatusBadShutdown:              "BadShutdown",
	StatusBadSecureChannelClosed:   "BadSecureChannelClosed",
	StatusBadSecureChannelIDInvalid: "BadSecureChannelIDInvalid",
	StatusBadSecurityChecksFailed:  "BadSecurityChecksFailed",
	StatusBadTcpMessageTypeInvalid: "BadTcpMessageTypeInvalid",
	StatusBadTcpMessageTooLarge:    "BadTcpMessageTooLarge",
	StatusBadResponseTypeMismatch:  "BadResponseTypeMismatch",
	StatusBadRequestHeaderInvalid:  "BadRequestHeaderInvalid",
	StatusBadSessionIDInvalid:      "BadSessionIDInvalid",
	StatusBadSessionClosed:         "BadSessionClosed",
	StatusBadServerNotConnected:    "BadServerNotConnected",
	StatusBadTooManyPublishRequests: "BadTooManyPublishRequests",
	StatusBadMessageNotAvailable:   "BadMessageNotAvailable",
	StatusBadSubscriptionIDInvalid: "BadSubscriptionIDInvalid",
	StatusBadCertificateInvalid:    "BadCertificateInvalid",
	StatusBadUnknownResponse:       "BadUnknownResponse",
	StatusBadNoSubscription:        "BadNoSubscription",
	StatusBadOutOfService:          "BadOutOfService",
}
