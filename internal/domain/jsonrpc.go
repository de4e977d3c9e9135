package domain

// Request is a JSON-RPC 2.0 request. ID carries whatever identifier the
// client chose; it is echoed back unchanged in the response.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response. Exactly one of Result and Error
// is set.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object. Data carries structured detail,
// for a classified API failure the kind label and HTTP status.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error implements the error interface so a mapped protocol error can
// travel through ordinary error returns.
func (e *Error) Error() string {
	return e.Message
}

// Protocol error codes: the standard range first, then the application
// range used for classified Jira failures.
const (
	ParseError     = -32700 // malformed JSON
	InvalidRequest = -32600 // not a valid JSON-RPC 2.0 request
	MethodNotFound = -32601 // unsupported method or unknown tool
	InvalidParams  = -32602 // missing or mistyped parameters
	InternalError  = -32603 // unclassified server failure

	ConfigurationErrorCode  = -32001 // settings missing or malformed at startup
	AuthenticationErrorCode = -32002 // credentials rejected or access denied
	APIErrorCode            = -32003 // the tracker rejected the operation
	NetworkErrorCode        = -32004 // transport failure or timeout
	RateLimitErrorCode      = -32005 // throttled by the tracker
)
