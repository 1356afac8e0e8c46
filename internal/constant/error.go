package constant

import "fmt"

// Business error codes. 1xxx system, 11xx params, 12xx auth, 2xxx domain.
const (
	CodeSuccess       = 0
	CodeSystemError   = 1000
	CodeDatabaseError = 1001
	CodeInternalError = 1003
	CodeTimeout       = 1005

	CodeInvalidParams    = 1100
	CodeMissingParams    = 1101
	CodeDuplicateRequest = 1105

	CodeUnauthorized    = 1200
	CodeSignatureError  = 1203
	CodePartnerDisabled = 1206

	CodeOrderNotFound      = 2000
	CodeNoActiveProvider   = 2001
	CodeUnknownProvider    = 2002
	CodeUpstreamError      = 2003
	CodeInsufficientFunds  = 2004
	CodeInvalidBankAccount = 2005
)

var errorMessages = map[int]string{
	CodeSuccess:       "success",
	CodeSystemError:   "internal server error",
	CodeDatabaseError: "database error",
	CodeInternalError: "internal error",
	CodeTimeout:       "request timed out",

	CodeInvalidParams:    "invalid parameters",
	CodeMissingParams:    "missing required parameters",
	CodeDuplicateRequest: "duplicate request",

	CodeUnauthorized:    "unauthorized",
	CodeSignatureError:  "signature verification failed",
	CodePartnerDisabled: "partner client is disabled",

	CodeOrderNotFound:      "order not found",
	CodeNoActiveProvider:   "no active providers for the requested channel",
	CodeUnknownProvider:    "unknown payment provider",
	CodeUpstreamError:      "payment gateway error",
	CodeInsufficientFunds:  "insufficient balance",
	CodeInvalidBankAccount: "invalid bank account",
}

// ErrorMessage returns the message for a code, or a generic fallback.
func ErrorMessage(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "unknown error"
}

// BizError is an error with an attached business code.
type BizError struct {
	code int
	msg  string
}

func (e *BizError) Error() string {
	return fmt.Sprintf("code: %d, message: %s", e.code, e.msg)
}

func (e *BizError) Code() int { return e.code }

func NewError(code int) *BizError {
	return &BizError{code: code, msg: ErrorMessage(code)}
}

func NewErrorMsg(code int, msg string) *BizError {
	return &BizError{code: code, msg: msg}
}
