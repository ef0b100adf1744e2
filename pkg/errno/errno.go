package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Decode tries to convert an error to Errno.
// Wrapped errors keep the full chain text so callers see which offer or coin failed.
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, err.Error()
	}
	var ptr *Errno
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code, err.Error()
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrDatabase         = Errno{Code: 10004, Message: "Database error"}
)

// Bridge Errors (30000+)
var (
	ErrMalformedOffer  = Errno{Code: 30001, Message: "malformed offer"}
	ErrEncoding        = Errno{Code: 30002, Message: "encoding error"}
	ErrCryptoBackend   = Errno{Code: 30003, Message: "crypto backend uninitialized"}
	ErrSubmission      = Errno{Code: 30004, Message: "spend bundle submission failed"}
	ErrInvalidTemplate = Errno{Code: 30005, Message: "invalid program template"}
	ErrOfferInFlight   = Errno{Code: 30006, Message: "offer is already being processed"}
	ErrBundleNotFound  = Errno{Code: 30007, Message: "bundle not found"}
	ErrInvalidAddress  = Errno{Code: 30008, Message: "invalid address"}
)

// WithMessage returns a copy of e carrying msg.
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}
