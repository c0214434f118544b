package apperr

import (
	"errors"
	"fmt"
	"net/http"

	er "github.com/RoyceAzure/rj/util/rj_error"
)

type Kind string

const (
	KindInternal            Kind = "INTERNAL"
	KindNotFound            Kind = "NOT_FOUND"
	KindValidation          Kind = "VALIDATION_FAILURE"
	KindInsufficientStock   Kind = "INSUFFICIENT_STOCK"
	KindCheckoutInProgress  Kind = "CHECKOUT_IN_PROGRESS"
	KindUnauthenticated     Kind = "UNAUTHENTICATED"
	KindUnauthorized        Kind = "UNAUTHORIZED"
	KindTooManyRequests     Kind = "TOO_MANY_REQUESTS"
	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindPartialBatchFailure Kind = "PARTIAL_BATCH_FAILURE"
)

// rj_error 沒有 502, 上游失敗與部分批次失敗都回 bad gateway
const BadGatewayCode er.ErrCode = http.StatusBadGateway

var codeByKind = map[Kind]er.ErrCode{
	KindInternal:            er.InternalErrorCode,
	KindNotFound:            er.NotFoundCode,
	KindValidation:          er.BadRequestCode,
	KindInsufficientStock:   er.ConflictCode,
	KindCheckoutInProgress:  er.ConflictCode,
	KindUnauthenticated:     er.UnauthenticatedCode,
	KindUnauthorized:        er.UnauthorizedCode,
	KindTooManyRequests:     er.TooManyRequestsCode,
	KindUpstreamUnavailable: BadGatewayCode,
	KindPartialBatchFailure: BadGatewayCode,
}

// kindByCode maps rj_error codes raised by shared libraries back to a kind.
var kindByCode = map[er.ErrCode]Kind{
	er.InternalErrorCode:   KindInternal,
	er.DatabaseErrorCode:   KindInternal,
	er.CacheErrorCode:      KindInternal,
	er.NotFoundCode:        KindNotFound,
	er.DataNotExistsCode:   KindNotFound,
	er.BadRequestCode:      KindValidation,
	er.InvalidArgumentCode: KindValidation,
	er.InvalidFormatCode:   KindValidation,
	er.ConflictCode:        KindCheckoutInProgress,
	er.UnauthenticatedCode: KindUnauthenticated,
	er.UnauthorizedCode:    KindUnauthorized,
	er.TooManyRequestsCode: KindTooManyRequests,
	er.UnavailableCode:     KindUpstreamUnavailable,
	er.ServiceTimeoutCode:  KindUpstreamUnavailable,
	er.ThirdPartyErrorCode: KindUpstreamUnavailable,
	BadGatewayCode:         KindUpstreamUnavailable,
}

// Error carries a Kind across package boundaries so the HTTP layer can pick a status
// without knowing which repository or client produced the failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AnaError converts e to the shared error type, message only, cause dropped.
func (e *Error) AnaError() *er.AnaError {
	return er.New(Code(e.Kind), e.Message)
}

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the outermost Kind found in err's chain. A bare
// *rj_error.AnaError is mapped by its code, anything else is KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var ae *er.AnaError
	if errors.As(err, &ae) {
		return KindFromCode(ae.Code)
	}
	return KindInternal
}

func KindFromCode(code er.ErrCode) Kind {
	if kind, ok := kindByCode[code]; ok {
		return kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var ae *er.AnaError
	if errors.As(err, &ae) && ae.ExternalMsg != "" {
		return ae.ExternalMsg
	}
	return err.Error()
}

func Code(kind Kind) er.ErrCode {
	if code, ok := codeByKind[kind]; ok {
		return code
	}
	return er.InternalErrorCode
}

func HTTPStatus(kind Kind) int {
	return int(Code(kind))
}
