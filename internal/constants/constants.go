package constants

type ContextKey string

const (
	AuthorizationPayloadKey ContextKey = "authorization_payload"
	RequestIDKey            ContextKey = "request_id"
)

type HeaderKey string

const (
	AuthorizationHeaderKey HeaderKey = "Authorization"
	RequestIDHeaderKey     HeaderKey = "X-Request-ID"
	IdempotencyKeyHeader   HeaderKey = "Idempotency-Key"
)

const AuthorizationTypeBearer = "bearer"
