package api

// gin.Context string keys used to pass tenant/claims from resolution to
// handlers and into the request logger.
const (
	ctxTenantID      = "tenant_id"
	ctxClaims        = "claims"
	ctxRequestID     = "request_id"
	ctxFingerprint   = "fingerprint"
	ctxClassification = "classification"
)

// RequestIDHeader is echoed back on every response so callers can correlate
// a request with gateway logs.
const RequestIDHeader = "X-Request-ID"
