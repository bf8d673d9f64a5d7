package common

// RequestIDHeaderName is the HTTP header and gRPC metadata key used to carry
// the request id from the gateway to the auth service.
const RequestIDHeaderName = "x-request-id"
