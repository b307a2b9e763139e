package http

// Identity headers are set by the gateway only. Backends trust them because
// nothing but the gateway can reach them.
const (
	HeaderUserName  = "X-User-Name"
	HeaderUserRole  = "X-User-Role"
	HeaderRequestID = "X-Request-Id"
)
