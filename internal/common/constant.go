package common

const (
	// AuthorizationHeaderName carries the bearer token on query requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only token scheme the gateway accepts.
	BearerScheme = "bearer"

	// TokenType is returned alongside every issued access token.
	TokenType = "bearer"

	// RequestIDHeaderName is set on every HTTP response.
	RequestIDHeaderName = "X-Request-ID"

	// NoRelevantInformation is the answer given when the index has no match.
	NoRelevantInformation = "No relevant information found."

	// ServiceName is used for the gRPC health service and log attributes.
	ServiceName = "chatgate"
)
