package constant

// Context key types to avoid collisions
type contextKey string

const (
	ContextKeyPrivileged contextKey = "privileged"
	ContextKeyTokenID    contextKey = "token_id"
	ContextKeySessionID  contextKey = "session_id"
)

const (
	RoleOperator = "operator"
)

const (
	RequestParamPage  = "page"
	RequestParamLimit = "limit"
	RequestParamDate  = "date"
	RequestParamTime  = "time"
	RequestParamCount = "count"
)

const (
	DefaultValuePage  = 1
	DefaultValueLimit = 20
)

const (
	DayKeyLayout    = "2006-01-02"
	SlotLabelLayout = "15:04"
)

const (
	OtelServiceScopeName    = "service"
	OtelRepositoryScopeName = "repository"
	OtelHandlerScopeName    = "handler"
	OtelEventScopeName      = "event"

	OtelQueryAttributeKey = "query"
)

const (
	RequestHeaderAuthorization      = "Authorization"
	RequestHeaderUserAgent          = "User-Agent"
	RequestHeaderContentType        = "Content-Type"
	RequestHeaderRateLimit          = "X-RateLimit-Limit"
	RequestHeaderRateLimitRemaining = "X-RateLimit-Remaining"
	RequestHeaderRateLimitWindow    = "X-RateLimit-Window"
	RequestHeaderForwardedFor       = "X-Forwarded-For"
	RequestHeaderRealIP             = "X-Real-IP"
)

const (
	ContentTypeJSON = "application/json"
)

const (
	ResponseErrorPrepareShutdown      = "SERVER PREPARING TO SHUT DOWN"
	ResponseErrorUnhealthy            = "SERVER UNHEALTHY"
	ResponseErrorRequestLimitExceeded = "REQUEST LIMIT EXCEEDED"
)

const (
	ServerEnvDevelopment = "development"
	ServerEnvProduction  = "production"
)

const (
	Asterix = "*"
	Empty   = ""
)
