package server

// Route path constants
const (
	RouteHome = "/"

	// Auth Routes
	RouteSignIn      = "/signin"
	RouteCallback    = "/auth/callback"
	RouteCallbackAlt = "/cb"
	RouteLogout      = "/logout"

	// Session relay routes
	RouteSetToken   = "/set-token"
	RouteGetToken   = "/get-token"
	RouteClearToken = "/clear-token"

	// Private pages
	RoutePrivate = "/fran"

	// API Routes
	RouteAPIChat = "/api/chat"
)
