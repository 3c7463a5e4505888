package backend

// REST paths exposed by the career-coaching backend.
const (
	RouteRegister    = "/register"
	RouteLogin       = "/login"
	RouteRefresh     = "/refresh"
	RouteLogout      = "/logout"
	RouteMe          = "/me"
	RouteExtractText = "/extract-text"
	RouteCareerChat  = "/career-chat"
	RouteChatHistory = "/career-chat/history"
	RouteScrapeJobs  = "/scrape-jobs"
	RouteFavorites   = "/favorites"
)
