package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the list view.
	RouteRoot = "/"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteItems is the prefix of the HTML item forms.
	RouteItems = "/items"
	// RouteItemsProducts is the add-product form target.
	RouteItemsProducts = RouteItems + "/products"
	// RouteItemsVideos is the add-video form target.
	RouteItemsVideos = RouteItems + "/videos"
	// RouteItemsID is the edit form target.
	RouteItemsID = RouteItems + RouteParamID
	// RouteItemsIDEdit renders the edit form.
	RouteItemsIDEdit = RouteItemsID + "/edit"
	// RouteItemsIDDelete is the delete form target.
	RouteItemsIDDelete = RouteItemsID + "/delete"

	// RouteAPIItems is the JSON item collection.
	RouteAPIItems = "/api/items"
	// RouteAPIItemsID is a single JSON item.
	RouteAPIItemsID = RouteAPIItems + RouteParamID

	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe.
	RouteHealthLive = RouteHealth + "/live"
	// RouteHealthReady is the readiness probe.
	RouteHealthReady = RouteHealth + "/ready"
)

// Redirect targets.
const (
	redirectLogin = RouteLogin
	redirectRoot  = RouteRoot
)

// Template names.
const (
	templateLogin    = "auth/login"
	templateList     = "items/list"
	templateEditItem = "items/edit"
)

// Flash message types.
const (
	flashTypeSuccess = "success"
	flashTypeError   = "error"
	flashTypeInfo    = "info"
)
