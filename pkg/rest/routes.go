package rest

import "github.com/gin-gonic/gin"

type HttpMethod int

const (
	GET HttpMethod = iota
	POST
	PUT
	PATCH
)

func (m HttpMethod) String() string {
	switch m {
	case GET:
		return "GET"
	case POST:
		return "POST"
	case PUT:
		return "PUT"
	case PATCH:
		return "PATCH"
	default:
		return "UNKNOWN"
	}
}

type Route struct {
	Method      HttpMethod
	Path        string
	HandlerFunc gin.HandlerFunc
	Group       string
}

func NewRoute(method HttpMethod, group, path string, handler gin.HandlerFunc) Route {
	return Route{
		Method:      method,
		Path:        path,
		Group:       group,
		HandlerFunc: handler,
	}
}

// Register mounts routes on engine, creating one router group per distinct Group.
// An empty Group mounts on the root.
func Register(engine *gin.Engine, routes []Route, onUnknown func(Route)) {
	groups := map[string]*gin.RouterGroup{}
	for _, r := range routes {
		if _, exists := groups[r.Group]; !exists {
			groups[r.Group] = engine.Group("/" + r.Group)
		}

		group := groups[r.Group]

		switch r.Method {
		case GET:
			group.GET(r.Path, r.HandlerFunc)
		case POST:
			group.POST(r.Path, r.HandlerFunc)
		case PUT:
			group.PUT(r.Path, r.HandlerFunc)
		case PATCH:
			group.PATCH(r.Path, r.HandlerFunc)
		default:
			if onUnknown != nil {
				onUnknown(r)
			}
		}
	}
}
