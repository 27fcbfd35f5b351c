package app

import (
	"github.com/specialistvlad/stepproxy/internal/handlers"
	"github.com/specialistvlad/stepproxy/internal/proxy"
	"github.com/specialistvlad/stepproxy/modules/env_vars"
	"github.com/specialistvlad/stepproxy/modules/http_request"
	prnt "github.com/specialistvlad/stepproxy/modules/print"
	"github.com/specialistvlad/stepproxy/modules/s3"
	"github.com/specialistvlad/stepproxy/modules/shell"
)

// Module registers extra step kinds. Tests use it to add instrumented kinds.
type Module func(h *handlers.Handlers)

// registerCoreModules registers every step kind compiled into the binary.
func registerCoreModules(h *handlers.Handlers, resolver *proxy.Resolver) {
	client := http_request.NewClient()

	prnt.RegisterHandler(h)
	env_vars.RegisterHandler(h)
	shell.RegisterHandler(h)
	http_request.RegisterHandler(h, client)
	s3.RegisterHandler(h, client)
	proxy.RegisterHandler(h, resolver)
}
