package call

import (
	"github.com/sellside/closedesk/internal/call/repository"
	"github.com/sellside/closedesk/internal/call/service"
	"go.uber.org/fx"
)

var Module = fx.Module("call.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
