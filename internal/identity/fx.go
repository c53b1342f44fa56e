package identity

import (
	"github.com/sellside/closedesk/internal/identity/repository"
	"github.com/sellside/closedesk/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
