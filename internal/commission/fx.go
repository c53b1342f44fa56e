package commission

import (
	"github.com/sellside/closedesk/internal/commission/repository"
	"github.com/sellside/closedesk/internal/commission/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commission.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
