package commissionrule

import (
	"github.com/sellside/closedesk/internal/commissionrule/repository"
	"github.com/sellside/closedesk/internal/commissionrule/service"
	"go.uber.org/fx"
)

var Module = fx.Module("commissionrule.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
