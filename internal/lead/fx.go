package lead

import (
	"github.com/sellside/closedesk/internal/lead/repository"
	"github.com/sellside/closedesk/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
