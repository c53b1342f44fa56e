package audit

import (
	"github.com/sellside/closedesk/internal/audit/repository"
	"github.com/sellside/closedesk/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
