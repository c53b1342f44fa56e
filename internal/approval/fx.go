package approval

import (
	"github.com/sellside/closedesk/internal/approval/service"
	"go.uber.org/fx"
)

var Module = fx.Module("approval.service",
	fx.Provide(service.New),
)
