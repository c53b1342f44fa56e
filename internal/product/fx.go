package product

import (
	"github.com/sellside/closedesk/internal/product/repository"
	"github.com/sellside/closedesk/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
