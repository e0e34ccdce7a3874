package escrow

import (
	"github.com/smallbiznis/mercado/internal/escrow/repository"
	"github.com/smallbiznis/mercado/internal/escrow/service"
	"go.uber.org/fx"
)

var Module = fx.Module("escrow.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
