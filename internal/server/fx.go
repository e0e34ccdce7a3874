package server

import (
	"github.com/smallbiznis/mercado/internal/analytics"
	"github.com/smallbiznis/mercado/internal/catalog"
	"github.com/smallbiznis/mercado/internal/escrow"
	"github.com/smallbiznis/mercado/internal/order"
	"github.com/smallbiznis/mercado/internal/recommendation"
	"github.com/smallbiznis/mercado/internal/review"
	"go.uber.org/fx"
)

var Module = fx.Module("http.server",
	catalog.Module,
	review.Module,
	escrow.Module,
	order.Module,
	recommendation.Module,
	analytics.Module,
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)
