package game

import (
	"github.com/marketmint/promokit/internal/game/repository"
	"github.com/marketmint/promokit/internal/game/service"
	"go.uber.org/fx"
)

var Module = fx.Module("game",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
