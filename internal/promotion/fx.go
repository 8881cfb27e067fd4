package promotion

import (
	"github.com/marketmint/promokit/internal/promotion/repository"
	"github.com/marketmint/promokit/internal/promotion/service"
	"go.uber.org/fx"
)

var Module = fx.Module("promotion",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
