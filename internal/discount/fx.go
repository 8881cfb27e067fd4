package discount

import (
	"github.com/marketmint/promokit/internal/discount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discount",
	fx.Provide(service.New),
)
