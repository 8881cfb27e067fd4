package product

import (
	"github.com/marketmint/promokit/internal/product/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("product",
	fx.Provide(repository.Provide),
)
