package catalog

import (
	"github.com/smallbiznis/quotation/internal/catalog/cache"
	"github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/catalog/repository"
	"github.com/smallbiznis/quotation/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(cache.Provide),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(svc domain.Service) domain.Lookup { return svc }),
)
