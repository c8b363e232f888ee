package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/quotation/internal/catalog/cache"
	"github.com/smallbiznis/quotation/internal/catalog/domain"
	"github.com/smallbiznis/quotation/internal/clock"
	"github.com/smallbiznis/quotation/internal/config"
	"github.com/smallbiznis/quotation/internal/pricing"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Clock  clock.Clock
	Config config.Config
	Cache  cache.Store `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	repo     domain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
	cache    cache.Store
	cacheTTL time.Duration
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("catalog.service"),
		repo:     p.Repo,
		genID:    p.GenID,
		clock:    p.Clock,
		cache:    p.Cache,
		cacheTTL: time.Duration(p.Config.CatalogCacheTTLSeconds) * time.Second,
	}
}

func (s *Service) ListServices(ctx context.Context) ([]domain.ServicePackage, error) {
	var cached []domain.ServicePackage
	if s.readCache(ctx, cache.KeyServices, &cached) {
		return cached, nil
	}

	items, err := s.repo.ListServices(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, cache.KeyServices, items)
	return items, nil
}

func (s *Service) ListAddOns(ctx context.Context) ([]domain.AddOn, error) {
	var cached []domain.AddOn
	if s.readCache(ctx, cache.KeyAddOns, &cached) {
		return cached, nil
	}

	items, err := s.repo.ListAddOns(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, cache.KeyAddOns, items)
	return items, nil
}

func (s *Service) GetService(ctx context.Context, id string) (*domain.ServicePackage, error) {
	item, err := s.repo.FindService(ctx, s.db, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrServiceNotFound
	}
	return item, nil
}

func (s *Service) GetAddOn(ctx context.Context, id string) (*domain.AddOn, error) {
	item, err := s.repo.FindAddOn(ctx, s.db, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrAddOnNotFound
	}
	return item, nil
}

func (s *Service) CreateService(ctx context.Context, req domain.CreateServiceRequest) (*domain.ServicePackage, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	category := strings.TrimSpace(req.Category)
	categoryKey := slug.Make(category)
	if categoryKey == "" {
		return nil, domain.ErrInvalidCategory
	}
	if err := pricing.ValidatePrice(req.Price); err != nil {
		return nil, err
	}
	if req.DeliveryTime != nil && (*req.DeliveryTime <= 0 || *req.DeliveryTime > domain.MaxDeliveryDays) {
		return nil, domain.ErrInvalidDeliveryTime
	}

	addOns := make([]domain.AddOn, 0, len(req.AddOns))
	for _, addOn := range req.AddOns {
		normalized, err := s.normalizeAddOn(addOn.ID, addOn.Name, addOn.Description, addOn.Category, addOn.Price)
		if err != nil {
			return nil, err
		}
		addOns = append(addOns, normalized)
	}

	features := make([]string, 0, len(req.Features))
	for _, feature := range req.Features {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			features = append(features, trimmed)
		}
	}

	now := s.clock.Now()
	pkg := &domain.ServicePackage{
		ID:           s.genID.Generate().String(),
		Category:     category,
		CategoryKey:  categoryKey,
		Name:         name,
		Price:        req.Price,
		Description:  strings.TrimSpace(req.Description),
		Features:     features,
		DeliveryTime: req.DeliveryTime,
		AddOns:       addOns,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.InsertService(ctx, s.db, pkg); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyServices)

	s.log.Info("service package created",
		zap.String("service_id", pkg.ID),
		zap.String("category", pkg.Category),
		zap.Float64("price", pkg.Price),
	)
	return pkg, nil
}

func (s *Service) SaveAddOn(ctx context.Context, req domain.SaveAddOnRequest) (*domain.AddOn, error) {
	addOn, err := s.normalizeAddOn(req.ID, req.Name, req.Description, req.Category, req.Price)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertAddOn(ctx, s.db, &addOn); err != nil {
		return nil, err
	}
	s.invalidate(ctx, cache.KeyAddOns)

	s.log.Info("add-on saved", zap.String("addon_id", addOn.ID), zap.Float64("price", addOn.Price))
	return &addOn, nil
}

func (s *Service) DeleteAddOn(ctx context.Context, id string) error {
	deleted, err := s.repo.DeleteAddOn(ctx, s.db, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrAddOnNotFound
	}
	s.invalidate(ctx, cache.KeyAddOns)

	s.log.Info("add-on deleted", zap.String("addon_id", id))
	return nil
}

func (s *Service) normalizeAddOn(id, name, description, category string, price float64) (domain.AddOn, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.AddOn{}, domain.ErrInvalidName
	}
	if err := pricing.ValidatePrice(price); err != nil {
		return domain.AddOn{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		id = s.genID.Generate().String()
	}
	return domain.AddOn{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(description),
		Price:       price,
		Category:    strings.TrimSpace(category),
	}, nil
}

func (s *Service) readCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.log.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *Service) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
