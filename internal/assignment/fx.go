package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
	"github.com/smallbiznis/quotation/internal/assignment/repository"
	"github.com/smallbiznis/quotation/internal/assignment/service"
	"github.com/smallbiznis/quotation/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("assignment.service",
	fx.Provide(provideRepository),
	fx.Provide(service.New),
)

type repositoryParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config config.Config
	DB     *gorm.DB
	Log    *zap.Logger
}

// provideRepository selects the assignment store configured by ASSIGNMENT_STORE.
func provideRepository(p repositoryParams) (domain.Repository, error) {
	if p.Config.AssignmentStore != config.StoreMongo {
		return repository.NewSQL(p.DB), nil
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(p.Config.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	db := client.Database(p.Config.MongoDatabase)
	log := p.Log.Named("assignment.mongo")

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx, nil); err != nil {
				return fmt.Errorf("ping mongo: %w", err)
			}
			if err := repository.EnsureIndexes(ctx, db); err != nil {
				return fmt.Errorf("ensure assignment indexes: %w", err)
			}
			log.Info("assignment store ready", zap.String("database", p.Config.MongoDatabase))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return repository.NewMongo(db), nil
}
