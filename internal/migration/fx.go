package migration

import (
	analyticsdomain "github.com/smallbiznis/mercado/internal/analytics/domain"
	catalogdomain "github.com/smallbiznis/mercado/internal/catalog/domain"
	"github.com/smallbiznis/mercado/internal/config"
	escrowdomain "github.com/smallbiznis/mercado/internal/escrow/domain"
	orderdomain "github.com/smallbiznis/mercado/internal/order/domain"
	reviewdomain "github.com/smallbiznis/mercado/internal/review/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// sqlite and mysql dev setups rely on AutoMigrate; the embedded
			// migration set is written for postgres.
			return conn.AutoMigrate(
				&catalogdomain.Product{},
				&orderdomain.Order{},
				&orderdomain.OrderEvent{},
				&escrowdomain.Record{},
				&reviewdomain.Review{},
				&analyticsdomain.Snapshot{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
