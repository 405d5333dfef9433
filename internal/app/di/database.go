package di

import (
	"gorm.io/gorm"

	classadapters "github.com/boatjones/quant-lab/internal/feature/classification/adapters"
	maintadapters "github.com/boatjones/quant-lab/internal/feature/maintenance/adapters"
	priceadapters "github.com/boatjones/quant-lab/internal/feature/prices/adapters"
	symboladapters "github.com/boatjones/quant-lab/internal/feature/symbols/adapters"
	"github.com/boatjones/quant-lab/internal/platform/db"
)

// Models lists every table the application owns.
func Models() []any {
	return []any{
		&symboladapters.SymbolModel{},
		&symboladapters.StockModel{},
		&classadapters.ExcludedTickerModel{},
		&priceadapters.BarModel{},
		&priceadapters.StagingBarModel{},
		&maintadapters.RunModel{},
	}
}

// OpenDatabase connects to PostgreSQL with retry and migrates the schema.
func OpenDatabase(cfg db.Config) (*gorm.DB, error) {
	gdb, err := db.ConnectWithRetry(db.BuildDSN(cfg), cfg.ConnectTimeout, db.OpenPostgres)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb, Models()...); err != nil {
		return nil, err
	}
	return gdb, nil
}
