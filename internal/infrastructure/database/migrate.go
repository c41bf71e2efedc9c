package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"noticeboard-http-service/internal/domain/models"
)

// Migration modes accepted by DB_MIGRATION_MODE.
const (
	MigrationAuto  = "auto"
	MigrationAlter = "alter"
	MigrationDrop  = "drop"
)

// Models lists every persisted model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.Organisation{},
		&models.Billing{},
		&models.User{},
		&models.BuildingComplex{},
		&models.Notice{},
		&models.Document{},
		&models.SearchSyncTask{},
	}
}

// Migrate brings the schema in line with the models according to mode.
//   - auto: only adds tables, columns and indexes
//   - alter: additionally drops columns the models no longer declare
//   - drop: drops every table and recreates it
func Migrate(db *gorm.DB, mode string, log *zap.Logger) error {
	switch mode {
	case MigrationDrop:
		log.Warn("running in drop mode, every table will be dropped and recreated")
		if err := dropTables(db); err != nil {
			return err
		}
	case MigrationAlter:
		log.Info("running in alter mode, stale columns will be removed")
		if err := autoMigrate(db); err != nil {
			return err
		}
		return dropStaleColumns(db, log)
	case MigrationAuto, "":
		log.Info("running in auto mode, only new tables and columns are added")
	default:
		return fmt.Errorf("unknown migration mode %q", mode)
	}
	return autoMigrate(db)
}

func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func dropTables(db *gorm.DB) error {
	return withoutForeignKeyChecks(db, func(tx *gorm.DB) error {
		all := Models()
		// Reverse order so dependants go first.
		for i := len(all) - 1; i >= 0; i-- {
			if err := tx.Migrator().DropTable(all[i]); err != nil {
				return fmt.Errorf("drop table: %w", err)
			}
		}
		return nil
	})
}

func dropStaleColumns(db *gorm.DB, log *zap.Logger) error {
	return withoutForeignKeyChecks(db, func(tx *gorm.DB) error {
		for _, model := range Models() {
			stmt := &gorm.Statement{DB: tx}
			if err := stmt.Parse(model); err != nil {
				return err
			}

			columns, err := tx.Migrator().ColumnTypes(model)
			if err != nil {
				return fmt.Errorf("read columns of %s: %w", stmt.Schema.Table, err)
			}
			for _, column := range columns {
				if stmt.Schema.LookUpField(column.Name()) != nil {
					continue
				}
				log.Warn("dropping stale column",
					zap.String("table", stmt.Schema.Table),
					zap.String("column", column.Name()))
				if err := tx.Migrator().DropColumn(model, column.Name()); err != nil {
					return fmt.Errorf("drop column %s.%s: %w", stmt.Schema.Table, column.Name(), err)
				}
			}
		}
		return nil
	})
}

// withoutForeignKeyChecks runs fn on one connection with MySQL foreign key checks disabled.
func withoutForeignKeyChecks(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Connection(func(tx *gorm.DB) error {
		if err := tx.Exec("SET FOREIGN_KEY_CHECKS = 0").Error; err != nil {
			return err
		}
		defer tx.Exec("SET FOREIGN_KEY_CHECKS = 1")
		return fn(tx)
	})
}
