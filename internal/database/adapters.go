package database

import (
	"gorm.io/gorm"
)

// GormAdapter wraps an existing gorm.DB (for example the sqlite
// databases used in tests) behind the Database interface.
type GormAdapter struct {
	db *gorm.DB
}

func NewGormAdapter(db *gorm.DB) Database {
	return &GormAdapter{db: db}
}

func (g *GormAdapter) DB() *gorm.DB {
	return g.db
}

func (g *GormAdapter) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormAdapter) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (g *GormAdapter) AutoMigrate() error {
	return Migrate(g.db)
}
