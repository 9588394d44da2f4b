package db

import (
	"github.com/taskforge-dev/taskforge/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	return AutoMigrate(DB)
}

// AutoMigrate creates any missing tables for the full model set. Tests call
// it against their own in-memory database.
func AutoMigrate(gdb *gorm.DB) error {
	tables := []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectMembership{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskComment{},
		&models.TaskDependency{},
		&models.TaskFile{},
		&models.TaskHistory{},
		&models.Notification{},
	}

	migrator := gdb.Migrator()

	for _, model := range tables {
		if !migrator.HasTable(model) {
			if err := gdb.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}
