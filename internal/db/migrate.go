package db

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ikkim/screening-backend/config"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/pkg/logger"
	"github.com/ikkim/screening-backend/pkg/util"
	"gorm.io/gorm"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.ConfigEntry{},
		&model.Person{},
		&model.NaturalDetail{},
		&model.JuridicalDetail{},
		&model.BlacklistEntry{},
		&model.BlacklistedPerson{},
		&model.BlacklistNaturalDetail{},
		&model.BlacklistJuridicalDetail{},
		&model.AttributeValue{},
		&model.MatchRecord{},
		&model.User{},
		&model.Role{},
		&model.RolePermission{},
	}
}

// guard describes an immutability trigger: which statements a table rejects.
type guard struct {
	table  string
	events string
}

var guards = []guard{
	{"natural_details", "UPDATE OR DELETE"},
	{"juridical_details", "UPDATE OR DELETE"},
	{"blacklist_natural_details", "UPDATE OR DELETE"},
	{"blacklist_juridical_details", "UPDATE OR DELETE"},
	{"match_records", "UPDATE OR DELETE"},
	{"persons", "DELETE"},
	{"blacklisted_persons", "DELETE"},
}

const guardFunction = `
CREATE OR REPLACE FUNCTION reject_immutable_change() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'immutable record violation on %', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql`

// Migrate runs database migrations
func Migrate(database *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := database.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if database.Dialector.Name() == "postgres" {
		if err := installGuards(database); err != nil {
			logger.Error("Failed to install immutability triggers", err)
			return err
		}
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}

// installGuards backs the gorm hooks with triggers so raw SQL cannot bypass them.
func installGuards(database *gorm.DB) error {
	if err := database.Exec(guardFunction).Error; err != nil {
		return fmt.Errorf("create guard function: %w", err)
	}
	for _, g := range guards {
		name := "trg_" + g.table + "_immutable"
		stmts := []string{
			fmt.Sprintf("DROP TRIGGER IF EXISTS %s ON %s", name, g.table),
			fmt.Sprintf("CREATE TRIGGER %s BEFORE %s ON %s FOR EACH ROW EXECUTE FUNCTION reject_immutable_change()", name, g.events, g.table),
		}
		for _, stmt := range stmts {
			if err := database.Exec(stmt).Error; err != nil {
				return fmt.Errorf("install guard on %s: %w", g.table, err)
			}
		}
	}
	logger.Debug("Immutability triggers installed", logger.Fields{"tables": len(guards)})
	return nil
}

// Seed stores the default screening threshold and the bootstrap admin.
// Existing rows are left untouched.
func Seed(database *gorm.DB, cfg *config.Config) error {
	logger.Info("Seeding initial data...")

	if err := seedThreshold(database, cfg.Screening.DefaultMaxDistance); err != nil {
		logger.Error("Failed to seed screening threshold", err)
		return err
	}

	if err := seedAdmin(database, &cfg.Admin); err != nil {
		logger.Error("Failed to seed admin account", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

func seedThreshold(database *gorm.DB, value string) error {
	if n, err := strconv.Atoi(value); err != nil || n < 0 {
		return fmt.Errorf("invalid default threshold %q", value)
	}

	var existing model.ConfigEntry
	err := database.Where("name = ?", model.ConfigMaxStringDistance).First(&existing).Error
	if err == nil {
		logger.Info("Screening threshold already configured, skipping...", logger.Fields{
			"value": existing.Value,
		})
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return database.Create(&model.ConfigEntry{
		Name:  model.ConfigMaxStringDistance,
		Value: value,
	}).Error
}

func seedAdmin(database *gorm.DB, cfg *config.AdminConfig) error {
	return database.Transaction(func(tx *gorm.DB) error {
		var role model.Role
		err := tx.Where("name = ?", model.AdminRoleName).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = model.Role{Name: model.AdminRoleName, Description: "Full access"}
			if err := tx.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, p := range model.AllPermissions {
			rp := model.RolePermission{RoleID: role.ID, Permission: p}
			if err := tx.Where(rp).FirstOrCreate(&rp).Error; err != nil {
				return err
			}
		}

		if cfg.Password == "" {
			logger.Warn("ADMIN_PASSWORD not set, skipping admin account creation")
			return nil
		}

		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", cfg.Username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := util.HashPassword(cfg.Password)
		if err != nil {
			return err
		}
		admin := model.User{
			Username:     cfg.Username,
			Email:        cfg.Email,
			Name:         "Administrator",
			PasswordHash: hash,
			IsActive:     true,
			Roles:        []model.Role{role},
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}
		logger.Info("Admin account created", logger.Fields{"username": admin.Username})
		return nil
	})
}
