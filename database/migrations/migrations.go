// Package migrations registers one migration per table, in foreign-key
// order. Import it for side effects wherever a migration.Runner is built.
package migrations

import (
	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/pkg/migration"
)

// table creates one model's table and drops it on rollback.
type table struct {
	model any
}

func (t table) Up(db *gorm.DB) error   { return db.AutoMigrate(t.model) }
func (t table) Down(db *gorm.DB) error { return db.Migrator().DropTable(t.model) }

func init() {
	migration.Register("20240601000100_create_users_table", table{&models.User{}})
	migration.Register("20240601000200_create_governorates_table", table{&models.Governorate{}})
	migration.Register("20240601000300_create_districts_table", table{&models.District{}})
	migration.Register("20240601000400_create_restaurants_table", table{&models.Restaurant{}})
	migration.Register("20240601000500_create_menu_items_table", table{&models.MenuItem{}})
	migration.Register("20240601000600_create_reservations_table", table{&models.Reservation{}})
	migration.Register("20240601000700_create_orders_table", table{&models.Order{}})
	migration.Register("20240601000800_create_order_items_table", table{&models.OrderItem{}})
	migration.Register("20240601000900_create_favorites_table", table{&models.Favorite{}})
	migration.Register("20240601001000_create_reviews_table", table{&models.Review{}})
	migration.Register("20240601001100_create_activity_logs_table", table{&models.ActivityLog{}})
	migration.Register("20240601001200_create_notifications_table", table{&models.Notification{}})
}
