package seeders_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/database/seeders"
	"github.com/elitetable/elitetable/pkg/auth"
	"github.com/elitetable/elitetable/pkg/testkit"
)

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeedersRunInForeignKeyOrder(t *testing.T) {
	assert.Equal(t, []string{
		"governorates", "districts", "users", "restaurants", "menu_items",
		"reservations", "orders", "reviews", "activity_logs", "notifications", "favorites",
	}, seeders.Names())
}

func TestSeedingIsIdempotent(t *testing.T) {
	db := testkit.NewDB(t)
	ctx := context.Background()

	first, err := seeders.RunAll(ctx, db, io.Discard)
	require.NoError(t, err)

	tables := []any{
		&models.Governorate{}, &models.District{}, &models.User{}, &models.Restaurant{},
		&models.MenuItem{}, &models.Reservation{}, &models.Order{}, &models.OrderItem{},
		&models.Review{}, &models.ActivityLog{}, &models.Notification{}, &models.Favorite{},
	}
	before := make([]int64, len(tables))
	for i, m := range tables {
		before[i] = count(t, db, m)
		assert.NotZero(t, before[i], "%T", m)
	}

	second, err := seeders.RunAll(ctx, db, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for i, m := range tables {
		assert.Equal(t, before[i], count(t, db, m), "%T duplicated by reseed", m)
	}
	assert.EqualValues(t, first["users"], count(t, db, &models.User{}))
}

func TestSeedKeepsExistingRowsByNaturalKey(t *testing.T) {
	db := testkit.NewDB(t)
	ctx := context.Background()

	// A user registered before the first seed keeps its own ID.
	existing := &models.User{Email: "customer@elitetable.com", Password: "hash", Name: "Early Bird", Role: models.RoleCustomer}
	require.NoError(t, db.Create(existing).Error)

	_, err := seeders.RunAll(ctx, db, io.Discard)
	require.NoError(t, err)

	var u models.User
	require.NoError(t, db.Where("email = ?", "customer@elitetable.com").Take(&u).Error)
	assert.Equal(t, existing.ID, u.ID)
	assert.Equal(t, "Mona Hassan", u.Name)
	assert.Equal(t, "hash", u.Password, "password is not overwritten")

	var favs int64
	require.NoError(t, db.Model(&models.Favorite{}).Where("user_id = ?", existing.ID).Count(&favs).Error)
	assert.EqualValues(t, 2, favs)
}

func TestSeededAccountsCanLogIn(t *testing.T) {
	db := testkit.NewDB(t)
	_, err := seeders.RunAll(context.Background(), db, io.Discard)
	require.NoError(t, err)

	var admin models.User
	require.NoError(t, db.Where("email = ?", "admin@elitetable.com").Take(&admin).Error)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.Equal(t, seeders.FixtureID("users", "admin@elitetable.com"), admin.ID)
	assert.True(t, auth.CheckPassword(admin.Password, seeders.DemoPassword))
}

func TestSeededOrderTotalsMatchItems(t *testing.T) {
	db := testkit.NewDB(t)
	_, err := seeders.RunAll(context.Background(), db, io.Discard)
	require.NoError(t, err)

	var o models.Order
	require.NoError(t, db.Preload("Items").Where("id = ?", seeders.FixtureID("orders", "sequoia-1")).Take(&o).Error)
	var sum float64
	for _, it := range o.Items {
		sum += it.Price * float64(it.Quantity)
	}
	assert.Equal(t, o.Total, sum)
	assert.Equal(t, 1240.0, o.Total)
}
