package repositories_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/app/repositories"
	"github.com/elitetable/elitetable/pkg/database"
	"github.com/elitetable/elitetable/pkg/migration"
	"github.com/elitetable/elitetable/pkg/testkit"
)

func newStorage(t *testing.T) *repositories.GormStorage {
	t.Helper()
	return repositories.NewGormStorage(testkit.NewDB(t))
}

func mustUser(t *testing.T, s repositories.Storage, email, role string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Password: "hash", Name: email, Role: role}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mustRestaurant(t *testing.T, s repositories.Storage, owner *models.User, name string, status models.RestaurantStatus) *models.Restaurant {
	t.Helper()
	r := &models.Restaurant{
		OwnerID: owner.ID, Name: name, Description: "d", Cuisine: "Egyptian",
		Address: "Cairo", PriceRange: "$$", Status: status,
	}
	require.NoError(t, s.CreateRestaurant(context.Background(), r))
	return r
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	u := mustUser(t, s, "amira@example.com", models.RoleCustomer)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	t.Run("duplicate email", func(t *testing.T) {
		err := s.CreateUser(ctx, &models.User{Email: "amira@example.com", Password: "x", Name: "dup", Role: models.RoleCustomer})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)

		n, err := s.CountUsers(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	})

	t.Run("lookup", func(t *testing.T) {
		got, err := s.GetUserByEmail(ctx, "amira@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = s.GetUser(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("update", func(t *testing.T) {
		got, err := s.UpdateUser(ctx, u.ID, map[string]any{"role": models.RoleAdmin})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, got.Role)

		_, err = s.UpdateUser(ctx, "missing", map[string]any{"name": "x"})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("delete clears personal rows", func(t *testing.T) {
		v := mustUser(t, s, "visitor@example.com", models.RoleCustomer)
		owner := mustUser(t, s, "owner@example.com", models.RoleRestaurantOwner)
		r := mustRestaurant(t, s, owner, "Koshary Abou Tarek", models.RestaurantActive)
		require.NoError(t, s.CreateFavorite(ctx, &models.Favorite{UserID: v.ID, RestaurantID: r.ID}))
		require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: &v.ID, Title: "t", Message: "m", Type: "info"}))
		require.NoError(t, s.CreateActivityLog(ctx, &models.ActivityLog{UserID: &v.ID, ActivityType: models.ActivityUserLogin, Description: "login"}))

		h, err := s.UserHoldings(ctx, v.ID)
		require.NoError(t, err)
		assert.False(t, h.Any())

		require.NoError(t, s.DeleteUser(ctx, v.ID))
		_, err = s.GetUser(ctx, v.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		logs, err := s.ListActivityLogs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Nil(t, logs[0].UserID)

		require.NoError(t, s.DeleteUser(ctx, "missing"))
	})

	t.Run("holdings count owned rows", func(t *testing.T) {
		owner, err := s.GetUserByEmail(ctx, "owner@example.com")
		require.NoError(t, err)
		h, err := s.UserHoldings(ctx, owner.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, h.Restaurants)
		assert.True(t, h.Any())
	})
}

func TestListRestaurantsFilters(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	owner := mustUser(t, s, "owner@example.com", models.RoleRestaurantOwner)

	active := mustRestaurant(t, s, owner, "Zooba", models.RestaurantActive)
	mustRestaurant(t, s, owner, "Pending Place", models.RestaurantPending)
	mustRestaurant(t, s, owner, "Suspended Spot", models.RestaurantSuspended)

	public, err := s.ListRestaurants(ctx, repositories.RestaurantFilter{Status: models.RestaurantActive})
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, active.ID, public[0].ID)

	all, err := s.ListRestaurants(ctx, repositories.RestaurantFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	found, err := s.ListRestaurants(ctx, repositories.RestaurantFilter{Search: "zoo"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	none, err := s.ListRestaurants(ctx, repositories.RestaurantFilter{Search: "100%"})
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.Equal(t, 4.5, active.Rating)
}

func TestReservationsAndCodes(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	owner := mustUser(t, s, "owner@example.com", models.RoleRestaurantOwner)
	guest := mustUser(t, s, "guest@example.com", models.RoleCustomer)
	r1 := mustRestaurant(t, s, owner, "One", models.RestaurantActive)
	r2 := mustRestaurant(t, s, owner, "Two", models.RestaurantActive)

	book := func(u *models.User, r *models.Restaurant, code string) *models.Reservation {
		res := &models.Reservation{UserID: u.ID, RestaurantID: r.ID, Date: "2025-01-01", Time: "19:00", PartySize: 2, ConfirmationCode: code}
		require.NoError(t, s.CreateReservation(ctx, res))
		return res
	}
	a := book(guest, r1, "ELITEAAAAAA")
	book(guest, r2, "ELITEBBBBBB")
	book(owner, r1, "ELITECCCCCC")

	t.Run("code uniqueness", func(t *testing.T) {
		exists, err := s.ReservationCodeExists(ctx, "ELITEAAAAAA")
		require.NoError(t, err)
		assert.True(t, exists)

		err = s.CreateReservation(ctx, &models.Reservation{UserID: guest.ID, RestaurantID: r1.ID, Date: "2025-01-02", Time: "19:00", PartySize: 2, ConfirmationCode: "ELITEAAAAAA"})
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})

	t.Run("filters", func(t *testing.T) {
		cases := []struct {
			name   string
			filter repositories.ReservationFilter
			want   int
		}{
			{"all", repositories.ReservationFilter{}, 3},
			{"by user", repositories.ReservationFilter{UserID: guest.ID}, 2},
			{"by restaurant", repositories.ReservationFilter{RestaurantID: r1.ID}, 2},
			{"by both", repositories.ReservationFilter{UserID: guest.ID, RestaurantID: r1.ID}, 1},
			{"restaurant set", repositories.ReservationFilter{RestaurantIDs: []string{r2.ID}}, 1},
			{"empty restaurant set", repositories.ReservationFilter{RestaurantIDs: []string{}}, 0},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := s.ListReservations(ctx, tc.filter)
				require.NoError(t, err)
				assert.Len(t, got, tc.want)
			})
		}
	})

	t.Run("update never touches the code", func(t *testing.T) {
		got, err := s.UpdateReservation(ctx, a.ID, map[string]any{"status": models.ReservationConfirmed, "confirmation_code": "HIJACKED"})
		require.NoError(t, err)
		assert.Equal(t, models.ReservationConfirmed, got.Status)
		assert.Equal(t, "ELITEAAAAAA", got.ConfirmationCode)
	})

	t.Run("unknown restaurant is a reference error", func(t *testing.T) {
		err := s.CreateReservation(ctx, &models.Reservation{UserID: guest.ID, RestaurantID: "00000000-0000-0000-0000-000000000000", Date: "2025-01-01", Time: "19:00", PartySize: 2, ConfirmationCode: "ELITEZZZZZZ"})
		assert.ErrorIs(t, err, repositories.ErrReference)
	})
}

func TestOrdersSnapshotItems(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	owner := mustUser(t, s, "owner@example.com", models.RoleRestaurantOwner)
	r := mustRestaurant(t, s, owner, "Felfela", models.RestaurantActive)
	item := &models.MenuItem{RestaurantID: r.ID, Name: "Ful", Price: 25, Category: "Mains", Available: true}
	require.NoError(t, s.CreateMenuItem(ctx, item))

	o := &models.Order{
		RestaurantID: r.ID, CustomerName: "Walk-in", Total: 50,
		Items: []models.OrderItem{{MenuItemID: item.ID, Name: item.Name, Quantity: 2, Price: item.Price}},
	}
	require.NoError(t, s.CreateOrder(ctx, o))

	_, err := s.UpdateMenuItem(ctx, item.ID, map[string]any{"price": 40.0})
	require.NoError(t, err)

	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 25.0, got.Items[0].Price)
	assert.Equal(t, models.OrderPending, got.Status)

	revenue, err := s.SumRevenue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, revenue)

	rows, err := s.RevenueRows(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.RevenueRows(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, s.DeleteMenuItem(ctx, item.ID), repositories.ErrReference)
	require.NoError(t, s.DeleteMenuItem(ctx, "missing"))
}

func TestFavoritesAndReviews(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	owner := mustUser(t, s, "owner@example.com", models.RoleRestaurantOwner)
	guest := mustUser(t, s, "guest@example.com", models.RoleCustomer)
	r := mustRestaurant(t, s, owner, "Abou Shakra", models.RestaurantActive)

	require.NoError(t, s.CreateFavorite(ctx, &models.Favorite{UserID: guest.ID, RestaurantID: r.ID}))
	assert.ErrorIs(t, s.CreateFavorite(ctx, &models.Favorite{UserID: guest.ID, RestaurantID: r.ID}), repositories.ErrDuplicate)

	fav, err := s.IsFavorite(ctx, guest.ID, r.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	list, err := s.ListFavoriteRestaurants(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r.ID, list[0].ID)

	require.NoError(t, s.DeleteFavorite(ctx, guest.ID, r.ID))
	require.NoError(t, s.DeleteFavorite(ctx, guest.ID, r.ID))

	require.NoError(t, s.CreateReview(ctx, &models.Review{UserID: guest.ID, RestaurantID: r.ID, Rating: 5}))
	require.NoError(t, s.CreateReview(ctx, &models.Review{UserID: owner.ID, RestaurantID: r.ID, Rating: 2}))

	got, err := s.GetRestaurant(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.5, got.Rating)
}

func TestNotificationsIncludeBroadcasts(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)
	a := mustUser(t, s, "a@example.com", models.RoleCustomer)
	b := mustUser(t, s, "b@example.com", models.RoleCustomer)

	require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: &a.ID, Title: "mine", Message: "m", Type: "info"}))
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{UserID: &b.ID, Title: "theirs", Message: "m", Type: "info"}))
	require.NoError(t, s.CreateNotification(ctx, &models.Notification{Title: "everyone", Message: "m", Type: "success"}))

	got, err := s.ListNotifications(ctx, a.ID)
	require.NoError(t, err)
	titles := []string{}
	for _, n := range got {
		titles = append(titles, n.Title)
	}
	assert.ElementsMatch(t, []string{"mine", "everyone"}, titles)

	read, err := s.MarkNotificationRead(ctx, got[0].ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
}

func TestDriverErrorsPropagate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	s := repositories.NewGormStorage(db).WithTimeout(time.Second)

	t.Run("connection failure is not a not-found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("dial tcp: connection refused"))

		_, err := s.GetUser(context.Background(), "u1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("empty result is not-found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := s.GetUser(context.Background(), "u1")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("unique violation is a duplicate", func(t *testing.T) {
		mock.ExpectQuery(`SELECT count\(\*\) FROM "reservations"`).
			WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_x"`))
		_, err := s.ReservationCodeExists(context.Background(), "ELITE123456")
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteURLEnforcesReferences(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open("sqlite:" + filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	_, err = migration.New(db, io.Discard).Run()
	require.NoError(t, err)

	s := repositories.NewGormStorage(db)
	owner := mustUser(t, s, "owner@example.com", models.RoleRestaurantOwner)
	r := mustRestaurant(t, s, owner, "Abou Tarek", models.RestaurantActive)

	orphan := &models.MenuItem{RestaurantID: "no-such-restaurant", Name: "Koshary", Price: 30, Category: "Mains", Available: true}
	assert.ErrorIs(t, s.CreateMenuItem(ctx, orphan), repositories.ErrReference)

	item := &models.MenuItem{RestaurantID: r.ID, Name: "Koshary", Price: 30, Category: "Mains", Available: true}
	require.NoError(t, s.CreateMenuItem(ctx, item))
	require.NoError(t, s.CreateOrder(ctx, &models.Order{
		RestaurantID: r.ID, CustomerName: "Walk-in", Total: 30,
		Items: []models.OrderItem{{MenuItemID: item.ID, Name: item.Name, Quantity: 1, Price: item.Price}},
	}))
	assert.ErrorIs(t, s.DeleteMenuItem(ctx, item.ID), repositories.ErrReference)
}
