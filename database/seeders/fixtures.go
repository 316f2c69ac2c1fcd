package seeders

import (
	"context"

	"github.com/elitetable/elitetable/app/models"
	"github.com/elitetable/elitetable/pkg/auth"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

func init() {
	Register("governorates", seedGovernorates)
	Register("districts", seedDistricts)
	Register("users", seedUsers)
	Register("restaurants", seedRestaurants)
	Register("menu_items", seedMenuItems)
	Register("reservations", seedReservations)
	Register("orders", seedOrders)
	Register("reviews", seedReviews)
	Register("activity_logs", seedActivityLogs)
	Register("notifications", seedNotifications)
	Register("favorites", seedFavorites)
}

// ─── Locations ────────────────────────────────────────────────────────────────

var governorates = []struct{ name, ar string }{
	{"Cairo", "القاهرة"},
	{"Giza", "الجيزة"},
	{"Alexandria", "الإسكندرية"},
}

var districts = []struct{ gov, name, ar string }{
	{"Cairo", "Zamalek", "الزمالك"},
	{"Cairo", "Maadi", "المعادي"},
	{"Cairo", "Heliopolis", "مصر الجديدة"},
	{"Cairo", "New Cairo", "القاهرة الجديدة"},
	{"Giza", "Dokki", "الدقي"},
	{"Giza", "Mohandessin", "المهندسين"},
	{"Giza", "Sheikh Zayed", "الشيخ زايد"},
	{"Alexandria", "Stanley", "ستانلي"},
	{"Alexandria", "Smouha", "سموحة"},
}

func seedGovernorates(_ context.Context, b *Batch) (int, error) {
	for _, g := range governorates {
		row := &models.Governorate{Name: g.name, NameAr: models.Ptr(g.ar)}
		row.ID = FixtureID("governorates", g.name)
		if err := upsert(b, row, map[string]any{"name": g.name}, "name_ar"); err != nil {
			return 0, err
		}
		b.remember("governorates", g.name, row.ID)
	}
	return len(governorates), nil
}

func seedDistricts(_ context.Context, b *Batch) (int, error) {
	for _, d := range districts {
		govID, err := b.ID("governorates", d.gov)
		if err != nil {
			return 0, err
		}
		key := d.gov + "/" + d.name
		row := &models.District{GovernorateID: govID, Name: d.name, NameAr: models.Ptr(d.ar)}
		row.ID = FixtureID("districts", key)
		if err := upsert(b, row, map[string]any{"governorate_id": govID, "name": d.name}, "name_ar"); err != nil {
			return 0, err
		}
		b.remember("districts", key, row.ID)
	}
	return len(districts), nil
}

// ─── Accounts ─────────────────────────────────────────────────────────────────

var users = []struct{ email, name, role, phone string }{
	{"admin@elitetable.com", "Platform Admin", models.RoleAdmin, "+20 100 000 0001"},
	{"owner@elitetable.com", "Karim Mansour", models.RoleRestaurantOwner, "+20 100 000 0002"},
	{"owner2@elitetable.com", "Nour El-Sayed", models.RoleRestaurantOwner, "+20 100 000 0003"},
	{"customer@elitetable.com", "Mona Hassan", models.RoleCustomer, "+20 100 000 0004"},
	{"customer2@elitetable.com", "Omar Fathy", models.RoleCustomer, "+20 100 000 0005"},
}

func seedUsers(_ context.Context, b *Batch) (int, error) {
	hash, err := auth.HashPassword(DemoPassword)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		row := &models.User{Email: u.email, Password: hash, Name: u.name, Role: u.role, Phone: models.Ptr(u.phone)}
		row.ID = FixtureID("users", u.email)
		if err := upsert(b, row, map[string]any{"email": u.email}, "name", "role", "phone"); err != nil {
			return 0, err
		}
		b.remember("users", u.email, row.ID)
	}
	return len(users), nil
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

type restaurantFixture struct {
	name, owner, district, cuisine, address, price, hours, description string
	rating                                                            float64
	status                                                            models.RestaurantStatus
}

var restaurants = []restaurantFixture{
	{"Sequoia", "owner@elitetable.com", "Cairo/Zamalek", "Mediterranean", "53 Abou El Feda St, Zamalek", "$$$", "12:00-01:00",
		"Riverside dining on the northern tip of Zamalek.", 4.7, models.RestaurantActive},
	{"Abou El Sid", "owner@elitetable.com", "Cairo/Zamalek", "Egyptian", "157 26th of July St, Zamalek", "$$", "13:00-00:00",
		"Classic Egyptian home cooking in a vintage setting.", 4.6, models.RestaurantActive},
	{"Zooba", "owner2@elitetable.com", "Cairo/Maadi", "Street Food", "Road 9, Maadi", "$", "08:00-00:00",
		"Egyptian street food, reimagined.", 4.5, models.RestaurantActive},
	{"Fish Market", "owner2@elitetable.com", "Alexandria/Stanley", "Seafood", "26 El Geish Rd, Stanley", "$$$", "12:00-00:00",
		"Pick your catch at the counter, eat it by the sea.", 4.4, models.RestaurantActive},
	{"Kazoku", "owner@elitetable.com", "Cairo/New Cairo", "Japanese", "Fifth Settlement, New Cairo", "$$$$", "13:00-23:30",
		"Contemporary Japanese awaiting approval.", models.DefaultRating, models.RestaurantPending},
	{"Koshary Corner", "owner2@elitetable.com", "Giza/Dokki", "Egyptian", "Tahrir St, Dokki", "$", "10:00-02:00",
		"Suspended pending a hygiene inspection.", 3.9, models.RestaurantSuspended},
}

func seedRestaurants(_ context.Context, b *Batch) (int, error) {
	for _, f := range restaurants {
		owner, err := b.ID("users", f.owner)
		if err != nil {
			return 0, err
		}
		dist, err := b.ID("districts", f.district)
		if err != nil {
			return 0, err
		}
		var district models.District
		if err := b.tx.Where("id = ?", dist).Take(&district).Error; err != nil {
			return 0, err
		}
		row := &models.Restaurant{
			OwnerID:       owner,
			Name:          f.name,
			Description:   f.description,
			Cuisine:       f.cuisine,
			Address:       f.address,
			GovernorateID: models.Ptr(district.GovernorateID),
			DistrictID:    models.Ptr(dist),
			PriceRange:    f.price,
			Rating:        f.rating,
			Status:        f.status,
			OpeningHours:  models.Ptr(f.hours),
		}
		row.ID = FixtureID("restaurants", f.name)
		err = upsert(b, row, map[string]any{"name": f.name},
			"owner_id", "description", "cuisine", "address", "governorate_id", "district_id",
			"price_range", "rating", "status", "opening_hours", "updated_at")
		if err != nil {
			return 0, err
		}
		b.remember("restaurants", f.name, row.ID)
	}
	return len(restaurants), nil
}

var menu = []struct {
	restaurant, name, category, description string
	price                                   float64
	available                               bool
}{
	{"Sequoia", "Grilled Sea Bass", "Mains", "With lemon and herbs", 420, true},
	{"Sequoia", "Mezze Platter", "Starters", "Hummus, baba ghanoush, tabbouleh", 210, true},
	{"Sequoia", "Om Ali", "Desserts", "Puff pastry, milk and nuts", 95, true},
	{"Abou El Sid", "Molokhia with Rabbit", "Mains", "Served with rice", 285, true},
	{"Abou El Sid", "Stuffed Pigeon", "Mains", "Freekeh stuffing", 310, true},
	{"Abou El Sid", "Karkadeh", "Drinks", "Iced hibiscus", 45, true},
	{"Zooba", "Ta'ameya Sandwich", "Sandwiches", "Fava bean falafel in baladi bread", 35, true},
	{"Zooba", "Koshary", "Mains", "Rice, lentils, pasta, spicy tomato", 65, true},
	{"Zooba", "Sobia", "Drinks", "Coconut rice drink", 30, false},
	{"Fish Market", "Grilled Shrimp", "Mains", "By the half kilo", 540, true},
	{"Fish Market", "Calamari", "Starters", "Fried, with tahini", 260, true},
	{"Kazoku", "Salmon Nigiri", "Sushi", "Two pieces", 180, true},
}

func seedMenuItems(_ context.Context, b *Batch) (int, error) {
	for _, m := range menu {
		rid, err := b.ID("restaurants", m.restaurant)
		if err != nil {
			return 0, err
		}
		key := m.restaurant + "/" + m.name
		row := &models.MenuItem{
			RestaurantID: rid, Name: m.name, Description: m.description,
			Price: m.price, Category: m.category, Available: m.available,
		}
		row.ID = FixtureID("menu_items", key)
		err = upsert(b, row, map[string]any{"restaurant_id": rid, "name": m.name},
			"description", "price", "category", "available", "updated_at")
		if err != nil {
			return 0, err
		}
		b.remember("menu_items", key, row.ID)
	}
	return len(menu), nil
}

// ─── Bookings ─────────────────────────────────────────────────────────────────

var reservations = []struct {
	code, user, restaurant, date, time string
	party                              int
	status                             models.ReservationStatus
	requests                           string
}{
	{"ELITES00001", "customer@elitetable.com", "Sequoia", "2025-06-12", "20:30", 4, models.ReservationConfirmed, "Window table please"},
	{"ELITES00002", "customer@elitetable.com", "Abou El Sid", "2025-06-14", "19:00", 2, models.ReservationPending, ""},
	{"ELITES00003", "customer2@elitetable.com", "Zooba", "2025-05-30", "13:00", 3, models.ReservationCompleted, ""},
	{"ELITES00004", "customer2@elitetable.com", "Fish Market", "2025-06-20", "21:00", 6, models.ReservationCancelled, "Birthday"},
}

func seedReservations(_ context.Context, b *Batch) (int, error) {
	for _, r := range reservations {
		uid, err := b.ID("users", r.user)
		if err != nil {
			return 0, err
		}
		rid, err := b.ID("restaurants", r.restaurant)
		if err != nil {
			return 0, err
		}
		row := &models.Reservation{
			UserID: uid, RestaurantID: rid, Date: r.date, Time: r.time, PartySize: r.party,
			Status: r.status, ConfirmationCode: r.code,
		}
		if r.requests != "" {
			row.SpecialRequests = models.Ptr(r.requests)
		}
		row.ID = FixtureID("reservations", r.code)
		err = upsert(b, row, map[string]any{"confirmation_code": r.code},
			"status", "date", "time", "party_size", "special_requests", "updated_at")
		if err != nil {
			return 0, err
		}
		b.remember("reservations", r.code, row.ID)
	}
	return len(reservations), nil
}

type line struct {
	item string
	qty  int
}

var orders = []struct {
	key, user, restaurant, reservation string
	status                             models.OrderStatus
	lines                              []line
}{
	{"sequoia-1", "customer@elitetable.com", "Sequoia", "ELITES00001", models.OrderServed,
		[]line{{"Grilled Sea Bass", 2}, {"Mezze Platter", 1}, {"Om Ali", 2}}},
	{"zooba-1", "customer2@elitetable.com", "Zooba", "ELITES00003", models.OrderServed,
		[]line{{"Koshary", 3}, {"Ta'ameya Sandwich", 3}}},
	{"abou-el-sid-1", "customer@elitetable.com", "Abou El Sid", "", models.OrderPreparing,
		[]line{{"Molokhia with Rabbit", 1}, {"Karkadeh", 2}}},
	{"fish-market-1", "customer2@elitetable.com", "Fish Market", "", models.OrderCancelled,
		[]line{{"Calamari", 1}}},
}

func seedOrders(_ context.Context, b *Batch) (int, error) {
	prices := map[string]float64{}
	for _, m := range menu {
		prices[m.restaurant+"/"+m.name] = m.price
	}

	rows := 0
	for _, o := range orders {
		uid, err := b.ID("users", o.user)
		if err != nil {
			return 0, err
		}
		rid, err := b.ID("restaurants", o.restaurant)
		if err != nil {
			return 0, err
		}
		var customer models.User
		if err := b.tx.Where("id = ?", uid).Take(&customer).Error; err != nil {
			return 0, err
		}

		id := FixtureID("orders", o.key)
		items := make([]models.OrderItem, 0, len(o.lines))
		var total float64
		for i, l := range o.lines {
			mid, err := b.ID("menu_items", o.restaurant+"/"+l.item)
			if err != nil {
				return 0, err
			}
			price := prices[o.restaurant+"/"+l.item]
			it := models.OrderItem{OrderID: id, MenuItemID: mid, Name: l.item, Quantity: l.qty, Price: price}
			it.ID = FixtureID("order_items", o.key+"/"+string(rune('a'+i)))
			items = append(items, it)
			total += price * float64(l.qty)
		}

		row := &models.Order{
			RestaurantID: rid, UserID: models.Ptr(uid), CustomerName: customer.Name,
			Status: o.status, Total: total,
		}
		if o.reservation != "" {
			resID, err := b.ID("reservations", o.reservation)
			if err != nil {
				return 0, err
			}
			row.ReservationID = models.Ptr(resID)
		}
		row.ID = id
		err = upsert(b, row, map[string]any{"id": id}, "status", "total", "customer_name", "updated_at")
		if err != nil {
			return 0, err
		}
		for i := range items {
			err := upsert(b, &items[i], map[string]any{"id": items[i].ID}, "name", "quantity", "price")
			if err != nil {
				return 0, err
			}
		}
		rows += 1 + len(items)
	}
	return rows, nil
}

// ─── Engagement & audit ───────────────────────────────────────────────────────

var reviews = []struct {
	key, user, restaurant string
	rating                int
	comment               string
}{
	{"sequoia-mona", "customer@elitetable.com", "Sequoia", 5, "Sunset over the Nile, perfect sea bass."},
	{"zooba-omar", "customer2@elitetable.com", "Zooba", 4, "Best ta'ameya in Maadi."},
	{"abou-el-sid-mona", "customer@elitetable.com", "Abou El Sid", 5, "Tastes like my grandmother's molokhia."},
}

func seedReviews(_ context.Context, b *Batch) (int, error) {
	for _, r := range reviews {
		uid, err := b.ID("users", r.user)
		if err != nil {
			return 0, err
		}
		rid, err := b.ID("restaurants", r.restaurant)
		if err != nil {
			return 0, err
		}
		row := &models.Review{UserID: uid, RestaurantID: rid, Rating: r.rating, Comment: models.Ptr(r.comment)}
		row.ID = FixtureID("reviews", r.key)
		if err := upsert(b, row, map[string]any{"id": row.ID}, "rating", "comment"); err != nil {
			return 0, err
		}
	}
	return len(reviews), nil
}

var activity = []struct {
	key, user  string
	typ        models.ActivityType
	desc       string
	entityType string
}{
	{"seed", "admin@elitetable.com", models.ActivityDataSeeded, "Demo data loaded", ""},
	{"register-mona", "customer@elitetable.com", models.ActivityUserRegistered, "New user registered: customer@elitetable.com", "user"},
	{"register-omar", "customer2@elitetable.com", models.ActivityUserRegistered, "New user registered: customer2@elitetable.com", "user"},
	{"restaurant-kazoku", "owner@elitetable.com", models.ActivityRestaurantCreated, "Restaurant created: Kazoku", "restaurant"},
}

func seedActivityLogs(_ context.Context, b *Batch) (int, error) {
	for _, a := range activity {
		uid, err := b.ID("users", a.user)
		if err != nil {
			return 0, err
		}
		row := &models.ActivityLog{UserID: models.Ptr(uid), ActivityType: a.typ, Description: a.desc}
		switch a.entityType {
		case "user":
			row.EntityType, row.EntityID = models.Ptr("user"), models.Ptr(uid)
		case "restaurant":
			rid, err := b.ID("restaurants", "Kazoku")
			if err != nil {
				return 0, err
			}
			row.EntityType, row.EntityID = models.Ptr("restaurant"), models.Ptr(rid)
		}
		row.ID = FixtureID("activity_logs", a.key)
		if err := upsert(b, row, map[string]any{"id": row.ID}); err != nil {
			return 0, err
		}
	}
	return len(activity), nil
}

var notifications = []struct {
	key, user, title, message, typ string
}{
	{"welcome", "", "Welcome to EliteTable", "Discover and book the best restaurants in Egypt.", "info"},
	{"mona-confirmed", "customer@elitetable.com", "Reservation confirmed", "Reservation ELITES00001 at Sequoia is confirmed.", "success"},
	{"karim-pending", "owner@elitetable.com", "Restaurant under review", "Kazoku is awaiting admin approval.", "warning"},
}

func seedNotifications(_ context.Context, b *Batch) (int, error) {
	for _, n := range notifications {
		row := &models.Notification{Title: n.title, Message: n.message, Type: n.typ}
		if n.user != "" {
			uid, err := b.ID("users", n.user)
			if err != nil {
				return 0, err
			}
			row.UserID = models.Ptr(uid)
		}
		row.ID = FixtureID("notifications", n.key)
		if err := upsert(b, row, map[string]any{"id": row.ID}, "title", "message", "type"); err != nil {
			return 0, err
		}
	}
	return len(notifications), nil
}

var favorites = []struct{ user, restaurant string }{
	{"customer@elitetable.com", "Sequoia"},
	{"customer@elitetable.com", "Zooba"},
	{"customer2@elitetable.com", "Fish Market"},
}

func seedFavorites(_ context.Context, b *Batch) (int, error) {
	for _, f := range favorites {
		uid, err := b.ID("users", f.user)
		if err != nil {
			return 0, err
		}
		rid, err := b.ID("restaurants", f.restaurant)
		if err != nil {
			return 0, err
		}
		row := &models.Favorite{UserID: uid, RestaurantID: rid}
		row.ID = FixtureID("favorites", f.user+"/"+f.restaurant)
		if err := upsert(b, row, map[string]any{"user_id": uid, "restaurant_id": rid}); err != nil {
			return 0, err
		}
	}
	return len(favorites), nil
}
