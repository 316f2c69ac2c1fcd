package validate_test

import (
	"testing"

	"github.com/elitetable/elitetable/pkg/validate"
)

type registerInput struct {
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Name     string  `json:"name"     validate:"required,max=120"`
	Phone    *string `json:"phone"    validate:"nullable,max=32"`
	Role     string  `json:"role"     validate:"nullable,in=customer restaurant_owner admin"`
}

type line struct {
	MenuItemID string `json:"menuItemId" validate:"required,uuid"`
	Quantity   int    `json:"quantity"   validate:"required,gte=1,lte=99"`
}

type orderInput struct {
	RestaurantID string `json:"restaurantId" validate:"required"`
	Items        []line `json:"items"        validate:"required,min=1,dive"`
}

func TestValidInput(t *testing.T) {
	phone := "+20 100 000 0000"
	errs := validate.Struct(registerInput{
		Email:    "guest@example.com",
		Password: "secret1",
		Name:     "Guest",
		Phone:    &phone,
		Role:     "customer",
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(registerInput{})
	for _, field := range []string{"email", "password", "name"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required", field)
		}
	}
	if _, ok := errs["phone"]; ok {
		t.Error("nil optional pointer must not be reported")
	}
}

func TestEmailRule(t *testing.T) {
	errs := validate.Struct(registerInput{Email: "not-an-email", Password: "secret1", Name: "x"})
	if _, ok := errs["email"]; !ok {
		t.Error("expected email validation error")
	}
}

func TestMinLengthOnPassword(t *testing.T) {
	errs := validate.Struct(registerInput{Email: "a@x.com", Password: "abc", Name: "A"})
	if _, ok := errs["password"]; !ok {
		t.Error("expected password min length error")
	}
}

func TestInRule(t *testing.T) {
	errs := validate.Struct(registerInput{Email: "a@x.com", Password: "secret1", Name: "A", Role: "superuser"})
	if _, ok := errs["role"]; !ok {
		t.Error("expected role to be rejected")
	}
}

func TestPointerRulesApplyToValue(t *testing.T) {
	long := "01234567890123456789012345678901234"
	errs := validate.Struct(registerInput{Email: "a@x.com", Password: "secret1", Name: "A", Phone: &long})
	if _, ok := errs["phone"]; !ok {
		t.Error("expected max rule to apply through pointer")
	}
}

func TestDiveReportsElementPaths(t *testing.T) {
	errs := validate.Struct(&orderInput{
		RestaurantID: "r1",
		Items: []line{
			{MenuItemID: "0b7e5d7a-6a43-4f3e-9c1e-3b1b2f9d8a10", Quantity: 2},
			{MenuItemID: "not-a-uuid", Quantity: 0},
		},
	})
	if _, ok := errs["items[1].menuItemId"]; !ok {
		t.Errorf("expected items[1].menuItemId error, got %v", errs)
	}
	if _, ok := errs["items[1].quantity"]; !ok {
		t.Errorf("expected items[1].quantity error, got %v", errs)
	}
	if _, ok := errs["items[0].quantity"]; ok {
		t.Error("valid element must not be reported")
	}
}

func TestEmptySliceIsRequired(t *testing.T) {
	errs := validate.Struct(orderInput{RestaurantID: "r1"})
	if _, ok := errs["items"]; !ok {
		t.Error("expected items to be required")
	}
}

func TestNumericBounds(t *testing.T) {
	type review struct {
		Rating int `json:"rating" validate:"required,between=1 5"`
	}
	if errs := validate.Struct(review{Rating: 6}); !validate.HasErrors(errs) {
		t.Error("expected rating 6 to fail")
	}
	if errs := validate.Struct(review{Rating: 5}); validate.HasErrors(errs) {
		t.Errorf("expected rating 5 to pass, got %v", errs)
	}
}

func TestPriceMustBePositive(t *testing.T) {
	type item struct {
		Price float64 `json:"price" validate:"required,gt=0"`
	}
	if errs := validate.Struct(item{Price: -3}); !validate.HasErrors(errs) {
		t.Error("expected negative price to fail")
	}
	if errs := validate.Struct(item{Price: 12.5}); validate.HasErrors(errs) {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestDateAndClock(t *testing.T) {
	type slot struct {
		Date string `json:"date" validate:"required,date"`
		Time string `json:"time" validate:"required,clock"`
	}
	if errs := validate.Struct(slot{Date: "2026-03-14", Time: "19:30"}); validate.HasErrors(errs) {
		t.Errorf("unexpected errors: %v", errs)
	}
	errs := validate.Struct(slot{Date: "14/03/2026", Time: "7pm"})
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %v", errs)
	}
}

func TestRegexKeepsCommas(t *testing.T) {
	type code struct {
		Value string `json:"value" validate:"required,regex=^[A-Z]{1,5}$"`
	}
	if errs := validate.Struct(code{Value: "ELITE"}); validate.HasErrors(errs) {
		t.Errorf("unexpected errors: %v", errs)
	}
	if errs := validate.Struct(code{Value: "elite"}); !validate.HasErrors(errs) {
		t.Error("expected lowercase value to fail")
	}
}

type patchInput struct {
	Price *float64 `json:"price" validate:"nullable,gt=0"`
	Name  *string  `json:"name"  validate:"nullable,min=1"`
}

func TestSetPointerToZeroIsValidated(t *testing.T) {
	zero := 0.0
	empty := ""
	errs := validate.Struct(patchInput{Price: &zero, Name: &empty})
	if _, ok := errs["price"]; !ok {
		t.Error("expected price 0 to fail gt=0")
	}
	if _, ok := errs["name"]; !ok {
		t.Error("expected empty name to fail min=1")
	}
	if errs := validate.Struct(patchInput{}); validate.HasErrors(errs) {
		t.Errorf("nil pointers are absent, got %v", errs)
	}
}
