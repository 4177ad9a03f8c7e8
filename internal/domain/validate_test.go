package domain

import (
	"testing"
	"time"
)

func pinYear(t *testing.T, year int) {
	t.Helper()
	prev := now
	now = func() time.Time { return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = prev })
}

func validVehicle() VehicleInput {
	return VehicleInput{
		VehiclePlateNumber: "RAD123A",
		VehicleType:        "Sedan",
		VehicleColor:       "Blue",
		VehicleBrand:       "Toyota",
		VehicleModel:       "C",
		VehicleYear:        2020,
	}
}

func TestValidate_VehicleYearRange(t *testing.T) {
	pinYear(t, 2026)

	tests := []struct {
		year    int
		wantErr bool
	}{
		{1899, true},
		{1900, false},
		{2026, false},
		{2027, false},
		{2028, true},
	}
	for _, tt := range tests {
		in := validVehicle()
		in.VehicleYear = tt.year
		err := Validate(in)
		if (err != nil) != tt.wantErr {
			t.Errorf("year %d: err = %v, wantErr %v", tt.year, err, tt.wantErr)
		}
		if err != nil {
			fields := FieldErrors(err)
			if fields["vehicleYear"] != "must be between 1900 and 2027" {
				t.Errorf("year %d: field message = %q", tt.year, fields["vehicleYear"])
			}
		}
	}
}

func TestValidate_FieldNamesFollowFormTags(t *testing.T) {
	in := validVehicle()
	in.VehiclePlateNumber = "A"
	in.VehicleModel = ""

	err := Validate(in)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := FieldErrors(err)
	if fields["vehiclePlateNumber"] != "must be at least 2 characters" {
		t.Errorf("plate message = %q", fields["vehiclePlateNumber"])
	}
	if fields["vehicleModel"] != "is required" {
		t.Errorf("model message = %q", fields["vehicleModel"])
	}
}

func TestValidate_BulkSlotsBounds(t *testing.T) {
	tests := []struct {
		count   int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{100, false},
		{101, true},
	}
	for _, tt := range tests {
		err := Validate(BulkCreateSlotsInput{NumberOfSlots: tt.count, SlotSize: SlotLarge})
		if (err != nil) != tt.wantErr {
			t.Errorf("count %d: err = %v, wantErr %v", tt.count, err, tt.wantErr)
		}
	}
}

func TestValidate_Enums(t *testing.T) {
	if err := Validate(UpdateSlotInput{SlotSize: "HUGE"}); err == nil {
		t.Error("unknown slot size should fail")
	}
	if err := Validate(UpdateSlotInput{}); err != nil {
		t.Errorf("empty partial update should pass, got %v", err)
	}
	if err := Validate(UpdateOrderStatusInput{Status: OrderApproved}); err != nil {
		t.Errorf("APPROVED should pass, got %v", err)
	}
	err := Validate(UpdateOrderStatusInput{Status: "ARCHIVED"})
	if got := FieldErrors(err)["status"]; got != "must be one of PENDING, APPROVED, REJECTED, COMPLETED" {
		t.Errorf("status message = %q", got)
	}
}

func TestValidate_ResetPasswordConfirmation(t *testing.T) {
	err := Validate(ResetPasswordInput{Password: "longenough", ConfirmPassword: "different1"})
	if FieldErrors(err)["confirmPassword"] != "does not match" {
		t.Errorf("fields = %v", FieldErrors(err))
	}
	if err := Validate(ResetPasswordInput{Password: "longenough", ConfirmPassword: "longenough"}); err != nil {
		t.Errorf("matching passwords should pass, got %v", err)
	}
}

func TestTotalPages(t *testing.T) {
	for _, size := range []int{10, 20, 30, 50, 100} {
		for _, total := range []int{0, 1, size - 1, size, size + 1, 3*size + 7} {
			want := 0
			if total > 0 {
				want = (total + size - 1) / size
			}
			if got := TotalPages(total, size); got != want {
				t.Errorf("TotalPages(%d, %d) = %d; want %d", total, size, got, want)
			}
		}
	}
	if TotalPages(5, 0) != 0 {
		t.Error("zero size must yield 0 pages")
	}
}

func TestResultStates(t *testing.T) {
	if r := Disabled[int](); !r.IsDisabled() || r.IsErr() || r.IsOk() {
		t.Errorf("Disabled state = %v", r.State)
	}
	if v, err := Ok(3).Get(); v != 3 || err != nil {
		t.Errorf("Ok.Get() = %v, %v", v, err)
	}
	if _, err := Fail[int](ErrNotFound).Get(); !IsNotFound(err) {
		t.Errorf("Fail.Get() err = %v", err)
	}
}

func TestUserHelpers(t *testing.T) {
	u := User{FirstName: "Ada", LastName: "", Role: "admin"}
	if u.FullName() != "Ada" {
		t.Errorf("FullName() = %q", u.FullName())
	}
	if !u.IsAdmin() {
		t.Error("role comparison should be case-insensitive")
	}
}
