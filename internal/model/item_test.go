package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validInput() ItemInput {
	return ItemInput{
		Name:       "Hammer",
		Location:   "Keller",
		Importance: ImportanceImportant,
		Category:   CategoryHousehold,
	}
}

func TestItemInputValidateOK(t *testing.T) {
	in := validInput()
	price := decimal.RequireFromString("0")
	in.PurchasePrice = &price
	if err := in.Validate(); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
}

func TestItemInputValidateCollectsAllFields(t *testing.T) {
	neg := decimal.RequireFromString("-0.01")
	in := ItemInput{
		Name:             "  ",
		Importance:       "sentimental",
		PurchasePrice:    &neg,
		DesiredSalePrice: &neg,
	}

	err := in.Validate()
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}

	want := []string{"name", "location", "importance", "category", "purchase_price", "desired_sale_price"}
	for _, f := range want {
		if _, ok := fe[f]; !ok {
			t.Errorf("expected error for field %q, got %v", f, fe)
		}
	}
	if len(fe) != len(want) {
		t.Errorf("expected %d field errors, got %d: %v", len(want), len(fe), fe)
	}
}

func TestItemInputNormalize(t *testing.T) {
	var in ItemInput
	body := `{"name":" Hammer ","location":" Keller","importance":"IMPORTANT","category":" Household ","last_used":"","dispose_on":"2026-01-31"}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	in.Normalize()

	if in.Name != "Hammer" || in.Location != "Keller" {
		t.Errorf("expected trimmed text, got %q / %q", in.Name, in.Location)
	}
	if in.Importance != ImportanceImportant || in.Category != CategoryHousehold {
		t.Errorf("expected lower-cased enums, got %q / %q", in.Importance, in.Category)
	}
	if in.LastUsed != nil {
		t.Errorf("expected empty last_used to be dropped, got %v", in.LastUsed)
	}
	if in.DisposeOn == nil || in.DisposeOn.String() != "2026-01-31" {
		t.Errorf("expected dispose_on 2026-01-31, got %v", in.DisposeOn)
	}
	if err := in.Validate(); err != nil {
		t.Errorf("expected normalized input to validate, got %v", err)
	}
}

func TestRemindersOnDefaultsTrue(t *testing.T) {
	in := validInput()
	if !in.RemindersOn() {
		t.Error("omitted reminder flag should mean enabled")
	}
	off := false
	in.ReminderEnabled = &off
	if in.RemindersOn() {
		t.Error("explicit false should disable reminders")
	}
}

func TestSafeToDiscard(t *testing.T) {
	today := NewDate(2026, time.October, 15)
	d := func(y int, m time.Month, day int) *Date {
		v := NewDate(y, m, day)
		return &v
	}

	tests := []struct {
		name     string
		lastUsed *Date
		want     bool
	}{
		{"never used", nil, false},
		{"yesterday", d(2026, time.October, 14), false},
		{"exactly six months", d(2026, time.April, 15), false},
		{"six months and a day", d(2026, time.April, 14), true},
		{"years ago", d(2020, time.January, 1), true},
	}

	for _, tt := range tests {
		if got := SafeToDiscard(tt.lastUsed, today); got != tt.want {
			t.Errorf("%s: SafeToDiscard = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestItemJSONHidesOwner(t *testing.T) {
	data, err := json.Marshal(Item{ID: 1, OwnerID: 42, Name: "Hammer"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	if _, ok := m["owner_id"]; ok {
		t.Error("owner id must not be serialized")
	}
}
