package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a single tracked possession (a "Gegenstand"). It always belongs to
// exactly one user.
type Item struct {
	ID               int64            `json:"id"`
	OwnerID          int64            `json:"-"`
	Name             string           `json:"name"`
	Location         string           `json:"location"`
	Importance       string           `json:"importance"`
	Category         string           `json:"category"`
	LastUsed         *Date            `json:"last_used,omitempty"`
	DisposeOn        *Date            `json:"dispose_on,omitempty"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price,omitempty"`
	DesiredSalePrice *decimal.Decimal `json:"desired_sale_price,omitempty"`
	ReminderEnabled  bool             `json:"reminder_enabled"`
	ReminderSent     bool             `json:"reminder_sent"`
	HasPhoto         bool             `json:"has_photo"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Importance levels.
const (
	ImportanceUnimportant = "unimportant"
	ImportanceImportant   = "important"
	ImportanceEssential   = "essential"
	ImportanceTrash       = "trash"
)

// Categories.
const (
	CategoryHousehold = "household"
	CategoryTech      = "tech"
	CategoryClothing  = "clothing"
	CategoryFurniture = "furniture"
	CategoryMedia     = "media"
	CategoryTools     = "tools"
	CategoryOther     = "other"
)

var importances = map[string]bool{
	ImportanceUnimportant: true,
	ImportanceImportant:   true,
	ImportanceEssential:   true,
	ImportanceTrash:       true,
}

var categories = map[string]bool{
	CategoryHousehold: true,
	CategoryTech:      true,
	CategoryClothing:  true,
	CategoryFurniture: true,
	CategoryMedia:     true,
	CategoryTools:     true,
	CategoryOther:     true,
}

// ValidImportance reports whether s is a known importance level.
func ValidImportance(s string) bool { return importances[s] }

// ValidCategory reports whether s is a known category.
func ValidCategory(s string) bool { return categories[s] }

// DiscardAfterMonths is how long an item may go unused before it counts as
// safe to discard.
const DiscardAfterMonths = 6

// SafeToDiscard reports whether an item last used on lastUsed has gone unused
// for more than DiscardAfterMonths as of today. Unknown usage is never safe.
func SafeToDiscard(lastUsed *Date, today Date) bool {
	if lastUsed == nil || lastUsed.IsZero() {
		return false
	}
	return lastUsed.Before(today.MonthsBefore(DiscardAfterMonths))
}

// ItemInput is the client payload for creating or replacing an item. It
// carries every mutable field; the owner is never part of it.
type ItemInput struct {
	Name             string           `json:"name"`
	Location         string           `json:"location"`
	Importance       string           `json:"importance"`
	Category         string           `json:"category"`
	LastUsed         *Date            `json:"last_used"`
	DisposeOn        *Date            `json:"dispose_on"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price"`
	DesiredSalePrice *decimal.Decimal `json:"desired_sale_price"`
	ReminderEnabled  *bool            `json:"reminder_enabled"`
}

// Normalize trims text fields and turns empty dates into absent ones.
func (in *ItemInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Importance = strings.ToLower(strings.TrimSpace(in.Importance))
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.LastUsed != nil && in.LastUsed.IsZero() {
		in.LastUsed = nil
	}
	if in.DisposeOn != nil && in.DisposeOn.IsZero() {
		in.DisposeOn = nil
	}
}

// Validate checks the payload and returns every problem at once, or nil.
func (in ItemInput) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs.Add("name", "must not be blank")
	}
	if strings.TrimSpace(in.Location) == "" {
		errs.Add("location", "must not be blank")
	}
	switch {
	case in.Importance == "":
		errs.Add("importance", "must not be null")
	case !ValidImportance(in.Importance):
		errs.Add("importance", "unknown importance")
	}
	switch {
	case in.Category == "":
		errs.Add("category", "must not be null")
	case !ValidCategory(in.Category):
		errs.Add("category", "unknown category")
	}
	if in.PurchasePrice != nil && in.PurchasePrice.IsNegative() {
		errs.Add("purchase_price", "must not be negative")
	}
	if in.DesiredSalePrice != nil && in.DesiredSalePrice.IsNegative() {
		errs.Add("desired_sale_price", "must not be negative")
	}
	return errs.Err()
}

// RemindersOn resolves the reminder flag of a new item; an omitted flag means
// enabled. On update an omitted flag keeps the stored value.
func (in ItemInput) RemindersOn() bool {
	return in.ReminderEnabled == nil || *in.ReminderEnabled
}
