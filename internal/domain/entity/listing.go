package entity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type Category string

const (
	CategoryPreparedFood  Category = "prepared_food"
	CategoryProduce       Category = "produce"
	CategoryPackagedGoods Category = "packaged_goods"
	CategoryBakedGoods    Category = "baked_goods"
	CategoryOther         Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryPreparedFood, CategoryProduce, CategoryPackagedGoods, CategoryBakedGoods, CategoryOther:
		return true
	}
	return false
}

type ListingStatus string

const (
	ListingActive    ListingStatus = "active"
	ListingClaimed   ListingStatus = "claimed"
	ListingCompleted ListingStatus = "completed"
	ListingExpired   ListingStatus = "expired"
)

const DefaultUnit = "unit"

type Listing struct {
	ID             string   `json:"id" firestore:"id" gorm:"primaryKey;size:64"`
	DonorProfileID string   `json:"donor_profile_id" firestore:"donorProfileId" gorm:"size:64;index;not null"`
	Title          string   `json:"title" firestore:"title" gorm:"size:200;not null"`
	Description    string   `json:"description" firestore:"description" gorm:"type:text"`
	Category       Category `json:"category" firestore:"category" gorm:"size:32;not null"`

	// Quantity is the legacy free-text amount ("10 servings"), still written for older clients.
	Quantity          string `json:"quantity,omitempty" firestore:"quantity,omitempty" gorm:"size:100"`
	TotalQuantity     *int   `json:"total_quantity,omitempty" firestore:"totalQuantity,omitempty"`
	AvailableQuantity *int   `json:"available_quantity,omitempty" firestore:"availableQuantity,omitempty"`
	Unit              string `json:"unit,omitempty" firestore:"unit,omitempty" gorm:"size:50"`

	PickupWindowStart time.Time `json:"pickup_window_start" firestore:"pickupWindowStart"`
	PickupWindowEnd   time.Time `json:"pickup_window_end" firestore:"pickupWindowEnd"`
	Address           string    `json:"address,omitempty" firestore:"address,omitempty" gorm:"size:500"`
	ZipCode           string    `json:"zip_code" firestore:"zipCode" gorm:"size:16;index:idx_listings_zip_status,priority:1;not null"`
	PhotoRef          string    `json:"photo_ref,omitempty" firestore:"photoRef,omitempty" gorm:"size:1000"`
	Source            string    `json:"source,omitempty" firestore:"source,omitempty" gorm:"size:200"`

	Status ListingStatus `json:"status" firestore:"status" gorm:"size:16;index;index:idx_listings_zip_status,priority:2;not null"`

	// ClaimedBy and ClaimedAt mirror the single-claim model; the claims collection is authoritative.
	ClaimedBy string     `json:"claimed_by,omitempty" firestore:"claimedBy,omitempty" gorm:"size:64;index"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty" firestore:"claimedAt,omitempty"`

	ExpiresAt time.Time `json:"expires_at" firestore:"expiresAt" gorm:"index"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// Total is the listing's original quantity; records predating quantity tracking count as one.
func (l *Listing) Total() int {
	if l.TotalQuantity != nil {
		return *l.TotalQuantity
	}
	return 1
}

// Available is the quantity still open for claims. Records without the field
// fall back to the total, then to one.
func (l *Listing) Available() int {
	if l.AvailableQuantity != nil {
		return *l.AvailableQuantity
	}
	return l.Total()
}

func (l *Listing) SetAvailable(n int) {
	l.AvailableQuantity = &n
}

func (l *Listing) SetTotal(n int) {
	l.TotalQuantity = &n
}

func (l *Listing) UnitLabel() string {
	if l.Unit == "" {
		return DefaultUnit + "s"
	}
	return l.Unit
}

// NeedsQuantityBackfill reports whether the record predates numeric quantities.
func (l *Listing) NeedsQuantityBackfill() bool {
	return l.TotalQuantity == nil || l.AvailableQuantity == nil || l.Unit == ""
}

func FormatQuantity(n int, unit string) string {
	return fmt.Sprintf("%d %s", n, unit)
}

// A count may carry thousands separators, a fraction ("1.5 kg") or a range ("2-3 trays").
// Fractions are truncated and ranges keep their low end.
var legacyQuantityPattern = regexp.MustCompile(`^\s*(\d+(?:,\d{3})*)(?:[.,]\d+)?(?:\s*-\s*\d+(?:[.,]\d+)?)?\s*(.*?)\s*$`)

// ParseLegacyQuantity reads the free-text quantity of older listings.
// "10 servings" gives (10, "servings"); anything without a leading count gives (1, "unit").
// A count that is zero or out of range becomes 1 and the unit text is kept.
func ParseLegacyQuantity(s string) (int, string) {
	m := legacyQuantityPattern.FindStringSubmatch(s)
	if m == nil {
		return 1, DefaultUnit
	}

	unit := strings.TrimSpace(m[2])
	if unit == "" {
		unit = DefaultUnit
	}

	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || n < 1 {
		return 1, unit
	}
	return n, unit
}

// ListingView is a listing with its donor joined in for display.
type ListingView struct {
	*Listing
	Donor *ProfileSummary `json:"donor"`
}
