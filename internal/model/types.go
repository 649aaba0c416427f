package model

import "time"

// Currency is an ISO 4217 currency code supported by the converter.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyJPY Currency = "JPY"
	CurrencyCNY Currency = "CNY"
	CurrencyINR Currency = "INR"
)

// Category is the closed set of expense categories. Both jurisdictions share
// the same set, so switching jurisdictions never invalidates a stored choice.
type Category string

const (
	CategoryOfficeSupplies       Category = "Office Supplies"
	CategoryTravel               Category = "Travel"
	CategoryMeals                Category = "Meals & Entertainment"
	CategoryVehicle              Category = "Vehicle"
	CategoryHomeOffice           Category = "Home Office"
	CategoryProfessionalServices Category = "Professional Services"
	CategoryMarketing            Category = "Marketing & Advertising"
	CategoryTechnology           Category = "Technology & Software"
	CategoryEducation            Category = "Education & Training"
	CategoryInsurance            Category = "Insurance"
	CategoryOther                Category = "Other"
)

// Categories lists every category in canonical order.
func Categories() []Category {
	return []Category{
		CategoryOfficeSupplies,
		CategoryTravel,
		CategoryMeals,
		CategoryVehicle,
		CategoryHomeOffice,
		CategoryProfessionalServices,
		CategoryMarketing,
		CategoryTechnology,
		CategoryEducation,
		CategoryInsurance,
		CategoryOther,
	}
}

// Jurisdiction selects which rule table, bracket schedule, mileage rate and
// reporting currency are active.
type Jurisdiction string

const (
	JurisdictionUS Jurisdiction = "US"
	JurisdictionAU Jurisdiction = "AU"
)

// FilingStatus selects the bracket list within a jurisdiction.
type FilingStatus string

const (
	FilingSingle  FilingStatus = "single"
	FilingMarried FilingStatus = "married"
	FilingHead    FilingStatus = "head"
)

// Frequency is a recurring-expense cadence.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// DistanceUnit tags a logged mileage distance.
type DistanceUnit string

const (
	UnitMiles      DistanceUnit = "mi"
	UnitKilometers DistanceUnit = "km"
)

// Receipt is upload metadata for a scanned receipt linked to an expense.
type Receipt struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Expense is a single recorded business expense, stored in its original
// currency. Currency normalization happens at analysis time.
type Expense struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    Currency  `json:"currency"`
	Category    Category  `json:"category"`
	Client      string    `json:"client,omitempty"`
	Receipt     *Receipt  `json:"receipt,omitempty"`
	IsRecurring bool      `json:"isRecurring"`
	Frequency   Frequency `json:"frequency,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Mileage is a single logged business trip.
type Mileage struct {
	ID            string       `json:"id"`
	Date          time.Time    `json:"date"`
	Distance      float64      `json:"distance"`
	Unit          DistanceUnit `json:"unit"`
	Purpose       string       `json:"purpose"`
	Client        string       `json:"client,omitempty"`
	StartLocation string       `json:"startLocation,omitempty"`
	EndLocation   string       `json:"endLocation,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// Client is a business client. Expenses and mileage reference clients by
// name; removing a client does not cascade to its records.
type Client struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	BusinessType string    `json:"businessType,omitempty"`
	Email        string    `json:"email,omitempty"`
	TaxID        string    `json:"taxId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// RecurringExpense is a snapshot of an expense taken when it was added with
// the recurring flag, plus the projected next due date. It is not kept in
// sync with later edits to the source expense.
type RecurringExpense struct {
	ID          string    `json:"id"`
	ExpenseID   string    `json:"expenseId"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Currency    Currency  `json:"currency"`
	Category    Category  `json:"category"`
	Frequency   Frequency `json:"frequency"`
	NextDue     time.Time `json:"nextDue"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AuditEntry records a single user-visible action.
type AuditEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}
