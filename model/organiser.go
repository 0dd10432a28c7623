package model

import (
	"encoding/json"
	"time"
)

type DashboardStats struct {
	TotalEvents     int64   `json:"totalEvents"`
	PublishedEvents int64   `json:"publishedEvents"`
	DraftEvents     int64   `json:"draftEvents"`
	CompletedEvents int64   `json:"completedEvents"`
	UpcomingEvents  int64   `json:"upcomingEvents"`
	TotalAttendees  int64   `json:"totalAttendees"`
	TotalRevenue    float64 `json:"totalRevenue"`
	RevenueGrowth   float64 `json:"revenueGrowth"`
	AverageRating   float64 `json:"averageRating"`
	TotalViews      int64   `json:"totalViews"`
}

type OrganiserLevel struct {
	Level         string  `json:"level"`
	LevelProgress float64 `json:"levelProgress"`
	Points        int64   `json:"points"`
	StreakDays    int     `json:"streakDays"`
}

type Dashboard struct {
	Stats          DashboardStats `json:"stats"`
	Gamification   OrganiserLevel `json:"gamification"`
	RecentActivity []Transaction  `json:"recentActivity"`
	UpcomingEvents []Event        `json:"upcomingEvents"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}

type AttendeeFilter struct {
	OrganiserID string
	EventID     string
	Search      string
	Status      string
	Page        int
	Limit       int
}

type Attendee struct {
	ID               string      `json:"id"`
	EventID          string      `json:"event_id"`
	EventTitle       string      `json:"event_title"`
	Status           string      `json:"status"`
	RegisteredAt     time.Time   `json:"registered_at"`
	User             UserSummary `json:"user"`
	Interests        []string    `json:"-"`
	Ticket           *Ticket     `json:"ticket,omitempty"`
	EventsAttended   int64       `json:"eventsAttended"`
	ConnectionStatus *string     `json:"connectionStatus"`
}

type InterestCount struct {
	Interest string `json:"interest"`
	Count    int64  `json:"count"`
}

type AttendeeSummary struct {
	Total      int64 `json:"total"`
	Going      int64 `json:"going"`
	Interested int64 `json:"interested"`
	Attended   int64 `json:"attended"`
}

type AttendeeList struct {
	Attendees    []Attendee      `json:"attendees"`
	Pagination   Pagination      `json:"pagination"`
	Summary      AttendeeSummary `json:"summary"`
	Demographics struct {
		TopInterests []InterestCount `json:"topInterests"`
	} `json:"demographics"`
}

type OrganiserEventFilter struct {
	OrganiserID string
	Status      string
	Search      string
	SortBy      string
	SortOrder   string
	Page        int
	Limit       int
}

type OrganiserEvent struct {
	Event
	Revenue        float64 `json:"revenue"`
	AverageRating  float64 `json:"avgRating"`
	ConversionRate float64 `json:"conversionRate"`
	DaysUntil      int     `json:"daysUntil"`
	Attendees      int64   `json:"attendees"`
	Capacity       int64   `json:"capacity"`
}

type OrganiserEventSummary struct {
	TotalEvents     int64   `json:"totalEvents"`
	PublishedEvents int64   `json:"publishedEvents"`
	DraftEvents     int64   `json:"draftEvents"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalAttendees  int64   `json:"totalAttendees"`
	TotalViews      int64   `json:"totalViews"`
}

type OrganiserEventList struct {
	Events     []OrganiserEvent      `json:"events"`
	Pagination Pagination            `json:"pagination"`
	Summary    OrganiserEventSummary `json:"summary"`
}

type Payout struct {
	ID           string     `json:"id"`
	OrganiserID  string     `json:"organiser_id"`
	Amount       float64    `json:"amount"`
	Fees         float64    `json:"fees"`
	NetAmount    float64    `json:"net_amount"`
	Currency     string     `json:"currency"`
	PayoutMethod string     `json:"payout_method"`
	Status       string     `json:"status"`
	Notes        *string    `json:"notes,omitempty"`
	RequestedAt  time.Time  `json:"requested_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
}

type PaymentsFilter struct {
	OrganiserID string
	Status      string
	Period      string
	Page        int
	Limit       int
}

type PaymentAction struct {
	Action           string  `json:"action"`
	Amount           float64 `json:"amount"`
	PayoutMethod     string  `json:"payoutMethod"`
	Currency         string  `json:"currency,omitempty"`
	Notes            string  `json:"notes,omitempty"`
	VerificationCode string  `json:"verificationCode,omitempty"`
}

type OrganiserSettings struct {
	ID                      *string         `json:"id,omitempty"`
	OrganiserID             string          `json:"organiser_id"`
	BusinessName            *string         `json:"business_name"`
	BusinessType            string          `json:"business_type"`
	BusinessPhone           *string         `json:"business_phone,omitempty"`
	TaxID                   *string         `json:"tax_id"`
	BusinessAddress         json.RawMessage `json:"business_address"`
	PayoutPreferences       json.RawMessage `json:"payout_preferences"`
	NotificationPreferences json.RawMessage `json:"notification_preferences"`
	BrandingSettings        json.RawMessage `json:"branding_settings"`
	APISettings             json.RawMessage `json:"api_settings"`
	HasPayoutDetails        bool            `json:"has_payout_details"`
}

type PaymentMethod struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Provider  *string         `json:"provider,omitempty"`
	IsDefault bool            `json:"is_default"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

type SettingsUpdate struct {
	Section string          `json:"section"`
	Data    json.RawMessage `json:"data"`
}

type SettingsView struct {
	Profile        *User              `json:"profile"`
	Settings       *OrganiserSettings `json:"settings"`
	Preferences    *Preferences       `json:"preferences"`
	PaymentMethods []PaymentMethod    `json:"paymentMethods"`
}
