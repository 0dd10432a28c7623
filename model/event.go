package model

import (
	"encoding/json"
	"time"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

type Event struct {
	ID                string          `json:"id"`
	OrganiserID       *string         `json:"organiser_id,omitempty"`
	Title             string          `json:"title"`
	Description       *string         `json:"description,omitempty"`
	Category          *string         `json:"category,omitempty"`
	Subcategory       *string         `json:"subcategory,omitempty"`
	Image             *string         `json:"image,omitempty"`
	Tags              []string        `json:"tags"`
	Date              time.Time       `json:"date"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	Location          json.RawMessage `json:"location"`
	Price             json.RawMessage `json:"price"`
	Status            string          `json:"status"`
	TotalTickets      int64           `json:"total_tickets"`
	SoldTickets       int64           `json:"sold_tickets"`
	VenueCapacity     *int64          `json:"venue_capacity,omitempty"`
	MaxTicketsPerUser *int64          `json:"max_tickets_per_user,omitempty"`
	Views             int64           `json:"views"`
	Likes             int64           `json:"likes"`
	Shares            int64           `json:"shares"`
	IsFeatured        bool            `json:"is_featured"`
	HasNFTTickets     bool            `json:"has_nft_tickets"`
	ContractAddress   *string         `json:"contract_address,omitempty"`
	ContractEventID   *int64          `json:"contract_event_id,omitempty"`
	MetadataCID       *string         `json:"metadata_cid,omitempty"`
	PublishedAt       *time.Time      `json:"published_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// EventInput is the writable part of an event. Nil fields are left untouched on update.
type EventInput struct {
	Title             *string          `json:"title,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Category          *string          `json:"category,omitempty"`
	Subcategory       *string          `json:"subcategory,omitempty"`
	Image             *string          `json:"image,omitempty"`
	Tags              *[]string        `json:"tags,omitempty"`
	Date              *time.Time       `json:"date,omitempty"`
	EndDate           *time.Time       `json:"end_date,omitempty"`
	Location          *json.RawMessage `json:"location,omitempty"`
	Price             *json.RawMessage `json:"price,omitempty"`
	Status            *string          `json:"status,omitempty"`
	TotalTickets      *int64           `json:"total_tickets,omitempty"`
	VenueCapacity     *int64           `json:"venue_capacity,omitempty"`
	MaxTicketsPerUser *int64           `json:"max_tickets_per_user,omitempty"`
	HasNFTTickets     *bool            `json:"has_nft_tickets,omitempty"`
	ContractAddress   *string          `json:"contract_address,omitempty"`
	ContractEventID   *int64           `json:"contract_event_id,omitempty"`
	OrganiserID       *string          `json:"organiser_id,omitempty"`
}

type EventFilter struct {
	OrganiserID string
	Category    string
	Status      string
	Limit       int
	Offset      int
}

type Review struct {
	ID        string       `json:"id"`
	UserID    *string      `json:"user_id,omitempty"`
	Rating    int          `json:"rating"`
	Comment   *string      `json:"comment,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	User      *UserSummary `json:"user,omitempty"`
}

// EventDetail is an event with its organiser and engagement.
type EventDetail struct {
	Event
	Organiser  *UserSummary `json:"organiser,omitempty"`
	Tickets    []Ticket     `json:"tickets"`
	LikesCount int64        `json:"likes_count"`
	SavedCount int64        `json:"saved_count"`
	Reviews    []Review     `json:"reviews"`
}

// TicketMetadata is the NFT metadata document pinned for a ticket.
type TicketMetadata struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	EventDate    string `json:"eventDate"`
	TicketPrice  string `json:"ticketPrice"`
	MaxSupply    string `json:"maxSupply"`
	EventID      string `json:"eventId"`
	TicketNumber string `json:"ticketNumber,omitempty"`
}
