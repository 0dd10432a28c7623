package model

import "time"

// ChainEvent mirrors the EventTicketNFT event struct.
type ChainEvent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EventDate   time.Time `json:"eventDate"`
	TicketPrice string    `json:"ticketPrice"`
	MaxSupply   string    `json:"maxSupply"`
	SoldTickets string    `json:"soldTickets"`
	Organizer   string    `json:"organizer"`
	IsActive    bool      `json:"isActive"`
	ImageCID    string    `json:"imageCID"`
}

type ChainTicket struct {
	ID           string `json:"id"`
	EventID      string `json:"eventId"`
	TicketNumber string `json:"ticketNumber"`
	MetadataURI  string `json:"metadataURI"`
	Owner        string `json:"owner,omitempty"`
}

type ChainListing struct {
	TicketID string       `json:"ticketId"`
	Seller   string       `json:"seller"`
	Price    string       `json:"price"`
	IsActive bool         `json:"isActive"`
	Ticket   *ChainTicket `json:"ticket,omitempty"`
}

type PinResult struct {
	Path string `json:"path"`
	URL  string `json:"url,omitempty"`
}

type Upload struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}
