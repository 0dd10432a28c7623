package model

import "time"

type Ticket struct {
	ID              string     `json:"id"`
	EventID         *string    `json:"event_id,omitempty"`
	OwnerID         *string    `json:"owner_id,omitempty"`
	Type            string     `json:"type"`
	TierName        *string    `json:"tier_name,omitempty"`
	Price           float64    `json:"price"`
	Currency        string     `json:"currency"`
	Status          string     `json:"status"`
	IsNFT           bool       `json:"is_nft"`
	ContractAddress *string    `json:"contract_address,omitempty"`
	TokenID         *string    `json:"token_id,omitempty"`
	PurchaseDate    *time.Time `json:"purchase_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type NFTLinkRequest struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
}

type Transaction struct {
	ID            string     `json:"id"`
	UserID        *string    `json:"user_id,omitempty"`
	EventID       *string    `json:"event_id,omitempty"`
	TicketID      *string    `json:"ticket_id,omitempty"`
	Type          string     `json:"type"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentMethod *string    `json:"payment_method,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	EventTitle    *string    `json:"event_title,omitempty"`
}
