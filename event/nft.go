package event

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"rovify-backend/chain"
	"rovify-backend/database"
	"rovify-backend/logger"
	"rovify-backend/model"
	"rovify-backend/response"
	"strconv"
	"strings"
	"time"
)

// ChainEvents lists the events registered on the ticket contract.
func (ev *Event) ChainEvents(ctx context.Context) ([]model.ChainEvent, error) {
	if ev.Chain == nil {
		return nil, response.ServiceUnavailable("Blockchain reads are not configured")
	}
	return ev.Chain.Events(ctx)
}

func (ev *Event) Listings(ctx context.Context) ([]model.ChainListing, error) {
	if ev.Chain == nil {
		return nil, response.ServiceUnavailable("Blockchain reads are not configured")
	}
	return ev.Chain.ActiveListings(ctx)
}

func (ev *Event) OwnerTickets(ctx context.Context, owner string) ([]model.ChainTicket, error) {
	if ev.Chain == nil {
		return nil, response.ServiceUnavailable("Blockchain reads are not configured")
	}
	tickets, err := ev.Chain.TicketsOf(ctx, owner)
	if errors.Is(err, chain.ErrInvalidAddress) {
		return nil, response.InvalidData(err.Error())
	}
	return tickets, err
}

// LinkTicket marks a ticket owned by actorID as backed by an on-chain token. The token must
// belong to the configured contract and be held by the user's wallet.
func (ev *Event) LinkTicket(ctx context.Context, db *sql.DB, actorID, ticketID string, req *model.NFTLinkRequest) (*model.Ticket, error) {
	if strings.TrimSpace(req.ContractAddress) == "" || strings.TrimSpace(req.TokenID) == "" {
		return nil, response.BadRequest("contract_address and token_id are required", "linkTicket: missing fields")
	}
	if ev.Chain == nil {
		return nil, response.ServiceUnavailable("Blockchain reads are not configured")
	}
	if !strings.EqualFold(req.ContractAddress, ev.Chain.Address()) {
		return nil, response.InvalidData(fmt.Sprintf("linkTicket: unknown contract %s", req.ContractAddress))
	}

	t, err := ScanTicket(db.QueryRowContext(ctx, `SELECT `+TicketColumns+` FROM tickets WHERE id = $1`, ticketID))
	if database.IsNoRows(err) {
		return nil, response.ResourceNotFound("Ticket not found", fmt.Sprintf("linkTicket: no ticket %s", ticketID))
	}
	if err != nil {
		return nil, fmt.Errorf("linkTicket: %w", err)
	}
	if t.OwnerID == nil || *t.OwnerID != actorID {
		return nil, response.Forbidden("You can only link your own tickets")
	}

	var wallet *string
	if err := db.QueryRowContext(ctx, `SELECT wallet_address FROM users WHERE id = $1`, actorID).Scan(&wallet); err != nil {
		return nil, fmt.Errorf("linkTicket: unable to fetch wallet: %w", err)
	}
	if wallet == nil || *wallet == "" {
		return nil, response.BadRequest("Connect a wallet to your profile first", "linkTicket: no wallet")
	}

	owner, err := ev.Chain.OwnerOf(ctx, req.TokenID)
	if err != nil {
		logger.Infof(ctx, "linkTicket: ownerOf failed: %v", err)
		return nil, response.InvalidData(fmt.Sprintf("linkTicket: token %s not found on chain", req.TokenID))
	}
	if !strings.EqualFold(owner, *wallet) {
		return nil, response.Forbidden("The token is not held by your wallet")
	}

	contract := ev.Chain.Address()
	_, err = database.Update(ctx, db, "tickets",
		[]string{"is_nft", "contract_address", "token_id", "updated_at"},
		[]interface{}{true, contract, req.TokenID, time.Now().UTC()},
		[]string{"id"}, []interface{}{ticketID})
	if database.IsUniqueViolation(err) {
		return nil, response.Conflict("This token is already linked to another ticket")
	}
	if err != nil {
		return nil, fmt.Errorf("linkTicket: %w", err)
	}

	t.IsNFT = true
	t.ContractAddress = &contract
	t.TokenID = &req.TokenID
	return t, nil
}

// PinMetadata pins the NFT metadata document for the next ticket of an event and records its CID.
func (ev *Event) PinMetadata(ctx context.Context, db *sql.DB, actorID, eventID, ticketNumber string) (*model.PinResult, error) {
	if err := requireOwner(ctx, db, actorID, eventID); err != nil {
		return nil, err
	}

	e, err := Scan(db.QueryRowContext(ctx, `SELECT `+Columns+` FROM events e WHERE e.id = $1`, eventID))
	if err != nil {
		return nil, fmt.Errorf("pinMetadata: %w", err)
	}

	meta := TicketMetadata(e, ticketNumber, ev.imageURL(e))
	res, err := ev.Pinner.PinJSON(ctx, "event-metadata", meta)
	if err != nil {
		if _, ok := err.(response.ErrorResponse); ok {
			return nil, err
		}
		return nil, fmt.Errorf("pinMetadata: %w", err)
	}

	_, err = database.Update(ctx, db, "events", []string{"metadata_cid", "updated_at"}, []interface{}{res.Path, time.Now().UTC()}, []string{"id"}, []interface{}{eventID})
	if err != nil {
		return nil, fmt.Errorf("pinMetadata: %w", err)
	}
	return res, nil
}

func (ev *Event) PinFile(ctx context.Context, name string, file io.Reader) (*model.PinResult, error) {
	return ev.Pinner.PinFile(ctx, name, file)
}

func (ev *Event) PinJSON(ctx context.Context, content json.RawMessage) (*model.PinResult, error) {
	if !json.Valid(content) {
		return nil, response.InvalidBody()
	}
	return ev.Pinner.PinJSON(ctx, "event-metadata", content)
}

func (ev *Event) imageURL(e *model.Event) string {
	if e.Image == nil {
		return ""
	}
	img := *e.Image
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
		return img
	}
	return ev.Pinner.URL(img)
}

// TicketMetadata builds the metadata document for ticket number n of e. An empty n means the next
// unsold ticket.
func TicketMetadata(e *model.Event, n, image string) model.TicketMetadata {
	if n == "" {
		n = strconv.FormatInt(e.SoldTickets+1, 10)
	}
	price := priceAmount(e.Price)
	date := e.Date.UTC().Format(time.RFC3339)

	description := ""
	if e.Description != nil {
		description = *e.Description
	}

	eventID := e.ID
	if e.ContractEventID != nil {
		eventID = strconv.FormatInt(*e.ContractEventID, 10)
	}

	return model.TicketMetadata{
		Name:         fmt.Sprintf("%s - Ticket #%s", e.Title, n),
		Description:  fmt.Sprintf("%s\n\nEvent Date: %s\nTicket Price: %s\nTicket Number: %s", description, date, price, n),
		Image:        image,
		EventDate:    date,
		TicketPrice:  price,
		MaxSupply:    strconv.FormatInt(e.TotalTickets, 10),
		EventID:      eventID,
		TicketNumber: n,
	}
}

// priceAmount extracts the amount from a price document such as {"amount": 25, "currency": "USD"}.
func priceAmount(raw json.RawMessage) string {
	var p struct {
		Amount   json.Number `json:"amount"`
		Currency string      `json:"currency"`
	}
	if err := json.Unmarshal(raw, &p); err != nil || p.Amount == "" {
		return "0"
	}
	if p.Currency != "" {
		return fmt.Sprintf("%s %s", p.Amount, p.Currency)
	}
	return p.Amount.String()
}
