package event

import (
	"context"
	"encoding/json"
	"io"
	"regexp"
	"rovify-backend/model"
	"rovify-backend/response"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

type fakeChain struct {
	owner string
}

func (f fakeChain) Address() string { return contract }
func (f fakeChain) Events(context.Context) ([]model.ChainEvent, error) {
	return nil, nil
}
func (f fakeChain) Ticket(context.Context, string) (*model.ChainTicket, error) {
	return nil, nil
}
func (f fakeChain) OwnerOf(context.Context, string) (string, error) { return f.owner, nil }
func (f fakeChain) ActiveListings(context.Context) ([]model.ChainListing, error) {
	return nil, nil
}
func (f fakeChain) TicketsOf(context.Context, string) ([]model.ChainTicket, error) {
	return nil, nil
}

type fakePinner struct {
	pinned interface{}
}

func (f *fakePinner) PinFile(context.Context, string, io.Reader) (*model.PinResult, error) {
	return &model.PinResult{Path: "QmFile"}, nil
}
func (f *fakePinner) PinJSON(_ context.Context, _ string, content interface{}) (*model.PinResult, error) {
	f.pinned = content
	return &model.PinResult{Path: "QmMeta", URL: "https://gw/ipfs/QmMeta"}, nil
}
func (f *fakePinner) URL(cid string) string { return "https://gw/ipfs/" + cid }

var ticketCols = []string{"id", "event_id", "owner_id", "type", "tier_name", "price", "currency", "status", "is_nft", "contract_address", "token_id", "purchase_date", "created_at"}

func ticketRow(owner string) *sqlmock.Rows {
	return sqlmock.NewRows(ticketCols).AddRow("t1", eventID, owner, "general", nil, "25.00", "USD", "valid", false, nil, nil, nil, time.Now())
}

func TestLinkTicket(t *testing.T) {
	wallet := "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

	t.Run("linked when the wallet holds the token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM tickets WHERE id = $1`)).WithArgs("t1").WillReturnRows(ticketRow("u1"))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT wallet_address FROM users WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"wallet_address"}).AddRow("0x70997970c51812dc3a010c7d01b50e0d17dc79c8"))
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE tickets SET is_nft = $1, contract_address = $2, token_id = $3, updated_at = $4 WHERE id = $5`)).
			WithArgs(true, contract, "12", sqlmock.AnyArg(), "t1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		ev := NewEvent(nil, fakeChain{owner: wallet})
		tk, err := ev.LinkTicket(context.Background(), db, "u1", "t1", &model.NFTLinkRequest{ContractAddress: contract, TokenID: "12"})
		require.NoError(t, err)
		assert.True(t, tk.IsNFT)
		assert.Equal(t, 25.0, tk.Price)
		assert.Equal(t, "12", *tk.TokenID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected when someone else holds the token", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM tickets`).WillReturnRows(ticketRow("u1"))
		mock.ExpectQuery(`SELECT wallet_address`).WillReturnRows(sqlmock.NewRows([]string{"wallet_address"}).AddRow(wallet))

		ev := NewEvent(nil, fakeChain{owner: "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"})
		_, err = ev.LinkTicket(context.Background(), db, "u1", "t1", &model.NFTLinkRequest{ContractAddress: contract, TokenID: "12"})
		require.Error(t, err)
		assert.Equal(t, 403, err.(response.ErrorResponse).StatusCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected for another user's ticket", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM tickets`).WillReturnRows(ticketRow("u2"))

		_, err = NewEvent(nil, fakeChain{}).LinkTicket(context.Background(), db, "u1", "t1", &model.NFTLinkRequest{ContractAddress: contract, TokenID: "1"})
		assert.Equal(t, 403, err.(response.ErrorResponse).StatusCode)
	})

	t.Run("unknown contract", func(t *testing.T) {
		_, err := NewEvent(nil, fakeChain{}).LinkTicket(context.Background(), nil, "u1", "t1", &model.NFTLinkRequest{ContractAddress: "0xdead", TokenID: "1"})
		assert.Equal(t, 400, err.(response.ErrorResponse).StatusCode)
	})

	t.Run("chain not configured", func(t *testing.T) {
		_, err := NewEvent(nil, nil).LinkTicket(context.Background(), nil, "u1", "t1", &model.NFTLinkRequest{ContractAddress: contract, TokenID: "1"})
		assert.Equal(t, 503, err.(response.ErrorResponse).StatusCode)
	})
}

func TestTicketMetadata(t *testing.T) {
	desc := "Rooftop launch"
	img := "https://cdn/poster.png"
	e := &model.Event{
		ID:           eventID,
		Title:        "Launch Party",
		Description:  &desc,
		Date:         time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
		Price:        json.RawMessage(`{"amount": 0.05, "currency": "ETH"}`),
		TotalTickets: 100,
		SoldTickets:  4,
	}

	m := TicketMetadata(e, "", img)
	assert.Equal(t, "Launch Party - Ticket #5", m.Name)
	assert.Equal(t, "5", m.TicketNumber)
	assert.Equal(t, "0.05 ETH", m.TicketPrice)
	assert.Equal(t, "100", m.MaxSupply)
	assert.Equal(t, eventID, m.EventID)
	assert.Equal(t, "2025-06-01T18:00:00Z", m.EventDate)
	assert.Contains(t, m.Description, "Ticket Number: 5")

	onChain := int64(3)
	e.ContractEventID = &onChain
	e.Price = json.RawMessage(`{}`)
	m = TicketMetadata(e, "9", img)
	assert.Equal(t, "3", m.EventID)
	assert.Equal(t, "0", m.TicketPrice)
	assert.Equal(t, "9", m.TicketNumber)
}

func TestImageURLResolvesCIDs(t *testing.T) {
	ev := NewEvent(&fakePinner{}, nil)
	cid := "QmPoster"
	assert.Equal(t, "https://gw/ipfs/QmPoster", ev.imageURL(&model.Event{Image: &cid}))

	url := "https://cdn/poster.png"
	assert.Equal(t, url, ev.imageURL(&model.Event{Image: &url}))
	assert.Equal(t, "", ev.imageURL(&model.Event{}))
}

func TestPinJSONRejectsInvalidDocuments(t *testing.T) {
	_, err := NewEvent(&fakePinner{}, nil).PinJSON(context.Background(), json.RawMessage(`{bad`))
	assert.Equal(t, response.InvalidBody(), err)
}
