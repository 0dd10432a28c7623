package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"rovify-backend/model"
	"rovify-backend/workerpool"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const fanOut = 8

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidTokenID = errors.New("invalid token id")
)

// Reader is the read side of the ticket contract.
type Reader interface {
	Address() string
	Events(ctx context.Context) ([]model.ChainEvent, error)
	Ticket(ctx context.Context, tokenID string) (*model.ChainTicket, error)
	OwnerOf(ctx context.Context, tokenID string) (string, error)
	ActiveListings(ctx context.Context) ([]model.ChainListing, error)
	TicketsOf(ctx context.Context, owner string) ([]model.ChainTicket, error)
}

type eventTuple struct {
	Id          *big.Int
	Name        string
	Description string
	EventDate   *big.Int
	TicketPrice *big.Int
	MaxSupply   *big.Int
	SoldTickets *big.Int
	Organizer   common.Address
	IsActive    bool
	ImageCID    string
}

type ticketTuple struct {
	Id           *big.Int
	EventId      *big.Int
	TicketNumber *big.Int
	MetadataURI  string
}

type listingTuple struct {
	TicketId *big.Int
	Seller   common.Address
	Price    *big.Int
	IsActive bool
}

type Contract struct {
	address  common.Address
	contract *bind.BoundContract
}

func Dial(ctx context.Context, rpcURL, address string) (*Contract, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial: unable to connect to %s: %w", rpcURL, err)
	}
	return New(address, client)
}

func New(address string, caller bind.ContractCaller) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("new: %w: %q", ErrInvalidAddress, address)
	}

	parsed, err := abi.JSON(strings.NewReader(ticketABI))
	if err != nil {
		return nil, fmt.Errorf("new: unable to parse abi: %w", err)
	}

	addr := common.HexToAddress(address)
	return &Contract{
		address:  addr,
		contract: bind.NewBoundContract(addr, parsed, caller, nil, nil),
	}, nil
}

func (c *Contract) Address() string {
	return c.address.Hex()
}

func (c *Contract) Events(ctx context.Context) ([]model.ChainEvent, error) {
	out, err := c.call(ctx, "getAllEvents")
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}

	tuples := *abi.ConvertType(out[0], new([]eventTuple)).(*[]eventTuple)
	events := make([]model.ChainEvent, len(tuples))
	for i, e := range tuples {
		events[i] = model.ChainEvent{
			ID:          e.Id.String(),
			Name:        e.Name,
			Description: e.Description,
			EventDate:   time.Unix(e.EventDate.Int64(), 0).UTC(),
			TicketPrice: e.TicketPrice.String(),
			MaxSupply:   e.MaxSupply.String(),
			SoldTickets: e.SoldTickets.String(),
			Organizer:   e.Organizer.Hex(),
			IsActive:    e.IsActive,
			ImageCID:    e.ImageCID,
		}
	}
	return events, nil
}

func (c *Contract) Ticket(ctx context.Context, tokenID string) (*model.ChainTicket, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return nil, fmt.Errorf("ticket: %w", err)
	}
	return c.ticket(ctx, id)
}

func (c *Contract) ticket(ctx context.Context, id *big.Int) (*model.ChainTicket, error) {
	out, err := c.call(ctx, "getTicket", id)
	if err != nil {
		return nil, fmt.Errorf("ticket: %w", err)
	}

	t := *abi.ConvertType(out[0], new(ticketTuple)).(*ticketTuple)
	return &model.ChainTicket{
		ID:           t.Id.String(),
		EventID:      t.EventId.String(),
		TicketNumber: t.TicketNumber.String(),
		MetadataURI:  t.MetadataURI,
	}, nil
}

func (c *Contract) OwnerOf(ctx context.Context, tokenID string) (string, error) {
	id, err := parseTokenID(tokenID)
	if err != nil {
		return "", fmt.Errorf("ownerOf: %w", err)
	}

	out, err := c.call(ctx, "ownerOf", id)
	if err != nil {
		return "", fmt.Errorf("ownerOf: %w", err)
	}
	return abi.ConvertType(out[0], new(common.Address)).(*common.Address).Hex(), nil
}

// ActiveListings resolves every active marketplace listing together with its ticket.
func (c *Contract) ActiveListings(ctx context.Context) ([]model.ChainListing, error) {
	out, err := c.call(ctx, "getActiveListings")
	if err != nil {
		return nil, fmt.Errorf("activeListings: %w", err)
	}
	ids := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)

	listings := make([]model.ChainListing, len(ids))
	tasks := make([]workerpool.Task, len(ids))
	for i, id := range ids {
		i, id := i, id
		tasks[i] = func(ctx context.Context) error {
			l, err := c.listing(ctx, id)
			if err != nil {
				return err
			}
			t, err := c.ticket(ctx, id)
			if err != nil {
				return err
			}
			l.Ticket = t
			listings[i] = *l
			return nil
		}
	}
	if err := workerpool.Run(ctx, fanOut, tasks...); err != nil {
		return nil, fmt.Errorf("activeListings: %w", err)
	}
	return listings, nil
}

func (c *Contract) listing(ctx context.Context, id *big.Int) (*model.ChainListing, error) {
	out, err := c.call(ctx, "getMarketplaceListing", id)
	if err != nil {
		return nil, fmt.Errorf("listing: %w", err)
	}

	l := *abi.ConvertType(out[0], new(listingTuple)).(*listingTuple)
	return &model.ChainListing{
		TicketID: l.TicketId.String(),
		Seller:   l.Seller.Hex(),
		Price:    l.Price.String(),
		IsActive: l.IsActive,
	}, nil
}

// TicketsOf enumerates the tokens held by owner.
func (c *Contract) TicketsOf(ctx context.Context, owner string) ([]model.ChainTicket, error) {
	if !common.IsHexAddress(owner) {
		return nil, fmt.Errorf("ticketsOf: %w: %q", ErrInvalidAddress, owner)
	}
	addr := common.HexToAddress(owner)

	out, err := c.call(ctx, "balanceOf", addr)
	if err != nil {
		return nil, fmt.Errorf("ticketsOf: %w", err)
	}
	balance := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !balance.IsInt64() {
		return nil, fmt.Errorf("ticketsOf: balance out of range: %s", balance)
	}

	tickets := make([]model.ChainTicket, balance.Int64())
	tasks := make([]workerpool.Task, len(tickets))
	for i := range tickets {
		i := i
		tasks[i] = func(ctx context.Context) error {
			out, err := c.call(ctx, "tokenOfOwnerByIndex", addr, big.NewInt(int64(i)))
			if err != nil {
				return err
			}
			id := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
			t, err := c.ticket(ctx, id)
			if err != nil {
				return err
			}
			t.Owner = addr.Hex()
			tickets[i] = *t
			return nil
		}
	}
	if err := workerpool.Run(ctx, fanOut, tasks...); err != nil {
		return nil, fmt.Errorf("ticketsOf: %w", err)
	}
	return tickets, nil
}

func (c *Contract) call(ctx context.Context, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return out, nil
}

func parseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok || id.Sign() < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTokenID, s)
	}
	return id, nil
}
