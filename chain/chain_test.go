package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

var (
	alice = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	bob   = common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")
)

// fakeNode answers eth_call by decoding the selector and packing canned outputs.
type fakeNode struct {
	abi      abi.ABI
	handlers map[string]func(args []interface{}) []interface{}
}

func newFakeNode(t *testing.T) *fakeNode {
	parsed, err := abi.JSON(strings.NewReader(ticketABI))
	require.NoError(t, err)
	return &fakeNode{abi: parsed, handlers: map[string]func([]interface{}) []interface{}{}}
}

func (f *fakeNode) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeNode) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	method, err := f.abi.MethodById(call.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, err
	}
	h, ok := f.handlers[method.Name]
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s", method.Name)
	}
	return method.Outputs.Pack(h(args)...)
}

func ticketFor(args []interface{}) []interface{} {
	id := args[0].(*big.Int)
	return []interface{}{ticketTuple{
		Id:           id,
		EventId:      big.NewInt(1),
		TicketNumber: new(big.Int).Add(id, big.NewInt(100)),
		MetadataURI:  "ipfs://Qm" + id.String(),
	}}
}

func TestEvents(t *testing.T) {
	node := newFakeNode(t)
	node.handlers["getAllEvents"] = func([]interface{}) []interface{} {
		return []interface{}{[]eventTuple{{
			Id:          big.NewInt(1),
			Name:        "Launch Party",
			Description: "Rooftop",
			EventDate:   big.NewInt(1717200000),
			TicketPrice: big.NewInt(1e16),
			MaxSupply:   big.NewInt(100),
			SoldTickets: big.NewInt(3),
			Organizer:   alice,
			IsActive:    true,
			ImageCID:    "QmImage",
		}}}
	}

	c, err := New(contractAddress, node)
	require.NoError(t, err)

	events, err := c.Events(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "1", events[0].ID)
	assert.Equal(t, "Launch Party", events[0].Name)
	assert.Equal(t, "10000000000000000", events[0].TicketPrice)
	assert.Equal(t, alice.Hex(), events[0].Organizer)
	assert.Equal(t, int64(1717200000), events[0].EventDate.Unix())
	assert.True(t, events[0].IsActive)
	assert.Equal(t, "QmImage", events[0].ImageCID)
}

func TestActiveListings(t *testing.T) {
	node := newFakeNode(t)
	node.handlers["getActiveListings"] = func([]interface{}) []interface{} {
		return []interface{}{[]*big.Int{big.NewInt(7), big.NewInt(9)}}
	}
	node.handlers["getMarketplaceListing"] = func(args []interface{}) []interface{} {
		return []interface{}{listingTuple{TicketId: args[0].(*big.Int), Seller: bob, Price: big.NewInt(5e15), IsActive: true}}
	}
	node.handlers["getTicket"] = ticketFor

	c, err := New(contractAddress, node)
	require.NoError(t, err)

	listings, err := c.ActiveListings(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "7", listings[0].TicketID)
	assert.Equal(t, "9", listings[1].TicketID)
	assert.Equal(t, bob.Hex(), listings[1].Seller)
	assert.Equal(t, "5000000000000000", listings[1].Price)
	require.NotNil(t, listings[1].Ticket)
	assert.Equal(t, "109", listings[1].Ticket.TicketNumber)
}

func TestTicketsOf(t *testing.T) {
	node := newFakeNode(t)
	node.handlers["balanceOf"] = func(args []interface{}) []interface{} {
		assert.Equal(t, alice, args[0].(common.Address))
		return []interface{}{big.NewInt(2)}
	}
	node.handlers["tokenOfOwnerByIndex"] = func(args []interface{}) []interface{} {
		return []interface{}{new(big.Int).Add(args[1].(*big.Int), big.NewInt(40))}
	}
	node.handlers["getTicket"] = ticketFor

	c, err := New(contractAddress, node)
	require.NoError(t, err)

	tickets, err := c.TicketsOf(context.Background(), strings.ToLower(alice.Hex()))
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "40", tickets[0].ID)
	assert.Equal(t, "41", tickets[1].ID)
	assert.Equal(t, alice.Hex(), tickets[1].Owner)
	assert.Equal(t, "ipfs://Qm41", tickets[1].MetadataURI)
}

func TestOwnerOf(t *testing.T) {
	node := newFakeNode(t)
	node.handlers["ownerOf"] = func([]interface{}) []interface{} { return []interface{}{bob} }

	c, err := New(contractAddress, node)
	require.NoError(t, err)

	owner, err := c.OwnerOf(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, bob.Hex(), owner)

	_, err = c.OwnerOf(context.Background(), "-1")
	assert.ErrorIs(t, err, ErrInvalidTokenID)
}

func TestInvalidInputs(t *testing.T) {
	_, err := New("not-an-address", newFakeNode(t))
	assert.ErrorIs(t, err, ErrInvalidAddress)

	c, err := New(contractAddress, newFakeNode(t))
	require.NoError(t, err)
	_, err = c.TicketsOf(context.Background(), "0x123")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = c.Ticket(context.Background(), "abc")
	assert.ErrorIs(t, err, ErrInvalidTokenID)
}

func TestCallFailureIsWrapped(t *testing.T) {
	c, err := New(contractAddress, newFakeNode(t))
	require.NoError(t, err)

	_, err = c.Events(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "getAllEvents")
}
