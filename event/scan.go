package event

import (
	"rovify-backend/database"
	"rovify-backend/model"
)

// Columns is the select list Scan expects, qualified with the events alias e.
const Columns = `e.id, e.organiser_id, e.title, e.description, e.category, e.subcategory, e.image, e.tags, e.date,
	e.end_date, e.location, e.price, e.status, e.total_tickets, e.sold_tickets, e.venue_capacity,
	e.max_tickets_per_user, e.views, e.likes, e.shares, e.is_featured, e.has_nft_tickets, e.contract_address,
	e.contract_event_id, e.metadata_cid, e.published_at, e.created_at, e.updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

// Scan reads a row selected with Columns, followed by any extra destinations.
func Scan(s scanner, extra ...interface{}) (*model.Event, error) {
	var (
		e               model.Event
		location, price []byte
	)
	dest := []interface{}{
		&e.ID, &e.OrganiserID, &e.Title, &e.Description, &e.Category, &e.Subcategory, &e.Image,
		database.Array(&e.Tags), &e.Date, &e.EndDate, &location, &price, &e.Status, &e.TotalTickets,
		&e.SoldTickets, &e.VenueCapacity, &e.MaxTicketsPerUser, &e.Views, &e.Likes, &e.Shares,
		&e.IsFeatured, &e.HasNFTTickets, &e.ContractAddress, &e.ContractEventID, &e.MetadataCID,
		&e.PublishedAt, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	e.Location = location
	e.Price = price
	return &e, nil
}
