package handler

import (
	"net/http"
	c "rovify-backend/context"
	"rovify-backend/event"
	"rovify-backend/factory"
	"rovify-backend/model"
	"rovify-backend/response"

	"github.com/gorilla/mux"
)

func ChainEvents(service *event.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		events, err := service.ChainEvents(ctx)
		if err != nil {
			response.SendError(ctx, w, "chainEvents", err)
			return
		}
		response.OK(w, events)
	}
}

func Listings(service *event.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		listings, err := service.Listings(ctx)
		if err != nil {
			response.SendError(ctx, w, "listings", err)
			return
		}
		response.OK(w, listings)
	}
}

func OwnerTickets(service *event.Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		tickets, err := service.OwnerTickets(ctx, mux.Vars(r)["address"])
		if err != nil {
			response.SendError(ctx, w, "ownerTickets", err)
			return
		}
		response.OK(w, tickets)
	}
}

func LinkTicket(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.NFTLinkRequest
		if err := decode(w, r, &req); err != nil {
			response.SendError(ctx, w, "linkTicket", err)
			return
		}

		t, err := service.LinkTicket(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"], &req)
		if err != nil {
			response.SendError(ctx, w, "linkTicket", err)
			return
		}
		response.OK(w, t)
	}
}
