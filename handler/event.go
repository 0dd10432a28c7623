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

func ListEvents(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		events, err := service.List(ctx, f.DB(ctx), model.EventFilter{
			OrganiserID: q.Get("organiser"),
			Category:    q.Get("category"),
			Status:      q.Get("status"),
			Limit:       queryInt(r, "limit", 50),
			Offset:      queryInt(r, "offset", 0),
		})
		if err != nil {
			response.SendError(ctx, w, "listEvents", err)
			return
		}
		response.OK(w, events)
	}
}

func CreateEvent(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.EventInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "createEvent", err)
			return
		}

		e, err := service.Create(ctx, f.DB(ctx), c.UserID(ctx), &in)
		if err != nil {
			response.SendError(ctx, w, "createEvent", err)
			return
		}
		response.Created(w, e, "Event created")
	}
}

func GetEvent(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		e, err := service.Get(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"])
		if err != nil {
			response.SendError(ctx, w, "getEvent", err)
			return
		}
		response.OK(w, e)
	}
}

func UpdateEvent(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.EventInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "updateEvent", err)
			return
		}

		e, err := service.Update(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"], &in)
		if err != nil {
			response.SendError(ctx, w, "updateEvent", err)
			return
		}
		response.OK(w, e)
	}
}

func DeleteEvent(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := service.Delete(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"]); err != nil {
			response.SendError(ctx, w, "deleteEvent", err)
			return
		}
		response.OK(w, map[string]string{"id": mux.Vars(r)["id"]})
	}
}

// PinEventMetadata pins the ticket metadata document of an event. The ticket number is read from
// the "ticket" query parameter and defaults to 1.
func PinEventMetadata(service *event.Event, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticket := r.URL.Query().Get("ticket")
		if ticket == "" {
			ticket = "1"
		}

		res, err := service.PinMetadata(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"], ticket)
		if err != nil {
			response.SendError(ctx, w, "pinEventMetadata", err)
			return
		}
		response.OK(w, res)
	}
}
