package handler

import (
	"net/http"
	c "rovify-backend/context"
	"rovify-backend/factory"
	"rovify-backend/model"
	"rovify-backend/organiser"
	"rovify-backend/response"
)

func Dashboard(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		d, err := service.Dashboard(ctx, f.DB(ctx), c.UserID(ctx))
		if err != nil {
			response.SendError(ctx, w, "dashboard", err)
			return
		}
		response.OK(w, d)
	}
}

func Analytics(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		report, err := service.Analytics(ctx, f.DB(ctx), c.UserID(ctx), q.Get("period"), q.Get("eventId"))
		if err != nil {
			response.SendError(ctx, w, "analytics", err)
			return
		}
		response.OK(w, report)
	}
}

func Attendees(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		list, err := service.Attendees(ctx, f.DB(ctx), model.AttendeeFilter{
			OrganiserID: c.UserID(ctx),
			EventID:     q.Get("eventId"),
			Search:      q.Get("search"),
			Status:      q.Get("status"),
			Page:        queryInt(r, "page", 1),
			Limit:       queryInt(r, "limit", 20),
		})
		if err != nil {
			response.SendError(ctx, w, "attendees", err)
			return
		}
		response.OK(w, list)
	}
}

func OrganiserEvents(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		list, err := service.EventList(ctx, f.DB(ctx), model.OrganiserEventFilter{
			OrganiserID: c.UserID(ctx),
			Status:      q.Get("status"),
			Search:      q.Get("search"),
			SortBy:      q.Get("sortBy"),
			SortOrder:   q.Get("sortOrder"),
			Page:        queryInt(r, "page", 1),
			Limit:       queryInt(r, "limit", 10),
		})
		if err != nil {
			response.SendError(ctx, w, "organiserEvents", err)
			return
		}
		response.OK(w, list)
	}
}

func CreateOrganiserEvent(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.EventInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "createOrganiserEvent", err)
			return
		}

		e, err := service.CreateEvent(ctx, f.DB(ctx), c.UserID(ctx), &in)
		if err != nil {
			response.SendError(ctx, w, "createOrganiserEvent", err)
			return
		}
		response.Created(w, e, "Event created")
	}
}

func Payments(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		p, err := service.Payments(ctx, f.DB(ctx), model.PaymentsFilter{
			OrganiserID: c.UserID(ctx),
			Status:      q.Get("status"),
			Period:      q.Get("period"),
			Page:        queryInt(r, "page", 1),
			Limit:       queryInt(r, "limit", 20),
		})
		if err != nil {
			response.SendError(ctx, w, "payments", err)
			return
		}
		response.OK(w, p)
	}
}

// PaymentAction dispatches the POST body of the payments endpoint on its action field.
func PaymentAction(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var a model.PaymentAction
		if err := decode(w, r, &a); err != nil {
			response.SendError(ctx, w, "paymentAction", err)
			return
		}

		switch a.Action {
		case organiser.ActionRequestPayout:
			payout, err := service.RequestPayout(ctx, f.DB(ctx), c.UserID(ctx), &a)
			if err != nil {
				response.SendError(ctx, w, "requestPayout", err)
				return
			}
			response.Created(w, payout, "Payout requested")
		case organiser.ActionSendPayoutCode:
			if err := service.SendPayoutCode(ctx, f.DB(ctx), c.UserID(ctx)); err != nil {
				response.SendError(ctx, w, "sendPayoutCode", err)
				return
			}
			response.OK(w, map[string]bool{"sent": true})
		default:
			response.SendError(ctx, w, "paymentAction", response.BadRequest("Invalid action", "paymentAction: unknown action "+a.Action))
		}
	}
}

func Settings(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		s, err := service.Settings(ctx, f.DB(ctx), c.UserID(ctx))
		if err != nil {
			response.SendError(ctx, w, "settings", err)
			return
		}
		response.OK(w, s)
	}
}

func UpdateSettings(service *organiser.Organiser, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var upd model.SettingsUpdate
		if err := decode(w, r, &upd); err != nil {
			response.SendError(ctx, w, "updateSettings", err)
			return
		}

		res, err := service.UpdateSettings(ctx, f.DB(ctx), c.UserID(ctx), &upd)
		if err != nil {
			response.SendError(ctx, w, "updateSettings", err)
			return
		}
		response.OK(w, res)
	}
}
