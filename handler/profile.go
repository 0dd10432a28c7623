package handler

import (
	"net/http"
	c "rovify-backend/context"
	"rovify-backend/factory"
	"rovify-backend/model"
	"rovify-backend/profile"
	"rovify-backend/response"

	"github.com/gorilla/mux"
)

func GetProfile(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		p, err := service.Get(ctx, f.DB(ctx), c.UserID(ctx))
		if err != nil {
			response.SendError(ctx, w, "getProfile", err)
			return
		}
		response.OK(w, p)
	}
}

func UpdateProfile(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var upd model.ProfileUpdate
		if err := decode(w, r, &upd); err != nil {
			response.SendError(ctx, w, "updateProfile", err)
			return
		}

		p, err := service.Update(ctx, f.DB(ctx), c.UserID(ctx), &upd)
		if err != nil {
			response.SendError(ctx, w, "updateProfile", err)
			return
		}
		response.OK(w, p)
	}
}

func Achievements(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := service.Achievements(ctx, f.DB(ctx), c.UserID(ctx))
		if err != nil {
			response.SendError(ctx, w, "achievements", err)
			return
		}
		response.OK(w, list)
	}
}

func UnlockAchievement(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.AchievementInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "unlockAchievement", err)
			return
		}

		a, err := service.UnlockAchievement(ctx, f.DB(ctx), c.UserID(ctx), &in)
		if err != nil {
			response.SendError(ctx, w, "unlockAchievement", err)
			return
		}
		response.Created(w, a, "Achievement unlocked")
	}
}

func Activity(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		page, err := service.Activity(ctx, f.DB(ctx), c.UserID(ctx), model.ActivityFilter{
			Type:   r.URL.Query().Get("type"),
			Limit:  queryInt(r, "limit", 50),
			Offset: queryInt(r, "offset", 0),
		})
		if err != nil {
			response.SendError(ctx, w, "activity", err)
			return
		}
		response.OK(w, page)
	}
}

func LogActivity(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in profile.ActivityInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "logActivity", err)
			return
		}

		if err := service.LogActivity(ctx, f.DB(ctx), c.UserID(ctx), &in); err != nil {
			response.SendError(ctx, w, "logActivity", err)
			return
		}
		response.Created(w, nil, "Activity logged")
	}
}

func Collections(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := service.Collections(ctx, f.DB(ctx), c.UserID(ctx))
		if err != nil {
			response.SendError(ctx, w, "collections", err)
			return
		}
		response.OK(w, list)
	}
}

func Collection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		col, err := service.Collection(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"])
		if err != nil {
			response.SendError(ctx, w, "collection", err)
			return
		}
		response.OK(w, col)
	}
}

func CreateCollection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.CollectionInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "createCollection", err)
			return
		}

		col, err := service.CreateCollection(ctx, f.DB(ctx), c.UserID(ctx), &in)
		if err != nil {
			response.SendError(ctx, w, "createCollection", err)
			return
		}
		response.Created(w, col, "Collection created")
	}
}

func UpdateCollection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.CollectionInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "updateCollection", err)
			return
		}

		col, err := service.UpdateCollection(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"], &in)
		if err != nil {
			response.SendError(ctx, w, "updateCollection", err)
			return
		}
		response.OK(w, col)
	}
}

func DeleteCollection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := mux.Vars(r)["id"]
		if err := service.DeleteCollection(ctx, f.DB(ctx), c.UserID(ctx), id); err != nil {
			response.SendError(ctx, w, "deleteCollection", err)
			return
		}
		response.OK(w, map[string]string{"id": id})
	}
}

func Connections(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list, err := service.Connections(ctx, f.DB(ctx), c.UserID(ctx), r.URL.Query().Get("status"))
		if err != nil {
			response.SendError(ctx, w, "connections", err)
			return
		}
		response.OK(w, list)
	}
}

func RequestConnection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.ConnectionRequest
		if err := decode(w, r, &req); err != nil {
			response.SendError(ctx, w, "requestConnection", err)
			return
		}

		conn, err := service.RequestConnection(ctx, f.DB(ctx), c.UserID(ctx), req.AddresseeID)
		if err != nil {
			response.SendError(ctx, w, "requestConnection", err)
			return
		}
		response.Created(w, conn, "Connection requested")
	}
}

func UpdateConnection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var upd model.ConnectionUpdate
		if err := decode(w, r, &upd); err != nil {
			response.SendError(ctx, w, "updateConnection", err)
			return
		}

		conn, err := service.UpdateConnection(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"], upd.Status)
		if err != nil {
			response.SendError(ctx, w, "updateConnection", err)
			return
		}
		response.OK(w, conn)
	}
}

func RemoveConnection(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := mux.Vars(r)["id"]
		if err := service.RemoveConnection(ctx, f.DB(ctx), c.UserID(ctx), id); err != nil {
			response.SendError(ctx, w, "removeConnection", err)
			return
		}
		response.OK(w, map[string]string{"id": id})
	}
}

func Wallet(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		wallet, err := service.Wallet(ctx, f.DB(ctx), c.UserID(ctx), profile.WalletFilter{
			Type:   r.URL.Query().Get("type"),
			Limit:  queryInt(r, "limit", 20),
			Offset: queryInt(r, "offset", 0),
		})
		if err != nil {
			response.SendError(ctx, w, "wallet", err)
			return
		}
		response.OK(w, wallet)
	}
}

func RecordTransaction(service *profile.Profile, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var in model.WalletInput
		if err := decode(w, r, &in); err != nil {
			response.SendError(ctx, w, "recordTransaction", err)
			return
		}

		tx, err := service.RecordTransaction(ctx, f.DB(ctx), c.UserID(ctx), &in)
		if err != nil {
			response.SendError(ctx, w, "recordTransaction", err)
			return
		}
		response.Created(w, tx, "Transaction recorded")
	}
}
