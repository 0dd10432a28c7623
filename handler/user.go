package handler

import (
	"net/http"
	c "rovify-backend/context"
	"rovify-backend/factory"
	"rovify-backend/model"
	"rovify-backend/response"
	"rovify-backend/user"

	"github.com/gorilla/mux"
)

func GetUser(service *user.User, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		profile, err := service.GetProfile(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"])
		if err != nil {
			response.SendError(ctx, w, "getUser", err)
			return
		}
		response.OK(w, profile)
	}
}

func UpdateUser(service *user.User, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var upd model.UserUpdate
		if err := decode(w, r, &upd); err != nil {
			response.SendError(ctx, w, "updateUser", err)
			return
		}

		usr, err := service.Update(ctx, f.DB(ctx), c.UserID(ctx), mux.Vars(r)["id"], &upd)
		if err != nil {
			response.SendError(ctx, w, "updateUser", err)
			return
		}
		response.OK(w, usr)
	}
}
