package handler

import (
	"net/http"
	"rovify-backend/factory"
	"rovify-backend/model"
	"rovify-backend/response"
	"rovify-backend/user"
)

func Login(service *user.User, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.LoginRequest
		if err := decode(w, r, &req); err != nil {
			response.SendError(ctx, w, "login", err)
			return
		}

		auth, err := service.Login(ctx, f.DB(ctx), &req)
		if err != nil {
			response.SendError(ctx, w, "login", err)
			return
		}
		response.OK(w, auth)
	}
}

func Register(service *user.User, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.RegisterRequest
		if err := decode(w, r, &req); err != nil {
			response.SendError(ctx, w, "register", err)
			return
		}

		auth, err := service.Register(ctx, f.DB(ctx), &req)
		if err != nil {
			response.SendError(ctx, w, "register", err)
			return
		}
		response.Created(w, auth, "Account created")
	}
}

func SocialLogin(service *user.User, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.SocialLoginRequest
		if err := decode(w, r, &req); err != nil {
			response.SendError(ctx, w, "socialLogin", err)
			return
		}

		auth, err := service.SocialLogin(ctx, f.DB(ctx), req.IDToken)
		if err != nil {
			response.SendError(ctx, w, "socialLogin", err)
			return
		}
		response.OK(w, auth)
	}
}
