// Package server assembles the chi router of the shortener API.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emirkoc/shortlink/internal/app/handler"
	"github.com/emirkoc/shortlink/internal/app/service"
	"github.com/emirkoc/shortlink/internal/middleware"
)

// Init builds the router. The redirect path and the auth endpoints are
// public; everything under /api/urls requires a bearer token.
func Init(baseURL string, log *zap.Logger, withGzip bool, urls *service.URLService, clicks *service.ClickService, redirect *service.RedirectResolver, auth *service.Auth) *chi.Mux {
	authHandler := handler.NewAuth(auth, log)
	postHandler := handler.NewPost(urls, baseURL, log)
	getHandler := handler.NewGet(urls, clicks, redirect, baseURL, log)
	updateHandler := handler.NewUpdate(urls, baseURL, log)
	deleteHandler := handler.NewDelete(urls, log)

	r := chi.NewRouter()
	r.Use(middleware.WithRequestLogging(log))
	if withGzip {
		r.Use(middleware.WithGZIPResponse)
		r.Use(middleware.WithGZIPRequest)
	}

	r.Get("/ping", getHandler.PingDB)
	r.Get("/{code}", getHandler.Redirect)

	r.Post("/api/auth/register", authHandler.Register)
	r.Post("/api/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJWT(auth))

		r.Get("/api/auth/profile", authHandler.Profile)

		r.Post("/api/urls", postHandler.CreateURL)
		r.Get("/api/urls", getHandler.ListURLs)
		r.Get("/api/urls/analytics", getHandler.Analytics)
		r.Get("/api/urls/{id}/stats", getHandler.URLStats)
		r.Put("/api/urls/{id}", updateHandler.UpdateURL)
		r.Delete("/api/urls/{id}", deleteHandler.DeleteURL)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Short URL is required", http.StatusBadRequest)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	return r
}
