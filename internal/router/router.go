// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of
// mailcraft: the token-protected authoring API under /api and the public
// "view in browser" pages under /p.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mailcraft/internal/handlers"
	"mailcraft/internal/middleware"
)

// Options configure the router.
type Options struct {
	// AdminToken is the bearer token required by /api.
	AdminToken string
	// AILimiter throttles AI routes. Nil disables throttling.
	AILimiter *middleware.RateLimiter
	// RequestTimeout bounds non-AI API requests. Zero means 30s.
	RequestTimeout time.Duration
}

// New creates the chi router with all middleware and route groups.
func New(api *handlers.API, opts Options) chi.Router {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Get("/p/{slug}", api.PublicPost)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireToken(opts.AdminToken))

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(opts.RequestTimeout))

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", api.ListPosts)
				r.Post("/", api.CreatePost)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", api.GetPost)
					r.Patch("/", api.UpdatePost)
					r.Delete("/", api.DeletePost)
					r.Post("/duplicate", api.DuplicatePost)
					r.Put("/tags", api.SetPostTags)
					r.Post("/render", api.RenderPost)
					r.Get("/preview", api.PostPreviewFrame)
					r.Get("/revisions", api.ListRevisions)
					r.Post("/revisions/{revID}/restore", api.RestoreRevision)
				})
			})

			r.Route("/design", func(r chi.Router) {
				r.Get("/blocks", api.BlockPalette)
				r.Get("/blocks/{type}", api.NewBlock)
				r.Post("/compile", api.CompileDesign)
				r.Post("/validate", api.ValidateDesign)
				r.Post("/ops", api.ApplyDesignOp)
			})

			r.Post("/variables", api.DescribeVariables)
			r.Post("/preview", api.Preview)
			r.Post("/preview/frame", api.PreviewFrame)
			r.Post("/inspect", api.Inspect)

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", api.ListAssets)
				r.Post("/", api.UploadAsset)
				r.Post("/qr", api.GenerateQR)
				r.Get("/{id}", api.GetAsset)
				r.Patch("/{id}", api.UpdateAssetAlt)
				r.Delete("/{id}", api.DeleteAsset)
			})

			r.Route("/themes", func(r chi.Router) {
				r.Get("/", api.ListThemes)
				r.Post("/", api.CreateTheme)
				r.Get("/{id}", api.GetTheme)
				r.Put("/{id}", api.UpdateTheme)
				r.Delete("/{id}", api.DeleteTheme)
				r.Post("/{id}/activate", api.ActivateTheme)
				r.Post("/{id}/deactivate", api.DeactivateTheme)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", api.ListTags)
				r.Post("/", api.CreateTag)
				r.Put("/{id}", api.UpdateTag)
				r.Delete("/{id}", api.DeleteTag)
			})

			r.Get("/ai", api.AIStatus)
			r.Put("/ai/provider", api.SetAIProvider)
			r.Post("/ai/sessions", api.NewAssistSession)
			r.Post("/ai/sessions/{sid}/cancel", api.CancelAssist)
			r.Delete("/ai/sessions/{sid}", api.ResetAssist)
		})

		// Model calls can take minutes; they are throttled instead of
		// timed out.
		r.Group(func(r chi.Router) {
			if opts.AILimiter != nil {
				r.Use(opts.AILimiter.Middleware)
			}
			r.Post("/ai/tasks/{task}", api.RunAssist)
			r.Post("/assets/generate", api.GenerateImage)
			r.Post("/assets/{id}/alt-text", api.SuggestAssetAlt)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
