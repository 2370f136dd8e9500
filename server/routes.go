package server

import (
	"inventory/metrics"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (srv *Server) InjectRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("connection established..."))
	})
	r.Handle("/metrics", metrics.Handler())

	//public routes
	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", srv.AuthHandler.Register)
		api.Post("/auth/login", srv.AuthHandler.Login)
		api.Post("/v2/auth/login", srv.AuthHandler.LoginWithIDToken)
		api.Post("/auth/logout", srv.AuthHandler.Logout)

		//protected
		api.Group(func(protected chi.Router) {
			protected.Use(srv.Middleware.SessionMiddleware())

			protected.Get("/auth/session", srv.AuthHandler.CurrentSession)

			protected.Route("/inventory", func(inventory chi.Router) {
				inventory.Get("/assets", srv.AssetHandler.ListAssets)
				inventory.Post("/assets", srv.AssetHandler.AddAsset)
				inventory.Get("/assets/tag/{tag}", srv.AssetHandler.GetAssetByTag)
				inventory.Get("/assets/{id}", srv.AssetHandler.GetAsset)
				inventory.Put("/assets/{id}", srv.AssetHandler.UpdateAsset)
				inventory.Delete("/assets/{id}", srv.AssetHandler.DeleteAsset)
				inventory.Get("/assets/{id}/qrcode", srv.AssetHandler.GetAssetQRCode)

				inventory.Get("/statistics", srv.AssetHandler.GetStatistics)
				inventory.Get("/export/csv", srv.AssetHandler.ExportCSV)
				inventory.Post("/import/csv", srv.AssetHandler.ImportCSV)
				inventory.Get("/backup", srv.AssetHandler.Backup)
				inventory.Post("/restore", srv.AssetHandler.Restore)
			})

			protected.Route("/sheets", func(sheets chi.Router) {
				sheets.Get("/config", srv.SheetsHandler.GetConfig)
				sheets.Put("/config", srv.SheetsHandler.Configure)
				sheets.Delete("/config", srv.SheetsHandler.ClearConfig)
				sheets.Post("/test", srv.SheetsHandler.TestConnection)
				sheets.Post("/push", srv.SheetsHandler.Push)
				sheets.Post("/pull", srv.SheetsHandler.Pull)
				sheets.Post("/append/{id}", srv.SheetsHandler.AppendAsset)
			})
		})
	})

	return r
}
