package http

import (
	_ "embed"
	"github.com/go-openapi/runtime/middleware"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
	websocketTransport "github.com/kahvecikaan/catalog-admin/internal/transport/websocket"
	"net/http"
)

//go:embed swagger.yaml
var swaggerSpec []byte

// NewRouter wires the catalog endpoints. ih.store may be nil, in which case
// /images is not served.
func NewRouter(
	ch *CatalogHandler,
	ih *ImageHandler,
	wsh *websocketTransport.Handler,
	mw *Middleware,
	logger hclog.Logger,
) http.Handler {
	router := mux.NewRouter()

	// Routes that write their own content type
	router.HandleFunc("/ws", wsh.HandleWebSocket).Methods("GET")
	if ih.store != nil {
		router.HandleFunc("/images/{path:.+}", ih.GetFile).Methods("GET")
	}

	router.HandleFunc("/swagger.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(swaggerSpec)
	}).Methods("GET")

	swaggerOpts := middleware.RedocOpts{SpecURL: "/swagger.yaml"}
	router.Handle("/docs", middleware.Redoc(swaggerOpts, nil)).Methods("GET")

	// JSON API
	api := router.NewRoute().Subrouter()
	api.Use(mw.ContentTypeMiddleware)
	api.Use(handlers.CompressHandler)

	api.HandleFunc("/catalog", ch.GetCatalog).Methods("GET")
	api.HandleFunc("/catalog/reload", ch.Reload).Methods("POST")
	api.HandleFunc("/catalog/create", ch.StartCreate).Methods("POST")
	api.HandleFunc("/catalog/cancel", ch.Cancel).Methods("POST")
	api.HandleFunc("/catalog/draft", ch.PatchDraft).Methods("PATCH")
	api.HandleFunc("/catalog/draft/submit", ch.SubmitDraft).Methods("POST")
	api.HandleFunc("/catalog/draft/image", ih.UploadMultipart).Methods("POST")
	api.HandleFunc("/catalog/draft/image", ih.RemoveImage).Methods("DELETE")
	api.HandleFunc("/catalog/products/{id:[0-9]+}/edit", ch.EditProduct).Methods("POST")
	api.HandleFunc("/catalog/products/{id:[0-9]+}/delete", ch.DeleteProduct).Methods("POST")
	api.HandleFunc("/catalog/delete/confirm", ch.ConfirmDelete).Methods("POST")
	api.HandleFunc("/catalog/delete/cancel", ch.CancelDelete).Methods("POST")

	api.HandleFunc("/dialog", ch.GetDialog).Methods("GET")
	api.HandleFunc("/dialog/open", ch.OpenDialog).Methods("POST")
	api.HandleFunc("/dialog/close", ch.CloseDialog).Methods("POST")
	api.HandleFunc("/dialog/draft", ch.PatchDialog).Methods("PATCH")
	api.HandleFunc("/dialog/submit", ch.SubmitDialog).Methods("POST")

	// CORS runs outside the router so preflight requests reach it
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(mw.LoggingMiddleware(mw.CORSMiddleware(router)))
}
