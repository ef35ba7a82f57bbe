package httpapi

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"todoPlanManagement/internal/auth"
	"todoPlanManagement/internal/service"
)

// NewHandler builds the REST API handler: routes, CORS and access logging.
func NewHandler(svc *service.Service, allowedOrigins []string) http.Handler {
	if svc == nil {
		panic("service is required")
	}
	h := &handlers{svc: svc}

	r := mux.NewRouter()
	r.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	r.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	r.HandleFunc("/users/{id}/pro", h.upgradeToPro).Methods(http.MethodPatch)

	r.HandleFunc("/todos", h.listTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", h.createTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id}", h.updateTodo).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id}", h.deleteTodo).Methods(http.MethodDelete)
	r.HandleFunc("/todos/{id}/done", h.markTodoDone).Methods(http.MethodPatch)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", auth.HeaderUsername},
	})

	return logRequests(c.Handler(r))
}

// Start listens on addr and serves h in the background. It returns the bound
// address and a shutdown function that drains in-flight requests.
func Start(addr string, h http.Handler) (net.Addr, func(context.Context) error, error) {
	if addr == "" {
		addr = ":3333"
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http serve: %v", err)
		}
	}()

	return lis.Addr(), srv.Shutdown, nil
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond))
	})
}
