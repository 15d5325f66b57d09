package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"
)

type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Metrics nil: /metrics не публикуется
	Metrics interface {
		Handler() http.Handler
		Middleware(next http.Handler) http.Handler
	}
	// Ready проверка базы для /ready; nil значит всегда готов
	Ready func(ctx context.Context) error
	// RequestTimeout предел на обработку запроса, включая ожидание блокировок в базе.
	// 0 отключает.
	RequestTimeout time.Duration
}

type Server struct {
	srv *http.Server
}

// New собирает корневой mux: служебные маршруты плюс то, что зарегистрирует mount.
func New(opts Options, mount func(mux *http.ServeMux)) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db unavailable"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if mount != nil {
		mount(mux)
	}

	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	// метрикам нужен тот же *Request, что дошёл до mux (r.Pattern), поэтому таймаут снаружи
	var h http.Handler = mux
	if opts.Metrics != nil {
		h = opts.Metrics.Middleware(h)
	}
	if opts.RequestTimeout > 0 {
		h = WithTimeout(h, opts.RequestTimeout)
	}

	return &Server{srv: &http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      opts.WriteTimeout,
	}}
}

// WithTimeout ограничивает контекст запроса. pgx отменяет запрос к базе
// по контексту, так что зависшая блокировка строки не держит хендлер вечно.
func WithTimeout(next http.Handler, d time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), d)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start блокируется до Shutdown. Штатная остановка ошибкой не считается.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve то же, что Start, но на готовом listener (для тестов на :0).
func (s *Server) Serve(l net.Listener) error {
	if err := s.srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
