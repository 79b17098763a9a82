package bancho

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Request/response headers carrying the session token, mirroring the
// client's expectations.
const (
	requestTokenHeader  = "osu-token"
	responseTokenHeader = "cho-token"
	protocolHeader      = "cho-protocol"
)

// maxBodyBytes caps how much of a request body is read. Packet batches are
// small; anything larger is abuse.
const maxBodyBytes = 1 << 20

// Handler returns the HTTP adapter over Login/Dispatch: a request without an
// osu-token header is a login attempt whose body holds the credentials, one
// with the header is a packet batch for that session.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			s.logger.Warnf("error reading request body from %s: %v", r.RemoteAddr, err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var token string
		var response []byte
		if requestToken := r.Header.Get(requestTokenHeader); requestToken == "" {
			token, response = s.Login(body)
		} else {
			token, response = s.Dispatch(requestToken, body)
		}

		w.Header().Set(responseTokenHeader, token)
		w.Header().Set(protocolHeader, strconv.Itoa(ProtocolVersion))
		if _, err := w.Write(response); err != nil {
			s.logger.Warnf("error writing response to %s: %v", r.RemoteAddr, err)
		}
	})
}

// ListenAndServe runs the HTTP frontend until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.ListenAddress(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Infof("listening on %s", srv.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errs:
		return err
	}
}
