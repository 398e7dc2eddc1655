package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/viewmodel"
)

const (
	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

type uGame interface {
	NewSession(ctx context.Context) (string, viewmodel.GameView, error)
	GetSession(ctx context.Context, sessionID string) (viewmodel.GameView, error)
	EndSession(ctx context.Context, sessionID string) error

	Play(ctx context.Context, sessionID string, cell int) (usecase.PlayResult, error)
	JumpTo(ctx context.Context, sessionID string, step int) (viewmodel.GameView, error)
}

type handlerFunc func(ctx context.Context, conn *connection, message *Message) error

type Server struct {
	logger   *slog.Logger
	uGame    uGame
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, uGame uGame) *Server {
	server := &Server{
		logger: logger.With("component", "websocket"),
		uGame:  uGame,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[ActionSessionNew] = server.handleNewSession
	server.handlers[ActionSessionResume] = server.handleResumeSession
	server.handlers[ActionGamePlay] = server.handlePlay
	server.handlers[ActionGameJump] = server.handleJump

	return server
}

// Handler returns the /ws endpoint; ctx bounds every connection it accepts.
func (that *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWebSocket(ctx, w, r)
	})

	return mux
}

// Start - starts WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     that.Handler(ctx),
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down WebSocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	wsConn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{Conn: wsConn}
	defer that.closeConnection(conn)

	wsConn.SetReadLimit(maxMessageSize)

	// unblock ReadMessage on shutdown
	stop := context.AfterFunc(ctx, func() { _ = wsConn.Close() })
	defer stop()

	log.Info("WebSocket connection established", "remote", wsConn.RemoteAddr().String())

	if err = that.handleMessages(ctx, conn); err != nil && !isClosed(err) {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until the connection closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, reqBody, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(reqBody, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)

			if err = conn.sendError("", "malformed message"); err != nil {
				return err
			}

			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)

			if err = conn.sendError(message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, conn, &message); err != nil {
			return fmt.Errorf("failed to process %s: %w", message.Action, err)
		}
	}
}

// closeConnection ends the session this connection created; resumed sessions are left to expire.
func (that *Server) closeConnection(conn *connection) {
	log := that.logger.With("method", "closeConnection")

	if conn.ownsSession && conn.sessionID != "" {
		if err := that.uGame.EndSession(context.Background(), conn.sessionID); err != nil {
			log.Warn("failed to end session", "sessionID", conn.sessionID, "error", err)
		}
	}

	if err := conn.Close(); err != nil && !isClosed(err) {
		log.Debug("failed to close connection", "error", err)
	}
}

func isClosed(err error) bool {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			return true
		}
	}

	return errors.Is(err, net.ErrClosed)
}
