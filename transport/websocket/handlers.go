package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

func (that *Server) handleNewSession(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleNewSession")

	if conn.ownsSession && conn.sessionID != "" {
		if err := that.uGame.EndSession(ctx, conn.sessionID); err != nil {
			log.Warn("failed to end previous session", "sessionID", conn.sessionID, "error", err)
		}
	}

	sessionID, view, err := that.uGame.NewSession(ctx)
	if err != nil {
		log.Error("failed to create session", "error", err)
		return conn.sendError(msg.Action, "failed to create a new session")
	}

	conn.sessionID = sessionID
	conn.ownsSession = true

	return conn.sendMessage(msg.Action, Payload{SessionID: sessionID, Game: &view})
}

func (that *Server) handleResumeSession(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleResumeSession")

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.SessionID == "" {
		return conn.sendError(msg.Action, "session_id is required")
	}

	view, err := that.uGame.GetSession(ctx, payloadReq.SessionID)
	if err != nil {
		log.Warn("failed to resume session", "sessionID", payloadReq.SessionID, "error", err)
		return conn.sendError(msg.Action, errorReason(err))
	}

	if conn.sessionID != payloadReq.SessionID {
		if conn.ownsSession && conn.sessionID != "" {
			if err = that.uGame.EndSession(ctx, conn.sessionID); err != nil {
				log.Warn("failed to end previous session", "sessionID", conn.sessionID, "error", err)
			}
		}

		conn.sessionID = payloadReq.SessionID
		conn.ownsSession = false
	}

	return conn.sendMessage(msg.Action, Payload{SessionID: conn.sessionID, Game: &view})
}

func (that *Server) handlePlay(ctx context.Context, conn *connection, msg *Message) error {
	if conn.sessionID == "" {
		return conn.sendError(msg.Action, "no active session")
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.Cell == nil {
		return conn.sendError(msg.Action, "cell is required")
	}

	if *payloadReq.Cell < 0 || *payloadReq.Cell >= entity.BoardSize {
		return conn.sendError(msg.Action, apperror.ErrInvalidCell.Error())
	}

	result, err := that.uGame.Play(ctx, conn.sessionID, *payloadReq.Cell)
	if err != nil {
		that.logger.Error("failed to play", "sessionID", conn.sessionID, "error", err)
		return conn.sendError(msg.Action, errorReason(err))
	}

	return conn.sendMessage(msg.Action, Payload{
		SessionID: conn.sessionID,
		Game:      &result.View,
		Applied:   &result.Applied,
	})
}

func (that *Server) handleJump(ctx context.Context, conn *connection, msg *Message) error {
	if conn.sessionID == "" {
		return conn.sendError(msg.Action, "no active session")
	}

	var payloadReq Payload
	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil || payloadReq.Step == nil {
		return conn.sendError(msg.Action, "step is required")
	}

	view, err := that.uGame.JumpTo(ctx, conn.sessionID, *payloadReq.Step)
	if err != nil {
		that.logger.Warn("failed to jump", "sessionID", conn.sessionID, "step", *payloadReq.Step, "error", err)
		return conn.sendError(msg.Action, errorReason(err))
	}

	return conn.sendMessage(msg.Action, Payload{SessionID: conn.sessionID, Game: &view})
}

func errorReason(err error) string {
	for _, known := range []error{apperror.ErrSessionNotFound, apperror.ErrStepOutOfRange, apperror.ErrInvalidCell} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return "internal error"
}
