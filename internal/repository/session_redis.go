package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-timetravel/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-timetravel/internal/entity"
)

const sessionKeyPrefix = "session:"

type dbSession struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository stores sessions in redis. Every Save refreshes the TTL.
func NewSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &dbSession{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbSession) Save(ctx context.Context, id string, state entity.GameState) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal game state: %w", err)
	}

	err = that.client.Set(ctx, sessionKeyPrefix+id, stateJSON, that.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (entity.GameState, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+id).Result()

	if errors.Is(err, redis.Nil) {
		return entity.GameState{}, apperror.ErrSessionNotFound
	}

	if err != nil {
		return entity.GameState{}, fmt.Errorf("failed to get session: %w", err)
	}

	var state entity.GameState
	if err = json.Unmarshal([]byte(response), &state); err != nil {
		return entity.GameState{}, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	return state, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if deleted == 0 {
		return apperror.ErrSessionNotFound
	}

	return nil
}
