package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/jecnagames-server/internal/model"
)

var _ model.ScoreStore = (*ScoreRepository)(nil)

type scoreRecord struct {
	ID        uuid.UUID       `json:"id"`
	UserID    *uuid.UUID      `json:"userId,omitempty"`
	Game      string          `json:"game"`
	Won       bool            `json:"won"`
	Points    int64           `json:"points"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt int64           `json:"createdAt"`
}

func (r scoreRecord) toModel() model.Score {
	return model.Score{
		ID:        r.ID,
		UserID:    r.UserID,
		Game:      r.Game,
		Won:       r.Won,
		Points:    r.Points,
		Details:   r.Details,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
}

type ScoreRepository struct {
	db *Connection
}

// NewScoreRepository creates a score store on db.
func NewScoreRepository(db *Connection) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// Record writes the score and the owner's new stats in one MULTI block,
// retrying when the owner changes underneath.
func (r *ScoreRepository) Record(ctx context.Context, score model.Score, update model.StatsUpdate) (model.Score, error) {
	if score.ID == uuid.Nil {
		score.ID = uuid.New()
	}
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now()
	}

	rec := scoreRecord{
		ID:        score.ID,
		UserID:    score.UserID,
		Game:      score.Game,
		Won:       score.Won,
		Points:    score.Points,
		Details:   score.Details,
		CreatedAt: score.CreatedAt.UnixMilli(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return model.Score{}, fmt.Errorf("failed to encode score: %w", err)
	}
	seq, err := r.db.Incr(ctx, r.db.keys.scoreSeq()).Result()
	if err != nil {
		return model.Score{}, fmt.Errorf("failed to allocate score sequence: %w", err)
	}
	scoreKey := r.db.keys.score(score.ID.String())
	member := redis.Z{Score: float64(rec.CreatedAt), Member: scoreMember(seq, score.ID.String())}

	if score.UserID == nil {
		_, err := r.db.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, scoreKey, data, 0)
			pipe.ZAdd(ctx, r.db.keys.anonymousScores(), member)
			return nil
		})
		if err != nil {
			return model.Score{}, fmt.Errorf("failed to record score: %w", err)
		}
		return rec.toModel(), nil
	}

	userID := score.UserID.String()
	userKey := r.db.keys.user(userID)

	err = r.db.transact(ctx, func(tx *redis.Tx) error {
		user, err := getUser(ctx, tx, userKey)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewErrUserNotFound(userID)
			}
			return err
		}

		if update != nil {
			user.Stats = statsRecord(update(model.Stats(user.Stats)))
			user.UpdatedAt = time.Now().UnixMilli()
		}
		userData, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to encode user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey, userData, 0)
			pipe.Set(ctx, scoreKey, data, 0)
			pipe.ZAdd(ctx, r.db.keys.userScores(userID), member)
			return nil
		})
		return err
	}, userKey)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Score{}, err
		}
		return model.Score{}, fmt.Errorf("failed to record score: %w", err)
	}

	return rec.toModel(), nil
}

func (r *ScoreRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Score, error) {
	return r.list(ctx, userID, &redis.ZRangeBy{Min: "-inf", Max: "+inf"})
}

func (r *ScoreRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Score, error) {
	return r.list(ctx, userID, &redis.ZRangeBy{
		Min: strconv.FormatInt(from.UnixMilli(), 10),
		Max: "(" + strconv.FormatInt(to.UnixMilli(), 10),
	})
}

func (r *ScoreRepository) list(ctx context.Context, userID uuid.UUID, window *redis.ZRangeBy) ([]model.Score, error) {
	members, err := r.db.ZRevRangeByScore(ctx, r.db.keys.userScores(userID.String()), window).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list score ids: %w", err)
	}
	if len(members) == 0 {
		return []model.Score{}, nil
	}

	scoreKeys := make([]string, len(members))
	for i, m := range members {
		scoreKeys[i] = r.db.keys.score(memberScoreID(m))
	}
	values, err := r.db.MGet(ctx, scoreKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	scores := make([]model.Score, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rec scoreRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode score: %w", err)
		}
		scores = append(scores, rec.toModel())
	}

	return scores, nil
}

// scoreMember prefixes the score id with a zero-padded insertion sequence.
// Members with an equal timestamp sort lexicographically, so a reverse range
// lists the latest insert first.
func scoreMember(seq int64, id string) string {
	return fmt.Sprintf("%019d:%s", seq, id)
}

func memberScoreID(member string) string {
	if i := strings.LastIndexByte(member, ':'); i >= 0 {
		return member[i+1:]
	}
	return member
}
