package repository

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// EventRepository owns the append-only dodge, promotion and demotion logs.
type EventRepository struct {
	chunkSize int
	logger    zerolog.Logger
}

func NewEventRepository(cfg *config.Config, logger zerolog.Logger) *EventRepository {
	return &EventRepository{chunkSize: cfg.ChunkSize, logger: logger}
}

// DemotionHistory loads every recorded demotion timestamp keyed by player.
func (r *EventRepository) DemotionHistory(ctx context.Context, tx pgx.Tx) (map[domain.PlayerKey][]time.Time, error) {
	rows, err := tx.Query(ctx, `SELECT summoner_id, region, created_at FROM demotions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query demotions: %w", err)
	}
	defer rows.Close()

	history := make(map[domain.PlayerKey][]time.Time)
	for rows.Next() {
		var key domain.PlayerKey
		var createdAt time.Time
		if err := rows.Scan(&key.SummonerID, &key.Region, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan demotion: %w", err)
		}
		history[key] = append(history[key], createdAt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read demotions: %w", err)
	}

	return history, nil
}

// InsertDodges appends the cycle's detected dodges. The dodge insert trigger
// notifies the live broadcaster once the transaction commits.
func (r *EventRepository) InsertDodges(ctx context.Context, tx pgx.Tx, dodges []domain.Dodge) error {
	if len(dodges) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, dodge := range dodges {
		batch.Queue(`
			INSERT INTO dodges
				(summoner_id, region, rank_tier, lp_before, lp_after, at_wins, at_losses)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			dodge.SummonerID, dodge.Region, dodge.RankTier,
			dodge.LPBefore, dodge.LPAfter, dodge.AtWins, dodge.AtLosses)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert dodges: %w", err)
	}

	r.logger.Info().Int("count", len(dodges)).Msg("dodges inserted")
	return nil
}

// InsertPromotions appends the cycle's promotions as a single batch.
func (r *EventRepository) InsertPromotions(ctx context.Context, tx pgx.Tx, promotions []domain.Promotion) error {
	if len(promotions) == 0 {
		r.logger.Info().Msg("no promotions to register, skipping")
		return nil
	}

	r.logger.Info().Int("count", len(promotions)).Msg("registering promotions")

	batch := &pgx.Batch{}
	for _, promotion := range promotions {
		batch.Queue(`
			INSERT INTO promotions (summoner_id, region, at_wins, at_losses)
			VALUES ($1, $2, $3, $4)`,
			promotion.SummonerID, promotion.Region, promotion.AtWins, promotion.AtLosses)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert promotions: %w", err)
	}

	return nil
}

// InsertDemotions appends the cycle's demotions in chunks; a season reset
// demotes most of the ladder in one cycle.
func (r *EventRepository) InsertDemotions(ctx context.Context, tx pgx.Tx, demotions []domain.Demotion) error {
	if len(demotions) == 0 {
		r.logger.Info().Msg("no demotions to register, skipping")
		return nil
	}

	r.logger.Info().Int("count", len(demotions)).Msg("registering demotions")

	for i, part := range chunk(demotions, r.chunkSize) {
		r.logger.Info().Int("chunk", i).Int("size", len(part)).Msg("inserting demotion chunk")

		batch := &pgx.Batch{}
		for _, demotion := range part {
			batch.Queue(`
				INSERT INTO demotions (summoner_id, region, at_wins, at_losses)
				VALUES ($1, $2, $3, $4)`,
				demotion.SummonerID, demotion.Region, demotion.AtWins, demotion.AtLosses)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert demotions: %w", err)
		}
	}

	return nil
}
