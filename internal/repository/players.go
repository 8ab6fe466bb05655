package repository

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// PlayerRepository reads and writes the persisted apex tier membership.
// Every method runs against the caller's transaction handle so a full cycle
// stays atomic.
type PlayerRepository struct {
	chunkSize int
	logger    zerolog.Logger
}

func NewPlayerRepository(cfg *config.Config, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{chunkSize: cfg.ChunkSize, logger: logger}
}

// CurrentPlayers loads the full persisted membership keyed by player.
func (r *PlayerRepository) CurrentPlayers(ctx context.Context, tx pgx.Tx) (map[domain.PlayerKey]domain.PlayerState, error) {
	rows, err := tx.Query(ctx, `
		SELECT summoner_id, region, current_lp, wins, losses, updated_at
		FROM apex_tier_players`)
	if err != nil {
		return nil, fmt.Errorf("failed to query apex tier players: %w", err)
	}
	defer rows.Close()

	players := make(map[domain.PlayerKey]domain.PlayerState)
	for rows.Next() {
		var key domain.PlayerKey
		var state domain.PlayerState
		if err := rows.Scan(&key.SummonerID, &key.Region, &state.LP, &state.Wins, &state.Losses, &state.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan apex tier player: %w", err)
		}
		state.Region = key.Region
		players[key] = state
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read apex tier players: %w", err)
	}

	return players, nil
}

const upsertPlayerSQL = `
	INSERT INTO apex_tier_players
		(summoner_id, summoner_name, region, rank_tier, current_lp, wins, losses)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (summoner_id, region) DO UPDATE SET
		summoner_name = EXCLUDED.summoner_name,
		rank_tier = EXCLUDED.rank_tier,
		current_lp = EXCLUDED.current_lp,
		wins = EXCLUDED.wins,
		losses = EXCLUDED.losses,
		updated_at = now()`

// UpsertPlayers writes every fetched player, insert-or-update keyed by
// (summoner_id, region). Writes go out in chunks; a season reset can carry
// the whole ladder at once.
func (r *PlayerRepository) UpsertPlayers(ctx context.Context, tx pgx.Tx, players map[domain.PlayerKey]domain.LadderEntry) error {
	if len(players) == 0 {
		r.logger.Info().Msg("no players to upsert, skipping")
		return nil
	}

	entries := make([]domain.LadderEntry, 0, len(players))
	for _, entry := range players {
		entries = append(entries, entry)
	}

	for i, part := range chunk(entries, r.chunkSize) {
		r.logger.Info().Int("chunk", i).Int("size", len(part)).Msg("upserting player chunk")

		batch := &pgx.Batch{}
		for _, entry := range part {
			var name *string
			if entry.SummonerName != "" {
				name = &entry.SummonerName
			}
			batch.Queue(upsertPlayerSQL,
				entry.SummonerID, name, entry.Region, entry.RankTier,
				entry.LeaguePoints, entry.Wins, entry.Losses)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert players: %w", err)
		}
	}

	return nil
}
