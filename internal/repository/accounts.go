package repository

import (
	"context"
	"dodgetracker/internal/domain"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AccountRepository owns the account-identity tables backing dodge
// enrichment: summoners and riot_ids.
type AccountRepository struct {
	logger zerolog.Logger
}

func NewAccountRepository(logger zerolog.Logger) *AccountRepository {
	return &AccountRepository{logger: logger}
}

// UpsertSummoners writes resolved summoner identities keyed by puuid.
func (r *AccountRepository) UpsertSummoners(ctx context.Context, tx pgx.Tx, summoners []domain.Summoner) error {
	if len(summoners) == 0 {
		r.logger.Info().Msg("no summoners to upsert, skipping")
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range summoners {
		batch.Queue(`
			INSERT INTO summoners
				(puuid, summoner_id, region, account_id, profile_icon_id, summoner_level)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (puuid) DO UPDATE SET
				summoner_id = EXCLUDED.summoner_id,
				region = EXCLUDED.region,
				account_id = EXCLUDED.account_id,
				profile_icon_id = EXCLUDED.profile_icon_id,
				summoner_level = EXCLUDED.summoner_level,
				updated_at = now()`,
			s.PUUID, s.SummonerID, s.Region, s.AccountID, s.ProfileIconID, s.SummonerLevel)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert summoners: %w", err)
	}

	r.logger.Info().Int("count", len(summoners)).Msg("summoners upserted")
	return nil
}

// UpsertRiotIDs writes resolved riot ids. The lower-cased columns back the
// case-insensitive profile search on the site.
func (r *AccountRepository) UpsertRiotIDs(ctx context.Context, tx pgx.Tx, riotIDs []domain.RiotID) error {
	if len(riotIDs) == 0 {
		r.logger.Info().Msg("no riot ids to upsert, skipping")
		return nil
	}

	batch := &pgx.Batch{}
	for _, id := range riotIDs {
		batch.Queue(`
			INSERT INTO riot_ids (puuid, game_name, tag_line, lower_game_name, lower_tag_line)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (puuid) DO UPDATE SET
				game_name = EXCLUDED.game_name,
				tag_line = EXCLUDED.tag_line,
				lower_game_name = EXCLUDED.lower_game_name,
				lower_tag_line = EXCLUDED.lower_tag_line,
				updated_at = now()`,
			id.PUUID, id.GameName, id.TagLine,
			strings.ToLower(id.GameName), strings.ToLower(id.TagLine))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert riot ids: %w", err)
	}

	r.logger.Info().Int("count", len(riotIDs)).Msg("riot ids upserted")
	return nil
}

// UpsertLolprosSlugs attaches lolpros.gg slugs to already-known riot ids.
func (r *AccountRepository) UpsertLolprosSlugs(ctx context.Context, tx pgx.Tx, slugs map[string]string) error {
	if len(slugs) == 0 {
		r.logger.Info().Msg("no lolpros slugs to upsert, skipping")
		return nil
	}

	batch := &pgx.Batch{}
	for puuid, slug := range slugs {
		batch.Queue(`
			UPDATE riot_ids SET lolpros_slug = $2, updated_at = now()
			WHERE puuid = $1`,
			puuid, slug)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert lolpros slugs: %w", err)
	}

	r.logger.Info().Int("count", len(slugs)).Msg("lolpros slugs upserted")
	return nil
}

// KnownSummonerIDs filters keys down to the ones already present in the
// summoners table, so enrichment only hits the API for unknown players.
func (r *AccountRepository) KnownSummonerIDs(ctx context.Context, tx pgx.Tx, keys []domain.PlayerKey) (map[domain.PlayerKey]bool, error) {
	known := make(map[domain.PlayerKey]bool, len(keys))
	if len(keys) == 0 {
		return known, nil
	}

	ids := make([]string, 0, len(keys))
	regions := make([]string, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, key.SummonerID)
		regions = append(regions, string(key.Region))
	}

	rows, err := tx.Query(ctx, `
		SELECT s.summoner_id, s.region
		FROM summoners s
		JOIN unnest($1::text[], $2::text[]) AS q(summoner_id, region)
			ON s.summoner_id = q.summoner_id AND s.region = q.region
		JOIN riot_ids r ON r.puuid = s.puuid`,
		ids, regions)
	if err != nil {
		return nil, fmt.Errorf("failed to query known summoners: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key domain.PlayerKey
		if err := rows.Scan(&key.SummonerID, &key.Region); err != nil {
			return nil, fmt.Errorf("failed to scan known summoner: %w", err)
		}
		known[key] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read known summoners: %w", err)
	}

	return known, nil
}

// Querier is the read surface shared by pgx transactions and pools; the
// post-commit consistency check runs outside any transaction.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IdentityCounts returns the row counts of the two identity tables. They
// are maintained in lockstep; a mismatch is a diagnostic signal only.
func (r *AccountRepository) IdentityCounts(ctx context.Context, q Querier) (summoners, riotIDs int64, err error) {
	if err := q.QueryRow(ctx, `SELECT count(*) FROM summoners`).Scan(&summoners); err != nil {
		return 0, 0, fmt.Errorf("failed to count summoners: %w", err)
	}
	if err := q.QueryRow(ctx, `SELECT count(*) FROM riot_ids`).Scan(&riotIDs); err != nil {
		return 0, 0, fmt.Errorf("failed to count riot ids: %w", err)
	}
	return summoners, riotIDs, nil
}
