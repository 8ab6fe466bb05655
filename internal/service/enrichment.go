package service

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/repository"
	"dodgetracker/internal/riot"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// AccountAPI is the slice of the Riot client used for identity resolution.
type AccountAPI interface {
	GetSummonerByID(ctx context.Context, summonerID string, region domain.Region) (*riot.SummonerResponse, error)
	GetAccountByPUUID(ctx context.Context, puuid string) (*riot.AccountResponse, error)
}

// SlugAPI resolves riot ids to lolpros.gg slugs.
type SlugAPI interface {
	GetSlug(ctx context.Context, gameName, tagLine string) (string, error)
}

// EnrichmentService resolves the account identities behind each dodge
// before the dodge rows go in, so the insert notification can carry a full
// riot id. Summoner resolution failing is fatal to the cycle; without the
// identity row the dodge payload would be incomplete. Account and lolpros
// lookups are best-effort.
type EnrichmentService struct {
	riot           AccountAPI
	lolpros        SlugAPI
	accountRepo    *repository.AccountRepository
	lolprosTimeout time.Duration
	logger         zerolog.Logger
}

func NewEnrichmentService(
	riotClient AccountAPI,
	lolprosClient SlugAPI,
	accountRepo *repository.AccountRepository,
	cfg *config.Config,
	logger zerolog.Logger,
) *EnrichmentService {
	return &EnrichmentService{
		riot:           riotClient,
		lolpros:        lolprosClient,
		accountRepo:    accountRepo,
		lolprosTimeout: cfg.LolprosTimeout,
		logger:         logger,
	}
}

// SlugOutcome distinguishes "no lolpros profile exists" from "the lookup
// failed"; both are skippable but they mean different things.
type SlugOutcome int

const (
	SlugFound SlugOutcome = iota
	SlugNone
	SlugFailed
)

type SlugResult struct {
	PUUID   string
	Outcome SlugOutcome
	Slug    string
	Err     error
}

// EnrichDodges upserts summoner and riot id rows for every dodging player
// not already known, then attaches lolpros slugs for EUW players.
func (s *EnrichmentService) EnrichDodges(ctx context.Context, tx pgx.Tx, dodges []domain.Dodge) error {
	keys := make([]domain.PlayerKey, 0, len(dodges))
	seen := make(map[domain.PlayerKey]bool, len(dodges))
	for _, dodge := range dodges {
		if key := dodge.Key(); !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}

	known, err := s.accountRepo.KnownSummonerIDs(ctx, tx, keys)
	if err != nil {
		return err
	}

	var toResolve []domain.PlayerKey
	for _, key := range keys {
		if !known[key] {
			toResolve = append(toResolve, key)
		}
	}
	if len(toResolve) == 0 {
		s.logger.Debug().Int("dodges", len(dodges)).Msg("all dodging players already known")
		return nil
	}

	s.logger.Info().Int("count", len(toResolve)).Msg("resolving summoner data")

	summoners, err := s.resolveSummoners(ctx, toResolve)
	if err != nil {
		return err
	}
	if err := s.accountRepo.UpsertSummoners(ctx, tx, summoners); err != nil {
		return err
	}

	riotIDs := s.resolveAccounts(ctx, summoners)
	if err := s.accountRepo.UpsertRiotIDs(ctx, tx, riotIDs); err != nil {
		return err
	}

	regionByPUUID := make(map[string]domain.Region, len(summoners))
	for _, summoner := range summoners {
		regionByPUUID[summoner.PUUID] = summoner.Region
	}

	var euwAccounts []domain.RiotID
	for _, id := range riotIDs {
		if regionByPUUID[id.PUUID] == domain.RegionEUW {
			euwAccounts = append(euwAccounts, id)
		}
	}

	slugs := s.resolveLolprosSlugs(ctx, euwAccounts)
	return s.accountRepo.UpsertLolprosSlugs(ctx, tx, slugs)
}

// resolveSummoners looks up every key concurrently. Any failure aborts the
// cycle; a dodge must not be inserted without its identity row.
func (s *EnrichmentService) resolveSummoners(ctx context.Context, keys []domain.PlayerKey) ([]domain.Summoner, error) {
	summoners := make([]domain.Summoner, len(keys))
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	for i, key := range keys {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.riot.GetSummonerByID(ctx, key.SummonerID, key.Region)
			if err != nil {
				errs[i] = fmt.Errorf("failed to resolve summoner %s (%s): %w", key.SummonerID, key.Region, err)
				return
			}
			summoners[i] = domain.Summoner{
				PUUID:         resp.PUUID,
				SummonerID:    resp.ID,
				Region:        key.Region,
				AccountID:     resp.AccountID,
				ProfileIconID: resp.ProfileIconID,
				SummonerLevel: resp.SummonerLevel,
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return summoners, nil
}

// resolveAccounts looks up riot ids for each summoner. Failures are logged
// and skipped; the dodge still goes in with whatever identity is on record.
func (s *EnrichmentService) resolveAccounts(ctx context.Context, summoners []domain.Summoner) []domain.RiotID {
	results := make([]*domain.RiotID, len(summoners))

	s.logger.Info().Int("count", len(summoners)).Msg("resolving account data")

	var wg sync.WaitGroup
	for i, summoner := range summoners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.riot.GetAccountByPUUID(ctx, summoner.PUUID)
			if err != nil {
				s.logger.Error().Err(err).Str("puuid", summoner.PUUID).Msg("failed to resolve account, skipping")
				return
			}
			results[i] = &domain.RiotID{
				PUUID:    resp.PUUID,
				GameName: resp.GameName,
				TagLine:  resp.TagLine,
			}
		}()
	}
	wg.Wait()

	var riotIDs []domain.RiotID
	for _, result := range results {
		if result != nil {
			riotIDs = append(riotIDs, *result)
		}
	}
	return riotIDs
}

// resolveLolprosSlugs is fully best-effort: each lookup gets its own short
// deadline and failures only produce log lines.
func (s *EnrichmentService) resolveLolprosSlugs(ctx context.Context, accounts []domain.RiotID) map[string]string {
	results := make([]SlugResult, len(accounts))

	var wg sync.WaitGroup
	for i, account := range accounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, s.lolprosTimeout)
			defer cancel()

			slug, err := s.lolpros.GetSlug(lookupCtx, account.GameName, account.TagLine)
			switch {
			case err != nil:
				results[i] = SlugResult{PUUID: account.PUUID, Outcome: SlugFailed, Err: err}
			case slug == "":
				results[i] = SlugResult{PUUID: account.PUUID, Outcome: SlugNone}
			default:
				results[i] = SlugResult{PUUID: account.PUUID, Outcome: SlugFound, Slug: slug}
			}
		}()
	}
	wg.Wait()

	slugs := make(map[string]string)
	for i, result := range results {
		switch result.Outcome {
		case SlugFound:
			s.logger.Info().
				Str("game_name", accounts[i].GameName).
				Str("tag_line", accounts[i].TagLine).
				Str("slug", result.Slug).
				Msg("got lolpros slug")
			slugs[result.PUUID] = result.Slug
		case SlugFailed:
			s.logger.Error().Err(result.Err).
				Str("game_name", accounts[i].GameName).
				Str("tag_line", accounts[i].TagLine).
				Msg("failed to fetch lolpros slug")
		}
	}
	return slugs
}
