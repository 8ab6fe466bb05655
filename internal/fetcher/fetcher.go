package fetcher

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/riot"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LeagueAPI is the slice of the Riot client the fetcher needs.
type LeagueAPI interface {
	GetLeague(ctx context.Context, region domain.Region, tier domain.Tier) (*riot.LeagueList, error)
}

// Fetcher pulls the apex ladders of every supported region concurrently.
type Fetcher struct {
	riot          LeagueAPI
	regionTimeout time.Duration
	logger        zerolog.Logger
}

func NewFetcher(riotClient LeagueAPI, cfg *config.Config, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		riot:          riotClient,
		regionTimeout: cfg.RegionTimeout,
		logger:        logger,
	}
}

// Snapshot is one cycle's fetched ladder state. Regions that failed
// entirely are listed in ErroredRegions and contribute no players; a failed
// region must never read as a mass demotion.
type Snapshot struct {
	Players        map[domain.PlayerKey]domain.LadderEntry
	Counts         []domain.TierCounts
	ErroredRegions []domain.Region
}

type regionResult struct {
	entries []domain.LadderEntry
	counts  *domain.TierCounts
	err     error
}

// Fetch retrieves all supported regions' ladders, one bounded fan-out leg
// per region. A region's failure is isolated; the remaining regions still
// contribute to the snapshot.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	results := make([]regionResult, len(domain.SupportedRegions))

	g, gCtx := errgroup.WithContext(ctx)
	for i, region := range domain.SupportedRegions {
		g.Go(func() error {
			regionCtx, cancel := context.WithTimeout(gCtx, f.regionTimeout)
			defer cancel()
			results[i] = f.fetchRegion(regionCtx, region)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Players: make(map[domain.PlayerKey]domain.LadderEntry),
	}

	for i, region := range domain.SupportedRegions {
		result := results[i]
		if result.err != nil {
			f.logger.Error().Err(result.err).Str("region", string(region)).Msg("region errored, skipping")
			snapshot.ErroredRegions = append(snapshot.ErroredRegions, region)
			continue
		}
		for _, entry := range result.entries {
			snapshot.Players[entry.Key()] = entry
		}
		if result.counts != nil {
			snapshot.Counts = append(snapshot.Counts, *result.counts)
		}
	}

	return snapshot, nil
}

type tierResult struct {
	list *riot.LeagueList
	err  error
}

var apexTiers = []domain.Tier{domain.TierMaster, domain.TierGrandmaster, domain.TierChallenger}

// fetchRegion fetches the three apex tiers concurrently. A single tier
// failing is tolerated and logged; the region errors only when every tier
// call failed. Tier counts are captured only on a clean three-for-three
// fetch so a partial snapshot never skews the count history.
func (f *Fetcher) fetchRegion(ctx context.Context, region domain.Region) regionResult {
	results := make([]tierResult, len(apexTiers))

	var wg sync.WaitGroup
	for i, tier := range apexTiers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := f.riot.GetLeague(ctx, region, tier)
			results[i] = tierResult{list: list, err: err}
		}()
	}
	wg.Wait()

	var entries []domain.LadderEntry
	var firstErr error
	failed := 0

	for i, tier := range apexTiers {
		result := results[i]
		if result.err != nil {
			failed++
			if firstErr == nil {
				firstErr = result.err
			}
			f.logger.Warn().Err(result.err).
				Str("region", string(region)).
				Str("tier", string(tier)).
				Msg("tier fetch failed")
			continue
		}
		for _, e := range result.list.Entries {
			entries = append(entries, domain.LadderEntry{
				SummonerID:   e.SummonerID,
				SummonerName: e.SummonerName,
				LeaguePoints: e.LeaguePoints,
				Wins:         e.Wins,
				Losses:       e.Losses,
				RankTier:     tier,
				Region:       region,
			})
		}
	}

	if failed == len(apexTiers) {
		return regionResult{err: firstErr}
	}

	var counts *domain.TierCounts
	if failed == 0 {
		counts = &domain.TierCounts{
			Region:      region,
			Master:      len(results[0].list.Entries),
			Grandmaster: len(results[1].list.Entries),
			Challenger:  len(results[2].list.Entries),
		}
	}

	f.logger.Debug().
		Str("region", string(region)).
		Int("players", len(entries)).
		Int("failed_tiers", failed).
		Msg("region fetched")

	return regionResult{entries: entries, counts: counts}
}
