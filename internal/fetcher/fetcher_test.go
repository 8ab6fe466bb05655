package fetcher

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/riot"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeagueAPI struct {
	lists map[domain.Region]map[domain.Tier]*riot.LeagueList
	errs  map[domain.Region]map[domain.Tier]error
}

func (f *fakeLeagueAPI) GetLeague(_ context.Context, region domain.Region, tier domain.Tier) (*riot.LeagueList, error) {
	if err := f.errs[region][tier]; err != nil {
		return nil, err
	}
	if list := f.lists[region][tier]; list != nil {
		return list, nil
	}
	return &riot.LeagueList{Tier: string(tier)}, nil
}

func newTestFetcher(api LeagueAPI) *Fetcher {
	return NewFetcher(api, &config.Config{RegionTimeout: time.Second}, zerolog.Nop())
}

func leagueList(tier domain.Tier, summonerIDs ...string) *riot.LeagueList {
	list := &riot.LeagueList{Tier: string(tier)}
	for _, id := range summonerIDs {
		list.Entries = append(list.Entries, riot.LeagueEntry{
			SummonerID:   id,
			SummonerName: id,
			LeaguePoints: 100,
			Wins:         10,
			Losses:       10,
		})
	}
	return list
}

func allTierErrors(err error) map[domain.Tier]error {
	return map[domain.Tier]error{
		domain.TierMaster:      err,
		domain.TierGrandmaster: err,
		domain.TierChallenger:  err,
	}
}

func TestFetchMergesAllRegions(t *testing.T) {
	api := &fakeLeagueAPI{
		lists: map[domain.Region]map[domain.Tier]*riot.LeagueList{
			domain.RegionEUW: {
				domain.TierMaster:     leagueList(domain.TierMaster, "m1", "m2"),
				domain.TierChallenger: leagueList(domain.TierChallenger, "c1"),
			},
			domain.RegionKR: {
				domain.TierMaster: leagueList(domain.TierMaster, "m1"),
			},
		},
	}

	snapshot, err := newTestFetcher(api).Fetch(context.Background())
	require.NoError(t, err)

	assert.Empty(t, snapshot.ErroredRegions)
	// Same summoner id in two regions stays two distinct keys.
	assert.Len(t, snapshot.Players, 4)

	euwMaster := snapshot.Players[domain.PlayerKey{SummonerID: "m1", Region: domain.RegionEUW}]
	assert.Equal(t, domain.TierMaster, euwMaster.RankTier)
	assert.Equal(t, domain.RegionEUW, euwMaster.Region)

	krMaster, ok := snapshot.Players[domain.PlayerKey{SummonerID: "m1", Region: domain.RegionKR}]
	require.True(t, ok)
	assert.Equal(t, domain.RegionKR, krMaster.Region)

	// One TierCounts per region, all regions fetched cleanly.
	require.Len(t, snapshot.Counts, len(domain.SupportedRegions))
}

func TestFetchIsolatesErroredRegion(t *testing.T) {
	api := &fakeLeagueAPI{
		lists: map[domain.Region]map[domain.Tier]*riot.LeagueList{
			domain.RegionEUW: {
				domain.TierMaster: leagueList(domain.TierMaster, "euw1"),
			},
		},
		errs: map[domain.Region]map[domain.Tier]error{
			domain.RegionKR: allTierErrors(errors.New("timeout")),
		},
	}

	snapshot, err := newTestFetcher(api).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Region{domain.RegionKR}, snapshot.ErroredRegions)
	_, ok := snapshot.Players[domain.PlayerKey{SummonerID: "euw1", Region: domain.RegionEUW}]
	assert.True(t, ok)

	for _, counts := range snapshot.Counts {
		assert.NotEqual(t, domain.RegionKR, counts.Region)
	}
}

func TestFetchToleratesPartialTierFailure(t *testing.T) {
	api := &fakeLeagueAPI{
		lists: map[domain.Region]map[domain.Tier]*riot.LeagueList{
			domain.RegionNA: {
				domain.TierMaster:      leagueList(domain.TierMaster, "na-m"),
				domain.TierGrandmaster: leagueList(domain.TierGrandmaster, "na-gm"),
			},
		},
		errs: map[domain.Region]map[domain.Tier]error{
			domain.RegionNA: {domain.TierChallenger: errors.New("503")},
		},
	}

	snapshot, err := newTestFetcher(api).Fetch(context.Background())
	require.NoError(t, err)

	// Two of three tiers landed, so the region is not errored...
	assert.Empty(t, snapshot.ErroredRegions)
	assert.Contains(t, snapshot.Players, domain.PlayerKey{SummonerID: "na-m", Region: domain.RegionNA})
	assert.Contains(t, snapshot.Players, domain.PlayerKey{SummonerID: "na-gm", Region: domain.RegionNA})

	// ...but its counts are withheld to keep the count history unskewed.
	for _, counts := range snapshot.Counts {
		assert.NotEqual(t, domain.RegionNA, counts.Region)
	}
}

func TestFetchCountsMatchTierSizes(t *testing.T) {
	api := &fakeLeagueAPI{
		lists: map[domain.Region]map[domain.Tier]*riot.LeagueList{
			domain.RegionOCE: {
				domain.TierMaster:      leagueList(domain.TierMaster, "a", "b", "c"),
				domain.TierGrandmaster: leagueList(domain.TierGrandmaster, "d", "e"),
				domain.TierChallenger:  leagueList(domain.TierChallenger, "f"),
			},
		},
	}

	snapshot, err := newTestFetcher(api).Fetch(context.Background())
	require.NoError(t, err)

	var oce *domain.TierCounts
	for i := range snapshot.Counts {
		if snapshot.Counts[i].Region == domain.RegionOCE {
			oce = &snapshot.Counts[i]
		}
	}
	require.NotNil(t, oce)
	assert.Equal(t, 3, oce.Master)
	assert.Equal(t, 2, oce.Grandmaster)
	assert.Equal(t, 1, oce.Challenger)
}
