package service

import (
	"context"
	"dodgetracker/internal/domain"
	"dodgetracker/internal/riot"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountAPI struct {
	summonerErrs map[string]error
	accountErrs  map[string]error
}

func (f *fakeAccountAPI) GetSummonerByID(_ context.Context, summonerID string, _ domain.Region) (*riot.SummonerResponse, error) {
	if err := f.summonerErrs[summonerID]; err != nil {
		return nil, err
	}
	return &riot.SummonerResponse{
		ID:            summonerID,
		AccountID:     "acc-" + summonerID,
		PUUID:         "puuid-" + summonerID,
		ProfileIconID: 1234,
		SummonerLevel: 500,
	}, nil
}

func (f *fakeAccountAPI) GetAccountByPUUID(_ context.Context, puuid string) (*riot.AccountResponse, error) {
	if err := f.accountErrs[puuid]; err != nil {
		return nil, err
	}
	return &riot.AccountResponse{PUUID: puuid, GameName: "name-" + puuid, TagLine: "EUW"}, nil
}

type fakeSlugAPI struct {
	slugs map[string]string
	errs  map[string]error
}

func (f *fakeSlugAPI) GetSlug(_ context.Context, gameName, _ string) (string, error) {
	if err := f.errs[gameName]; err != nil {
		return "", err
	}
	return f.slugs[gameName], nil
}

func newTestEnrichment(riotAPI AccountAPI, slugAPI SlugAPI) *EnrichmentService {
	return &EnrichmentService{
		riot:           riotAPI,
		lolpros:        slugAPI,
		lolprosTimeout: time.Second,
		logger:         zerolog.Nop(),
	}
}

func TestResolveSummoners(t *testing.T) {
	keys := []domain.PlayerKey{
		{SummonerID: "s1", Region: domain.RegionEUW},
		{SummonerID: "s2", Region: domain.RegionKR},
	}

	t.Run("resolves every key", func(t *testing.T) {
		svc := newTestEnrichment(&fakeAccountAPI{}, &fakeSlugAPI{})

		summoners, err := svc.resolveSummoners(context.Background(), keys)
		require.NoError(t, err)
		require.Len(t, summoners, 2)
		assert.Equal(t, "puuid-s1", summoners[0].PUUID)
		assert.Equal(t, domain.RegionEUW, summoners[0].Region)
		assert.Equal(t, domain.RegionKR, summoners[1].Region)
	})

	t.Run("any failure is fatal", func(t *testing.T) {
		svc := newTestEnrichment(&fakeAccountAPI{
			summonerErrs: map[string]error{"s2": errors.New("404")},
		}, &fakeSlugAPI{})

		_, err := svc.resolveSummoners(context.Background(), keys)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "s2")
	})
}

func TestResolveAccountsSkipsFailures(t *testing.T) {
	svc := newTestEnrichment(&fakeAccountAPI{
		accountErrs: map[string]error{"p2": errors.New("rate limited")},
	}, &fakeSlugAPI{})

	summoners := []domain.Summoner{
		{PUUID: "p1", Region: domain.RegionEUW},
		{PUUID: "p2", Region: domain.RegionEUW},
		{PUUID: "p3", Region: domain.RegionNA},
	}

	riotIDs := svc.resolveAccounts(context.Background(), summoners)

	require.Len(t, riotIDs, 2)
	puuids := []string{riotIDs[0].PUUID, riotIDs[1].PUUID}
	assert.ElementsMatch(t, []string{"p1", "p3"}, puuids)
}

func TestResolveLolprosSlugs(t *testing.T) {
	svc := newTestEnrichment(&fakeAccountAPI{}, &fakeSlugAPI{
		slugs: map[string]string{"pro": "pro-slug"},
		errs:  map[string]error{"broken": errors.New("timeout")},
	})

	accounts := []domain.RiotID{
		{PUUID: "p1", GameName: "pro", TagLine: "EUW"},
		{PUUID: "p2", GameName: "nobody", TagLine: "EUW"},
		{PUUID: "p3", GameName: "broken", TagLine: "EUW"},
	}

	slugs := svc.resolveLolprosSlugs(context.Background(), accounts)

	// Found slugs are kept; "no profile" and "lookup failed" both drop out.
	assert.Equal(t, map[string]string{"p1": "pro-slug"}, slugs)
}
