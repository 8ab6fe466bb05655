package riot

import (
	"context"
	"dodgetracker/internal/config"
	"dodgetracker/internal/domain"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Client talks to the Riot ranked-ladder and account APIs.
type Client struct {
	apiKey string
	client *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// LeagueList is one tier's full ladder for a region.
type LeagueList struct {
	Tier    string        `json:"tier"`
	Entries []LeagueEntry `json:"entries"`
}

type LeagueEntry struct {
	SummonerID   string `json:"summonerId"`
	SummonerName string `json:"summonerName"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

type SummonerResponse struct {
	ID            string `json:"id"`
	AccountID     string `json:"accountId"`
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int    `json:"summonerLevel"`
}

type AccountResponse struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

var tierPaths = map[domain.Tier]string{
	domain.TierMaster:      "masterleagues",
	domain.TierGrandmaster: "grandmasterleagues",
	domain.TierChallenger:  "challengerleagues",
}

// GetLeague fetches the full ladder for one apex tier in one region.
func (c *Client) GetLeague(ctx context.Context, region domain.Region, tier domain.Tier) (*LeagueList, error) {
	path, ok := tierPaths[tier]
	if !ok {
		return nil, fmt.Errorf("unknown tier: %s", tier)
	}
	url := fmt.Sprintf("https://%s/lol/league/v4/%s/by-queue/RANKED_SOLO_5x5", platformHost(region), path)
	return doRequest[LeagueList](ctx, c, url)
}

// GetSummonerByID resolves a summoner id to its account identity.
func (c *Client) GetSummonerByID(ctx context.Context, summonerID string, region domain.Region) (*SummonerResponse, error) {
	url := fmt.Sprintf("https://%s/lol/summoner/v4/summoners/%s", platformHost(region), summonerID)
	return doRequest[SummonerResponse](ctx, c, url)
}

// GetAccountByPUUID resolves a puuid to its riot id. Routed through the
// europe cluster; account data is replicated globally.
func (c *Client) GetAccountByPUUID(ctx context.Context, puuid string) (*AccountResponse, error) {
	url := fmt.Sprintf("https://europe.api.riotgames.com/riot/account/v1/accounts/by-puuid/%s", puuid)
	return doRequest[AccountResponse](ctx, c, url)
}

func platformHost(region domain.Region) string {
	return fmt.Sprintf("%s.api.riotgames.com", strings.ToLower(string(region)))
}

func doRequest[T any](ctx context.Context, client *Client, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
