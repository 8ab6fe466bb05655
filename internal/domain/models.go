package domain

import (
	"time"
)

// Region is a Riot platform routing value for a ranked ladder.
type Region string

const (
	RegionEUW  Region = "EUW1"
	RegionEUNE Region = "EUN1"
	RegionNA   Region = "NA1"
	RegionKR   Region = "KR"
	RegionOCE  Region = "OC1"
)

// SupportedRegions lists every ladder polled each cycle.
var SupportedRegions = []Region{RegionEUW, RegionEUNE, RegionNA, RegionKR, RegionOCE}

// Tier is one of the three apex ranked tiers.
type Tier string

const (
	TierMaster      Tier = "MASTER"
	TierGrandmaster Tier = "GRANDMASTER"
	TierChallenger  Tier = "CHALLENGER"
)

// PlayerKey identifies a ladder participant. A player transferring region is
// a distinct identity; the composite struct key avoids the delimiter
// collisions a concatenated string key would allow.
type PlayerKey struct {
	SummonerID string
	Region     Region
}

// LadderEntry is one player's row in a freshly fetched apex ladder.
type LadderEntry struct {
	SummonerID   string
	SummonerName string
	LeaguePoints int
	Wins         int
	Losses       int
	RankTier     Tier
	Region       Region
}

// Key returns the entry's composite identity.
func (e LadderEntry) Key() PlayerKey {
	return PlayerKey{SummonerID: e.SummonerID, Region: e.Region}
}

// PlayerState is the previously persisted view of an apex tier player.
type PlayerState struct {
	LP        int
	Wins      int
	Losses    int
	UpdatedAt time.Time
	Region    Region
}

// Dodge is a detected queue dodge: an LP drop with no game played.
type Dodge struct {
	SummonerID string
	Region     Region
	RankTier   Tier
	LPBefore   int
	LPAfter    int
	AtWins     int
	AtLosses   int
}

func (d Dodge) Key() PlayerKey {
	return PlayerKey{SummonerID: d.SummonerID, Region: d.Region}
}

// LPLost is the dodge penalty magnitude.
func (d Dodge) LPLost() int {
	return d.LPBefore - d.LPAfter
}

// Promotion records a player entering (or re-entering) the apex tiers.
type Promotion struct {
	SummonerID string
	Region     Region
	AtWins     int
	AtLosses   int
}

// Demotion records a player dropping out of the apex tiers.
type Demotion struct {
	SummonerID string
	Region     Region
	AtWins     int
	AtLosses   int
}

// TierCounts holds the per-tier player counts for one region's snapshot,
// captured only when all three tier calls succeeded.
type TierCounts struct {
	Region      Region
	Master      int
	Grandmaster int
	Challenger  int
}

// Summoner is the account-identity enrichment for a dodge's player.
type Summoner struct {
	PUUID         string
	SummonerID    string
	Region        Region
	AccountID     string
	ProfileIconID int
	SummonerLevel int
}

// RiotID is the game name + tag line behind a PUUID.
type RiotID struct {
	PUUID    string
	GameName string
	TagLine  string
}
