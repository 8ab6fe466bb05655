package constants

import "time"

const (
	// CycleTimeout bounds one full fetch+reconcile+write transaction.
	CycleTimeout = 30 * time.Second
	// RegionTimeout bounds a single region's three-tier ladder fetch.
	RegionTimeout = 10 * time.Second
	// LolprosTimeout bounds a single lolpros.gg slug lookup.
	LolprosTimeout = 5 * time.Second

	ExternalAPITimeout = 10 * time.Second
)

const (
	// DecayLPLoss is the fixed inactivity-decay penalty. An LP drop of
	// exactly this size with no games played is decay, not a dodge.
	DecayLPLoss = 75

	// ChunkSize bounds a single upsert/insert statement. Season resets
	// demote tens of thousands of players at once.
	ChunkSize = 20000
)

const (
	DBMaxConns        = 20
	DBMinConns        = 2
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
