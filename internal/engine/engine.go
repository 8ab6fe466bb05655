package engine

import (
	"dodgetracker/internal/domain"
	"time"
)

// Options tunes classification.
type Options struct {
	// DecayLPLoss is the exact LP drop that marks inactivity decay.
	DecayLPLoss int
}

// Result is the full classification of one old-vs-new snapshot pair.
type Result struct {
	Dodges     []domain.Dodge
	Promotions []domain.Promotion
	Demotions  []domain.Demotion

	// UnknownPlayers counts new-snapshot keys with no persisted state.
	// Diagnostic only; those keys surface as promotions.
	UnknownPlayers int
}

// Reconcile classifies the differences between the persisted state and a
// fresh ladder snapshot. It is a pure function: same inputs, same outputs,
// no I/O. Regions whose fetch failed are excluded from demotion scanning so
// a timeout is never read as a mass demotion.
func Reconcile(
	oldState map[domain.PlayerKey]domain.PlayerState,
	newState map[domain.PlayerKey]domain.LadderEntry,
	demotionHistory map[domain.PlayerKey][]time.Time,
	erroredRegions []domain.Region,
	opts Options,
) Result {
	dodges, unknown := Dodges(oldState, newState, opts)
	return Result{
		Dodges:         dodges,
		Promotions:     Promotions(oldState, newState, demotionHistory),
		Demotions:      Demotions(oldState, newState, demotionHistory, erroredRegions),
		UnknownPlayers: unknown,
	}
}

// Dodges finds every player whose LP dropped with no game played. A drop of
// exactly the decay constant is inactivity decay, not a dodge. The second
// return value counts new-snapshot keys with no persisted state.
func Dodges(
	oldState map[domain.PlayerKey]domain.PlayerState,
	newState map[domain.PlayerKey]domain.LadderEntry,
	opts Options,
) ([]domain.Dodge, int) {
	var dodges []domain.Dodge
	notFound := 0

	for key, entry := range newState {
		old, ok := oldState[key]
		if !ok {
			notFound++
			continue
		}

		newGames := entry.Wins + entry.Losses
		oldGames := old.Wins + old.Losses
		if entry.LeaguePoints < old.LP &&
			newGames == oldGames &&
			old.LP-entry.LeaguePoints != opts.DecayLPLoss {
			dodges = append(dodges, domain.Dodge{
				SummonerID: entry.SummonerID,
				Region:     entry.Region,
				RankTier:   entry.RankTier,
				LPBefore:   old.LP,
				LPAfter:    entry.LeaguePoints,
				AtWins:     entry.Wins,
				AtLosses:   entry.Losses,
			})
		}
	}

	return dodges, notFound
}

// Promotions finds players entering the apex tiers: either absent from the
// persisted state entirely, or persisted but with a demotion on record newer
// than the row's last touch (demoted, then re-promoted before the row was
// refreshed). Each qualifying demotion timestamp emits its own promotion;
// that duplicate emission matches the tracker's historical behavior and is
// kept until the intent is settled.
func Promotions(
	oldState map[domain.PlayerKey]domain.PlayerState,
	newState map[domain.PlayerKey]domain.LadderEntry,
	demotionHistory map[domain.PlayerKey][]time.Time,
) []domain.Promotion {
	var promotions []domain.Promotion

	for key, entry := range newState {
		old, ok := oldState[key]
		if !ok {
			promotions = append(promotions, domain.Promotion{
				SummonerID: entry.SummonerID,
				Region:     entry.Region,
				AtWins:     entry.Wins,
				AtLosses:   entry.Losses,
			})
			continue
		}

		for _, demotedAt := range demotionHistory[key] {
			if demotedAt.After(old.UpdatedAt) {
				promotions = append(promotions, domain.Promotion{
					SummonerID: entry.SummonerID,
					Region:     entry.Region,
					AtWins:     entry.Wins,
					AtLosses:   entry.Losses,
				})
			}
		}
	}

	return promotions
}

// Demotions finds persisted players missing from the new snapshot. Keys in
// errored regions are skipped outright, and a player whose most recent
// recorded demotion already postdates the row's last touch is not demoted
// again.
func Demotions(
	oldState map[domain.PlayerKey]domain.PlayerState,
	newState map[domain.PlayerKey]domain.LadderEntry,
	demotionHistory map[domain.PlayerKey][]time.Time,
	erroredRegions []domain.Region,
) []domain.Demotion {
	errored := make(map[domain.Region]bool, len(erroredRegions))
	for _, region := range erroredRegions {
		errored[region] = true
	}

	var demotions []domain.Demotion

	for key, old := range oldState {
		if errored[old.Region] {
			continue
		}
		if _, ok := newState[key]; ok {
			continue
		}
		if demotedSince(demotionHistory[key], old.UpdatedAt) {
			continue
		}

		demotions = append(demotions, domain.Demotion{
			SummonerID: key.SummonerID,
			Region:     key.Region,
			AtWins:     old.Wins,
			AtLosses:   old.Losses,
		})
	}

	return demotions
}

func demotedSince(history []time.Time, updatedAt time.Time) bool {
	for _, demotedAt := range history {
		if demotedAt.After(updatedAt) {
			return true
		}
	}
	return false
}
