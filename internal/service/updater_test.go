package service

import (
	"dodgetracker/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchedRegions(t *testing.T) {
	t.Run("no errored regions keeps all", func(t *testing.T) {
		assert.Equal(t, domain.SupportedRegions, fetchedRegions(nil))
	})

	t.Run("errored regions get no update marker", func(t *testing.T) {
		regions := fetchedRegions([]domain.Region{domain.RegionKR, domain.RegionOCE})
		assert.Equal(t, []domain.Region{domain.RegionEUW, domain.RegionEUNE, domain.RegionNA}, regions)
	})

	t.Run("all errored yields none", func(t *testing.T) {
		assert.Empty(t, fetchedRegions(domain.SupportedRegions))
	})
}
