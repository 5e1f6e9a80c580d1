package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteStatusTransitions_ForwardPath(t *testing.T) {
	path := []SiteStatus{SiteReported, SiteVerified, SiteCleanupScheduled, SiteInProgress, SiteCleaned}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, IsSiteTransitionAllowed(path[i], path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}
}

func TestSiteStatusTransitions_DisputedReachableFromEverywhere(t *testing.T) {
	for _, from := range []SiteStatus{SiteReported, SiteVerified, SiteCleanupScheduled, SiteInProgress, SiteCleaned} {
		assert.True(t, IsSiteTransitionAllowed(from, SiteDisputed),
			"expected %s -> DISPUTED to be allowed", from)
	}
}

func TestSiteStatusTransitions_DisputedRecovery(t *testing.T) {
	assert.True(t, IsSiteTransitionAllowed(SiteDisputed, SiteReported))
	assert.True(t, IsSiteTransitionAllowed(SiteDisputed, SiteVerified))
	assert.False(t, IsSiteTransitionAllowed(SiteDisputed, SiteCleaned))
	assert.False(t, IsSiteTransitionAllowed(SiteDisputed, SiteInProgress))
}

func TestSiteStatusTransitions_NoSkipping(t *testing.T) {
	assert.False(t, IsSiteTransitionAllowed(SiteReported, SiteCleaned))
	assert.False(t, IsSiteTransitionAllowed(SiteVerified, SiteInProgress))
	assert.False(t, IsSiteTransitionAllowed(SiteCleaned, SiteReported))
}
