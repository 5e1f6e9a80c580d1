package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildReportNumber(t *testing.T) {
	createdAt := time.Date(2025, 10, 23, 9, 15, 0, 0, time.UTC)

	number := BuildReportNumber("abcd1234-0000-0000-0000-000000000000", createdAt)
	assert.Equal(t, "R-25-ABCD", number)
}

func TestBuildReportNumber_Deterministic(t *testing.T) {
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	first := BuildReportNumber("f00dcafe-1111-2222-3333-444444444444", createdAt)
	second := BuildReportNumber("f00dcafe-1111-2222-3333-444444444444", createdAt)
	assert.Equal(t, first, second)
	assert.Equal(t, "R-24-F00D", first)
}

func TestBuildReportNumber_ShortID(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "R-25-AB", BuildReportNumber("ab", createdAt))
}

func TestReportStatusTransitions_Allowed(t *testing.T) {
	allowed := [][2]ReportStatus{
		{ReportNew, ReportInReview},
		{ReportNew, ReportApproved},
		{ReportNew, ReportDeleted},
		{ReportInReview, ReportApproved},
		{ReportInReview, ReportDeleted},
		{ReportApproved, ReportDeleted},
	}

	for _, pair := range allowed {
		assert.True(t, IsReportTransitionAllowed(pair[0], pair[1]),
			"expected %s -> %s to be allowed", pair[0], pair[1])
	}
}

func TestReportStatusTransitions_Rejected(t *testing.T) {
	rejected := [][2]ReportStatus{
		{ReportInReview, ReportNew},
		{ReportApproved, ReportNew},
		{ReportApproved, ReportInReview},
		{ReportDeleted, ReportNew},
		{ReportDeleted, ReportInReview},
		{ReportDeleted, ReportApproved},
	}

	for _, pair := range rejected {
		assert.False(t, IsReportTransitionAllowed(pair[0], pair[1]),
			"expected %s -> %s to be rejected", pair[0], pair[1])
	}
}

func TestReportStatusTransitions_DeletedIsTerminal(t *testing.T) {
	assert.Empty(t, AllowedReportTransitions(ReportDeleted))
}
