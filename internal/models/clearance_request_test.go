// internal/models/clearance_request_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []ClearanceStatus{
		ClearanceStatusPending,
		ClearanceStatusApproved,
		ClearanceStatusRejected,
		ClearanceStatusNegotiating,
		ClearanceStatusFinalized,
	}

	allowed := map[ClearanceStatus][]ClearanceStatus{
		ClearanceStatusPending:     {ClearanceStatusApproved, ClearanceStatusRejected, ClearanceStatusNegotiating},
		ClearanceStatusNegotiating: {ClearanceStatusApproved, ClearanceStatusRejected, ClearanceStatusNegotiating},
		ClearanceStatusApproved:    {ClearanceStatusFinalized, ClearanceStatusNegotiating},
		ClearanceStatusRejected:    {},
		ClearanceStatusFinalized:   {},
	}

	for _, from := range all {
		for _, to := range all {
			req := &ClearanceRequest{Status: from}

			var want bool
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}

			assert.Equal(t, want, req.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, ClearanceStatusRejected.Terminal())
	assert.True(t, ClearanceStatusFinalized.Terminal())
	assert.False(t, ClearanceStatusPending.Terminal())
	assert.False(t, ClearanceStatusApproved.Terminal())
	assert.False(t, ClearanceStatusNegotiating.Terminal())
}

func TestStatusValid(t *testing.T) {
	assert.True(t, ClearanceStatusPending.Valid())
	assert.False(t, ClearanceStatus("cancelled").Valid())
}
