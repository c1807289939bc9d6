package issues_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"civix-api/internal/domain/issues"
)

func TestStatusValid(t *testing.T) {
	for _, s := range []issues.Status{issues.StatusPending, issues.StatusInProgress, issues.StatusResolved, issues.StatusRejected} {
		assert.True(t, s.Valid(), s)
	}
	for _, s := range []issues.Status{"", "closed", "PENDING"} {
		assert.False(t, s.Valid(), s)
	}
}
