package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

func TestListPolicy_Status(t *testing.T) {
	p := DefaultListPolicy()
	tests := []struct {
		count int
		want  ListCountStatus
	}{
		{0, StatusNormal},
		{10, StatusNormal},
		{11, StatusAboveRecommended},
		{15, StatusWarning},
		{19, StatusWarning},
		{20, StatusLimitReached},
		{25, StatusLimitReached},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Status(tt.count), "count %d", tt.count)
	}
	assert.False(t, StatusLimitReached.CanCreateList())
	assert.True(t, StatusWarning.RequiresNotification())
	assert.False(t, StatusAboveRecommended.RequiresNotification())
	assert.Equal(t, 0, p.AvailableSlots(30))
	assert.Equal(t, 5, p.AvailableSlots(15))
}

func TestListPolicy_CheckCanCreate(t *testing.T) {
	p := DefaultListPolicy()
	assert.NoError(t, p.CheckCanCreate(19))

	err := p.CheckCanCreate(20)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeBusinessRule))
	assert.Equal(t, ReasonListCreation, apperrors.ReasonOf(err))
}

func TestListPolicy_CheckTitleCarriesLength(t *testing.T) {
	p := DefaultListPolicy()
	assert.NoError(t, p.CheckTitle(strings.Repeat("가", 100)))

	err := p.CheckTitle(strings.Repeat("a", 101))
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ReasonTitleLength, appErr.Reason)
	assert.Equal(t, 101, appErr.Context["length"])
}

func TestCardPolicy(t *testing.T) {
	p := DefaultCardPolicy()
	assert.NoError(t, p.CheckCanAdd(99))
	assert.Equal(t, ReasonListCardLimit, apperrors.ReasonOf(p.CheckCanAdd(100)))
	assert.Error(t, p.CheckTitle(strings.Repeat("x", 201)))
	assert.NoError(t, p.CheckDescription(strings.Repeat("x", 2000)))
	assert.Equal(t, ReasonDescriptionLength, apperrors.ReasonOf(p.CheckDescription(strings.Repeat("x", 2001))))
}

func TestFromConfig_KeepsDefaultsForUnset(t *testing.T) {
	lp, cp := FromConfig(config.PolicyConfig{MaxListsPerBoard: 5, MaxCardTitleLength: 50})
	assert.Equal(t, 5, lp.MaxLists)
	assert.Equal(t, 10, lp.RecommendedLists)
	assert.Equal(t, 50, cp.MaxTitleLength)
	assert.Equal(t, 100, cp.MaxCardsPerList)
}
