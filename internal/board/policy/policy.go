// Package policy holds the list and card limits enforced when boards grow.
package policy

import (
	"fmt"
	"unicode/utf8"

	"github.com/dongwonkwak/boardly-sub001/internal/common/config"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// Detail codes carried in AppError.Reason.
const (
	ReasonListCreation      = "LIST_CREATION_POLICY_VIOLATION"
	ReasonTitleLength       = "TITLE_LENGTH_EXCEEDED"
	ReasonDescriptionLength = "DESCRIPTION_LENGTH_EXCEEDED"
	ReasonListCardLimit     = "LIST_CARD_LIMIT_EXCEEDED"
)

// ListCountStatus grades how full a board is.
type ListCountStatus string

const (
	StatusNormal           ListCountStatus = "NORMAL"
	StatusAboveRecommended ListCountStatus = "ABOVE_RECOMMENDED"
	StatusWarning          ListCountStatus = "WARNING"
	StatusLimitReached     ListCountStatus = "LIMIT_REACHED"
)

// CanCreateList reports whether another list may be added in this status.
func (s ListCountStatus) CanCreateList() bool {
	return s != StatusLimitReached
}

// RequiresNotification reports whether the client should warn the user.
func (s ListCountStatus) RequiresNotification() bool {
	return s == StatusWarning || s == StatusLimitReached
}

// ListPolicy limits lists per board and list title length.
type ListPolicy struct {
	MaxLists         int
	RecommendedLists int
	WarningThreshold int
	MaxTitleLength   int
}

// CardPolicy limits cards per list and card text length.
type CardPolicy struct {
	MaxCardsPerList      int
	MaxTitleLength       int
	MaxDescriptionLength int
}

// DefaultListPolicy returns the stock list limits.
func DefaultListPolicy() ListPolicy {
	return ListPolicy{MaxLists: 20, RecommendedLists: 10, WarningThreshold: 15, MaxTitleLength: 100}
}

// DefaultCardPolicy returns the stock card limits.
func DefaultCardPolicy() CardPolicy {
	return CardPolicy{MaxCardsPerList: 100, MaxTitleLength: 200, MaxDescriptionLength: 2000}
}

// FromConfig builds both policies, keeping defaults for unset values.
func FromConfig(cfg config.PolicyConfig) (ListPolicy, CardPolicy) {
	lp := DefaultListPolicy()
	setIfPositive(&lp.MaxLists, cfg.MaxListsPerBoard)
	setIfPositive(&lp.RecommendedLists, cfg.RecommendedListsPerBoard)
	setIfPositive(&lp.WarningThreshold, cfg.ListWarningThreshold)
	setIfPositive(&lp.MaxTitleLength, cfg.MaxListTitleLength)

	cp := DefaultCardPolicy()
	setIfPositive(&cp.MaxCardsPerList, cfg.MaxCardsPerList)
	setIfPositive(&cp.MaxTitleLength, cfg.MaxCardTitleLength)
	setIfPositive(&cp.MaxDescriptionLength, cfg.MaxCardDescriptionLength)
	return lp, cp
}

func setIfPositive(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// CheckCanCreate fails when a board already holds the maximum number of lists.
func (p ListPolicy) CheckCanCreate(currentCount int) error {
	if currentCount >= p.MaxLists {
		return apperrors.BusinessRule(ReasonListCreation,
			fmt.Sprintf("a board can hold at most %d lists (current: %d)", p.MaxLists, currentCount),
			map[string]any{"current_count": currentCount, "max_lists": p.MaxLists})
	}
	return nil
}

// CheckTitle fails when the title is longer than allowed. Length counts characters.
func (p ListPolicy) CheckTitle(title string) error {
	return checkLength(ReasonTitleLength, "list title", title, p.MaxTitleLength)
}

// Status grades the given list count.
func (p ListPolicy) Status(count int) ListCountStatus {
	switch {
	case count >= p.MaxLists:
		return StatusLimitReached
	case count >= p.WarningThreshold:
		return StatusWarning
	case count > p.RecommendedLists:
		return StatusAboveRecommended
	default:
		return StatusNormal
	}
}

// AvailableSlots returns how many more lists fit.
func (p ListPolicy) AvailableSlots(count int) int {
	return max(0, p.MaxLists-count)
}

// CheckCanAdd fails when the list already holds the maximum number of cards.
func (p CardPolicy) CheckCanAdd(currentCount int) error {
	if currentCount >= p.MaxCardsPerList {
		return apperrors.BusinessRule(ReasonListCardLimit,
			fmt.Sprintf("a list can hold at most %d cards (current: %d)", p.MaxCardsPerList, currentCount),
			map[string]any{"current_count": currentCount, "max_cards": p.MaxCardsPerList})
	}
	return nil
}

func (p CardPolicy) CheckTitle(title string) error {
	return checkLength(ReasonTitleLength, "card title", title, p.MaxTitleLength)
}

func (p CardPolicy) CheckDescription(description string) error {
	return checkLength(ReasonDescriptionLength, "card description", description, p.MaxDescriptionLength)
}

func checkLength(reason, what, value string, limit int) error {
	length := utf8.RuneCountInString(value)
	if length > limit {
		return apperrors.BusinessRule(reason,
			fmt.Sprintf("%s is too long (%d > %d)", what, length, limit),
			map[string]any{"length": length, "max_length": limit})
	}
	return nil
}
