package service

import (
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// Field limits checked before any lookup.
const (
	boardTitleMaxLength       = 50
	boardDescriptionMaxLength = 500
	listDescriptionMaxLength  = 500
	labelNameMaxLength        = 50
	commentContentMaxLength   = 1000
)

var labelColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// inputCheck collects field violations and reports them together.
type inputCheck struct {
	violations []apperrors.FieldViolation
}

func (c *inputCheck) add(field, message string, rejected any) {
	c.violations = append(c.violations, apperrors.FieldViolation{
		Field:         field,
		Message:       message,
		RejectedValue: rejected,
	})
}

func (c *inputCheck) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.add(field, "is required", value)
	}
}

func (c *inputCheck) maxLength(field, value string, limit int) {
	if utf8.RuneCountInString(value) > limit {
		c.add(field, "is too long", value)
	}
}

func (c *inputCheck) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return apperrors.Validation(c.violations...)
}
