package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// Label operations

func checkLabelInput(check *inputCheck, name, color string) {
	check.required("name", name)
	check.maxLength("name", name, labelNameMaxLength)
	if !labelColorPattern.MatchString(color) {
		check.add("color", "must be a #RRGGBB hex color", color)
	}
}

// ensureLabelNameFree fails with Conflict when another label on the board has name.
func (s *Service) ensureLabelNameFree(ctx context.Context, boardID, name, exceptID string) error {
	existing, err := s.repo.GetLabelByName(ctx, boardID, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return apperrors.Internal("failed to load label", err)
	case existing.ID != exceptID:
		return apperrors.Conflict("a label with this name already exists on the board")
	}
	return nil
}

// ListLabels returns a board's labels.
func (s *Service) ListLabels(ctx context.Context, boardID, requesterID string) ([]*models.Label, error) {
	if err := s.RequireBoardRead(ctx, boardID, requesterID); err != nil {
		return nil, err
	}
	labels, err := s.repo.ListLabels(ctx, boardID)
	if err != nil {
		return nil, apperrors.Internal("failed to list labels", err)
	}
	return labels, nil
}

// CreateLabel adds a label to a board. Names are unique per board.
func (s *Service) CreateLabel(ctx context.Context, boardID string, req *CreateLabelRequest, requesterID string) (*models.Label, error) {
	name := strings.TrimSpace(req.Name)
	color := strings.ToUpper(strings.TrimSpace(req.Color))
	var check inputCheck
	checkLabelInput(&check, name, color)
	if err := check.err(); err != nil {
		return nil, err
	}

	if _, err := s.writableBoard(ctx, boardID, requesterID, "no permission to manage labels on this board"); err != nil {
		return nil, err
	}
	if err := s.ensureLabelNameFree(ctx, boardID, name, ""); err != nil {
		return nil, err
	}

	label := models.NewLabel(boardID, name, color)
	if err := s.repo.SaveLabel(ctx, label); err != nil {
		s.logger.Error("failed to save label", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save label", err)
	}
	s.record(ctx, activity.New(activity.LabelCreate, requesterID, boardID, map[string]any{
		"label_name":  label.Name,
		"label_color": label.Color,
	}))
	return label, nil
}

// UpdateLabel renames or recolors a label.
func (s *Service) UpdateLabel(ctx context.Context, labelID string, req *UpdateLabelRequest, requesterID string) (*models.Label, error) {
	label, err := s.loadLabel(ctx, labelID)
	if err != nil {
		return nil, err
	}

	name, color := label.Name, label.Color
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Color != nil {
		color = strings.ToUpper(strings.TrimSpace(*req.Color))
	}
	var check inputCheck
	checkLabelInput(&check, name, color)
	if err := check.err(); err != nil {
		return nil, err
	}

	if _, err := s.writableBoard(ctx, label.BoardID, requesterID, "no permission to manage labels on this board"); err != nil {
		return nil, err
	}
	if name == label.Name && color == label.Color {
		return label, nil
	}
	if name != label.Name {
		if err := s.ensureLabelNameFree(ctx, label.BoardID, name, label.ID); err != nil {
			return nil, err
		}
	}

	label.Update(name, color)
	if err := s.repo.SaveLabel(ctx, label); err != nil {
		s.logger.Error("failed to save label", zap.String("label_id", labelID), zap.Error(err))
		return nil, apperrors.Internal("failed to save label", err)
	}
	return label, nil
}

// DeleteLabel deletes a label and detaches it from every card.
func (s *Service) DeleteLabel(ctx context.Context, labelID, requesterID string) error {
	label, err := s.loadLabel(ctx, labelID)
	if err != nil {
		return err
	}
	if _, err := s.writableBoard(ctx, label.BoardID, requesterID, "no permission to manage labels on this board"); err != nil {
		return err
	}
	if err := s.repo.DeleteLabel(ctx, labelID); err != nil {
		s.logger.Error("failed to delete label", zap.String("label_id", labelID), zap.Error(err))
		return apperrors.Internal("failed to delete label", err)
	}
	s.record(ctx, activity.New(activity.LabelDelete, requesterID, label.BoardID, map[string]any{
		"label_name": label.Name,
	}))
	return nil
}
