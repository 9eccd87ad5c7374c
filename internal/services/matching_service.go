package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tutormatch_backend/internal/algorithms"
	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

// HistoryPageSize is the default page size of the match history list.
const HistoryPageSize = 10

type MatchingService interface {
	Submit(ctx context.Context, db *gorm.DB, userID string, req *dto.MatchRequest) (*dto.MatchResponse, error)
	History(ctx context.Context, db *gorm.DB, userID string, page dto.Pagination) (*dto.MatchHistoryList, error)
	HistoryDetail(ctx context.Context, db *gorm.DB, userID, matchID string) (*dto.MatchHistoryDetail, error)
}

type MatchingServiceImpl struct {
	tutorRepo   repositories.TutorRepository
	historyRepo repositories.MatchHistoryRepository
	now         func() time.Time
}

func NewMatchingService(tutorRepo repositories.TutorRepository, historyRepo repositories.MatchHistoryRepository) MatchingService {
	return &MatchingServiceImpl{
		tutorRepo:   tutorRepo,
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

// Submit ranks every active tutor against the request and stores the run.
func (s *MatchingServiceImpl) Submit(ctx context.Context, db *gorm.DB, userID string, req *dto.MatchRequest) (*dto.MatchResponse, error) {
	keywords := algorithms.ParseKeywords(req.Keywords)
	if len(keywords) == 0 {
		return nil, apperrors.ErrInvalidKeywords
	}

	logFields := []any{"user_id", userID, "discipline", req.Discipline, "keywords", req.Keywords}

	rows, err := s.tutorRepo.FindActiveWithDetails(db)
	if err != nil {
		logger.CtxWithError(ctx, "failed to load match candidates", err, logFields...)
		return nil, apperrors.InternalError(err)
	}

	results := algorithms.Rank(toCandidates(rows), req.Discipline, keywords)

	resultJSON, err := json.Marshal(results)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	prefJSON, err := json.Marshal(req.Preferences)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	history := &models.MatchHistory{
		ID:          uuid.NewString(),
		UserID:      userID,
		Discipline:  req.Discipline,
		Keywords:    req.Keywords,
		Preferences: datatypes.JSON(prefJSON),
		ResultJSON:  datatypes.JSON(resultJSON),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.historyRepo.Create(db, history); err != nil {
		logger.CtxWithError(ctx, "failed to save match history", err, logFields...)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "match completed", append(logFields, "match_id", history.ID, "results", len(results))...)
	return &dto.MatchResponse{MatchID: history.ID, Results: results}, nil
}

func (s *MatchingServiceImpl) History(ctx context.Context, db *gorm.DB, userID string, page dto.Pagination) (*dto.MatchHistoryList, error) {
	page.Normalize(HistoryPageSize)

	rows, total, err := s.historyRepo.ListByUser(db, userID, page.PageSize, page.Offset())
	if err != nil {
		logger.CtxWithError(ctx, "failed to list match history", err, "user_id", userID)
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.MatchHistoryItem, 0, len(rows))
	for _, h := range rows {
		var results []json.RawMessage
		if len(h.ResultJSON) > 0 {
			if err := json.Unmarshal(h.ResultJSON, &results); err != nil {
				return nil, apperrors.InternalError(err)
			}
		}
		prefs, err := decodePreferences(h.Preferences)
		if err != nil {
			logger.CtxWithError(ctx, "corrupt match preferences", err, "user_id", userID, "match_id", h.ID)
			return nil, apperrors.InternalError(err)
		}
		items = append(items, dto.MatchHistoryItem{
			ID:          h.ID,
			Discipline:  h.Discipline,
			Keywords:    h.Keywords,
			Preferences: prefs,
			CreatedAt:   h.CreatedAt,
			ResultCount: len(results),
		})
	}

	return &dto.MatchHistoryList{
		List:     items,
		Total:    total,
		Page:     page.Page,
		PageSize: page.PageSize,
	}, nil
}

// HistoryDetail answers HISTORY_NOT_FOUND both for missing and foreign records.
func (s *MatchingServiceImpl) HistoryDetail(ctx context.Context, db *gorm.DB, userID, matchID string) (*dto.MatchHistoryDetail, error) {
	h, err := s.historyRepo.FindByIDAndUser(db, matchID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchHistoryNotFound) {
			return nil, apperrors.ErrHistoryNotFound
		}
		logger.CtxWithError(ctx, "failed to load match history", err, "user_id", userID, "match_id", matchID)
		return nil, apperrors.InternalError(err)
	}

	results := []algorithms.MatchResult{}
	if len(h.ResultJSON) > 0 {
		if err := json.Unmarshal(h.ResultJSON, &results); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	prefs, err := decodePreferences(h.Preferences)
	if err != nil {
		logger.CtxWithError(ctx, "corrupt match preferences", err, "user_id", userID, "match_id", h.ID)
		return nil, apperrors.InternalError(err)
	}

	return &dto.MatchHistoryDetail{
		MatchID:     h.ID,
		Discipline:  h.Discipline,
		Keywords:    h.Keywords,
		Preferences: prefs,
		CreatedAt:   h.CreatedAt,
		Results:     results,
	}, nil
}

// toCandidates takes bio and achievements only from the detail document.
func toCandidates(rows []repositories.TutorWithDetail) []algorithms.CandidateTutor {
	candidates := make([]algorithms.CandidateTutor, len(rows))
	for i, r := range rows {
		c := algorithms.CandidateTutor{
			ID:                r.Tutor.ID,
			Name:              r.Tutor.Name,
			Title:             r.Tutor.Title,
			School:            r.Tutor.SchoolName,
			Department:        r.Tutor.DepartmentName,
			Avatar:            r.Tutor.AvatarURL,
			ResearchDirection: r.Tutor.ResearchDirection,
		}
		if r.Detail != nil {
			c.Bio = r.Detail.Bio
			c.AchievementsSummary = r.Detail.AchievementsSummary
		}
		candidates[i] = c
	}
	return candidates
}

func decodePreferences(raw datatypes.JSON) (algorithms.Preferences, error) {
	var p algorithms.Preferences
	if len(raw) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("decode preferences: %w", err)
	}
	return p, nil
}
