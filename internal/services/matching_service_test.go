package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/datatypes"

	"tutormatch_backend/internal/algorithms"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

func matchFixture() (*fakeTutorRepo, *fakeHistoryRepo, *MatchingServiceImpl) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tutors := newFakeTutorRepo(
		models.Tutor{BaseModel: models.BaseModel{ID: "t1", CreatedAt: base}, Name: "张三", Title: "教授",
			SchoolName: "清华大学", ResearchDirection: "机器学习与计算机视觉"},
		models.Tutor{BaseModel: models.BaseModel{ID: "t2", CreatedAt: base.Add(time.Hour)}, Name: "李四", Title: "讲师",
			SchoolName: "北京大学", ResearchDirection: "自然语言处理"},
		models.Tutor{BaseModel: models.BaseModel{ID: "t3", CreatedAt: base.Add(2 * time.Hour)}, Name: "王五",
			ResearchDirection: "量子物理"},
	)
	tutors.details["t2"] = &models.TutorDetail{TutorID: "t2", Bio: "研究深度学习", AchievementsSummary: "机器学习 顶会论文"}

	history := &fakeHistoryRepo{}
	svc := NewMatchingService(tutors, history).(*MatchingServiceImpl)
	svc.now = func() time.Time { return base.Add(48 * time.Hour) }
	return tutors, history, svc
}

func TestMatchingService_Submit_RejectsBlankKeywordsBeforeLoading(t *testing.T) {
	tutors, history, svc := matchFixture()

	_, err := svc.Submit(context.Background(), nil, "u1", &dto.MatchRequest{Discipline: "机器学习", Keywords: " , ,"})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidKeywords))
	assert.Equal(t, 0, tutors.withDetailsCalls)
	assert.Empty(t, history.rows)
}

func TestMatchingService_Submit_RanksAndStores(t *testing.T) {
	_, history, svc := matchFixture()

	req := &dto.MatchRequest{
		Discipline:  "机器学习",
		Keywords:    "深度学习, 视觉",
		Preferences: algorithms.Preferences{HighOutput: true},
	}
	resp, err := svc.Submit(context.Background(), nil, "u1", req)
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "t1", resp.Results[0].TutorID)
	assert.Equal(t, 70.0, resp.Results[0].MatchScore)
	assert.Equal(t, "t2", resp.Results[1].TutorID)
	assert.Equal(t, 30.0, resp.Results[1].MatchScore)

	require.Len(t, history.rows, 1)
	stored := history.rows[0]
	assert.Equal(t, resp.MatchID, stored.ID)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, "深度学习, 视觉", stored.Keywords)
	assert.JSONEq(t, `{"cross_school":false,"high_output":true,"young_scholar":false}`, string(stored.Preferences))
}

func TestMatchingService_Submit_StorageFailure(t *testing.T) {
	_, history, svc := matchFixture()
	history.err = errors.New("disk full")

	_, err := svc.Submit(context.Background(), nil, "u1", &dto.MatchRequest{Discipline: "物理", Keywords: "量子"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPCode)
}

func TestMatchingService_Submit_CandidateFailure(t *testing.T) {
	tutors, history, svc := matchFixture()
	tutors.err = errors.New("connection reset")

	_, err := svc.Submit(context.Background(), nil, "u1", &dto.MatchRequest{Discipline: "物理", Keywords: "量子"})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPCode)
	assert.Empty(t, history.rows)
}

func TestMatchingService_HistoryAndDetail(t *testing.T) {
	_, _, svc := matchFixture()
	ctx := context.Background()

	first, err := svc.Submit(ctx, nil, "u1", &dto.MatchRequest{Discipline: "机器学习", Keywords: "视觉"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, nil, "u1", &dto.MatchRequest{Discipline: "化学", Keywords: "不存在的词"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, nil, "u2", &dto.MatchRequest{Discipline: "物理", Keywords: "量子"})
	require.NoError(t, err)

	list, err := svc.History(ctx, nil, "u1", dto.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, HistoryPageSize, list.PageSize)
	require.Len(t, list.List, 2)
	assert.Equal(t, "化学", list.List[0].Discipline)
	assert.Equal(t, 0, list.List[0].ResultCount)
	assert.Equal(t, 1, list.List[1].ResultCount)

	detail, err := svc.HistoryDetail(ctx, nil, "u1", first.MatchID)
	require.NoError(t, err)
	assert.Equal(t, first.Results, detail.Results)

	_, err = svc.HistoryDetail(ctx, nil, "u2", first.MatchID)
	assert.True(t, apperrors.Is(err, apperrors.ErrHistoryNotFound))
	_, err = svc.HistoryDetail(ctx, nil, "u1", "missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrHistoryNotFound))
}

func TestMatchingService_Submit_IsIdempotent(t *testing.T) {
	_, history, svc := matchFixture()
	ctx := context.Background()
	req := &dto.MatchRequest{
		Discipline:  "机器学习",
		Keywords:    "深度学习, 视觉",
		Preferences: algorithms.Preferences{CrossSchool: true},
	}

	first, err := svc.Submit(ctx, nil, "u1", req)
	require.NoError(t, err)

	later := svc.now().Add(time.Minute)
	svc.now = func() time.Time { return later }
	second, err := svc.Submit(ctx, nil, "u1", req)
	require.NoError(t, err)

	assert.NotEqual(t, first.MatchID, second.MatchID)
	assert.Equal(t, first.Results, second.Results)

	require.Len(t, history.rows, 2)
	assert.NotEqual(t, history.rows[0].ID, history.rows[1].ID)
	assert.True(t, history.rows[1].CreatedAt.After(history.rows[0].CreatedAt))
	assert.JSONEq(t, string(history.rows[0].ResultJSON), string(history.rows[1].ResultJSON))
}

func TestMatchingService_CandidatesUseDetailBioOnly(t *testing.T) {
	tutors, _, svc := matchFixture()
	tutors.tutors["t3"].Bio = "量子计算与密码学"

	resp, err := svc.Submit(context.Background(), nil, "u1", &dto.MatchRequest{Discipline: "化学", Keywords: "密码学"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)

	tutors.details["t3"] = &models.TutorDetail{TutorID: "t3", Bio: "量子计算与密码学"}
	resp, err = svc.Submit(context.Background(), nil, "u1", &dto.MatchRequest{Discipline: "化学", Keywords: "密码学"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "t3", resp.Results[0].TutorID)
}

func TestMatchingService_CorruptPreferences(t *testing.T) {
	_, history, svc := matchFixture()
	history.rows = append(history.rows, models.MatchHistory{
		ID:          "h1",
		UserID:      "u1",
		Discipline:  "化学",
		Preferences: datatypes.JSON(`{"cross_school":`),
		ResultJSON:  datatypes.JSON(`[]`),
	})
	ctx := context.Background()

	_, err := svc.History(ctx, nil, "u1", dto.Pagination{})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPCode)

	_, err = svc.HistoryDetail(ctx, nil, "u1", "h1")
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.HTTPCode)

	history.rows[0].Preferences = datatypes.JSON(`{"young_scholar":true}`)
	detail, err := svc.HistoryDetail(ctx, nil, "u1", "h1")
	require.NoError(t, err)
	assert.True(t, detail.Preferences.YoungScholar)
}
