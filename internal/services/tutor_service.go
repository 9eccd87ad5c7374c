package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tutormatch_backend/internal/logger"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

const (
	maxDetailPapers   = 100
	maxDetailProjects = 50
	maxBatchIDs       = 100

	filterDirectionLimit = 50
	filterTagLimit       = 30

	suggestNameLimit       = 5
	suggestSchoolLimit     = 3
	suggestDepartmentLimit = 3
	suggestTotalLimit      = 10
)

// batchUpdatable lists the only columns batch-update may touch.
var batchUpdatable = map[string]bool{
	"title":              true,
	"research_direction": true,
	"email":              true,
	"phone":              true,
	"tags":               true,
}

type TutorService interface {
	List(ctx context.Context, db *gorm.DB, q *dto.TutorListQuery) (*dto.PageResult[dto.TutorBrief], error)
	Search(ctx context.Context, db *gorm.DB, q *dto.TutorSearchQuery) (*dto.PageResult[dto.TutorBrief], error)
	Detail(ctx context.Context, db *gorm.DB, tutorID, userID string) (*dto.TutorDetailResponse, error)
	FilterOptions(ctx context.Context, db *gorm.DB, school string) (*dto.FilterOptions, error)
	Suggestions(ctx context.Context, db *gorm.DB, q *dto.SuggestionQuery) ([]dto.Suggestion, error)

	Create(ctx context.Context, db *gorm.DB, adminID string, req *dto.CreateTutorRequest) (*dto.TutorDetailResponse, error)
	Update(ctx context.Context, db *gorm.DB, adminID, tutorID string, req *dto.UpdateTutorRequest) (*dto.TutorDetailResponse, error)
	Delete(ctx context.Context, db *gorm.DB, adminID, tutorID string) error
	BatchDelete(ctx context.Context, db *gorm.DB, adminID string, ids []string) (*dto.BatchResult, error)
	BatchUpdate(ctx context.Context, db *gorm.DB, adminID string, req *dto.BatchUpdateRequest) (*dto.BatchResult, error)
	Restore(ctx context.Context, db *gorm.DB, adminID, tutorID string) error
}

type TutorServiceImpl struct {
	tutorRepo    repositories.TutorRepository
	favoriteRepo repositories.FavoriteRepository
	now          func() time.Time
}

func NewTutorService(tutorRepo repositories.TutorRepository, favoriteRepo repositories.FavoriteRepository) TutorService {
	return &TutorServiceImpl{
		tutorRepo:    tutorRepo,
		favoriteRepo: favoriteRepo,
		now:          time.Now,
	}
}

// -------------------------------
// Public queries
// -------------------------------

func (s *TutorServiceImpl) List(ctx context.Context, db *gorm.DB, q *dto.TutorListQuery) (*dto.PageResult[dto.TutorBrief], error) {
	q.Normalize(20)
	filter := repositories.TutorFilter{
		Keyword:        q.Keyword,
		KeywordColumns: repositories.ListKeywordColumns,
		School:         q.School,
		Department:     q.Department,
		City:           q.City,
		Limit:          q.PageSize,
		Offset:         q.Offset(),
	}
	return s.page(ctx, db, filter, q.Pagination)
}

func (s *TutorServiceImpl) Search(ctx context.Context, db *gorm.DB, q *dto.TutorSearchQuery) (*dto.PageResult[dto.TutorBrief], error) {
	q.Normalize(20)
	filter := repositories.TutorFilter{
		Keyword:           q.Keyword,
		KeywordColumns:    repositories.SearchKeywordColumns,
		Name:              q.Name,
		School:            q.School,
		Department:        q.Department,
		ResearchDirection: q.ResearchDirection,
		Title:             q.Title,
		RecruitmentType:   q.RecruitmentType,
		HasProjects:       q.HasProjects,
		HasFunding:        q.HasFunding,
		Tags:              splitList(q.Tags),
		MinPapers:         q.MinPapers,
		MaxPapers:         q.MaxPapers,
		MinProjects:       q.MinProjects,
		MaxProjects:       q.MaxProjects,
		SortBy:            q.SortBy,
		SortOrder:         q.SortOrder,
		Limit:             q.PageSize,
		Offset:            q.Offset(),
	}
	return s.page(ctx, db, filter, q.Pagination)
}

func (s *TutorServiceImpl) page(ctx context.Context, db *gorm.DB, filter repositories.TutorFilter, p dto.Pagination) (*dto.PageResult[dto.TutorBrief], error) {
	tutors, total, err := s.tutorRepo.Search(db, filter)
	if err != nil {
		logger.CtxWithError(ctx, "tutor search failed", err)
		return nil, apperrors.InternalError(err)
	}
	list := make([]dto.TutorBrief, len(tutors))
	for i := range tutors {
		list[i] = dto.NewTutorBrief(&tutors[i])
	}
	return dto.NewPageResult(list, total, p.Page, p.PageSize), nil
}

// Detail loads the tutor, then fetches papers, projects, the detail
// document and the favorite flag concurrently.
func (s *TutorServiceImpl) Detail(ctx context.Context, db *gorm.DB, tutorID, userID string) (*dto.TutorDetailResponse, error) {
	tutor, err := s.tutorRepo.FindByID(db, tutorID, false)
	if err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	var (
		papers    []models.Paper
		projects  []models.TutorProject
		detail    *models.TutorDetail
		collected bool
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		papers, err = s.tutorRepo.FindPapers(db, tutorID, maxDetailPapers)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.tutorRepo.FindProjects(db, tutorID, maxDetailProjects)
		return err
	})
	g.Go(func() error {
		var err error
		detail, err = s.tutorRepo.FindDetail(db, tutorID)
		return err
	})
	if userID != "" {
		g.Go(func() error {
			_, err := s.favoriteRepo.Find(db, userID, models.FavoriteTutor, tutorID)
			switch {
			case err == nil:
				collected = true
			case errors.Is(err, repositories.ErrFavoriteNotFound):
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.CtxWithError(ctx, "failed to load tutor detail", err, "tutor_id", tutorID)
		return nil, apperrors.InternalError(err)
	}

	return buildDetail(tutor, detail, papers, projects, collected), nil
}

func buildDetail(t *models.Tutor, detail *models.TutorDetail, papers []models.Paper, projects []models.TutorProject, collected bool) *dto.TutorDetailResponse {
	if papers == nil {
		papers = []models.Paper{}
	}
	if projects == nil {
		projects = []models.TutorProject{}
	}
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}

	resp := &dto.TutorDetailResponse{
		ID:                t.ID,
		Name:              t.Name,
		Title:             t.Title,
		School:            t.SchoolName,
		SchoolID:          t.SchoolID,
		Department:        t.DepartmentName,
		DepartmentID:      t.DepartmentID,
		Avatar:            t.AvatarURL,
		Bio:               t.Bio,
		Email:             t.Email,
		Phone:             t.Phone,
		PersonalPage:      t.PersonalPageURL,
		City:              t.City,
		RecruitmentType:   string(t.RecruitmentType),
		ResearchDirection: t.ResearchDirection,
		Tags:              tags,
		HasFunding:        t.HasFunding,
		PaperCount:        t.PaperCount,
		ProjectCount:      t.ProjectCount,
		Papers:            papers,
		Projects:          projects,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		CrawledAt:         t.CrawledAt,
		IsCollected:       collected,
	}
	if resp.PaperCount == 0 {
		resp.PaperCount = len(papers)
	}
	if resp.ProjectCount == 0 {
		resp.ProjectCount = len(projects)
	}

	if detail != nil {
		if detail.Bio != "" {
			resp.Bio = detail.Bio
		}
		resp.AchievementsSummary = detail.AchievementsSummary
		resp.Socials = detail.Socials
		resp.Students = detail.Students
		resp.Coops = detail.Coops
		resp.Risks = detail.Risks
		resp.StudentCount = countJSONArray(detail.Students)
	}
	return resp
}

func (s *TutorServiceImpl) FilterOptions(ctx context.Context, db *gorm.DB, school string) (*dto.FilterOptions, error) {
	opts := &dto.FilterOptions{RecruitmentTypes: dto.RecruitmentTypeOptions}
	scoped := repositories.TutorFilter{School: school}

	var err error
	if opts.Schools, err = s.tutorRepo.DistinctValues(db, "school_name", repositories.TutorFilter{}); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if opts.Departments, err = s.tutorRepo.DistinctValues(db, "department_name", scoped); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if opts.Titles, err = s.tutorRepo.DistinctValues(db, "title", scoped); err != nil {
		return nil, apperrors.InternalError(err)
	}

	directions, err := s.tutorRepo.TopValues(db, "research_direction", scoped, filterDirectionLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	opts.ResearchDirections = make([]string, len(directions))
	for i, d := range directions {
		opts.ResearchDirections[i] = d.Value
	}

	if opts.Tags, err = s.tutorRepo.TopTags(db, filterTagLimit); err != nil {
		return nil, apperrors.InternalError(err)
	}

	opts.Schools = nonNil(opts.Schools)
	opts.Departments = nonNil(opts.Departments)
	opts.Titles = nonNil(opts.Titles)
	opts.Tags = nonNil(opts.Tags)
	return opts, nil
}

// Suggestions returns typeahead candidates for the search box.
func (s *TutorServiceImpl) Suggestions(ctx context.Context, db *gorm.DB, q *dto.SuggestionQuery) ([]dto.Suggestion, error) {
	keyword := strings.TrimSpace(q.Keyword)
	out := []dto.Suggestion{}
	if keyword == "" {
		return out, nil
	}
	field := q.Field
	if field == "" {
		field = "all"
	}

	seen := map[string]bool{}
	add := func(kind, label string, values []string, limit int) {
		n := 0
		for _, v := range values {
			if n >= limit {
				return
			}
			key := kind + ":" + v
			if v == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, dto.Suggestion{Type: kind, Value: v, Label: label + v})
			n++
		}
	}

	if field == "all" || field == "name" {
		names, err := s.tutorRepo.SuggestNames(db, keyword, suggestNameLimit)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		add("name", "导师: ", names, suggestNameLimit)
	}
	if field == "all" || field == "school" {
		schools, err := s.tutorRepo.DistinctValues(db, "school_name", repositories.TutorFilter{School: keyword})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		add("school", "学校: ", schools, suggestSchoolLimit)
	}
	if field == "all" || field == "department" {
		departments, err := s.tutorRepo.DistinctValues(db, "department_name", repositories.TutorFilter{Department: keyword})
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		add("department", "学院: ", departments, suggestDepartmentLimit)
	}

	if len(out) > suggestTotalLimit {
		out = out[:suggestTotalLimit]
	}
	return out, nil
}

// -------------------------------
// Admin operations
// -------------------------------

func (s *TutorServiceImpl) Create(ctx context.Context, db *gorm.DB, adminID string, req *dto.CreateTutorRequest) (*dto.TutorDetailResponse, error) {
	papers := toPapers(req.Papers)
	projects, err := toProjects(req.Projects)
	if err != nil {
		return nil, err
	}

	tutor := &models.Tutor{
		Name:              req.Name,
		Title:             req.Title,
		SchoolName:        req.School,
		DepartmentName:    req.Department,
		City:              req.City,
		Email:             req.Email,
		Phone:             req.Phone,
		AvatarURL:         req.AvatarURL,
		PersonalPageURL:   req.PersonalPageURL,
		ResearchDirection: req.ResearchDirection,
		Bio:               req.Bio,
		Tags:              datatypes.JSONSlice[string](nonNil(req.Tags)),
		RecruitmentType:   models.RecruitmentType(req.RecruitmentType),
		HasFunding:        req.HasFunding,
		PaperCount:        len(papers),
		ProjectCount:      len(projects),
		CreatedBy:         adminID,
		UpdatedBy:         adminID,
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := s.tutorRepo.Create(tx, tutor); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.tutorRepo.SaveDetailBio(tx, tutor.ID, req.Bio); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.tutorRepo.ReplacePapers(tx, tutor.ID, papers); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := s.tutorRepo.ReplaceProjects(tx, tutor.ID, projects); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "tutor created", "tutor_id", tutor.ID, "admin_id", adminID)
	return s.Detail(ctx, db, tutor.ID, "")
}

func (s *TutorServiceImpl) Update(ctx context.Context, db *gorm.DB, adminID, tutorID string, req *dto.UpdateTutorRequest) (*dto.TutorDetailResponse, error) {
	if _, err := s.tutorRepo.FindByID(db, tutorID, false); err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	fields := map[string]interface{}{"updated_by": adminID}
	setStr := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	setStr("name", req.Name)
	setStr("school_name", req.School)
	setStr("department_name", req.Department)
	setStr("title", req.Title)
	setStr("city", req.City)
	setStr("research_direction", req.ResearchDirection)
	setStr("email", req.Email)
	setStr("phone", req.Phone)
	setStr("avatar_url", req.AvatarURL)
	setStr("personal_page_url", req.PersonalPageURL)
	setStr("bio", req.Bio)
	setStr("recruitment_type", req.RecruitmentType)
	if req.HasFunding != nil {
		fields["has_funding"] = *req.HasFunding
	}
	if req.Tags != nil {
		fields["tags"] = datatypes.JSONSlice[string](nonNil(*req.Tags))
	}

	var papers []models.Paper
	var projects []models.TutorProject
	var err error
	if req.Papers != nil {
		papers = toPapers(*req.Papers)
		fields["paper_count"] = len(papers)
	}
	if req.Projects != nil {
		if projects, err = toProjects(*req.Projects); err != nil {
			return nil, err
		}
		fields["project_count"] = len(projects)
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := s.tutorRepo.Update(tx, tutorID, fields); err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return nil, apperrors.ErrTutorNotFound
		}
		return nil, apperrors.InternalError(err)
	}
	if req.Bio != nil {
		if err := s.tutorRepo.SaveDetailBio(tx, tutorID, *req.Bio); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if req.Papers != nil {
		if err := s.tutorRepo.ReplacePapers(tx, tutorID, papers); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if req.Projects != nil {
		if err := s.tutorRepo.ReplaceProjects(tx, tutorID, projects); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "tutor updated", "tutor_id", tutorID, "admin_id", adminID)
	return s.Detail(ctx, db, tutorID, "")
}

func (s *TutorServiceImpl) Delete(ctx context.Context, db *gorm.DB, adminID, tutorID string) error {
	tutor, err := s.tutorRepo.FindByID(db, tutorID, true)
	if err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return apperrors.ErrTutorNotFound
		}
		return apperrors.InternalError(err)
	}
	if tutor.IsDeleted {
		return apperrors.ErrTutorAlreadyDeleted
	}

	if err := s.tutorRepo.SoftDelete(db, tutorID, adminID, s.now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return apperrors.ErrTutorAlreadyDeleted
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "tutor deleted", "tutor_id", tutorID, "admin_id", adminID)
	return nil
}

func (s *TutorServiceImpl) BatchDelete(ctx context.Context, db *gorm.DB, adminID string, ids []string) (*dto.BatchResult, error) {
	if err := checkBatchIDs(ids); err != nil {
		return nil, err
	}

	existing, err := s.tutorRepo.ExistingIDs(db, ids)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var affected int64
	if len(existing) > 0 {
		affected, err = s.tutorRepo.BatchSoftDelete(db, existing, adminID, s.now().UTC())
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	result := batchResult(ids, existing, affected)
	logger.CtxInfo(ctx, "tutors batch deleted", "admin_id", adminID, "success", result.SuccessCount, "failed", result.FailedCount)
	return result, nil
}

func (s *TutorServiceImpl) BatchUpdate(ctx context.Context, db *gorm.DB, adminID string, req *dto.BatchUpdateRequest) (*dto.BatchResult, error) {
	if len(req.TutorIDs) == 0 || len(req.UpdateFields) == 0 {
		return nil, apperrors.ErrEmptyBatch
	}
	if err := checkBatchIDs(req.TutorIDs); err != nil {
		return nil, err
	}

	fields, err := sanitizeBatchFields(req.UpdateFields)
	if err != nil {
		return nil, err
	}
	fields["updated_by"] = adminID

	existing, err := s.tutorRepo.ExistingIDs(db, req.TutorIDs)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	var affected int64
	if len(existing) > 0 {
		affected, err = s.tutorRepo.BatchUpdate(db, existing, fields)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	result := batchResult(req.TutorIDs, existing, affected)
	logger.CtxInfo(ctx, "tutors batch updated", "admin_id", adminID, "success", result.SuccessCount, "failed", result.FailedCount)
	return result, nil
}

func (s *TutorServiceImpl) Restore(ctx context.Context, db *gorm.DB, adminID, tutorID string) error {
	tutor, err := s.tutorRepo.FindByID(db, tutorID, true)
	if err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return apperrors.ErrTutorNotFound
		}
		return apperrors.InternalError(err)
	}
	if !tutor.IsDeleted {
		return apperrors.ErrTutorNotDeleted
	}

	if err := s.tutorRepo.Restore(db, tutorID, adminID); err != nil {
		if errors.Is(err, repositories.ErrTutorNotFound) {
			return apperrors.ErrTutorNotDeleted
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "tutor restored", "tutor_id", tutorID, "admin_id", adminID)
	return nil
}

// -------------------------------
// helpers
// -------------------------------

func checkBatchIDs(ids []string) error {
	if len(ids) == 0 {
		return apperrors.ErrEmptyBatch
	}
	if len(ids) > maxBatchIDs {
		return apperrors.ErrTooManyIDs
	}
	return nil
}

func batchResult(requested, existing []string, affected int64) *dto.BatchResult {
	found := make(map[string]bool, len(existing))
	for _, id := range existing {
		found[id] = true
	}
	failed := []string{}
	for _, id := range requested {
		if !found[id] {
			failed = append(failed, id)
		}
	}
	return &dto.BatchResult{
		SuccessCount: int(affected),
		FailedCount:  len(failed),
		TotalCount:   len(requested),
		FailedIDs:    failed,
	}
}

// sanitizeBatchFields drops unknown columns and coerces tags into a JSON slice.
func sanitizeBatchFields(in map[string]interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	for k, v := range in {
		if !batchUpdatable[k] {
			continue
		}
		if k == "tags" {
			tags, ok := toStringSlice(v)
			if !ok {
				return nil, apperrors.ValidationError(map[string]string{"tags": "标签必须是字符串数组"})
			}
			out[k] = datatypes.JSONSlice[string](tags)
			continue
		}
		str, ok := v.(string)
		if !ok {
			return nil, apperrors.ValidationError(map[string]string{k: "必须是字符串"})
		}
		out[k] = str
	}
	if len(out) == 0 {
		return nil, apperrors.ErrNoValidFields
	}
	return out, nil
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func toPapers(in []dto.PaperInput) []models.Paper {
	papers := make([]models.Paper, 0, len(in))
	for _, p := range in {
		papers = append(papers, models.Paper{
			Title:    p.Title,
			Authors:  datatypes.JSONSlice[string](p.Authors),
			Journal:  p.Journal,
			Year:     p.Year,
			DOI:      p.DOI,
			Abstract: p.Abstract,
		})
	}
	return papers
}

func toProjects(in []dto.ProjectInput) ([]models.TutorProject, error) {
	projects := make([]models.TutorProject, 0, len(in))
	for i, p := range in {
		start, err := parseDate(p.StartDate)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"projects": "第" + itoa(i+1) + "个项目开始日期格式错误"})
		}
		end, err := parseDate(p.EndDate)
		if err != nil {
			return nil, apperrors.ValidationError(map[string]string{"projects": "第" + itoa(i+1) + "个项目结束日期格式错误"})
		}
		projects = append(projects, models.TutorProject{
			Title:       p.Title,
			Funding:     p.Funding,
			StartDate:   start,
			EndDate:     end,
			Description: p.Description,
		})
	}
	return projects, nil
}
