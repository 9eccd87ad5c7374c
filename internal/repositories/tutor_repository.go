package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"tutormatch_backend/internal/models"
)

var ErrTutorNotFound = errors.New("tutor not found")

// TutorWithDetail pairs a tutor with its optional detail record.
type TutorWithDetail struct {
	Tutor  models.Tutor
	Detail *models.TutorDetail
}

// ValueCount is one bucket of a GROUP BY aggregation.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type TutorRepository interface {
	Search(db *gorm.DB, filter TutorFilter) ([]models.Tutor, int64, error)
	Count(db *gorm.DB, filter TutorFilter) (int64, error)
	FindByID(db *gorm.DB, id string, includeDeleted bool) (*models.Tutor, error)
	FindByIDs(db *gorm.DB, ids []string) (map[string]models.Tutor, error)
	ExistingIDs(db *gorm.DB, ids []string) ([]string, error)
	FindActiveWithDetails(db *gorm.DB) ([]TutorWithDetail, error)

	FindDetail(db *gorm.DB, tutorID string) (*models.TutorDetail, error)
	FindPapers(db *gorm.DB, tutorID string, limit int) ([]models.Paper, error)
	FindProjects(db *gorm.DB, tutorID string, limit int) ([]models.TutorProject, error)

	Create(db *gorm.DB, tutor *models.Tutor) error
	SaveDetailBio(db *gorm.DB, tutorID, bio string) error
	ReplacePapers(db *gorm.DB, tutorID string, papers []models.Paper) error
	ReplaceProjects(db *gorm.DB, tutorID string, projects []models.TutorProject) error
	Update(db *gorm.DB, id string, fields map[string]interface{}) error
	SoftDelete(db *gorm.DB, id, by string, at time.Time) error
	BatchSoftDelete(db *gorm.DB, ids []string, by string, at time.Time) (int64, error)
	BatchUpdate(db *gorm.DB, ids []string, fields map[string]interface{}) (int64, error)
	Restore(db *gorm.DB, id, by string) error

	DistinctValues(db *gorm.DB, column string, filter TutorFilter) ([]string, error)
	TopValues(db *gorm.DB, column string, filter TutorFilter, limit int) ([]ValueCount, error)
	TopTags(db *gorm.DB, limit int) ([]string, error)
	SuggestNames(db *gorm.DB, keyword string, limit int) ([]string, error)
}

type TutorRepositoryImpl struct{}

func NewTutorRepository() TutorRepository {
	return &TutorRepositoryImpl{}
}

func (r *TutorRepositoryImpl) scoped(db *gorm.DB, filter TutorFilter) (*gorm.DB, error) {
	where, args, err := filter.ToSQL(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	q := db.Model(&models.Tutor{})
	if where != "" {
		q = q.Where(where, args...)
	}
	// safe to reuse for both count and find
	return q.Session(&gorm.Session{}), nil
}

func (r *TutorRepositoryImpl) Search(db *gorm.DB, filter TutorFilter) ([]models.Tutor, int64, error) {
	q, err := r.scoped(db, filter)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tutors []models.Tutor
	q = q.Order(filter.OrderBy())
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := q.Find(&tutors).Error; err != nil {
		return nil, 0, err
	}
	return tutors, total, nil
}

func (r *TutorRepositoryImpl) Count(db *gorm.DB, filter TutorFilter) (int64, error) {
	q, err := r.scoped(db, filter)
	if err != nil {
		return 0, err
	}
	var total int64
	err = q.Count(&total).Error
	return total, err
}

func (r *TutorRepositoryImpl) FindByID(db *gorm.DB, id string, includeDeleted bool) (*models.Tutor, error) {
	q := db.Where("id = ?", id)
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}

	var tutor models.Tutor
	if err := q.First(&tutor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTutorNotFound
		}
		return nil, err
	}
	return &tutor, nil
}

// FindByIDs returns the listed tutors keyed by id, soft-deleted rows included.
func (r *TutorRepositoryImpl) FindByIDs(db *gorm.DB, ids []string) (map[string]models.Tutor, error) {
	out := make(map[string]models.Tutor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var tutors []models.Tutor
	if err := db.Where("id IN ?", ids).Find(&tutors).Error; err != nil {
		return nil, err
	}
	for _, t := range tutors {
		out[t.ID] = t
	}
	return out, nil
}

func (r *TutorRepositoryImpl) ExistingIDs(db *gorm.DB, ids []string) ([]string, error) {
	var found []string
	if len(ids) == 0 {
		return found, nil
	}
	err := db.Model(&models.Tutor{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Pluck("id", &found).Error
	return found, err
}

// FindActiveWithDetails loads every non-deleted tutor and joins detail rows in memory.
func (r *TutorRepositoryImpl) FindActiveWithDetails(db *gorm.DB) ([]TutorWithDetail, error) {
	var tutors []models.Tutor
	if err := db.Where("is_deleted = ?", false).Order("created_at ASC, id ASC").Find(&tutors).Error; err != nil {
		return nil, err
	}
	if len(tutors) == 0 {
		return []TutorWithDetail{}, nil
	}

	ids := make([]string, len(tutors))
	for i, t := range tutors {
		ids[i] = t.ID
	}

	var details []models.TutorDetail
	if err := db.Where("tutor_id IN ?", ids).Find(&details).Error; err != nil {
		return nil, err
	}
	byTutor := make(map[string]*models.TutorDetail, len(details))
	for i := range details {
		byTutor[details[i].TutorID] = &details[i]
	}

	out := make([]TutorWithDetail, len(tutors))
	for i, t := range tutors {
		out[i] = TutorWithDetail{Tutor: t, Detail: byTutor[t.ID]}
	}
	return out, nil
}

// FindDetail returns nil without error when the tutor has no detail record.
func (r *TutorRepositoryImpl) FindDetail(db *gorm.DB, tutorID string) (*models.TutorDetail, error) {
	var detail models.TutorDetail
	err := db.Where("tutor_id = ?", tutorID).First(&detail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *TutorRepositoryImpl) FindPapers(db *gorm.DB, tutorID string, limit int) ([]models.Paper, error) {
	var papers []models.Paper
	err := db.Where("tutor_id = ?", tutorID).Order("year DESC").Limit(limit).Find(&papers).Error
	return papers, err
}

func (r *TutorRepositoryImpl) FindProjects(db *gorm.DB, tutorID string, limit int) ([]models.TutorProject, error) {
	var projects []models.TutorProject
	err := db.Where("tutor_id = ?", tutorID).Order("start_date DESC").Limit(limit).Find(&projects).Error
	return projects, err
}

func (r *TutorRepositoryImpl) Create(db *gorm.DB, tutor *models.Tutor) error {
	return db.Create(tutor).Error
}

// SaveDetailBio creates the detail record on first write.
func (r *TutorRepositoryImpl) SaveDetailBio(db *gorm.DB, tutorID, bio string) error {
	detail, err := r.FindDetail(db, tutorID)
	if err != nil {
		return err
	}
	if detail == nil {
		return db.Create(&models.TutorDetail{TutorID: tutorID, Bio: bio}).Error
	}
	return db.Model(detail).Update("bio", bio).Error
}

func (r *TutorRepositoryImpl) ReplacePapers(db *gorm.DB, tutorID string, papers []models.Paper) error {
	if err := db.Where("tutor_id = ?", tutorID).Delete(&models.Paper{}).Error; err != nil {
		return err
	}
	if len(papers) == 0 {
		return nil
	}
	for i := range papers {
		papers[i].TutorID = tutorID
	}
	return db.Create(&papers).Error
}

func (r *TutorRepositoryImpl) ReplaceProjects(db *gorm.DB, tutorID string, projects []models.TutorProject) error {
	if err := db.Where("tutor_id = ?", tutorID).Delete(&models.TutorProject{}).Error; err != nil {
		return err
	}
	if len(projects) == 0 {
		return nil
	}
	for i := range projects {
		projects[i].TutorID = tutorID
	}
	return db.Create(&projects).Error
}

func (r *TutorRepositoryImpl) Update(db *gorm.DB, id string, fields map[string]interface{}) error {
	result := db.Model(&models.Tutor{}).Where("id = ? AND is_deleted = ?", id, false).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTutorNotFound
	}
	return nil
}

func (r *TutorRepositoryImpl) SoftDelete(db *gorm.DB, id, by string, at time.Time) error {
	result := db.Model(&models.Tutor{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": at,
			"deleted_by": by,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTutorNotFound
	}
	return nil
}

func (r *TutorRepositoryImpl) BatchSoftDelete(db *gorm.DB, ids []string, by string, at time.Time) (int64, error) {
	result := db.Model(&models.Tutor{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": at,
			"deleted_by": by,
		})
	return result.RowsAffected, result.Error
}

func (r *TutorRepositoryImpl) BatchUpdate(db *gorm.DB, ids []string, fields map[string]interface{}) (int64, error) {
	result := db.Model(&models.Tutor{}).
		Where("id IN ? AND is_deleted = ?", ids, false).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *TutorRepositoryImpl) Restore(db *gorm.DB, id, by string) error {
	result := db.Model(&models.Tutor{}).
		Where("id = ? AND is_deleted = ?", id, true).
		Updates(map[string]interface{}{
			"is_deleted": false,
			"deleted_at": nil,
			"deleted_by": "",
			"updated_by": by,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTutorNotFound
	}
	return nil
}

// DistinctValues returns sorted non-empty values of column among matching tutors.
func (r *TutorRepositoryImpl) DistinctValues(db *gorm.DB, column string, filter TutorFilter) ([]string, error) {
	q, err := r.scoped(db, filter)
	if err != nil {
		return nil, err
	}
	var values []string
	err = q.Where(column+" <> ''").Distinct(column).Order(column+" ASC").Pluck(column, &values).Error
	return values, err
}

// TopValues groups matching tutors by column, most frequent first.
func (r *TutorRepositoryImpl) TopValues(db *gorm.DB, column string, filter TutorFilter, limit int) ([]ValueCount, error) {
	q, err := r.scoped(db, filter)
	if err != nil {
		return nil, err
	}
	var rows []ValueCount
	q = q.Select(column + " AS value, COUNT(*) AS count").
		Where(column + " <> ''").
		Group(column).
		Order("count DESC, value ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err = q.Scan(&rows).Error
	return rows, err
}

// TopTags counts tag usage across active tutors. Tags live in a JSON column,
// so the unwind happens in Go.
func (r *TutorRepositoryImpl) TopTags(db *gorm.DB, limit int) ([]string, error) {
	var tutors []models.Tutor
	if err := db.Select("id", "tags").Where("is_deleted = ?", false).Find(&tutors).Error; err != nil {
		return nil, err
	}

	counts := map[string]int{}
	var order []string
	for _, t := range tutors {
		for _, tag := range t.Tags {
			if tag == "" {
				continue
			}
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	return topN(order, counts, limit), nil
}

func (r *TutorRepositoryImpl) SuggestNames(db *gorm.DB, keyword string, limit int) ([]string, error) {
	var names []string
	err := db.Model(&models.Tutor{}).
		Where(ilikeClause("name"), likePattern(keyword)).
		Where("is_deleted = ?", false).
		Order("name ASC").
		Limit(limit).
		Pluck("name", &names).Error
	return names, err
}
