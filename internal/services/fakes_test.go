package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/repositories"
)

// fakeTutorRepo keeps tutors in memory. Methods a test does not override
// panic through the embedded nil interface.
type fakeTutorRepo struct {
	repositories.TutorRepository

	tutors  map[string]*models.Tutor
	details map[string]*models.TutorDetail
	papers  map[string][]models.Paper
	names   []string
	values  map[string][]string

	withDetailsCalls int
	err              error
}

func newFakeTutorRepo(tutors ...models.Tutor) *fakeTutorRepo {
	r := &fakeTutorRepo{
		tutors:  map[string]*models.Tutor{},
		details: map[string]*models.TutorDetail{},
		papers:  map[string][]models.Paper{},
		values:  map[string][]string{},
	}
	for i := range tutors {
		t := tutors[i]
		r.tutors[t.ID] = &t
	}
	return r
}

func (r *fakeTutorRepo) FindByID(_ *gorm.DB, id string, includeDeleted bool) (*models.Tutor, error) {
	t, ok := r.tutors[id]
	if !ok || (t.IsDeleted && !includeDeleted) {
		return nil, repositories.ErrTutorNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTutorRepo) FindByIDs(_ *gorm.DB, ids []string) (map[string]models.Tutor, error) {
	out := map[string]models.Tutor{}
	for _, id := range ids {
		if t, ok := r.tutors[id]; ok {
			out[id] = *t
		}
	}
	return out, nil
}

func (r *fakeTutorRepo) ExistingIDs(_ *gorm.DB, ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if t, ok := r.tutors[id]; ok && !t.IsDeleted {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *fakeTutorRepo) FindActiveWithDetails(_ *gorm.DB) ([]repositories.TutorWithDetail, error) {
	r.withDetailsCalls++
	if r.err != nil {
		return nil, r.err
	}
	var out []repositories.TutorWithDetail
	for _, t := range r.sorted() {
		if !t.IsDeleted {
			out = append(out, repositories.TutorWithDetail{Tutor: t, Detail: r.details[t.ID]})
		}
	}
	return out, nil
}

func (r *fakeTutorRepo) FindDetail(_ *gorm.DB, tutorID string) (*models.TutorDetail, error) {
	return r.details[tutorID], nil
}

func (r *fakeTutorRepo) FindPapers(_ *gorm.DB, tutorID string, limit int) ([]models.Paper, error) {
	p := r.papers[tutorID]
	if len(p) > limit {
		p = p[:limit]
	}
	return p, nil
}

func (r *fakeTutorRepo) FindProjects(_ *gorm.DB, _ string, _ int) ([]models.TutorProject, error) {
	return nil, nil
}

func (r *fakeTutorRepo) SoftDelete(_ *gorm.DB, id, by string, at time.Time) error {
	t := r.tutors[id]
	t.IsDeleted, t.DeletedBy, t.DeletedAt = true, by, &at
	return nil
}

func (r *fakeTutorRepo) BatchSoftDelete(db *gorm.DB, ids []string, by string, at time.Time) (int64, error) {
	for _, id := range ids {
		_ = r.SoftDelete(db, id, by, at)
	}
	return int64(len(ids)), nil
}

func (r *fakeTutorRepo) BatchUpdate(_ *gorm.DB, ids []string, fields map[string]interface{}) (int64, error) {
	for _, id := range ids {
		if title, ok := fields["title"].(string); ok {
			r.tutors[id].Title = title
		}
	}
	return int64(len(ids)), nil
}

func (r *fakeTutorRepo) Restore(_ *gorm.DB, id, _ string) error {
	r.tutors[id].IsDeleted = false
	return nil
}

func (r *fakeTutorRepo) Search(_ *gorm.DB, f repositories.TutorFilter) ([]models.Tutor, int64, error) {
	var out []models.Tutor
	for _, t := range r.sorted() {
		if !t.IsDeleted {
			out = append(out, t)
		}
	}
	total := int64(len(out))
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *fakeTutorRepo) Count(db *gorm.DB, f repositories.TutorFilter) (int64, error) {
	_, total, err := r.Search(db, f)
	return total, err
}

func (r *fakeTutorRepo) TopValues(_ *gorm.DB, column string, _ repositories.TutorFilter, _ int) ([]repositories.ValueCount, error) {
	var out []repositories.ValueCount
	for _, v := range r.values[column] {
		out = append(out, repositories.ValueCount{Value: v, Count: 1})
	}
	return out, nil
}

func (r *fakeTutorRepo) DistinctValues(_ *gorm.DB, column string, _ repositories.TutorFilter) ([]string, error) {
	return r.values[column], nil
}

func (r *fakeTutorRepo) TopTags(_ *gorm.DB, _ int) ([]string, error) {
	return r.values["tags"], nil
}

func (r *fakeTutorRepo) SuggestNames(_ *gorm.DB, _ string, limit int) ([]string, error) {
	if len(r.names) > limit {
		return r.names[:limit], nil
	}
	return r.names, nil
}

func (r *fakeTutorRepo) sorted() []models.Tutor {
	out := make([]models.Tutor, 0, len(r.tutors))
	for _, t := range r.tutors {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type favKey struct{ user, target string }

type fakeFavoriteRepo struct {
	repositories.FavoriteRepository
	rows map[favKey]models.Favorite
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{rows: map[favKey]models.Favorite{}}
}

func (r *fakeFavoriteRepo) Find(_ *gorm.DB, userID string, _ models.FavoriteTarget, targetID string) (*models.Favorite, error) {
	f, ok := r.rows[favKey{userID, targetID}]
	if !ok {
		return nil, repositories.ErrFavoriteNotFound
	}
	return &f, nil
}

func (r *fakeFavoriteRepo) Create(_ *gorm.DB, fav *models.Favorite) error {
	fav.CreatedAt = time.Now()
	r.rows[favKey{fav.UserID, fav.TargetID}] = *fav
	return nil
}

func (r *fakeFavoriteRepo) Delete(_ *gorm.DB, userID string, _ models.FavoriteTarget, targetID string) (bool, error) {
	k := favKey{userID, targetID}
	if _, ok := r.rows[k]; !ok {
		return false, nil
	}
	delete(r.rows, k)
	return true, nil
}

func (r *fakeFavoriteRepo) ListByUser(_ *gorm.DB, userID string, _ models.FavoriteTarget, _, _ int) ([]models.Favorite, int64, error) {
	var out []models.Favorite
	for k, f := range r.rows {
		if k.user == userID {
			out = append(out, f)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeFavoriteRepo) CollectedIDs(_ *gorm.DB, userID string, _ models.FavoriteTarget, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if _, ok := r.rows[favKey{userID, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type fakeHistoryRepo struct {
	rows []models.MatchHistory
	err  error
}

func (r *fakeHistoryRepo) Create(_ *gorm.DB, h *models.MatchHistory) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, *h)
	return nil
}

func (r *fakeHistoryRepo) FindByIDAndUser(_ *gorm.DB, id, userID string) (*models.MatchHistory, error) {
	for _, h := range r.rows {
		if h.ID == id && h.UserID == userID {
			return &h, nil
		}
	}
	return nil, repositories.ErrMatchHistoryNotFound
}

func (r *fakeHistoryRepo) ListByUser(_ *gorm.DB, userID string, limit, offset int) ([]models.MatchHistory, int64, error) {
	var out []models.MatchHistory
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

type fakeUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}}
	for i := range users {
		u := users[i]
		r.users[u.ID] = &u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByOpenID(_ *gorm.DB, openID string) (*models.User, error) {
	for _, u := range r.users {
		if u.OpenID != nil && *u.OpenID == openID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email != nil && *u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ *gorm.DB, u *models.User) error {
	if u.ID == "" {
		u.ID = "user-" + string(rune('a'+len(r.users)))
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) UpdateFields(_ *gorm.DB, id string, fields map[string]interface{}) error {
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case "nickname":
			u.Nickname = s
		case "avatar":
			u.Avatar = s
		case "school":
			u.School = s
		case "major":
			u.Major = s
		case "grade":
			u.Grade = s
		}
	}
	return nil
}

func (r *fakeUserRepo) CountByRole(_ *gorm.DB, role models.UserRole) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeBookingRepo struct {
	repositories.BookingRepository
	rows map[string]*models.Booking
}

func newFakeBookingRepo(bookings ...models.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{rows: map[string]*models.Booking{}}
	for i := range bookings {
		b := bookings[i]
		r.rows[b.ID] = &b
	}
	return r
}

func (r *fakeBookingRepo) FindByID(_ *gorm.DB, id string) (*models.Booking, error) {
	b, ok := r.rows[id]
	if !ok {
		return nil, repositories.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) ListByUser(_ *gorm.DB, userID string, status models.BookingStatus) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range r.rows {
		if b.UserID == userID && (status == "" || b.Status == status) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ *gorm.DB, id string, from, to models.BookingStatus) error {
	b, ok := r.rows[id]
	if !ok || b.Status != from {
		return repositories.ErrBookingNotFound
	}
	b.Status = to
	return nil
}

func (r *fakeBookingRepo) ExpirePast(_ *gorm.DB, now time.Time, from, to models.BookingStatus) (int64, error) {
	var n int64
	for _, b := range r.rows {
		if b.Status == from && b.Date.Before(now) {
			b.Status = to
			n++
		}
	}
	return n, nil
}
