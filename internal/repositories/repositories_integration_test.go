package repositories

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"tutormatch_backend/internal/database"
	"tutormatch_backend/internal/models"
)

// testDB opens TEST_DATABASE_URL inside a transaction rolled back on cleanup.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	driver := os.Getenv("TEST_DATABASE_DRIVER")

	db, err := database.Open(driver, dsn, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	tx := db.Begin()
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func seedTutor(t *testing.T, db *gorm.DB, name, school, research string, tags ...string) *models.Tutor {
	t.Helper()
	tutor := &models.Tutor{
		Name:              name,
		Title:             "教授",
		SchoolName:        school,
		DepartmentName:    "计算机学院",
		ResearchDirection: research,
		Tags:              datatypes.JSONSlice[string](tags),
	}
	require.NoError(t, NewTutorRepository().Create(db, tutor))
	return tutor
}

func TestTutorRepository_SearchAndSoftDelete(t *testing.T) {
	db := testDB(t)
	repo := NewTutorRepository()
	school := "测试大学-" + uuid.NewString()[:8]

	a := seedTutor(t, db, "甲", school, "机器学习", "AI")
	seedTutor(t, db, "乙", school, "材料科学", "Materials")

	tutors, total, err := repo.Search(db, TutorFilter{School: school, Tags: []string{"AI"}, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, tutors, 1)
	assert.Equal(t, a.ID, tutors[0].ID)

	require.NoError(t, repo.SoftDelete(db, a.ID, "admin", time.Now()))
	assert.ErrorIs(t, repo.SoftDelete(db, a.ID, "admin", time.Now()), ErrTutorNotFound)

	_, err = repo.FindByID(db, a.ID, false)
	assert.ErrorIs(t, err, ErrTutorNotFound)

	got, err := repo.FindByID(db, a.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	require.NoError(t, repo.Restore(db, a.ID, "admin"))
	_, err = repo.FindByID(db, a.ID, false)
	assert.NoError(t, err)
}

func TestTutorRepository_FindActiveWithDetails(t *testing.T) {
	db := testDB(t)
	repo := NewTutorRepository()

	tutor := seedTutor(t, db, "丙", "测试大学", "人工智能")
	require.NoError(t, db.Create(&models.TutorDetail{TutorID: tutor.ID, Bio: "深度学习"}).Error)

	rows, err := repo.FindActiveWithDetails(db)
	require.NoError(t, err)

	var found bool
	for _, row := range rows {
		if row.Tutor.ID == tutor.ID {
			found = true
			require.NotNil(t, row.Detail)
			assert.Equal(t, "深度学习", row.Detail.Bio)
		}
	}
	assert.True(t, found)
}

func TestMatchHistoryRepository_OwnerScoped(t *testing.T) {
	db := testDB(t)
	repo := NewMatchHistoryRepository()

	h := &models.MatchHistory{
		ID:          uuid.NewString(),
		UserID:      "owner-" + uuid.NewString(),
		Discipline:  "AI",
		Keywords:    "a,b",
		Preferences: datatypes.JSON(`{}`),
		ResultJSON:  datatypes.JSON(`[]`),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, repo.Create(db, h))

	_, err := repo.FindByIDAndUser(db, h.ID, "someone-else")
	assert.ErrorIs(t, err, ErrMatchHistoryNotFound)

	got, err := repo.FindByIDAndUser(db, h.ID, h.UserID)
	require.NoError(t, err)
	assert.Equal(t, "a,b", got.Keywords)

	items, total, err := repo.ListByUser(db, h.UserID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, items, 1)
}

func TestFavoriteRepository_CollectedIDs(t *testing.T) {
	db := testDB(t)
	repo := NewFavoriteRepository()
	user := "u-" + uuid.NewString()

	require.NoError(t, repo.Create(db, &models.Favorite{UserID: user, TargetType: models.FavoriteTutor, TargetID: "t1"}))

	got, err := repo.CollectedIDs(db, user, models.FavoriteTutor, []string{"t1", "t2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"t1": true}, got)

	removed, err := repo.Delete(db, user, models.FavoriteTutor, "t1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(db, user, models.FavoriteTutor, "t1")
	require.NoError(t, err)
	assert.False(t, removed)
}
