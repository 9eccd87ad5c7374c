package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/pkg/apperrors"
)

func exportFixture(tutors ...models.Tutor) *ExportServiceImpl {
	svc := NewExportService(newFakeTutorRepo(tutors...), 5000).(*ExportServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 2, 10, 4, 5, 0, time.UTC) }
	return svc
}

var exportTutor = models.Tutor{
	BaseModel:       models.BaseModel{ID: "t1"},
	Name:            "张三",
	SchoolName:      "清华大学",
	RecruitmentType: models.RecruitBoth,
	HasFunding:      true,
	Tags:            []string{"AI", "CV"},
	PaperCount:      3,
}

func TestExportService_CSV(t *testing.T) {
	svc := exportFixture(exportTutor)

	file, err := svc.Export(context.Background(), nil, &dto.ExportQuery{Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, "导师信息_20240302_100405.csv", file.Filename)
	assert.Equal(t, 1, file.Rows)

	data := bytes.TrimPrefix(file.Data, []byte("\ufeff"))
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "张三", records[1][1])
	assert.Equal(t, "学硕+专硕", records[1][9])
	assert.Equal(t, "是", records[1][10])
	assert.Equal(t, "3", records[1][11])
	assert.Equal(t, "AI, CV", records[1][13])
}

func TestExportService_Excel(t *testing.T) {
	svc := exportFixture(exportTutor)

	file, err := svc.Export(context.Background(), nil, &dto.ExportQuery{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(file.Filename, ".xlsx"))
	assert.Equal(t, contentTypeXLSX, file.ContentType)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "姓名", rows[0][1])
	assert.Equal(t, "清华大学", rows[1][3])
}

func TestExportService_NoData(t *testing.T) {
	svc := exportFixture()

	_, err := svc.Export(context.Background(), nil, &dto.ExportQuery{Format: "csv"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNoExportData))
}

func TestExportService_Stats(t *testing.T) {
	svc := exportFixture(exportTutor)

	stats, err := svc.Stats(context.Background(), nil, &dto.ExportQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCount)
	assert.Equal(t, 5000, stats.MaxExportLimit)
	assert.True(t, stats.CanExport)
	assert.Empty(t, stats.SchoolStats)
}
