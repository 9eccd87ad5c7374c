package repositories

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Columns matched by a free-text keyword.
var (
	ListKeywordColumns   = []string{"name", "research_direction"}
	SearchKeywordColumns = []string{"name", "research_direction", "school_name", "department_name"}
)

// sortColumns whitelists ORDER BY targets.
var sortColumns = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"name":          "name",
	"paper_count":   "paper_count",
	"project_count": "project_count",
}

// TutorFilter describes one tutor query. Zero values mean "no constraint".
type TutorFilter struct {
	Keyword        string
	KeywordColumns []string

	Name              string
	School            string
	Department        string
	City              string
	ResearchDirection string
	Title             string
	RecruitmentType   string

	HasProjects *bool
	HasFunding  *bool
	Tags        []string

	MinPapers   *int
	MaxPapers   *int
	MinProjects *int
	MaxProjects *int

	IncludeDeleted bool

	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// ToSQL builds the WHERE clause. dialect is the gorm dialector name and only
// affects how JSON columns are cast to text.
func (f TutorFilter) ToSQL(dialect string) (string, []interface{}, error) {
	conds := sq.And{}

	if !f.IncludeDeleted {
		conds = append(conds, sq.Eq{"is_deleted": false})
	}

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		cols := f.KeywordColumns
		if len(cols) == 0 {
			cols = SearchKeywordColumns
		}
		anyOf := sq.Or{}
		for _, col := range cols {
			anyOf = append(anyOf, ilike(col, kw))
		}
		conds = append(conds, anyOf)
	}

	for _, c := range []struct{ col, value string }{
		{"name", f.Name},
		{"school_name", f.School},
		{"department_name", f.Department},
		{"city", f.City},
		{"research_direction", f.ResearchDirection},
		{"title", f.Title},
	} {
		if v := strings.TrimSpace(c.value); v != "" {
			conds = append(conds, ilike(c.col, v))
		}
	}

	if f.RecruitmentType != "" {
		conds = append(conds, sq.Eq{"recruitment_type": f.RecruitmentType})
	}
	if f.HasFunding != nil {
		conds = append(conds, sq.Eq{"has_funding": *f.HasFunding})
	}
	if f.HasProjects != nil {
		if *f.HasProjects {
			conds = append(conds, sq.Gt{"project_count": 0})
		} else {
			conds = append(conds, sq.Eq{"project_count": 0})
		}
	}

	if len(f.Tags) > 0 {
		tagCol := textCast(dialect, "tags")
		anyOf := sq.Or{}
		for _, tag := range f.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				anyOf = append(anyOf, sq.Expr(tagCol+" LIKE ?"+likeEscape, `%"`+likeLiteral(tag)+`"%`))
			}
		}
		if len(anyOf) > 0 {
			conds = append(conds, anyOf)
		}
	}

	if f.MinPapers != nil {
		conds = append(conds, sq.GtOrEq{"paper_count": *f.MinPapers})
	}
	if f.MaxPapers != nil {
		conds = append(conds, sq.LtOrEq{"paper_count": *f.MaxPapers})
	}
	if f.MinProjects != nil {
		conds = append(conds, sq.GtOrEq{"project_count": *f.MinProjects})
	}
	if f.MaxProjects != nil {
		conds = append(conds, sq.LtOrEq{"project_count": *f.MaxProjects})
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return conds.ToSql()
}

// OrderBy returns a safe ORDER BY clause, created_at DESC by default.
func (f TutorFilter) OrderBy() string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return col + " " + dir + ", id " + dir
}

func ilike(col, value string) sq.Sqlizer {
	return sq.Expr(ilikeClause(col), likePattern(value))
}

func textCast(dialect, col string) string {
	if dialect == "mysql" {
		return "CAST(" + col + " AS CHAR)"
	}
	return "CAST(" + col + " AS TEXT)"
}
