package algorithms

import (
	"math"
	"sort"
	"strings"
)

const (
	DisciplineWeight = 40.0
	KeywordWeight    = 60.0

	// MaxMatchResults caps every ranked result set.
	MaxMatchResults = 20
)

var seniorTitles = []string{"教授", "副教授", "研究员"}

// Preferences are stored with a match request. Scoring does not read them yet.
type Preferences struct {
	CrossSchool  bool `json:"cross_school"`
	HighOutput   bool `json:"high_output"`
	YoungScholar bool `json:"young_scholar"`
}

type MatchQuery struct {
	Discipline  string
	Keywords    []string
	Preferences Preferences
}

// CandidateTutor is the read-only view of a tutor merged with its detail record.
// Missing optional fields are empty strings.
type CandidateTutor struct {
	ID                  string
	Name                string
	Title               string
	School              string
	Department          string
	Avatar              string
	ResearchDirection   string
	Bio                 string
	AchievementsSummary string
}

// TutorSnapshot is frozen into a result at scoring time.
type TutorSnapshot struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Title             string `json:"title"`
	School            string `json:"school"`
	Department        string `json:"department"`
	Avatar            string `json:"avatar"`
	ResearchDirection string `json:"research_direction"`
}

type MatchResult struct {
	TutorID     string        `json:"tutor_id"`
	MatchScore  float64       `json:"match_score"`
	MatchReason string        `json:"match_reason"`
	TutorInfo   TutorSnapshot `json:"tutor_info"`
}

// ParseKeywords splits a comma separated list, trimming blanks and keeping order.
func ParseKeywords(raw string) []string {
	parts := strings.Split(raw, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

// Score returns a value in [0,100] rounded to two decimals.
func Score(c CandidateTutor, discipline string, keywords []string) float64 {
	score := 0.0
	if disciplineMatches(c, discipline) {
		score += DisciplineWeight
	}
	if len(keywords) > 0 {
		matched := len(matchedKeywords(c, keywords))
		score += float64(matched) / float64(len(keywords)) * KeywordWeight
	}
	return round2(score)
}

// Reason explains a match, one sentence per matched fact.
func Reason(c CandidateTutor, discipline string, keywords []string) string {
	var sentences []string

	if disciplineMatches(c, discipline) {
		sentences = append(sentences, "研究方向包含您感兴趣的「"+discipline+"」")
	}

	if matched := matchedKeywords(c, keywords); len(matched) > 0 {
		sentences = append(sentences, "研究内容涵盖您关注的关键词："+strings.Join(matched, ", "))
	}

	if c.Title != "" {
		title := strings.ToLower(c.Title)
		for _, t := range seniorTitles {
			if strings.Contains(title, t) {
				sentences = append(sentences, "具有"+title+"职称，学术经验丰富")
				break
			}
		}
	}

	if len(sentences) == 0 {
		sentences = append(sentences, "基于您的研究兴趣进行的智能匹配推荐")
	}
	return strings.Join(sentences, "；") + "。"
}

// Rank scores every candidate, drops zero scores, and returns at most
// MaxMatchResults entries ordered by score. Equal scores keep input order.
func Rank(candidates []CandidateTutor, discipline string, keywords []string) []MatchResult {
	results := make([]MatchResult, 0)
	for _, c := range candidates {
		score := Score(c, discipline, keywords)
		if score <= 0 {
			continue
		}
		results = append(results, MatchResult{
			TutorID:     c.ID,
			MatchScore:  score,
			MatchReason: Reason(c, discipline, keywords),
			TutorInfo:   snapshot(c),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	if len(results) > MaxMatchResults {
		results = results[:MaxMatchResults]
	}
	return results
}

func disciplineMatches(c CandidateTutor, discipline string) bool {
	if c.ResearchDirection == "" {
		return false
	}
	return strings.Contains(strings.ToLower(c.ResearchDirection), strings.ToLower(discipline))
}

func matchedKeywords(c CandidateTutor, keywords []string) []string {
	text := strings.ToLower(c.ResearchDirection + " " + c.Bio + " " + c.AchievementsSummary)
	var matched []string
	for _, k := range keywords {
		if strings.Contains(text, strings.ToLower(k)) {
			matched = append(matched, k)
		}
	}
	return matched
}

func snapshot(c CandidateTutor) TutorSnapshot {
	return TutorSnapshot{
		ID:                c.ID,
		Name:              c.Name,
		Title:             c.Title,
		School:            c.School,
		Department:        c.Department,
		Avatar:            c.Avatar,
		ResearchDirection: c.ResearchDirection,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
