package resume

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"placement/internal/logger"
)

const (
	VerdictPass        = "pass"
	VerdictNeedsReview = "needs-review"
	VerdictFail        = "fail"

	minWords = 150
	maxWords = 1200
)

// Result is the review returned to the client and stored as JSON.
type Result struct {
	Verdict         string   `json:"verdict"`
	Score           int      `json:"score"`
	WordCount       int      `json:"word_count"`
	SectionsFound   []string `json:"sections_found"`
	MissingSections []string `json:"missing_sections"`
	Keywords        []string `json:"keywords"`
	HasEmail        bool     `json:"has_email"`
	HasPhone        bool     `json:"has_phone"`
	Suggestions     []string `json:"suggestions"`
}

var (
	sections = []string{"education", "experience", "skills", "projects", "certifications", "summary"}

	sectionAliases = map[string][]string{
		"experience":     {"experience", "work history", "employment", "internship"},
		"summary":        {"summary", "objective", "profile", "about me"},
		"certifications": {"certification", "certificate", "courses"},
		"projects":       {"project"},
		"skills":         {"skills", "technical skills", "competencies"},
		"education":      {"education", "academic", "qualification"},
	}

	actionVerbs = []string{"developed", "designed", "implemented", "built", "led", "managed", "created",
		"improved", "optimized", "analyzed", "deployed", "automated", "collaborated", "achieved", "delivered"}

	techKeywords = []string{"python", "java", "golang", "javascript", "typescript", "sql", "react", "node",
		"docker", "kubernetes", "aws", "azure", "git", "linux", "html", "css", "c++", "machine learning",
		"data structures", "algorithms", "rest", "api", "excel", "communication", "teamwork"}

	emailRe = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\-\s()]{8,}\d`)
	wordRe  = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+#'-]*`)
)

// Analyzer scores resumes with text heuristics.
type Analyzer struct{}

// Analyze extracts the file's text and scores it. Unreadable files score as empty text.
func (Analyzer) Analyze(ctx context.Context, path string) Result {
	text, err := ExtractText(path)
	if err != nil {
		logger.From(ctx).Warn("resume text extraction failed", "path", path, "err", err)
		res := Score("")
		res.Suggestions = append([]string{"We could not read text from this file. Try a text-based PDF or DOCX."}, res.Suggestions...)
		return res
	}
	return Score(text)
}

// Score grades resume text out of 100: sections 30, contact 20, length 20, action verbs 10, keywords 20.
func Score(text string) Result {
	lower := strings.ToLower(text)
	res := Result{
		SectionsFound:   []string{},
		MissingSections: []string{},
		Keywords:        []string{},
		Suggestions:     []string{},
	}

	for _, s := range sections {
		if containsAny(lower, sectionAliases[s]) {
			res.SectionsFound = append(res.SectionsFound, s)
		} else {
			res.MissingSections = append(res.MissingSections, s)
		}
	}
	score := 30 * len(res.SectionsFound) / len(sections)

	res.HasEmail = emailRe.MatchString(text)
	res.HasPhone = phoneRe.MatchString(text)
	if res.HasEmail {
		score += 10
	}
	if res.HasPhone {
		score += 10
	}

	res.WordCount = len(wordRe.FindAllString(text, -1))
	switch {
	case res.WordCount >= minWords && res.WordCount <= maxWords:
		score += 20
	case res.WordCount < minWords:
		score += 20 * res.WordCount / minWords
	default:
		score += 10
	}

	verbs := 0
	for _, v := range actionVerbs {
		if strings.Contains(lower, v) {
			verbs++
		}
	}
	score += min(verbs, 5) * 2

	for _, k := range techKeywords {
		if containsWord(lower, k) {
			res.Keywords = append(res.Keywords, k)
		}
	}
	sort.Strings(res.Keywords)
	score += min(len(res.Keywords), 10) * 2

	res.Score = min(score, 100)
	res.Verdict = verdictFor(res.Score)
	res.Suggestions = suggestions(res, verbs)
	return res
}

func verdictFor(score int) string {
	switch {
	case score >= 70:
		return VerdictPass
	case score >= 40:
		return VerdictNeedsReview
	}
	return VerdictFail
}

func suggestions(r Result, verbs int) []string {
	var out []string
	for _, s := range r.MissingSections {
		out = append(out, "Add a "+strings.ToUpper(s[:1])+s[1:]+" section.")
	}
	if !r.HasEmail {
		out = append(out, "Include a professional email address.")
	}
	if !r.HasPhone {
		out = append(out, "Include a phone number.")
	}
	if r.WordCount < minWords {
		out = append(out, "Your resume looks short. Describe your projects and experience in more detail.")
	} else if r.WordCount > maxWords {
		out = append(out, "Your resume is long. Keep it to one or two pages.")
	}
	if verbs < 3 {
		out = append(out, "Start bullet points with action verbs such as developed, led or optimized.")
	}
	if len(r.Keywords) < 5 {
		out = append(out, "Mention the tools and technologies you have worked with.")
	}
	if out == nil {
		out = []string{}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// containsWord matches k on word boundaries; k may contain symbols such as "c++".
func containsWord(s, k string) bool {
	for i := 0; ; {
		j := strings.Index(s[i:], k)
		if j < 0 {
			return false
		}
		start, end := i+j, i+j+len(k)
		if (start == 0 || !isWordByte(s[start-1])) && (end == len(s) || !isWordByte(s[end])) {
			return true
		}
		i = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
