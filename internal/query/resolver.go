// Package query answers recruiter questions about a set of parsed CVs.
package query

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/muhammadolammi/cvqueryworker/internal/analytics"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

const jobRequirementsQuery = "identify matching candidates for job requirements"

// followUpPhrases mark a question about the candidates discussed last.
var followUpPhrases = []string{"what about", "their experience", "their skills", "their education"}

var firstNumber = regexp.MustCompile(`\d+`)

// Resolver answers one query at a time. It holds no conversation state: the
// ids of the candidates currently under discussion come in as scope and the
// narrowed scope goes back out to the caller.
type Resolver struct {
	analyzer *Analyzer
	now      func() time.Time
	logger   zerolog.Logger
}

// NewResolver wires a resolver to analyzer, which also supplies the clock
// used for "current" date ranges. A nil analyzer answers locally only.
func NewResolver(analyzer *Analyzer, logger zerolog.Logger) *Resolver {
	if analyzer == nil {
		analyzer = NewAnalyzer(nil)
	}
	return &Resolver{analyzer: analyzer, now: analyzer.now, logger: logger}
}

// Resolve answers q against all, returning the answer and the candidate ids
// a follow-up question should be scoped to.
func (r *Resolver) Resolve(ctx context.Context, q string, all resume.Collection, scope []string) (Answer, []string) {
	q = strings.ToLower(strings.TrimSpace(q))

	c := all
	if len(scope) > 0 && isFollowUp(q) {
		c = all.Filter(scope)
		r.logger.Debug().Strs("scope", scope).Int("candidates", len(c)).Msg("follow-up query scoped to previous candidates")
	}

	switch {
	case q == "skills":
		return textAnswer("Skills: " + strings.Join(gather(c, skillsOf), ", ")), c.IDs()
	case q == "experience":
		return textAnswer("Experience: " + strings.Join(gather(c, experienceOf), "; ")), c.IDs()
	case q == "education":
		return textAnswer("Education: " + strings.Join(gather(c, educationOf), "; ")), c.IDs()
	case strings.Contains(q, "skill"):
		skill := lastPart(q, "skill")
		ids := matching(c, skill, skillsOf)
		return textAnswer(fmt.Sprintf("Found %d candidates with skill %s", len(ids), skill)), ids
	case strings.Contains(q, "experience in"):
		industry := lastPart(q, "experience in")
		ids := matching(c, industry, experienceOf)
		return textAnswer(fmt.Sprintf("Found %d candidates with experience in %s", len(ids), industry)), ids
	case strings.Contains(q, jobRequirementsQuery):
		names, ids := r.matchRequirements(q, c)
		return textAnswer(fmt.Sprintf("Matched %d candidates: %s", len(names), strings.Join(names, ", "))), ids
	default:
		return payloadAnswer(r.analyzer.Analyze(ctx, q, c)), scope
	}
}

// matchRequirements checks every candidate against the clauses after
// "job requirements:". All skill clauses must hold, but a single satisfied
// years clause is enough when several are given.
func (r *Resolver) matchRequirements(q string, c resume.Collection) (names, ids []string) {
	requirements := strings.Split(lastPart(q, "job requirements:"), " and ")
	totals := analytics.ExperienceTotals(c, r.now())

	names, ids = []string{}, []string{}
	for i, cand := range c {
		skills := strings.ToLower(strings.Join(cand.Record.Skills, " "))

		skillsMatch := true
		hasYears, yearsMatch := false, false
		for _, req := range requirements {
			req = strings.TrimSpace(req)
			if !strings.Contains(req, "years") {
				if !strings.Contains(skills, req) {
					skillsMatch = false
				}
				continue
			}
			hasYears = true
			minYears, ok := minimumYears(req)
			if ok && totals[i].Years >= minYears {
				yearsMatch = true
			}
		}

		if skillsMatch && (!hasYears || yearsMatch) {
			names = append(names, cand.DisplayName())
			ids = append(ids, cand.ID)
		}
	}
	return names, ids
}

func minimumYears(req string) (int, bool) {
	m := firstNumber.FindString(req)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

func isFollowUp(q string) bool {
	for _, p := range followUpPhrases {
		if strings.Contains(q, p) {
			return true
		}
	}
	return false
}

// lastPart returns the trimmed text after the last occurrence of sep, or all
// of s when sep is absent.
func lastPart(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		s = s[i+len(sep):]
	}
	return strings.TrimSpace(s)
}

func skillsOf(r resume.Record) []string     { return r.Skills }
func experienceOf(r resume.Record) []string { return r.WorkExperience }
func educationOf(r resume.Record) []string  { return r.Education }

func gather(c resume.Collection, field func(resume.Record) []string) []string {
	var out []string
	for _, cand := range c {
		out = append(out, field(cand.Record)...)
	}
	return out
}

func matching(c resume.Collection, needle string, field func(resume.Record) []string) []string {
	needle = strings.ToLower(needle)
	ids := []string{}
	for _, cand := range c {
		if strings.Contains(strings.ToLower(strings.Join(field(cand.Record), ", ")), needle) {
			ids = append(ids, cand.ID)
		}
	}
	return ids
}
