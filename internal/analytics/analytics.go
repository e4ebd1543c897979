// Package analytics computes deterministic comparisons over parsed CVs.
package analytics

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

var dateRange = regexp.MustCompile(`(?i)(\d{4})\s*-\s*(current|\d{4})`)

type Experience struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Years   int      `json:"years"`
	Details []string `json:"details"`
}

// ExperienceTotals sums the span of every dated work line per candidate.
// "current" resolves to now's year. Lines without a range are left out of
// both the total and the details.
func ExperienceTotals(c resume.Collection, now time.Time) []Experience {
	out := make([]Experience, 0, len(c))
	for _, cand := range c {
		exp := Experience{ID: cand.ID, Name: cand.DisplayName(), Details: []string{}}
		for _, line := range cand.Record.WorkExperience {
			years, ok := LineYears(line, now)
			if !ok {
				continue
			}
			exp.Years += years
			exp.Details = append(exp.Details, line)
		}
		out = append(out, exp)
	}
	return out
}

// LineYears returns end-start for the first date range in line.
func LineYears(line string, now time.Time) (int, bool) {
	m := dateRange.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	end := now.Year()
	if !strings.EqualFold(m[2], "current") {
		if end, err = strconv.Atoi(m[2]); err != nil {
			return 0, false
		}
	}
	return end - start, true
}

type Degree int

const (
	DegreeUnknown Degree = iota
	DegreeBachelor
	DegreeMaster
)

func (d Degree) String() string {
	switch d {
	case DegreeMaster:
		return "Master's"
	case DegreeBachelor:
		return "Bachelor's"
	default:
		return "Unknown"
	}
}

func (d Degree) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type Education struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	HighestDegree Degree   `json:"highest_degree"`
	Details       []string `json:"details"`
}

// EducationLevels finds the highest degree mentioned in each candidate's
// education lines. A bachelor line never downgrades a master found earlier.
func EducationLevels(c resume.Collection) []Education {
	out := make([]Education, 0, len(c))
	for _, cand := range c {
		edu := Education{ID: cand.ID, Name: cand.DisplayName(), Details: []string{}}
		for _, line := range cand.Record.Education {
			if d := lineDegree(line); d > edu.HighestDegree {
				edu.HighestDegree = d
			}
			edu.Details = append(edu.Details, line)
		}
		out = append(out, edu)
	}
	return out
}

func lineDegree(line string) Degree {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "master"):
		return DegreeMaster
	case strings.Contains(lower, "bachelor"):
		return DegreeBachelor
	}
	return DegreeUnknown
}

type SkillSet struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Skills []string `json:"skills"`
}

func SkillSets(c resume.Collection) []SkillSet {
	out := make([]SkillSet, 0, len(c))
	for _, cand := range c {
		skills := make([]string, 0, len(cand.Record.Skills))
		for _, s := range cand.Record.Skills {
			skills = append(skills, strings.ToLower(s))
		}
		out = append(out, SkillSet{ID: cand.ID, Name: cand.DisplayName(), Count: len(skills), Skills: skills})
	}
	return out
}

// Overlap splits two skill lists into shared skills and the skills unique to
// each side. Results are deduplicated and keep first-appearance order.
func Overlap(a, b []string) (common, onlyA, onlyB []string) {
	inA := toSet(a)
	inB := toSet(b)
	common, onlyA, onlyB = []string{}, []string{}, []string{}

	for _, s := range dedupe(a) {
		if _, ok := inB[s]; ok {
			common = append(common, s)
		} else {
			onlyA = append(onlyA, s)
		}
	}
	for _, s := range dedupe(b) {
		if _, ok := inA[s]; !ok {
			onlyB = append(onlyB, s)
		}
	}
	return common, onlyA, onlyB
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
