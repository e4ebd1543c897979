package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/muhammadolammi/cvqueryworker/internal/analytics"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

// Comparison phrases handled without the generator.
const (
	PhraseExperience       = "compare their years of experience"
	PhraseEducation        = "compare their education levels"
	PhraseEducationShort   = "compare education"
	PhraseSkills           = "compare their skills"
	supportedQueriesAdvice = "Supported queries: 'Compare their years of experience', 'Compare their education levels', 'Compare their skills'"
)

const (
	limitedStrengths       = "Limited data for full analysis"
	limitedRecommendations = "Upload another CV for comparison"
	emptyRecommendations   = "Upload at least two CVs."
	notAvailable           = "N/A"
)

func localAnswer(q string, c resume.Collection, now time.Time) Payload {
	switch {
	case strings.Contains(q, PhraseExperience):
		return compareExperience(analytics.ExperienceTotals(c, now))
	case strings.Contains(q, PhraseEducation), strings.Contains(q, PhraseEducationShort):
		return compareEducation(analytics.EducationLevels(c))
	case strings.Contains(q, PhraseSkills):
		return compareSkills(analytics.SkillSets(c))
	default:
		return Payload{
			Summary:         fmt.Sprintf("Query '%s' not supported yet. CVs include: %s", q, strings.Join(c.Names(), ", ")),
			Strengths:       notAvailable,
			Recommendations: supportedQueriesAdvice,
		}
	}
}

func compareExperience(exp []analytics.Experience) Payload {
	switch len(exp) {
	case 0:
		return Payload{
			Summary:         "No CVs available to compare years of experience.",
			Strengths:       notAvailable,
			Recommendations: emptyRecommendations,
		}
	case 1:
		return Payload{
			Summary: fmt.Sprintf("%s has approximately %d years of experience (%s). No other CVs available for comparison.",
				exp[0].Name, exp[0].Years, strings.Join(exp[0].Details, "; ")),
			Strengths:       limitedStrengths,
			Recommendations: limitedRecommendations,
		}
	}

	a, b := exp[0], exp[1]
	longer, shorter := a, b
	if b.Years > a.Years {
		longer, shorter = b, a
	}
	return Payload{
		Summary: fmt.Sprintf("%s has approximately %d years of experience (%s). %s has approximately %d years of experience (%s). %s has significantly more years of experience.",
			a.Name, a.Years, strings.Join(a.Details, "; "),
			b.Name, b.Years, strings.Join(b.Details, "; "),
			longer.Name),
		Strengths: fmt.Sprintf("%s's extended tenure suggests deeper expertise; %s's shorter roles show versatility.",
			longer.Name, shorter.Name),
		Recommendations: fmt.Sprintf("Consider %s for roles needing long-term stability, %s for adaptability.",
			longer.Name, shorter.Name),
	}
}

func compareEducation(edu []analytics.Education) Payload {
	switch len(edu) {
	case 0:
		return Payload{
			Summary:         "No CVs available to compare education levels.",
			Strengths:       notAvailable,
			Recommendations: emptyRecommendations,
		}
	case 1:
		return Payload{
			Summary: fmt.Sprintf("%s's highest education is a %s (%s). No other CVs available for comparison.",
				edu[0].Name, edu[0].HighestDegree, strings.Join(edu[0].Details, "; ")),
			Strengths:       limitedStrengths,
			Recommendations: limitedRecommendations,
		}
	}

	a, b := edu[0], edu[1]
	summary := fmt.Sprintf("%s's highest education is a %s (%s). %s's highest education is a %s (%s). Both have advanced degrees, with differences in institutions and timelines.",
		a.Name, a.HighestDegree, strings.Join(a.Details, "; "),
		b.Name, b.HighestDegree, strings.Join(b.Details, "; "))
	if a.HighestDegree == b.HighestDegree {
		summary += " Their education levels are equivalent."
	}
	return Payload{
		Summary:         summary,
		Strengths:       fmt.Sprintf("%s: Strong academic background; %s: Comparable qualifications.", a.Name, b.Name),
		Recommendations: "Both suitable for roles requiring higher education; consider specific fields of study for specialization.",
	}
}

func compareSkills(sets []analytics.SkillSet) Payload {
	switch len(sets) {
	case 0:
		return Payload{
			Summary:         "No CVs available to compare skills.",
			Strengths:       notAvailable,
			Recommendations: emptyRecommendations,
		}
	case 1:
		return Payload{
			Summary: fmt.Sprintf("%s has %d skills (%s). No other CVs available for comparison.",
				sets[0].Name, sets[0].Count, strings.Join(sets[0].Skills, "; ")),
			Strengths:       limitedStrengths,
			Recommendations: limitedRecommendations,
		}
	}

	a, b := sets[0], sets[1]
	common, onlyA, onlyB := analytics.Overlap(a.Skills, b.Skills)
	return Payload{
		Summary: fmt.Sprintf("%s has %d skills (%s). %s has %d skills (%s). They share %d common skills (%s).",
			a.Name, a.Count, strings.Join(a.Skills, "; "),
			b.Name, b.Count, strings.Join(b.Skills, "; "),
			len(common), strings.Join(common, ", ")),
		Strengths: fmt.Sprintf("%s: Unique skills (%s); %s: Unique skills (%s).",
			a.Name, strings.Join(onlyA, ", "), b.Name, strings.Join(onlyB, ", ")),
		Recommendations: fmt.Sprintf("Choose %s for %s expertise, %s for %s.",
			a.Name, strings.Join(onlyA, ", "), b.Name, strings.Join(onlyB, ", ")),
	}
}
