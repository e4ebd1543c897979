package resume

import (
	"regexp"
	"strings"
	"unicode"
)

// Section is the cursor that routes content lines while parsing.
type Section int

const (
	SectionNone Section = iota
	SectionEducation
	SectionExperience
	SectionSkills
	SectionProjects
	SectionCertifications
)

func (s Section) String() string {
	switch s {
	case SectionEducation:
		return "education"
	case SectionExperience:
		return "work_experience"
	case SectionSkills:
		return "skills"
	case SectionProjects:
		return "projects"
	case SectionCertifications:
		return "certifications"
	default:
		return "none"
	}
}

// headers are checked in order, the first keyword found in a line wins.
var headers = []struct {
	keyword string
	section Section
}{
	{"education", SectionEducation},
	{"experience", SectionExperience},
	{"skills", SectionSkills},
	{"projects", SectionProjects},
	{"certifications", SectionCertifications},
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\(\d{3}\)\s*\d{3}-\d{4}`)
)

// state is what a rule sees and mutates while a text is parsed.
type state struct {
	section Section
	record  *Record
}

// rule classifies a single trimmed line. apply is only called when match
// returned true.
type rule struct {
	name  string
	match func(st *state, line string) bool
	apply func(st *state, line string)
}

var rules = []rule{
	{
		name:  "header",
		match: func(_ *state, line string) bool { return headerSection(line) != SectionNone },
		apply: func(st *state, line string) { st.section = headerSection(line) },
	},
	{
		name:  "email",
		match: func(_ *state, line string) bool { return emailPattern.MatchString(line) },
		apply: func(st *state, line string) {
			st.record.PersonalInfo[FieldEmail] = emailPattern.FindString(line)
		},
	},
	{
		name:  "phone",
		match: func(_ *state, line string) bool { return phonePattern.MatchString(line) },
		apply: func(st *state, line string) {
			st.record.PersonalInfo[FieldPhone] = phonePattern.FindString(line)
		},
	},
	{
		name:  "name",
		match: func(st *state, line string) bool { return st.section == SectionNone && looksLikeName(line) },
		apply: func(st *state, line string) { st.record.PersonalInfo[FieldName] = line },
	},
	{
		name:  "content",
		match: func(st *state, _ string) bool { return st.section != SectionNone },
		apply: func(st *state, line string) { st.record.appendTo(st.section, line) },
	},
}

// RuleNames lists the line rules in the order they are tried.
func RuleNames() []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.name)
	}
	return names
}

// Parse splits text into lines and routes each one through the rule list.
// Lines no rule claims are dropped. An empty text yields an empty record.
func Parse(text string) Record {
	record := NewRecord()
	st := &state{section: SectionNone, record: &record}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		for _, r := range rules {
			if r.match(st, line) {
				r.apply(st, line)
				break
			}
		}
	}
	return record
}

func headerSection(line string) Section {
	lower := strings.ToLower(line)
	for _, h := range headers {
		if strings.Contains(lower, h.keyword) {
			return h.section
		}
	}
	return SectionNone
}

func looksLikeName(line string) bool {
	if len(strings.Fields(line)) > 3 {
		return false
	}
	return strings.IndexFunc(line, unicode.IsDigit) < 0
}

func (r *Record) appendTo(s Section, line string) {
	switch s {
	case SectionEducation:
		r.Education = append(r.Education, line)
	case SectionExperience:
		r.WorkExperience = append(r.WorkExperience, line)
	case SectionSkills:
		r.Skills = append(r.Skills, line)
	case SectionProjects:
		r.Projects = append(r.Projects, line)
	case SectionCertifications:
		r.Certifications = append(r.Certifications, line)
	}
}
