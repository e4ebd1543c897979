package resume

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCV = `Jane Doe
jane.doe@example.com
(555) 123-4567

Education
BS Computer Science, State University
Master of Science, Tech Institute

Work Experience
Developer, Acme 2020-2022
Intern, Initech 2018-2019

Skills
Python
SQL

Projects
Resume parser

Certifications
AWS Certified Developer
`

func TestParseSections(t *testing.T) {
	rec := Parse(sampleCV)

	assert.Equal(t, "Jane Doe", rec.PersonalInfo[FieldName])
	assert.Equal(t, "jane.doe@example.com", rec.PersonalInfo[FieldEmail])
	assert.Equal(t, "(555) 123-4567", rec.PersonalInfo[FieldPhone])
	assert.Equal(t, []string{"BS Computer Science, State University", "Master of Science, Tech Institute"}, rec.Education)
	assert.Equal(t, []string{"Developer, Acme 2020-2022", "Intern, Initech 2018-2019"}, rec.WorkExperience)
	assert.Equal(t, []string{"Python", "SQL"}, rec.Skills)
	assert.Equal(t, []string{"Resume parser"}, rec.Projects)
	assert.Equal(t, []string{"AWS Certified Developer"}, rec.Certifications)
}

func TestParseIsIdempotent(t *testing.T) {
	assert.Equal(t, Parse(sampleCV), Parse(sampleCV))
}

func TestParseHeaderTakesPrecedence(t *testing.T) {
	rec := Parse("Education: john@x.com\nBS Physics")

	_, hasEmail := rec.PersonalInfo[FieldEmail]
	assert.False(t, hasEmail, "header line must not populate Email")
	assert.Equal(t, []string{"BS Physics"}, rec.Education)
}

func TestParseFirstMatchingHeaderWins(t *testing.T) {
	// "education" is checked before "experience".
	rec := Parse("Education and Experience\nBA History")
	assert.Equal(t, []string{"BA History"}, rec.Education)
	assert.Empty(t, rec.WorkExperience)
}

func TestParseLastContactLineWins(t *testing.T) {
	rec := Parse("first@example.com\nsecond@example.com\n(111) 111-1111\n(222) 222-2222")

	assert.Equal(t, "second@example.com", rec.PersonalInfo[FieldEmail])
	assert.Equal(t, "(222) 222-2222", rec.PersonalInfo[FieldPhone])
}

func TestParseNameHeuristic(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		set  bool
	}{
		{"three tokens", "Mary Ann Smith", "Mary Ann Smith", true},
		{"too many tokens", "Senior Software Engineer Candidate", "", false},
		{"contains digit", "John 2nd", "", false},
		{"last wins", "John Smith\nJane Roe", "Jane Roe", true},
		{"after section", "Skills\nGo", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.text)
			got, ok := rec.PersonalInfo[FieldName]
			assert.Equal(t, tt.set, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDropsUnclaimedLines(t *testing.T) {
	rec := Parse("A long line before any section header 2024\nSkills\nGo")

	assert.Empty(t, rec.PersonalInfo)
	assert.Equal(t, []string{"Go"}, rec.Skills)
}

func TestParseEmptyText(t *testing.T) {
	rec := Parse("")

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"personal_info":{},"education":[],"work_experience":[],"skills":[],"projects":[],"certifications":[]}`, string(data))
}

func TestRuleOrder(t *testing.T) {
	assert.Equal(t, []string{"header", "email", "phone", "name", "content"}, RuleNames())
}

func TestCollectionFilterAndNames(t *testing.T) {
	named := NewRecord()
	named.PersonalInfo[FieldName] = "Ada"
	c := Collection{
		{ID: "1", Record: named},
		{ID: "2", Record: NewRecord()},
		{ID: "3", Record: NewRecord()},
	}

	assert.Equal(t, []string{"Ada", "Candidate 2", "Candidate 3"}, c.Names())
	assert.Equal(t, []string{"1", "3"}, c.Filter([]string{"3", "1", "9"}).IDs())
	assert.Empty(t, c.Filter(nil))
}
