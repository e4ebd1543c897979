package resume

import "fmt"

// Personal info keys.
const (
	FieldName  = "Name"
	FieldEmail = "Email"
	FieldPhone = "Phone"
)

// Record is the structured form of a single CV.
type Record struct {
	PersonalInfo   map[string]string `json:"personal_info"`
	Education      []string          `json:"education"`
	WorkExperience []string          `json:"work_experience"`
	Skills         []string          `json:"skills"`
	Projects       []string          `json:"projects"`
	Certifications []string          `json:"certifications"`
}

// NewRecord returns a record with every section initialised, so an empty
// record still marshals as lists and an object rather than nulls.
func NewRecord() Record {
	return Record{
		PersonalInfo:   map[string]string{},
		Education:      []string{},
		WorkExperience: []string{},
		Skills:         []string{},
		Projects:       []string{},
		Certifications: []string{},
	}
}

// Candidate is a stored record together with the id the storage layer gave it.
type Candidate struct {
	ID     string `json:"id"`
	Record Record `json:"record"`
}

// Collection is the set of records a query is evaluated against, in storage order.
type Collection []Candidate

// DisplayName is the candidate's parsed name, or a name synthesised from the id.
func (c Candidate) DisplayName() string {
	if name := c.Record.PersonalInfo[FieldName]; name != "" {
		return name
	}
	return fmt.Sprintf("Candidate %s", c.ID)
}

func (c Collection) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, cand := range c {
		ids = append(ids, cand.ID)
	}
	return ids
}

// Names returns the display name of every candidate.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for _, cand := range c {
		names = append(names, cand.DisplayName())
	}
	return names
}

// Filter keeps the candidates whose id is in ids, preserving collection order.
func (c Collection) Filter(ids []string) Collection {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	out := Collection{}
	for _, cand := range c {
		if _, ok := keep[cand.ID]; ok {
			out = append(out, cand)
		}
	}
	return out
}
