package fields

// ResumeRecord is the structured output for one document. Absent values are nil
// and serialize as null; list fields are never nil.
type ResumeRecord struct {
	Name           *string       `json:"name"`
	ContactNumber  *string       `json:"contact_number"`
	Email          *string       `json:"email"`
	Skills         []string      `json:"skills"`
	Education      []string      `json:"education"`
	WorkExperience []Experience  `json:"work_experience"`
	Address        AddressRecord `json:"address"`
}

// AddressRecord holds the independently matched address parts.
type AddressRecord struct {
	City    *string `json:"city"`
	Pincode *string `json:"pincode"`
	Address *string `json:"address"`
}

// Experience is the shape a work-experience extractor would produce.
type Experience struct {
	Company   string `json:"company"`
	Position  string `json:"position"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

// EmptyRecord is the all-absent record.
func EmptyRecord() ResumeRecord {
	return ResumeRecord{
		Skills:         []string{},
		Education:      []string{},
		WorkExperience: []Experience{},
	}
}

// FoundCount reports how many top-level fields carry a value.
func (r ResumeRecord) FoundCount() int {
	n := 0
	for _, p := range []*string{r.Name, r.ContactNumber, r.Email} {
		if p != nil {
			n++
		}
	}
	if len(r.Skills) > 0 {
		n++
	}
	if len(r.Education) > 0 {
		n++
	}
	if len(r.WorkExperience) > 0 {
		n++
	}
	if r.Address.City != nil || r.Address.Pincode != nil {
		n++
	}
	return n
}
