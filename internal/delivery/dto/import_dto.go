package dto

// ImportRow is one spreadsheet row keyed by patient column name
// (mrd_no, doa, dod, name, age, ...). Unknown columns are ignored.
type ImportRow map[string]string

type ImportRowError struct {
	Row    int    `json:"row"`
	MrdNo  string `json:"mrd_no,omitempty"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Total        int              `json:"total"`
	Imported     int              `json:"imported"`
	Skipped      int              `json:"skipped"`
	BedsAssigned int              `json:"beds_assigned"`
	Unassigned   int              `json:"unassigned"`
	Failed       []ImportRowError `json:"failed"`
}
