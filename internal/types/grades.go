package types

// GradeRecord is one row of the grade distribution table.
//
// Firestore Structure:
//   - grade_records/{row} with the record fields plus its table position
//
// Year, Semester and Course are trimmed during ingestion. Grade is kept as
// read from the source.
type GradeRecord struct {
	Year     string `json:"Year" firestore:"year"`         // e.g., "2021-2022"
	Semester string `json:"Semester" firestore:"semester"` // e.g., "I"
	Course   string `json:"Course" firestore:"course"`     // Free-text course identifier
	Grade    string `json:"Grade" firestore:"grade"`       // Letter grade, e.g., "A*"
	Count    int    `json:"Count" firestore:"count"`       // Students receiving the grade
}

// GradeCount is a grade bucket within a single course offering.
type GradeCount struct {
	Semester string `json:"Semester"`
	Grade    string `json:"Grade"`
	Count    int    `json:"Count"`
}
