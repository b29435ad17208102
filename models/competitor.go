package models

// Competitor is a bracket entrant. ID is the opaque team identifier supplied by the caller.
type Competitor struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
