// File: models/dashboard.go
package models

// DistrictCount is one row of the district breakdown.
type DistrictCount struct {
	District string `bson:"_id" json:"district"`
	Count    int64  `bson:"count" json:"count"`
}

// DashboardStats aggregates the whole collection for the admin dashboard.
type DashboardStats struct {
	TotalTeams      int64           `json:"totalTeams"`
	TotalCandidates int64           `json:"totalCandidates"`
	DistrictStats   []DistrictCount `json:"districtStats"`
}

// ------------------------ change events -----------------------

// Change actions carried by ChangeEvent.
const (
	ActionRegistrationCreated = "registrationCreated"
	ActionRegistrationDeleted = "registrationDeleted"
)

// ChangeEvent tells downstream readers that registration data changed and
// any view derived from it is stale.
type ChangeEvent struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}
