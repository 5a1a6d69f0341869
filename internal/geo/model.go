package geo

import "time"

// Province is the top level of the territorial hierarchy.
type Province struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Nom       string    `json:"nom"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Region belongs to a province and groups communes.
type Region struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	Nom        string    `json:"nom"`
	ProvinceID int64     `json:"province_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Commune is a municipality reporting administrative accounts.
type Commune struct {
	ID            int64     `json:"id"`
	Code          string    `json:"code"`
	Nom           string    `json:"nom"`
	TypeCommune   *string   `json:"type_commune,omitempty"`
	RegionID      int64     `json:"region_id"`
	Population    *int64    `json:"population,omitempty"`
	SuperficieKm2 *float64  `json:"superficie_km2,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CommuneDetail carries the commune identity joined with its region and
// province names, as displayed on report headers.
type CommuneDetail struct {
	Commune
	RegionNom   string `json:"region_nom"`
	ProvinceNom string `json:"province_nom"`
}
