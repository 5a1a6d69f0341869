package exercice

import "time"

// Exercice is an annual fiscal year. Financial records belonging to a closed
// exercice are immutable until it is explicitly reopened.
type Exercice struct {
	ID        int64     `json:"id"`
	Annee     int       `json:"annee"`
	Libelle   *string   `json:"libelle,omitempty"`
	DateDebut time.Time `json:"date_debut"`
	DateFin   time.Time `json:"date_fin"`
	Cloture   bool      `json:"cloture"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
