package revenus

import "time"

// TypeRevenu classifies a mining revenue stream.
type TypeRevenu string

const (
	RevenuRistourne  TypeRevenu = "ristourne"
	RevenuFraisAdmin TypeRevenu = "frais_administration"
	RevenuRedevance  TypeRevenu = "redevance"
	RevenuAutre      TypeRevenu = "autre"
)

// Valid reports whether the revenue type is one of the known values.
func (t TypeRevenu) Valid() bool {
	switch t {
	case RevenuRistourne, RevenuFraisAdmin, RevenuRedevance, RevenuAutre:
		return true
	}
	return false
}

// RevenuMinier is a mining revenue row for one commune, exercice and project.
type RevenuMinier struct {
	ID           int64      `json:"id"`
	CommuneID    int64      `json:"commune_id"`
	ExerciceID   int64      `json:"exercice_id"`
	ProjetID     int64      `json:"projet_id"`
	TypeRevenu   TypeRevenu `json:"type_revenu"`
	MontantPrevu float64    `json:"montant_prevu"`
	MontantRecu  float64    `json:"montant_recu"`
	CompteCode   *string    `json:"compte_code,omitempty"`
	Commentaire  *string    `json:"commentaire,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TauxPerception returns montant_recu / montant_prevu × 100, or nil when no
// amount was forecast.
func (r RevenuMinier) TauxPerception() *float64 {
	if r.MontantPrevu <= 0 {
		return nil
	}
	taux := r.MontantRecu / r.MontantPrevu * 100
	return &taux
}

// TotauxRevenus aggregates mining revenues for one commune and exercice.
type TotauxRevenus struct {
	CommuneID      int64                  `json:"commune_id"`
	ExerciceID     int64                  `json:"exercice_id"`
	TotalPrevu     float64                `json:"total_prevu"`
	TotalRecu      float64                `json:"total_recu"`
	ParType        map[TypeRevenu]float64 `json:"par_type"`
	TauxPerception *float64               `json:"taux_perception,omitempty"`
}
