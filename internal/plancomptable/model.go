package plancomptable

import "time"

// TypeMouvement distinguishes receipt accounts from expense accounts.
type TypeMouvement string

const (
	MouvementRecette TypeMouvement = "recette"
	MouvementDepense TypeMouvement = "depense"
)

// SectionBudgetaire is the budget section an account belongs to.
type SectionBudgetaire string

const (
	SectionFonctionnement SectionBudgetaire = "fonctionnement"
	SectionInvestissement SectionBudgetaire = "investissement"
)

// Valid reports whether the movement type is one of the known values.
func (t TypeMouvement) Valid() bool {
	return t == MouvementRecette || t == MouvementDepense
}

// Valid reports whether the section is one of the known values.
func (s SectionBudgetaire) Valid() bool {
	return s == SectionFonctionnement || s == SectionInvestissement
}

// Compte is a chart of accounts node. The chart has three levels:
// 1 = catégorie, 2 = sous-catégorie, 3 = ligne détail (postable).
// A child code extends its parent code by exactly one character.
type Compte struct {
	ID             int64             `json:"id"`
	Code           string            `json:"code"`
	Intitule       string            `json:"intitule"`
	Niveau         int               `json:"niveau"`
	TypeMouvement  TypeMouvement     `json:"type_mouvement"`
	Section        SectionBudgetaire `json:"section"`
	ParentCode     *string           `json:"parent_code,omitempty"`
	EstSommable    bool              `json:"est_sommable"`
	OrdreAffichage *int              `json:"ordre_affichage,omitempty"`
	Actif          bool              `json:"actif"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
