package donnees

import "time"

// Recette is a receipt row keyed by (commune, exercice, compte).
// Amounts are in Ariary (MGA).
type Recette struct {
	ID         int64  `json:"id"`
	CommuneID  int64  `json:"commune_id"`
	ExerciceID int64  `json:"exercice_id"`
	CompteCode string `json:"compte_code"`

	BudgetPrimitif        float64 `json:"budget_primitif"`
	BudgetAdditionnel     float64 `json:"budget_additionnel"`
	Modifications         float64 `json:"modifications"`
	PrevisionsDefinitives float64 `json:"previsions_definitives"`
	OrAdmis               float64 `json:"or_admis"`
	Recouvrement          float64 `json:"recouvrement"`
	ResteARecouvrer       float64 `json:"reste_a_recouvrer"`

	Commentaire *string   `json:"commentaire,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PrevisionsRetenues returns the stored final provision when present,
// falling back to primitif + additionnel + modifications.
func (r Recette) PrevisionsRetenues() float64 {
	if r.PrevisionsDefinitives > 0 {
		return r.PrevisionsDefinitives
	}
	return r.BudgetPrimitif + r.BudgetAdditionnel + r.Modifications
}

// TauxExecution returns or_admis / prévisions × 100, or nil when the
// provision is zero or negative. Nil is distinct from a computed zero.
func (r Recette) TauxExecution() *float64 {
	prev := r.PrevisionsRetenues()
	if prev <= 0 {
		return nil
	}
	taux := r.OrAdmis / prev * 100
	return &taux
}

// Depense is an expense row keyed by (commune, exercice, compte).
type Depense struct {
	ID         int64  `json:"id"`
	CommuneID  int64  `json:"commune_id"`
	ExerciceID int64  `json:"exercice_id"`
	CompteCode string `json:"compte_code"`

	BudgetPrimitif        float64 `json:"budget_primitif"`
	BudgetAdditionnel     float64 `json:"budget_additionnel"`
	Modifications         float64 `json:"modifications"`
	PrevisionsDefinitives float64 `json:"previsions_definitives"`
	Engagement            float64 `json:"engagement"`
	MandatAdmis           float64 `json:"mandat_admis"`
	Paiement              float64 `json:"paiement"`
	ResteAPayer           float64 `json:"reste_a_payer"`

	Programme   *string   `json:"programme,omitempty"`
	Commentaire *string   `json:"commentaire,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PrevisionsRetenues returns the stored final provision when present,
// falling back to primitif + additionnel + modifications.
func (d Depense) PrevisionsRetenues() float64 {
	if d.PrevisionsDefinitives > 0 {
		return d.PrevisionsDefinitives
	}
	return d.BudgetPrimitif + d.BudgetAdditionnel + d.Modifications
}

// TauxExecution returns mandat_admis / prévisions × 100, or nil when the
// provision is zero or negative.
func (d Depense) TauxExecution() *float64 {
	prev := d.PrevisionsRetenues()
	if prev <= 0 {
		return nil
	}
	taux := d.MandatAdmis / prev * 100
	return &taux
}
