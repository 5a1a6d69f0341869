package donnees

type saveRecetteRequest struct {
	CommuneID  int64  `json:"commune_id" validate:"required,gt=0"`
	ExerciceID int64  `json:"exercice_id" validate:"required,gt=0"`
	CompteCode string `json:"compte_code" validate:"required,max=10"`

	BudgetPrimitif        float64 `json:"budget_primitif" validate:"gte=0"`
	BudgetAdditionnel     float64 `json:"budget_additionnel" validate:"gte=0"`
	Modifications         float64 `json:"modifications"`
	PrevisionsDefinitives float64 `json:"previsions_definitives" validate:"gte=0"`
	OrAdmis               float64 `json:"or_admis" validate:"gte=0"`
	Recouvrement          float64 `json:"recouvrement" validate:"gte=0"`
	ResteARecouvrer       float64 `json:"reste_a_recouvrer"`

	Commentaire *string `json:"commentaire,omitempty"`
}

type saveDepenseRequest struct {
	CommuneID  int64  `json:"commune_id" validate:"required,gt=0"`
	ExerciceID int64  `json:"exercice_id" validate:"required,gt=0"`
	CompteCode string `json:"compte_code" validate:"required,max=10"`

	BudgetPrimitif        float64 `json:"budget_primitif" validate:"gte=0"`
	BudgetAdditionnel     float64 `json:"budget_additionnel" validate:"gte=0"`
	Modifications         float64 `json:"modifications"`
	PrevisionsDefinitives float64 `json:"previsions_definitives" validate:"gte=0"`
	Engagement            float64 `json:"engagement" validate:"gte=0"`
	MandatAdmis           float64 `json:"mandat_admis" validate:"gte=0"`
	Paiement              float64 `json:"paiement" validate:"gte=0"`
	ResteAPayer           float64 `json:"reste_a_payer"`

	Programme   *string `json:"programme,omitempty" validate:"omitempty,max=100"`
	Commentaire *string `json:"commentaire,omitempty"`
}
