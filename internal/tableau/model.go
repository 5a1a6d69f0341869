// Package tableau builds the administrative account tables (tableaux de
// compte administratif): receipts, expenses and the budget equilibrium, with
// hierarchical roll-up of the plan comptable and execution-rate derivation.
package tableau

import (
	"time"

	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

// Section titles displayed on the printed tables.
const (
	TitreFonctionnement = "SECTION DE FONCTIONNEMENT"
	TitreInvestissement = "SECTION D'INVESTISSEMENT"
	LibelleTotalGeneral = "TOTAL GÉNÉRAL"
)

func titreSection(s plancomptable.SectionBudgetaire) string {
	if s == plancomptable.SectionInvestissement {
		return TitreInvestissement
	}
	return TitreFonctionnement
}

// LigneRecette is one receipt row of the table, one per compte of a section.
// Parents (niveau 1 and 2) accumulate the values of their direct children
// during aggregation. A nil TauxExecution means "no rate" (provision ≤ 0),
// which is distinct from a computed zero.
type LigneRecette struct {
	Code        string `json:"code"`
	Intitule    string `json:"intitule"`
	Niveau      int    `json:"niveau"`
	EstSommable bool   `json:"est_sommable"`
	parentCode  string

	BudgetPrimitif        float64 `json:"budget_primitif"`
	BudgetAdditionnel     float64 `json:"budget_additionnel"`
	Modifications         float64 `json:"modifications"`
	PrevisionsDefinitives float64 `json:"previsions_definitives"`
	OrAdmis               float64 `json:"or_admis"`
	Recouvrement          float64 `json:"recouvrement"`
	ResteARecouvrer       float64 `json:"reste_a_recouvrer"`

	TauxExecution *float64 `json:"taux_execution,omitempty"`
}

// LigneDepense is one expense row of the table. Same aggregation contract as
// LigneRecette with the expense realisation columns.
type LigneDepense struct {
	Code        string `json:"code"`
	Intitule    string `json:"intitule"`
	Niveau      int    `json:"niveau"`
	EstSommable bool   `json:"est_sommable"`
	parentCode  string

	BudgetPrimitif        float64 `json:"budget_primitif"`
	BudgetAdditionnel     float64 `json:"budget_additionnel"`
	Modifications         float64 `json:"modifications"`
	PrevisionsDefinitives float64 `json:"previsions_definitives"`
	Engagement            float64 `json:"engagement"`
	MandatAdmis           float64 `json:"mandat_admis"`
	Paiement              float64 `json:"paiement"`
	ResteAPayer           float64 `json:"reste_a_payer"`

	TauxExecution *float64 `json:"taux_execution,omitempty"`
}

// SectionRecettes groups the receipt lines of one budget section with the
// totals computed over the niveau-1 sommable lines after aggregation.
type SectionRecettes struct {
	Section plancomptable.SectionBudgetaire `json:"section"`
	Titre   string                          `json:"titre"`
	Lignes  []LigneRecette                  `json:"lignes"`

	TotalBudgetPrimitif        float64  `json:"total_budget_primitif"`
	TotalBudgetAdditionnel     float64  `json:"total_budget_additionnel"`
	TotalModifications         float64  `json:"total_modifications"`
	TotalPrevisionsDefinitives float64  `json:"total_previsions_definitives"`
	TotalOrAdmis               float64  `json:"total_or_admis"`
	TotalRecouvrement          float64  `json:"total_recouvrement"`
	TotalResteARecouvrer       float64  `json:"total_reste_a_recouvrer"`
	TauxExecutionGlobal        *float64 `json:"taux_execution_global,omitempty"`
}

// SectionDepenses groups the expense lines of one budget section.
type SectionDepenses struct {
	Section plancomptable.SectionBudgetaire `json:"section"`
	Titre   string                          `json:"titre"`
	Lignes  []LigneDepense                  `json:"lignes"`

	TotalBudgetPrimitif        float64  `json:"total_budget_primitif"`
	TotalBudgetAdditionnel     float64  `json:"total_budget_additionnel"`
	TotalModifications         float64  `json:"total_modifications"`
	TotalPrevisionsDefinitives float64  `json:"total_previsions_definitives"`
	TotalEngagement            float64  `json:"total_engagement"`
	TotalMandatAdmis           float64  `json:"total_mandat_admis"`
	TotalPaiement              float64  `json:"total_paiement"`
	TotalResteAPayer           float64  `json:"total_reste_a_payer"`
	TauxExecutionGlobal        *float64 `json:"taux_execution_global,omitempty"`
}

// TableauRecettes is the full receipts table across both budget sections.
type TableauRecettes struct {
	CommuneID     int64             `json:"commune_id"`
	CommuneNom    string            `json:"commune_nom"`
	ExerciceAnnee int               `json:"exercice_annee"`
	Sections      []SectionRecettes `json:"sections"`

	TotalGeneralPrevisions   float64  `json:"total_general_previsions"`
	TotalGeneralOrAdmis      float64  `json:"total_general_or_admis"`
	TotalGeneralRecouvrement float64  `json:"total_general_recouvrement"`
	TauxExecutionGlobal      *float64 `json:"taux_execution_global,omitempty"`
}

// TableauDepenses is the full expenses table across both budget sections.
type TableauDepenses struct {
	CommuneID     int64             `json:"commune_id"`
	CommuneNom    string            `json:"commune_nom"`
	ExerciceAnnee int               `json:"exercice_annee"`
	Sections      []SectionDepenses `json:"sections"`

	TotalGeneralPrevisions  float64  `json:"total_general_previsions"`
	TotalGeneralMandatAdmis float64  `json:"total_general_mandat_admis"`
	TotalGeneralPaiement    float64  `json:"total_general_paiement"`
	TauxExecutionGlobal     *float64 `json:"taux_execution_global,omitempty"`
}

// LigneEquilibre is one row of the equilibrium table: fonctionnement,
// investissement or the grand total.
type LigneEquilibre struct {
	Libelle string                           `json:"libelle"`
	Section *plancomptable.SectionBudgetaire `json:"section,omitempty"`

	RecettesPrevisions   float64 `json:"recettes_previsions"`
	RecettesRealisations float64 `json:"recettes_realisations"`
	DepensesPrevisions   float64 `json:"depenses_previsions"`
	DepensesRealisations float64 `json:"depenses_realisations"`
	SoldePrevisions      float64 `json:"solde_previsions"`
	SoldeRealisations    float64 `json:"solde_realisations"`
}

// TableauEquilibre is the three-row budget equilibrium table.
type TableauEquilibre struct {
	CommuneID     int64            `json:"commune_id"`
	CommuneNom    string           `json:"commune_nom"`
	ExerciceAnnee int              `json:"exercice_annee"`
	Lignes        []LigneEquilibre `json:"lignes"`
}

// TableauComplet is the complete administrative account for one commune and
// one exercice: receipts, expenses and equilibrium, with report identity.
type TableauComplet struct {
	CommuneID   int64  `json:"commune_id"`
	CommuneNom  string `json:"commune_nom"`
	CommuneCode string `json:"commune_code"`
	RegionNom   string `json:"region_nom"`
	ProvinceNom string `json:"province_nom"`

	ExerciceID      int64 `json:"exercice_id"`
	ExerciceAnnee   int   `json:"exercice_annee"`
	ExerciceCloture bool  `json:"exercice_cloture"`

	Recettes  TableauRecettes  `json:"recettes"`
	Depenses  TableauDepenses  `json:"depenses"`
	Equilibre TableauEquilibre `json:"equilibre"`

	GenerationID   string    `json:"generation_id"`
	DateGeneration time.Time `json:"date_generation"`
}

// ResumeFinancier is the simplified summary for one commune and exercice.
type ResumeFinancier struct {
	CommuneID     int64 `json:"commune_id"`
	ExerciceAnnee int   `json:"exercice_annee"`

	TotalRecettesPrevues   float64  `json:"total_recettes_prevues"`
	TotalRecettesRealisees float64  `json:"total_recettes_realisees"`
	TotalDepensesPrevues   float64  `json:"total_depenses_prevues"`
	TotalDepensesRealisees float64  `json:"total_depenses_realisees"`
	SoldeBudgetaire        float64  `json:"solde_budgetaire"`
	TauxExecutionRecettes  *float64 `json:"taux_execution_recettes,omitempty"`
	TauxExecutionDepenses  *float64 `json:"taux_execution_depenses,omitempty"`
}

// ComparaisonExercices compares realisations between two fiscal years.
type ComparaisonExercices struct {
	CommuneID  int64  `json:"commune_id"`
	CommuneNom string `json:"commune_nom"`
	Annee1     int    `json:"exercice_annee_1"`
	Annee2     int    `json:"exercice_annee_2"`

	RecettesAnnee1       float64  `json:"recettes_annee_1"`
	RecettesAnnee2       float64  `json:"recettes_annee_2"`
	VariationRecettes    float64  `json:"variation_recettes"`
	VariationRecettesPct *float64 `json:"variation_recettes_pct,omitempty"`
	DepensesAnnee1       float64  `json:"depenses_annee_1"`
	DepensesAnnee2       float64  `json:"depenses_annee_2"`
	VariationDepenses    float64  `json:"variation_depenses"`
	VariationDepensesPct *float64 `json:"variation_depenses_pct,omitempty"`
}

// StatistiquesRegion aggregates commune realisations over one region.
type StatistiquesRegion struct {
	RegionID      int64  `json:"region_id"`
	RegionNom     string `json:"region_nom"`
	ExerciceAnnee int    `json:"exercice_annee"`
	NbCommunes    int    `json:"nb_communes"`

	TotalRecettes          float64  `json:"total_recettes"`
	TotalDepenses          float64  `json:"total_depenses"`
	MoyenneRecettesCommune float64  `json:"moyenne_recettes_commune"`
	MoyenneDepensesCommune float64  `json:"moyenne_depenses_commune"`
	TauxExecutionMoyen     *float64 `json:"taux_execution_moyen,omitempty"`
}
