package tableau

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/exercice"
	"github.com/tahiry-mg/tahiry/internal/geo"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

type fakeRepo struct {
	comptes   map[string][]plancomptable.Compte
	recettes  map[string]*donnees.Recette
	depenses  map[string]*donnees.Depense
	commune   *geo.CommuneDetail
	region    *geo.Region
	regionIDs []int64
	exercices map[int]*exercice.Exercice
	sommesRec map[int64]Somme
	sommesDep map[int64]Somme

	getRecetteCalls int
}

func planKey(m plancomptable.TypeMouvement, s plancomptable.SectionBudgetaire) string {
	return string(m) + "/" + string(s)
}

func (f *fakeRepo) ListComptes(_ context.Context, m plancomptable.TypeMouvement, s plancomptable.SectionBudgetaire) ([]plancomptable.Compte, error) {
	return f.comptes[planKey(m, s)], nil
}

func (f *fakeRepo) GetRecette(_ context.Context, _, _ int64, code string) (*donnees.Recette, error) {
	f.getRecetteCalls++
	if d, ok := f.recettes[code]; ok {
		return d, nil
	}
	return nil, donnees.ErrNotFound
}

func (f *fakeRepo) GetDepense(_ context.Context, _, _ int64, code string) (*donnees.Depense, error) {
	if d, ok := f.depenses[code]; ok {
		return d, nil
	}
	return nil, donnees.ErrNotFound
}

func (f *fakeRepo) GetCommune(_ context.Context, id int64) (*geo.CommuneDetail, error) {
	if f.commune == nil || f.commune.ID != id {
		return nil, geo.ErrNotFound
	}
	return f.commune, nil
}

func (f *fakeRepo) GetRegion(_ context.Context, id int64) (*geo.Region, error) {
	if f.region == nil || f.region.ID != id {
		return nil, geo.ErrNotFound
	}
	return f.region, nil
}

func (f *fakeRepo) ListCommuneIDsByRegion(_ context.Context, _ int64) ([]int64, error) {
	return f.regionIDs, nil
}

func (f *fakeRepo) GetExercice(_ context.Context, annee int) (*exercice.Exercice, error) {
	if ex, ok := f.exercices[annee]; ok {
		return ex, nil
	}
	return nil, exercice.ErrNotFound
}

func (f *fakeRepo) SommeRecettes(_ context.Context, _ []int64, exerciceID int64) (Somme, error) {
	return f.sommesRec[exerciceID], nil
}

func (f *fakeRepo) SommeDepenses(_ context.Context, _ []int64, exerciceID int64) (Somme, error) {
	return f.sommesDep[exerciceID], nil
}

func compte(code string, niveau int, parent string, m plancomptable.TypeMouvement, s plancomptable.SectionBudgetaire) plancomptable.Compte {
	c := plancomptable.Compte{
		Code:          code,
		Intitule:      "Compte " + code,
		Niveau:        niveau,
		TypeMouvement: m,
		Section:       s,
		EstSommable:   true,
		Actif:         true,
	}
	if parent != "" {
		c.ParentCode = &parent
	}
	return c
}

func newFixture() *fakeRepo {
	fonct := plancomptable.SectionFonctionnement
	invest := plancomptable.SectionInvestissement
	return &fakeRepo{
		comptes: map[string][]plancomptable.Compte{
			planKey(plancomptable.MouvementRecette, fonct): {
				compte("6", 1, "", plancomptable.MouvementRecette, fonct),
				compte("61", 2, "6", plancomptable.MouvementRecette, fonct),
				compte("611", 3, "61", plancomptable.MouvementRecette, fonct),
				compte("612", 3, "61", plancomptable.MouvementRecette, fonct),
			},
			planKey(plancomptable.MouvementRecette, invest): {
				compte("9", 1, "", plancomptable.MouvementRecette, invest),
				compte("91", 2, "9", plancomptable.MouvementRecette, invest),
				compte("911", 3, "91", plancomptable.MouvementRecette, invest),
			},
			planKey(plancomptable.MouvementDepense, fonct): {
				compte("0", 1, "", plancomptable.MouvementDepense, fonct),
				compte("01", 2, "0", plancomptable.MouvementDepense, fonct),
				compte("011", 3, "01", plancomptable.MouvementDepense, fonct),
			},
			planKey(plancomptable.MouvementDepense, invest): {
				compte("2", 1, "", plancomptable.MouvementDepense, invest),
				compte("21", 2, "2", plancomptable.MouvementDepense, invest),
				compte("211", 3, "21", plancomptable.MouvementDepense, invest),
			},
		},
		recettes: map[string]*donnees.Recette{
			"611": {CompteCode: "611", BudgetPrimitif: 400, OrAdmis: 300, Recouvrement: 280, ResteARecouvrer: 20},
			"612": {CompteCode: "612", PrevisionsDefinitives: 100, OrAdmis: 100, Recouvrement: 100},
			"911": {CompteCode: "911", PrevisionsDefinitives: 1000, OrAdmis: 250, Recouvrement: 250},
		},
		depenses: map[string]*donnees.Depense{
			"011": {CompteCode: "011", PrevisionsDefinitives: 350, Engagement: 320, MandatAdmis: 300, Paiement: 290, ResteAPayer: 10},
			"211": {CompteCode: "211", PrevisionsDefinitives: 600, Engagement: 200, MandatAdmis: 150, Paiement: 150},
		},
		commune: &geo.CommuneDetail{
			Commune:     geo.Commune{ID: 7, Code: "501-C", Nom: "Ilakaka", RegionID: 5},
			RegionNom:   "Ihorombe",
			ProvinceNom: "Fianarantsoa",
		},
		region:    &geo.Region{ID: 5, Code: "IHO", Nom: "Ihorombe"},
		regionIDs: []int64{7, 8},
		exercices: map[int]*exercice.Exercice{
			2024: {ID: 3, Annee: 2024},
			2023: {ID: 2, Annee: 2023, Cloture: true},
		},
		sommesRec: map[int64]Somme{
			3: {Previsions: 1600, Realisations: 650, Reglements: 630},
			2: {Previsions: 1500, Realisations: 500, Reglements: 480},
		},
		sommesDep: map[int64]Somme{
			3: {Previsions: 950, Realisations: 450, Reglements: 440},
			2: {Previsions: 900, Realisations: 600, Reglements: 580},
		},
	}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, nil, nil, slog.Default())
}

func TestBuildRecettesRollsUpHierarchy(t *testing.T) {
	svc := newTestService(newFixture())

	table, err := svc.BuildRecettes(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildRecettes: %v", err)
	}
	if len(table.Sections) != 2 {
		t.Fatalf("sections = %d, attendu 2", len(table.Sections))
	}

	fonct := table.Sections[0]
	if fonct.Titre != TitreFonctionnement {
		t.Fatalf("titre = %q", fonct.Titre)
	}
	lignes := indexRecettes(fonct.Lignes)

	// 611 keeps its leaf values: previsions fall back to budget primitif.
	if l := lignes["611"]; l.PrevisionsDefinitives != 400 || l.OrAdmis != 300 {
		t.Fatalf("611 = %v/%v, attendu 400/300", l.PrevisionsDefinitives, l.OrAdmis)
	}
	// 61 collects 611+612: 500 prévu, 400 réalisé, taux 80.
	if l := lignes["61"]; l.PrevisionsDefinitives != 500 || l.OrAdmis != 400 {
		t.Fatalf("61 = %v/%v, attendu 500/400", l.PrevisionsDefinitives, l.OrAdmis)
	}
	if taux := lignes["61"].TauxExecution; taux == nil || *taux != 80 {
		t.Fatalf("taux 61 = %v, attendu 80", taux)
	}
	// 6 mirrors 61.
	if l := lignes["6"]; l.PrevisionsDefinitives != 500 || l.OrAdmis != 400 {
		t.Fatalf("6 = %v/%v, attendu 500/400", l.PrevisionsDefinitives, l.OrAdmis)
	}

	// Section totals come from the niveau-1 sommable lines.
	if fonct.TotalPrevisionsDefinitives != 500 || fonct.TotalOrAdmis != 400 {
		t.Fatalf("totaux fonctionnement = %v/%v", fonct.TotalPrevisionsDefinitives, fonct.TotalOrAdmis)
	}
	if fonct.TauxExecutionGlobal == nil || *fonct.TauxExecutionGlobal != 80 {
		t.Fatalf("taux global fonctionnement = %v", fonct.TauxExecutionGlobal)
	}

	if table.TotalGeneralPrevisions != 1500 || table.TotalGeneralOrAdmis != 650 {
		t.Fatalf("totaux généraux = %v/%v, attendu 1500/650", table.TotalGeneralPrevisions, table.TotalGeneralOrAdmis)
	}
}

func TestBuildRecettesSynthesisesZeroLines(t *testing.T) {
	repo := newFixture()
	delete(repo.recettes, "612")
	svc := newTestService(repo)

	table, err := svc.BuildRecettes(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildRecettes: %v", err)
	}
	lignes := table.Sections[0].Lignes
	if len(lignes) != 4 {
		t.Fatalf("lignes = %d, attendu 4 (une par compte actif)", len(lignes))
	}
	// 612 has no stored row: zero line at its plan position, no rate.
	if lignes[3].Code != "612" {
		t.Fatalf("ligne 4 = %q, attendu 612", lignes[3].Code)
	}
	if lignes[3].PrevisionsDefinitives != 0 || lignes[3].TauxExecution != nil {
		t.Fatalf("ligne 612 = %v taux %v, attendu ligne à zéro sans taux", lignes[3].PrevisionsDefinitives, lignes[3].TauxExecution)
	}
}

func TestBuildRecettesExcludesNonSommableFromTotals(t *testing.T) {
	repo := newFixture()
	fonct := planKey(plancomptable.MouvementRecette, plancomptable.SectionFonctionnement)
	pourMemoire := compte("7", 1, "", plancomptable.MouvementRecette, plancomptable.SectionFonctionnement)
	pourMemoire.EstSommable = false
	repo.comptes[fonct] = append(repo.comptes[fonct], pourMemoire)
	repo.recettes["7"] = &donnees.Recette{CompteCode: "7", PrevisionsDefinitives: 9999, OrAdmis: 9999}
	svc := newTestService(repo)

	table, err := svc.BuildRecettes(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildRecettes: %v", err)
	}
	sec := table.Sections[0]
	if sec.TotalPrevisionsDefinitives != 500 {
		t.Fatalf("total = %v, la ligne pour mémoire ne doit pas compter", sec.TotalPrevisionsDefinitives)
	}
	// The line itself still appears in the table.
	if sec.Lignes[len(sec.Lignes)-1].Code != "7" {
		t.Fatalf("ligne pour mémoire absente du tableau")
	}
}

func TestBuildDepenses(t *testing.T) {
	svc := newTestService(newFixture())

	table, err := svc.BuildDepenses(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildDepenses: %v", err)
	}
	if table.TotalGeneralPrevisions != 950 || table.TotalGeneralMandatAdmis != 450 {
		t.Fatalf("totaux = %v/%v, attendu 950/450", table.TotalGeneralPrevisions, table.TotalGeneralMandatAdmis)
	}
	invest := table.Sections[1]
	if invest.TotalMandatAdmis != 150 || invest.TotalEngagement != 200 {
		t.Fatalf("investissement = %v/%v", invest.TotalMandatAdmis, invest.TotalEngagement)
	}
}

func TestBuildEquilibre(t *testing.T) {
	svc := newTestService(newFixture())

	eq, err := svc.BuildEquilibre(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildEquilibre: %v", err)
	}
	if len(eq.Lignes) != 3 {
		t.Fatalf("lignes = %d, attendu 3", len(eq.Lignes))
	}
	fonct, invest, total := eq.Lignes[0], eq.Lignes[1], eq.Lignes[2]

	if total.Libelle != LibelleTotalGeneral {
		t.Fatalf("dernière ligne = %q", total.Libelle)
	}
	if fonct.RecettesPrevisions != 500 || fonct.DepensesPrevisions != 350 {
		t.Fatalf("fonctionnement = %v/%v", fonct.RecettesPrevisions, fonct.DepensesPrevisions)
	}
	if invest.RecettesRealisations != 250 || invest.DepensesRealisations != 150 {
		t.Fatalf("investissement = %v/%v", invest.RecettesRealisations, invest.DepensesRealisations)
	}

	// The grand total is exactly the sum of the two sections.
	if total.RecettesPrevisions != fonct.RecettesPrevisions+invest.RecettesPrevisions {
		t.Fatalf("total recettes prévues = %v", total.RecettesPrevisions)
	}
	if total.SoldeRealisations != fonct.SoldeRealisations+invest.SoldeRealisations {
		t.Fatalf("solde total = %v", total.SoldeRealisations)
	}
	if fonct.SoldePrevisions != 150 {
		t.Fatalf("solde fonctionnement = %v, attendu 150", fonct.SoldePrevisions)
	}
}

func TestBuildCompletIsIdempotent(t *testing.T) {
	svc := newTestService(newFixture())

	t1, err := svc.BuildComplet(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildComplet: %v", err)
	}
	t2, err := svc.BuildComplet(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("BuildComplet: %v", err)
	}

	if t1.GenerationID == t2.GenerationID {
		t.Fatalf("deux générations partagent la même référence")
	}
	// Identical data apart from the generation identity.
	t2.GenerationID, t2.DateGeneration = t1.GenerationID, t1.DateGeneration
	if !reflect.DeepEqual(t1, t2) {
		t.Fatalf("deux constructions successives diffèrent")
	}
	if t1.CommuneNom != "Ilakaka" || t1.RegionNom != "Ihorombe" || t1.ProvinceNom != "Fianarantsoa" {
		t.Fatalf("identité commune incorrecte: %+v", t1)
	}
}

func TestBuildCompletUnknownCommune(t *testing.T) {
	svc := newTestService(newFixture())

	if _, err := svc.BuildComplet(context.Background(), 999, 2024); err == nil {
		t.Fatalf("commune inconnue: erreur attendue")
	}
	if _, err := svc.BuildComplet(context.Background(), 7, 1980); err == nil {
		t.Fatalf("exercice inconnu: erreur attendue")
	}
}

func TestResume(t *testing.T) {
	svc := newTestService(newFixture())

	res, err := svc.Resume(context.Background(), 7, 2024)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if res.TotalRecettesRealisees != 650 || res.TotalDepensesRealisees != 450 {
		t.Fatalf("réalisations = %v/%v", res.TotalRecettesRealisees, res.TotalDepensesRealisees)
	}
	if res.SoldeBudgetaire != 200 {
		t.Fatalf("solde = %v, attendu 200", res.SoldeBudgetaire)
	}
	if res.TauxExecutionRecettes == nil || *res.TauxExecutionRecettes != 650.0/1600*100 {
		t.Fatalf("taux recettes = %v", res.TauxExecutionRecettes)
	}
}

func TestComparaison(t *testing.T) {
	svc := newTestService(newFixture())

	c, err := svc.Comparaison(context.Background(), 7, 2023, 2024)
	if err != nil {
		t.Fatalf("Comparaison: %v", err)
	}
	if c.VariationRecettes != 150 {
		t.Fatalf("variation recettes = %v, attendu 150", c.VariationRecettes)
	}
	if c.VariationRecettesPct == nil || *c.VariationRecettesPct != 30 {
		t.Fatalf("variation recettes %% = %v, attendu 30", c.VariationRecettesPct)
	}
	if c.VariationDepenses != -150 {
		t.Fatalf("variation dépenses = %v, attendu -150", c.VariationDepenses)
	}
}

func TestComparaisonZeroBaseHasNoPct(t *testing.T) {
	repo := newFixture()
	repo.sommesRec[2] = Somme{}
	svc := newTestService(repo)

	c, err := svc.Comparaison(context.Background(), 7, 2023, 2024)
	if err != nil {
		t.Fatalf("Comparaison: %v", err)
	}
	if c.VariationRecettesPct != nil {
		t.Fatalf("variation %% = %v, attendu nil sur base nulle", *c.VariationRecettesPct)
	}
}

func TestStatistiquesRegion(t *testing.T) {
	svc := newTestService(newFixture())

	stats, err := svc.StatistiquesRegion(context.Background(), 5, 2024)
	if err != nil {
		t.Fatalf("StatistiquesRegion: %v", err)
	}
	if stats.NbCommunes != 2 {
		t.Fatalf("nb communes = %d", stats.NbCommunes)
	}
	if stats.MoyenneRecettesCommune != 325 {
		t.Fatalf("moyenne recettes = %v, attendu 325", stats.MoyenneRecettesCommune)
	}
}

func TestStatistiquesRegionSansCommunes(t *testing.T) {
	repo := newFixture()
	repo.regionIDs = nil
	svc := newTestService(repo)

	stats, err := svc.StatistiquesRegion(context.Background(), 5, 2024)
	if err != nil {
		t.Fatalf("StatistiquesRegion: %v", err)
	}
	if stats.TotalRecettes != 0 || stats.MoyenneRecettesCommune != 0 {
		t.Fatalf("stats sans communes = %+v", stats)
	}
}

func TestResolveurMemoisesLookups(t *testing.T) {
	repo := newFixture()
	res := newResolveurRecettes(repo, 7, 3)
	c := compte("611", 3, "61", plancomptable.MouvementRecette, plancomptable.SectionFonctionnement)

	for i := 0; i < 3; i++ {
		if _, err := res.ligne(context.Background(), c); err != nil {
			t.Fatalf("ligne: %v", err)
		}
	}
	if repo.getRecetteCalls != 1 {
		t.Fatalf("appels répo = %d, attendu 1 (mémoïsation)", repo.getRecetteCalls)
	}
}

func indexRecettes(lignes []LigneRecette) map[string]LigneRecette {
	m := make(map[string]LigneRecette, len(lignes))
	for _, l := range lignes {
		m[l.Code] = l
	}
	return m
}
