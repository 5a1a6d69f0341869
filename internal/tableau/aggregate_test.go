package tableau

import "testing"

func ligneR(code, parent string, niveau int, prev, admis float64) *LigneRecette {
	l := &LigneRecette{
		Code:                  code,
		Niveau:                niveau,
		EstSommable:           true,
		parentCode:            parent,
		PrevisionsDefinitives: prev,
		OrAdmis:               admis,
	}
	l.TauxExecution = tauxExecution(admis, prev)
	return l
}

func TestCumulerParentsSumsChildrenIntoParent(t *testing.T) {
	racine := ligneR("6", "", 1, 0, 0)
	parent := ligneR("61", "6", 2, 0, 0)
	feuille1 := ligneR("611", "61", 3, 400, 300)
	feuille2 := ligneR("612", "61", 3, 100, 100)

	cumulerParents([]*LigneRecette{racine, parent, feuille1, feuille2})

	if parent.PrevisionsDefinitives != 500 {
		t.Fatalf("previsions parent = %v, attendu 500", parent.PrevisionsDefinitives)
	}
	if parent.OrAdmis != 400 {
		t.Fatalf("or_admis parent = %v, attendu 400", parent.OrAdmis)
	}
	if parent.TauxExecution == nil || *parent.TauxExecution != 80 {
		t.Fatalf("taux parent = %v, attendu 80", parent.TauxExecution)
	}
	if racine.PrevisionsDefinitives != 500 || racine.OrAdmis != 400 {
		t.Fatalf("racine = %v/%v, attendu 500/400", racine.PrevisionsDefinitives, racine.OrAdmis)
	}
	if racine.TauxExecution == nil || *racine.TauxExecution != 80 {
		t.Fatalf("taux racine = %v, attendu 80", racine.TauxExecution)
	}
	// Leaf values must not have moved.
	if feuille1.PrevisionsDefinitives != 400 || feuille1.OrAdmis != 300 {
		t.Fatalf("feuille 611 modifiée: %v/%v", feuille1.PrevisionsDefinitives, feuille1.OrAdmis)
	}
}

func TestCumulerParentsRecomputesTauxFromAggregates(t *testing.T) {
	parent := ligneR("61", "", 2, 0, 0)
	feuille := ligneR("611", "61", 3, 200, 100)

	cumulerParents([]*LigneRecette{parent, feuille})

	if parent.TauxExecution == nil || *parent.TauxExecution != 50 {
		t.Fatalf("taux parent = %v, attendu 50", parent.TauxExecution)
	}
	if feuille.TauxExecution == nil || *feuille.TauxExecution != 50 {
		t.Fatalf("taux feuille = %v, attendu 50", feuille.TauxExecution)
	}
}

func TestCumulerParentsZeroProvisionHasNoTaux(t *testing.T) {
	parent := ligneR("61", "", 2, 0, 0)
	feuille := ligneR("611", "61", 3, 0, 0)

	cumulerParents([]*LigneRecette{parent, feuille})

	if parent.TauxExecution != nil {
		t.Fatalf("taux parent = %v, attendu nil", *parent.TauxExecution)
	}
}

func TestCumulerParentsSkipsNonAdjacentParent(t *testing.T) {
	// A declared parent two levels up must not receive the values.
	racine := ligneR("6", "", 1, 0, 0)
	feuille := ligneR("611", "6", 3, 100, 50)

	cumulerParents([]*LigneRecette{racine, feuille})

	if racine.PrevisionsDefinitives != 0 {
		t.Fatalf("racine = %v, attendu 0 (parent non adjacent)", racine.PrevisionsDefinitives)
	}
}

func TestCumulerParentsFallsBackToCodePrefix(t *testing.T) {
	// No declared parent: the code prefix resolves the edge.
	parent := ligneR("71", "", 2, 0, 0)
	feuille := ligneR("711", "", 3, 250, 125)

	cumulerParents([]*LigneRecette{parent, feuille})

	if parent.PrevisionsDefinitives != 250 || parent.OrAdmis != 125 {
		t.Fatalf("parent = %v/%v, attendu 250/125", parent.PrevisionsDefinitives, parent.OrAdmis)
	}
}

func TestCumulerParentsMissingParentIsSilentlySkipped(t *testing.T) {
	feuille := ligneR("911", "91", 3, 100, 40)

	cumulerParents([]*LigneRecette{feuille})

	if feuille.PrevisionsDefinitives != 100 || feuille.OrAdmis != 40 {
		t.Fatalf("feuille orpheline modifiée: %v/%v", feuille.PrevisionsDefinitives, feuille.OrAdmis)
	}
}

func TestCumulerParentsDepenses(t *testing.T) {
	parent := &LigneDepense{Code: "01", Niveau: 1, EstSommable: true}
	f1 := &LigneDepense{Code: "011", Niveau: 2, parentCode: "01", PrevisionsDefinitives: 300, MandatAdmis: 150, Paiement: 120}
	f2 := &LigneDepense{Code: "012", Niveau: 2, parentCode: "01", PrevisionsDefinitives: 100, MandatAdmis: 100, Paiement: 90}

	cumulerParents([]*LigneDepense{parent, f1, f2})

	if parent.PrevisionsDefinitives != 400 || parent.MandatAdmis != 250 || parent.Paiement != 210 {
		t.Fatalf("parent = %v/%v/%v", parent.PrevisionsDefinitives, parent.MandatAdmis, parent.Paiement)
	}
	if parent.TauxExecution == nil || *parent.TauxExecution != 62.5 {
		t.Fatalf("taux parent = %v, attendu 62.5", parent.TauxExecution)
	}
}

func TestTauxExecution(t *testing.T) {
	if got := tauxExecution(50, 200); got == nil || *got != 25 {
		t.Fatalf("taux = %v, attendu 25", got)
	}
	if got := tauxExecution(50, 0); got != nil {
		t.Fatalf("taux = %v, attendu nil pour prévision nulle", *got)
	}
	if got := tauxExecution(50, -10); got != nil {
		t.Fatalf("taux = %v, attendu nil pour prévision négative", *got)
	}
	if got := tauxExecution(0, 100); got == nil || *got != 0 {
		t.Fatalf("taux = %v, attendu 0 (défini)", got)
	}
}
