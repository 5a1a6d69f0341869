package plancomptable

import (
	"context"
	"strings"
	"testing"
)

type fakeRepo struct {
	comptes map[string]*Compte
	created []Compte
	updated []Compte
}

func newFakeRepo(comptes ...Compte) *fakeRepo {
	f := &fakeRepo{comptes: make(map[string]*Compte)}
	for i := range comptes {
		f.comptes[comptes[i].Code] = &comptes[i]
	}
	return f
}

func (f *fakeRepo) ListActive(_ context.Context, _ TypeMouvement, _ SectionBudgetaire) ([]Compte, error) {
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, _ Filter) ([]Compte, error) {
	return nil, nil
}

func (f *fakeRepo) FindByCode(_ context.Context, code string) (*Compte, error) {
	if c, ok := f.comptes[code]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, c Compte) (int64, error) {
	f.created = append(f.created, c)
	return int64(len(f.created)), nil
}

func (f *fakeRepo) Update(_ context.Context, _ string, c Compte) error {
	f.updated = append(f.updated, c)
	return nil
}

func strPtr(s string) *string { return &s }

func racine(code string) Compte {
	return Compte{Code: code, Intitule: "Racine " + code, Niveau: 1, TypeMouvement: MouvementRecette, Section: SectionFonctionnement, Actif: true}
}

func TestCreateNiveau1SansParent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	c, err := svc.Create(context.Background(), racine("6"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == 0 {
		t.Fatalf("identifiant non renseigné")
	}

	avecParent := racine("7")
	avecParent.ParentCode = strPtr("6")
	if _, err := svc.Create(context.Background(), avecParent); err == nil {
		t.Fatalf("niveau 1 avec parent: erreur attendue")
	}
}

func TestCreateValideLaHierarchie(t *testing.T) {
	repo := newFakeRepo(racine("6"))
	svc := NewService(repo, nil, nil)

	enfant := Compte{
		Code:          "61",
		Intitule:      "Impôts",
		Niveau:        2,
		TypeMouvement: MouvementRecette,
		Section:       SectionFonctionnement,
		ParentCode:    strPtr("6"),
	}
	if _, err := svc.Create(context.Background(), enfant); err != nil {
		t.Fatalf("Create enfant valide: %v", err)
	}
}

func TestCreateRejetteParentInconnu(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	enfant := Compte{
		Code:          "61",
		Intitule:      "Impôts",
		Niveau:        2,
		TypeMouvement: MouvementRecette,
		Section:       SectionFonctionnement,
		ParentCode:    strPtr("6"),
	}
	_, err := svc.Create(context.Background(), enfant)
	if err == nil || !strings.Contains(err.Error(), "introuvable") {
		t.Fatalf("parent inconnu: %v", err)
	}
}

func TestCreateRejetteParentNonAdjacent(t *testing.T) {
	repo := newFakeRepo(racine("6"))
	svc := NewService(repo, nil, nil)

	// Level-3 account pointing at a level-1 parent.
	feuille := Compte{
		Code:          "611",
		Intitule:      "Feuille",
		Niveau:        3,
		TypeMouvement: MouvementRecette,
		Section:       SectionFonctionnement,
		ParentCode:    strPtr("6"),
	}
	if _, err := svc.Create(context.Background(), feuille); err == nil {
		t.Fatalf("parent non adjacent: erreur attendue")
	}
}

func TestCreateRejetteSectionDifferente(t *testing.T) {
	parent := racine("2")
	parent.Section = SectionInvestissement
	svc := NewService(newFakeRepo(parent), nil, nil)

	enfant := Compte{
		Code:          "21",
		Intitule:      "Enfant",
		Niveau:        2,
		TypeMouvement: MouvementRecette,
		Section:       SectionFonctionnement,
		ParentCode:    strPtr("2"),
	}
	if _, err := svc.Create(context.Background(), enfant); err == nil {
		t.Fatalf("sections différentes: erreur attendue")
	}
}

func TestCreateRejetteCodeNonPrefixe(t *testing.T) {
	svc := NewService(newFakeRepo(racine("6")), nil, nil)

	enfant := Compte{
		Code:          "71",
		Intitule:      "Enfant",
		Niveau:        2,
		TypeMouvement: MouvementRecette,
		Section:       SectionFonctionnement,
		ParentCode:    strPtr("6"),
	}
	if _, err := svc.Create(context.Background(), enfant); err == nil {
		t.Fatalf("code sans préfixe parent: erreur attendue")
	}

	tropLong := enfant
	tropLong.Code = "611"
	tropLong.ParentCode = strPtr("6")
	if _, err := svc.Create(context.Background(), tropLong); err == nil {
		t.Fatalf("code trop long: erreur attendue")
	}
}

func TestCreateRejetteNiveauHorsPlage(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)

	c := racine("6")
	c.Niveau = 4
	if _, err := svc.Create(context.Background(), c); err == nil {
		t.Fatalf("niveau 4: erreur attendue")
	}
}

func TestUpdateConserveIntituleVide(t *testing.T) {
	existant := racine("6")
	repo := newFakeRepo(existant)
	svc := NewService(repo, nil, nil)

	_, err := svc.Update(context.Background(), "6", Compte{EstSommable: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(repo.updated) != 1 || repo.updated[0].Intitule != existant.Intitule {
		t.Fatalf("intitulé vide doit conserver l'existant: %+v", repo.updated)
	}
}

type fakeBumper struct {
	calls int
}

func (f *fakeBumper) Bump(_ context.Context) error {
	f.calls++
	return nil
}

func TestMutationsBumpReportCache(t *testing.T) {
	bumper := &fakeBumper{}
	repo := newFakeRepo(racine("6"))
	svc := NewService(repo, bumper, nil)

	if _, err := svc.Create(context.Background(), racine("7")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(context.Background(), "6", Compte{Intitule: "Recettes", EstSommable: true}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if bumper.calls != 2 {
		t.Fatalf("bumps = %d, attendu 2", bumper.calls)
	}
}
