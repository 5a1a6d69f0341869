package tableau

import (
	"context"
	"errors"

	"github.com/tahiry-mg/tahiry/internal/donnees"
	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

// resolveurRecettes turns plan comptable entries into receipt lines for one
// commune and exercice. Lookups are memoised for the lifetime of one table
// build so a code is fetched at most once.
type resolveurRecettes struct {
	repo       Repository
	communeID  int64
	exerciceID int64
	memo       map[string]*donnees.Recette
}

func newResolveurRecettes(repo Repository, communeID, exerciceID int64) *resolveurRecettes {
	return &resolveurRecettes{
		repo:       repo,
		communeID:  communeID,
		exerciceID: exerciceID,
		memo:       make(map[string]*donnees.Recette),
	}
}

// ligne builds the leaf line for one compte. A compte without a stored
// record yields a zero line with no execution rate, so the table always
// shows every active entry of the plan.
func (r *resolveurRecettes) ligne(ctx context.Context, c plancomptable.Compte) (LigneRecette, error) {
	d, ok := r.memo[c.Code]
	if !ok {
		var err error
		d, err = r.repo.GetRecette(ctx, r.communeID, r.exerciceID, c.Code)
		if err != nil && !errors.Is(err, donnees.ErrNotFound) {
			return LigneRecette{}, err
		}
		r.memo[c.Code] = d
	}

	l := LigneRecette{
		Code:        c.Code,
		Intitule:    c.Intitule,
		Niveau:      c.Niveau,
		EstSommable: c.EstSommable,
	}
	if c.ParentCode != nil {
		l.parentCode = *c.ParentCode
	}
	if d == nil {
		return l, nil
	}

	l.BudgetPrimitif = d.BudgetPrimitif
	l.BudgetAdditionnel = d.BudgetAdditionnel
	l.Modifications = d.Modifications
	l.PrevisionsDefinitives = d.PrevisionsRetenues()
	l.OrAdmis = d.OrAdmis
	l.Recouvrement = d.Recouvrement
	l.ResteARecouvrer = d.ResteARecouvrer
	l.TauxExecution = tauxExecution(d.OrAdmis, l.PrevisionsDefinitives)
	return l, nil
}

type resolveurDepenses struct {
	repo       Repository
	communeID  int64
	exerciceID int64
	memo       map[string]*donnees.Depense
}

func newResolveurDepenses(repo Repository, communeID, exerciceID int64) *resolveurDepenses {
	return &resolveurDepenses{
		repo:       repo,
		communeID:  communeID,
		exerciceID: exerciceID,
		memo:       make(map[string]*donnees.Depense),
	}
}

func (r *resolveurDepenses) ligne(ctx context.Context, c plancomptable.Compte) (LigneDepense, error) {
	d, ok := r.memo[c.Code]
	if !ok {
		var err error
		d, err = r.repo.GetDepense(ctx, r.communeID, r.exerciceID, c.Code)
		if err != nil && !errors.Is(err, donnees.ErrNotFound) {
			return LigneDepense{}, err
		}
		r.memo[c.Code] = d
	}

	l := LigneDepense{
		Code:        c.Code,
		Intitule:    c.Intitule,
		Niveau:      c.Niveau,
		EstSommable: c.EstSommable,
	}
	if c.ParentCode != nil {
		l.parentCode = *c.ParentCode
	}
	if d == nil {
		return l, nil
	}

	l.BudgetPrimitif = d.BudgetPrimitif
	l.BudgetAdditionnel = d.BudgetAdditionnel
	l.Modifications = d.Modifications
	l.PrevisionsDefinitives = d.PrevisionsRetenues()
	l.Engagement = d.Engagement
	l.MandatAdmis = d.MandatAdmis
	l.Paiement = d.Paiement
	l.ResteAPayer = d.ResteAPayer
	l.TauxExecution = tauxExecution(d.MandatAdmis, l.PrevisionsDefinitives)
	return l, nil
}
