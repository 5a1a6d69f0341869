package tableau

import "sort"

// noeud is the position of one line inside the plan comptable hierarchy.
type noeud struct {
	code       string
	parentCode string
	niveau     int
}

// ligneHierarchique is the contract the roll-up needs from a table line:
// its position in the hierarchy, accumulating a child's amounts, and
// recomputing the execution rate from its own aggregated amounts.
type ligneHierarchique[T any] interface {
	*T
	position() noeud
	cumuler(*T)
	recalculerTaux()
}

// cumulerParents folds the amounts of every line into its parent line,
// deepest niveau first so that a niveau-1 parent receives values its
// niveau-2 children have already collected from niveau 3. The parent is
// resolved through the declared parent code, falling back to dropping the
// last character of the code for entries without an explicit parent. A
// candidate parent that is not exactly one niveau shallower is skipped.
//
// After the fold the execution rate of every aggregated line (niveau < 3)
// is recomputed from its new totals; leaf rates are kept as resolved.
func cumulerParents[T any, L ligneHierarchique[T]](lignes []L) {
	parCode := make(map[string]L, len(lignes))
	for _, l := range lignes {
		parCode[l.position().code] = l
	}

	ordre := make([]L, len(lignes))
	copy(ordre, lignes)
	sort.SliceStable(ordre, func(i, j int) bool {
		return ordre[i].position().niveau > ordre[j].position().niveau
	})

	for _, l := range ordre {
		n := l.position()
		if n.niveau <= 1 {
			continue
		}
		code := n.parentCode
		if code == "" {
			if len(n.code) < 2 {
				continue
			}
			code = n.code[:len(n.code)-1]
		}
		parent, ok := parCode[code]
		if !ok {
			continue
		}
		if parent.position().niveau != n.niveau-1 {
			continue
		}
		parent.cumuler(l)
	}

	for _, l := range lignes {
		if l.position().niveau < 3 {
			l.recalculerTaux()
		}
	}
}

// tauxExecution returns realise/previsions as a percentage, or nil when the
// provision is zero or negative and the rate is undefined.
func tauxExecution(realise, previsions float64) *float64 {
	if previsions <= 0 {
		return nil
	}
	t := realise / previsions * 100
	return &t
}

func (l *LigneRecette) position() noeud {
	return noeud{code: l.Code, parentCode: l.parentCode, niveau: l.Niveau}
}

func (l *LigneRecette) cumuler(c *LigneRecette) {
	l.BudgetPrimitif += c.BudgetPrimitif
	l.BudgetAdditionnel += c.BudgetAdditionnel
	l.Modifications += c.Modifications
	l.PrevisionsDefinitives += c.PrevisionsDefinitives
	l.OrAdmis += c.OrAdmis
	l.Recouvrement += c.Recouvrement
	l.ResteARecouvrer += c.ResteARecouvrer
}

func (l *LigneRecette) recalculerTaux() {
	l.TauxExecution = tauxExecution(l.OrAdmis, l.PrevisionsDefinitives)
}

func (l *LigneDepense) position() noeud {
	return noeud{code: l.Code, parentCode: l.parentCode, niveau: l.Niveau}
}

func (l *LigneDepense) cumuler(c *LigneDepense) {
	l.BudgetPrimitif += c.BudgetPrimitif
	l.BudgetAdditionnel += c.BudgetAdditionnel
	l.Modifications += c.Modifications
	l.PrevisionsDefinitives += c.PrevisionsDefinitives
	l.Engagement += c.Engagement
	l.MandatAdmis += c.MandatAdmis
	l.Paiement += c.Paiement
	l.ResteAPayer += c.ResteAPayer
}

func (l *LigneDepense) recalculerTaux() {
	l.TauxExecution = tauxExecution(l.MandatAdmis, l.PrevisionsDefinitives)
}
