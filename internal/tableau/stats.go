package tableau

// Summary endpoints built on SQL-level sums rather than full table builds:
// the resume, the year-over-year comparison and the regional statistics only
// need aggregates over the stored rows.

import "context"

// Resume returns the simplified financial summary for one commune and
// exercice.
func (s *Service) Resume(ctx context.Context, communeID int64, annee int) (*ResumeFinancier, error) {
	_, ex, err := s.contexte(ctx, communeID, annee)
	if err != nil {
		return nil, err
	}

	recettes, err := s.repo.SommeRecettes(ctx, []int64{communeID}, ex.ID)
	if err != nil {
		return nil, err
	}
	depenses, err := s.repo.SommeDepenses(ctx, []int64{communeID}, ex.ID)
	if err != nil {
		return nil, err
	}

	return &ResumeFinancier{
		CommuneID:              communeID,
		ExerciceAnnee:          ex.Annee,
		TotalRecettesPrevues:   recettes.Previsions,
		TotalRecettesRealisees: recettes.Realisations,
		TotalDepensesPrevues:   depenses.Previsions,
		TotalDepensesRealisees: depenses.Realisations,
		SoldeBudgetaire:        recettes.Realisations - depenses.Realisations,
		TauxExecutionRecettes:  tauxExecution(recettes.Realisations, recettes.Previsions),
		TauxExecutionDepenses:  tauxExecution(depenses.Realisations, depenses.Previsions),
	}, nil
}

// Comparaison compares the realisations of one commune between two fiscal
// years. Percentage variations are undefined when the first year is zero.
func (s *Service) Comparaison(ctx context.Context, communeID int64, annee1, annee2 int) (*ComparaisonExercices, error) {
	commune, err := s.repo.GetCommune(ctx, communeID)
	if err != nil {
		return nil, err
	}
	ex1, err := s.repo.GetExercice(ctx, annee1)
	if err != nil {
		return nil, err
	}
	ex2, err := s.repo.GetExercice(ctx, annee2)
	if err != nil {
		return nil, err
	}

	ids := []int64{communeID}
	rec1, err := s.repo.SommeRecettes(ctx, ids, ex1.ID)
	if err != nil {
		return nil, err
	}
	rec2, err := s.repo.SommeRecettes(ctx, ids, ex2.ID)
	if err != nil {
		return nil, err
	}
	dep1, err := s.repo.SommeDepenses(ctx, ids, ex1.ID)
	if err != nil {
		return nil, err
	}
	dep2, err := s.repo.SommeDepenses(ctx, ids, ex2.ID)
	if err != nil {
		return nil, err
	}

	c := &ComparaisonExercices{
		CommuneID:         communeID,
		CommuneNom:        commune.Nom,
		Annee1:            ex1.Annee,
		Annee2:            ex2.Annee,
		RecettesAnnee1:    rec1.Realisations,
		RecettesAnnee2:    rec2.Realisations,
		VariationRecettes: rec2.Realisations - rec1.Realisations,
		DepensesAnnee1:    dep1.Realisations,
		DepensesAnnee2:    dep2.Realisations,
		VariationDepenses: dep2.Realisations - dep1.Realisations,
	}
	c.VariationRecettesPct = variationPct(rec1.Realisations, rec2.Realisations)
	c.VariationDepensesPct = variationPct(dep1.Realisations, dep2.Realisations)
	return c, nil
}

func variationPct(avant, apres float64) *float64 {
	if avant == 0 {
		return nil
	}
	pct := (apres - avant) / avant * 100
	return &pct
}

// StatistiquesRegion aggregates the realisations of every commune of a
// region for one exercice.
func (s *Service) StatistiquesRegion(ctx context.Context, regionID int64, annee int) (*StatistiquesRegion, error) {
	region, err := s.repo.GetRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}
	ex, err := s.repo.GetExercice(ctx, annee)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.ListCommuneIDsByRegion(ctx, regionID)
	if err != nil {
		return nil, err
	}

	stats := &StatistiquesRegion{
		RegionID:      region.ID,
		RegionNom:     region.Nom,
		ExerciceAnnee: ex.Annee,
		NbCommunes:    len(ids),
	}
	if len(ids) == 0 {
		return stats, nil
	}

	recettes, err := s.repo.SommeRecettes(ctx, ids, ex.ID)
	if err != nil {
		return nil, err
	}
	depenses, err := s.repo.SommeDepenses(ctx, ids, ex.ID)
	if err != nil {
		return nil, err
	}

	stats.TotalRecettes = recettes.Realisations
	stats.TotalDepenses = depenses.Realisations
	stats.MoyenneRecettesCommune = recettes.Realisations / float64(len(ids))
	stats.MoyenneDepensesCommune = depenses.Realisations / float64(len(ids))
	stats.TauxExecutionMoyen = tauxExecution(recettes.Realisations, recettes.Previsions)
	return stats, nil
}
