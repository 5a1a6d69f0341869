package tableau

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/tahiry-mg/tahiry/internal/plancomptable"
)

func TestWriteCompletCSV(t *testing.T) {
	taux := 80.0
	fonct := plancomptable.SectionFonctionnement
	table := &TableauComplet{
		CommuneID:     7,
		CommuneNom:    "Ilakaka",
		CommuneCode:   "501-C",
		RegionNom:     "Ihorombe",
		ProvinceNom:   "Fianarantsoa",
		ExerciceAnnee: 2024,
		Recettes: TableauRecettes{
			Sections: []SectionRecettes{{
				Section: fonct,
				Titre:   TitreFonctionnement,
				Lignes: []LigneRecette{{
					Code:                  "61",
					Intitule:              "Impôts locaux",
					Niveau:                2,
					PrevisionsDefinitives: 500.5,
					OrAdmis:               400.25,
					TauxExecution:         &taux,
				}},
				TotalPrevisionsDefinitives: 500.5,
				TotalOrAdmis:               400.25,
			}},
		},
		Depenses: TableauDepenses{
			Sections: []SectionDepenses{{
				Section: fonct,
				Titre:   TitreFonctionnement,
				Lignes:  []LigneDepense{{Code: "01", Intitule: "Personnel", Niveau: 2}},
			}},
		},
		Equilibre: TableauEquilibre{
			Lignes: []LigneEquilibre{
				{Libelle: TitreFonctionnement, RecettesPrevisions: 500.5},
				{Libelle: LibelleTotalGeneral, RecettesPrevisions: 500.5},
			},
		},
		GenerationID:   "gen-42",
		DateGeneration: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := WriteCompletCSV(&buf, table); err != nil {
		t.Fatalf("WriteCompletCSV: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# Commune: Ilakaka (501-C)",
		"# Exercice: 2024",
		"gen-42",
		"RECETTES",
		"DEPENSES",
		"EQUILIBRE",
		"Impôts locaux",
		LibelleTotalGeneral,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("sortie CSV sans %q:\n%s", want, out)
		}
	}

	// French locale: decimal comma.
	if !strings.Contains(out, "400,25") {
		t.Fatalf("montant non formaté en français:\n%s", out)
	}
	if !strings.Contains(out, "\r\n") {
		t.Fatalf("fins de ligne CRLF attendues")
	}
}

func TestFormatTaux(t *testing.T) {
	if got := formatTaux(nil); got != "" {
		t.Fatalf("taux nil = %q, attendu vide", got)
	}
	v := 62.5
	if got := formatTaux(&v); got != "62,50" {
		t.Fatalf("taux = %q, attendu 62,50", got)
	}
}
