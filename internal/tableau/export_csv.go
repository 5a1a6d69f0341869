package tableau

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tahiry-mg/tahiry/internal/platform/httpx"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeComment(line string) error {
	if s == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if !strings.HasSuffix(line, "\r\n") {
		line = strings.TrimSuffix(line, "\n")
		line += "\r\n"
	}
	_, err := s.buf.WriteString(line)
	return err
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// Amounts are rendered with the French locale (space thousands separator,
// decimal comma), the convention of the printed compte administratif.
var frPrinter = message.NewPrinter(language.French)

func formatMontant(v float64) string {
	return frPrinter.Sprintf("%.2f", v)
}

func formatTaux(t *float64) string {
	if t == nil {
		return ""
	}
	return frPrinter.Sprintf("%.2f", *t)
}

// WriteCompletCSV streams the complete administrative account as CSV:
// commented header, the receipts table, the expenses table, then the
// equilibrium rows.
func WriteCompletCSV(w io.Writer, t *TableauComplet) error {
	streamer := newCSVStreamer(w)

	if err := streamer.writeComment("# Compte administratif"); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Commune: %s (%s) | Région: %s | Province: %s",
		t.CommuneNom, t.CommuneCode, t.RegionNom, t.ProvinceNom)); err != nil {
		return err
	}
	if err := streamer.writeComment(fmt.Sprintf("# Exercice: %d | Généré: %s | Référence: %s",
		t.ExerciceAnnee, t.DateGeneration.Format("2006-01-02 15:04:05"), t.GenerationID)); err != nil {
		return err
	}

	if err := streamer.writeRow([]string{"RECETTES"}); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{
		"Section", "Code", "Intitulé", "Budget primitif", "Budget additionnel",
		"Modifications", "Prévisions définitives", "OR admis", "Recouvrement",
		"Reste à recouvrer", "Taux d'exécution (%)",
	}); err != nil {
		return err
	}
	for _, sec := range t.Recettes.Sections {
		for _, l := range sec.Lignes {
			if err := streamer.writeRow([]string{
				sec.Titre,
				l.Code,
				l.Intitule,
				formatMontant(l.BudgetPrimitif),
				formatMontant(l.BudgetAdditionnel),
				formatMontant(l.Modifications),
				formatMontant(l.PrevisionsDefinitives),
				formatMontant(l.OrAdmis),
				formatMontant(l.Recouvrement),
				formatMontant(l.ResteARecouvrer),
				formatTaux(l.TauxExecution),
			}); err != nil {
				return err
			}
		}
		if err := streamer.writeRow([]string{
			sec.Titre, "", "TOTAL",
			formatMontant(sec.TotalBudgetPrimitif),
			formatMontant(sec.TotalBudgetAdditionnel),
			formatMontant(sec.TotalModifications),
			formatMontant(sec.TotalPrevisionsDefinitives),
			formatMontant(sec.TotalOrAdmis),
			formatMontant(sec.TotalRecouvrement),
			formatMontant(sec.TotalResteARecouvrer),
			formatTaux(sec.TauxExecutionGlobal),
		}); err != nil {
			return err
		}
	}

	if err := streamer.writeRow([]string{""}); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"DEPENSES"}); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{
		"Section", "Code", "Intitulé", "Budget primitif", "Budget additionnel",
		"Modifications", "Prévisions définitives", "Engagement", "Mandat admis",
		"Paiement", "Reste à payer", "Taux d'exécution (%)",
	}); err != nil {
		return err
	}
	for _, sec := range t.Depenses.Sections {
		for _, l := range sec.Lignes {
			if err := streamer.writeRow([]string{
				sec.Titre,
				l.Code,
				l.Intitule,
				formatMontant(l.BudgetPrimitif),
				formatMontant(l.BudgetAdditionnel),
				formatMontant(l.Modifications),
				formatMontant(l.PrevisionsDefinitives),
				formatMontant(l.Engagement),
				formatMontant(l.MandatAdmis),
				formatMontant(l.Paiement),
				formatMontant(l.ResteAPayer),
				formatTaux(l.TauxExecution),
			}); err != nil {
				return err
			}
		}
		if err := streamer.writeRow([]string{
			sec.Titre, "", "TOTAL",
			formatMontant(sec.TotalBudgetPrimitif),
			formatMontant(sec.TotalBudgetAdditionnel),
			formatMontant(sec.TotalModifications),
			formatMontant(sec.TotalPrevisionsDefinitives),
			formatMontant(sec.TotalEngagement),
			formatMontant(sec.TotalMandatAdmis),
			formatMontant(sec.TotalPaiement),
			formatMontant(sec.TotalResteAPayer),
			formatTaux(sec.TauxExecutionGlobal),
		}); err != nil {
			return err
		}
	}

	if err := streamer.writeRow([]string{""}); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{"EQUILIBRE"}); err != nil {
		return err
	}
	if err := streamer.writeRow([]string{
		"Libellé", "Recettes prévues", "Recettes réalisées", "Dépenses prévues",
		"Dépenses réalisées", "Solde prévisions", "Solde réalisations",
	}); err != nil {
		return err
	}
	for _, l := range t.Equilibre.Lignes {
		if err := streamer.writeRow([]string{
			l.Libelle,
			formatMontant(l.RecettesPrevisions),
			formatMontant(l.RecettesRealisations),
			formatMontant(l.DepensesPrevisions),
			formatMontant(l.DepensesRealisations),
			formatMontant(l.SoldePrevisions),
			formatMontant(l.SoldeRealisations),
		}); err != nil {
			return err
		}
	}
	return streamer.Close()
}

// ExportCSV streams the complete table as a CSV attachment.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	communeID, annee, ok := h.scope(w, r)
	if !ok {
		return
	}
	t, err := h.svc.BuildComplet(r.Context(), communeID, annee)
	if err != nil {
		h.respondError(w, err)
		return
	}

	filename := fmt.Sprintf("compte_administratif_%s_%d.csv", t.CommuneCode, t.ExerciceAnnee)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := WriteCompletCSV(w, t); err != nil {
		httpx.RespondError(w, err)
	}
}
