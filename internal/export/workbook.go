// Package export renders media plans and campaigns as Excel workbooks.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/planning"
	"github.com/patrickwarner/openmediaplan/internal/pricing"
)

// ContentType is the MIME type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sheet names.
const (
	SheetSummary         = "Résumé"
	SheetChannels        = "Canaux"
	SheetRecommendations = "Recommandations"
	SheetPlacements      = "Placements"
	SheetPublications    = "Par publication"
)

// euroFormat is a custom number format for whole euros.
const euroFormat = `#,##0 "€"`

type styles struct {
	header int
	label  int
	euro   int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E78"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}
	if s.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("label style: %w", err)
	}
	fmtCode := euroFormat
	if s.euro, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fmtCode}); err != nil {
		return s, fmt.Errorf("euro style: %w", err)
	}
	return s, nil
}

// sheetWriter appends rows to one sheet.
type sheetWriter struct {
	f     *excelize.File
	name  string
	row   int
	style styles
}

func (w *sheetWriter) next(values ...any) (int, error) {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return 0, err
	}
	if err := w.f.SetSheetRow(w.name, cell, &values); err != nil {
		return 0, fmt.Errorf("%s row %d: %w", w.name, w.row, err)
	}
	return w.row, nil
}

func (w *sheetWriter) header(values ...any) error {
	row, err := w.next(values...)
	if err != nil {
		return err
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	return w.f.SetCellStyle(w.name, first, last, w.style.header)
}

// pair writes a label/value row with a bold label.
func (w *sheetWriter) pair(label string, value any) error {
	row, err := w.next(label, value)
	if err != nil {
		return err
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return w.f.SetCellStyle(w.name, cell, cell, w.style.label)
}

// euroColumns applies the euro format to the given 1-based columns of rows
// [from, to].
func (w *sheetWriter) euroColumns(from, to int, cols ...int) error {
	if to < from {
		return nil
	}
	for _, c := range cols {
		first, _ := excelize.CoordinatesToCellName(c, from)
		last, _ := excelize.CoordinatesToCellName(c, to)
		if err := w.f.SetCellStyle(w.name, first, last, w.style.euro); err != nil {
			return err
		}
	}
	return nil
}

func newWorkbook(sheets ...string) (*excelize.File, styles, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheets[0]); err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}
	for _, name := range sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, styles{}, err
		}
	}
	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, styles{}, err
	}
	return f, st, nil
}

// MediaPlanWorkbook renders plan as a summary sheet, a channel sheet and a
// recommendations sheet.
func MediaPlanWorkbook(plan *models.MediaPlan) (*excelize.File, error) {
	f, st, err := newWorkbook(SheetSummary, SheetChannels, SheetRecommendations)
	if err != nil {
		return nil, err
	}
	if err := writePlanSummary(&sheetWriter{f: f, name: SheetSummary, style: st}, plan); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writePlanChannels(&sheetWriter{f: f, name: SheetChannels, style: st}, plan); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeRecommendations(&sheetWriter{f: f, name: SheetRecommendations, style: st}, plan); err != nil {
		_ = f.Close()
		return nil, err
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 28)
	_ = f.SetColWidth(SheetSummary, "B", "B", 40)
	_ = f.SetColWidth(SheetChannels, "A", "F", 18)
	_ = f.SetColWidth(SheetRecommendations, "D", "E", 60)
	return f, nil
}

func writePlanSummary(w *sheetWriter, plan *models.MediaPlan) error {
	b := plan.Briefing
	rows := []struct {
		label string
		value any
	}{
		{"Client", b.ClientName},
		{"Budget", planning.FormatCurrency(b.Budget)},
		{"Objectif", string(b.Objective)},
		{"Mois de départ", string(b.StartMonth)},
		{"Durée (semaines)", b.Duration},
		{"Cible", string(b.TargetAge)},
		{"Zone", string(b.Region)},
		{"Secteur", string(b.Sector)},
		{"Vidéo", string(b.VideoNeed)},
		{"Portée totale", planning.FormatNumber(plan.Metrics.TotalReach)},
		{"Impressions totales", planning.FormatNumber(plan.Metrics.TotalImpressions)},
		{"Fréquence", fmt.Sprintf("%.1f", plan.Metrics.Frequency)},
		{"Couverture", fmt.Sprintf("%.1f %%", plan.Metrics.Coverage)},
		{"CPM moyen", fmt.Sprintf("%.2f €", plan.Metrics.BlendedCPM)},
		{"Score", fmt.Sprintf("%d/100 (%s)", plan.Score.Score, plan.Score.Level)},
		{"Généré le", plan.GeneratedAt.UTC().Format(time.DateTime)},
	}
	for _, r := range rows {
		if err := w.pair(r.label, r.value); err != nil {
			return err
		}
	}
	return nil
}

func writePlanChannels(w *sheetWriter, plan *models.MediaPlan) error {
	if err := w.header("Canal", "Part", "Budget", "Impressions", "Portée", "Détails"); err != nil {
		return err
	}
	d := plan.Channels.Digital
	if _, err := w.next("Digital", planning.FormatPercent(plan.Mix.Digital), planning.FormatCurrency(d.Budget),
		planning.FormatNumber(d.Impressions), planning.FormatNumber(d.Reach),
		fmt.Sprintf("CPM %.2f € · %s", d.CPM, strings.Join(d.Formats, ", "))); err != nil {
		return err
	}
	p := plan.Channels.Print
	if _, err := w.next("Print", planning.FormatPercent(plan.Mix.Print), planning.FormatCurrency(p.Budget),
		planning.FormatNumber(p.Impressions), planning.FormatNumber(p.Reach),
		fmt.Sprintf("%d insertions à %s · %s", p.Insertions, planning.FormatCurrency(p.CostPerInsertion), p.Format)); err != nil {
		return err
	}
	if v := plan.Channels.Video; v != nil {
		details := fmt.Sprintf("%s vues · %s", planning.FormatNumber(v.Views), v.Format)
		if v.Production > 0 {
			details += fmt.Sprintf(" · production %s", planning.FormatCurrency(v.Production))
		}
		if _, err := w.next("Vidéo", planning.FormatPercent(plan.Mix.Video), planning.FormatCurrency(v.Budget),
			planning.FormatNumber(v.Impressions), planning.FormatNumber(v.Reach), details); err != nil {
			return err
		}
	}
	return nil
}

func writeRecommendations(w *sheetWriter, plan *models.MediaPlan) error {
	if err := w.header("Catégorie", "Type", "Impact", "Titre", "Message", "Action"); err != nil {
		return err
	}
	for _, r := range plan.Insights {
		if _, err := w.next(r.Category, r.Type, r.Impact, r.Title, r.Message, r.Action); err != nil {
			return err
		}
	}
	return nil
}

// CampaignWorkbook renders c and its placements as a summary sheet, a
// placements sheet and a per-publication breakdown.
func CampaignWorkbook(c models.Campaign) (*excelize.File, error) {
	f, st, err := newWorkbook(SheetSummary, SheetPlacements, SheetPublications)
	if err != nil {
		return nil, err
	}
	totals := pricing.ComputeTotals(c.Placements)
	steps := []func() error{
		func() error {
			return writeCampaignSummary(&sheetWriter{f: f, name: SheetSummary, style: st}, c, totals)
		},
		func() error {
			return writePlacements(&sheetWriter{f: f, name: SheetPlacements, style: st}, c.Placements)
		},
		func() error {
			return writePublications(&sheetWriter{f: f, name: SheetPublications, style: st}, totals.ByPublication)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	_ = f.SetColWidth(SheetSummary, "A", "A", 24)
	_ = f.SetColWidth(SheetSummary, "B", "B", 32)
	_ = f.SetColWidth(SheetPlacements, "A", "E", 22)
	_ = f.SetColWidth(SheetPublications, "A", "A", 24)
	return f, nil
}

func writeCampaignSummary(w *sheetWriter, c models.Campaign, t pricing.Totals) error {
	rows := []struct {
		label string
		value any
	}{
		{"Campagne", c.Name},
		{"Client", c.Client},
		{"Statut", string(c.Status)},
		{"Début", c.StartDate.Format(time.DateOnly)},
		{"Fin", c.EndDate.Format(time.DateOnly)},
		{"Budget", c.Budget},
		{"Placements", t.Placements},
		{"Insertions", t.TotalInsertions},
		{"Remises", t.TotalDiscounts},
		{"Coût total", t.TotalCost},
		{"CPM moyen", t.AverageCPM},
	}
	for _, r := range rows {
		if err := w.pair(r.label, r.value); err != nil {
			return err
		}
		switch r.label {
		case "Budget", "Remises", "Coût total", "CPM moyen":
			if err := w.euroColumns(w.row, w.row, 2); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePlacements(w *sheetWriter, placements []models.Placement) error {
	if err := w.header("Publication", "Type", "Position", "Format", "Dates", "Quantité", "Insertions",
		"Prix unitaire", "Prix total", "Remise %", "Remise", "Prix final", "Notes"); err != nil {
		return err
	}
	first := w.row + 1
	for _, p := range placements {
		dates := make([]string, len(p.Dates))
		for i, d := range p.Dates {
			dates[i] = d.Format("02/01/2006")
		}
		if _, err := w.next(p.Publication, p.AdType, p.Position, p.Size, strings.Join(dates, ", "),
			p.Quantity, p.Insertions(), p.UnitPrice, p.TotalPrice, p.Discount, p.DiscountAmount, p.FinalPrice, p.Notes); err != nil {
			return err
		}
	}
	return w.euroColumns(first, w.row, 8, 9, 11, 12)
}

func writePublications(w *sheetWriter, pubs []pricing.PublicationTotal) error {
	if err := w.header("Publication", "Placements", "Insertions", "Coût"); err != nil {
		return err
	}
	first := w.row + 1
	for _, p := range pubs {
		if _, err := w.next(p.Publication, p.Count, p.Insertions, p.Cost); err != nil {
			return err
		}
	}
	return w.euroColumns(first, w.row, 4)
}

// Write streams f to out and closes it.
func Write(out io.Writer, f *excelize.File) error {
	defer func() {
		_ = f.Close()
	}()
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename builds a download name such as "plan-boulangerie-dupont.xlsx".
func Filename(prefix, name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return prefix + ".xlsx"
	}
	return prefix + "-" + slug + ".xlsx"
}
