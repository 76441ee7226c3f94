// Plan Preview computes a media plan from command line flags and prints it.
//
// Usage:
//
//	go run ./tools/plan_preview -client="Boulangerie Dupont" -budget=25000 -objective=trafic
//
// Pass -json to print the plan as JSON instead of the formatted summary, and
// -config to use a planning config file instead of the built-in defaults.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/patrickwarner/openmediaplan/internal/models"
	"github.com/patrickwarner/openmediaplan/internal/planning"
	"github.com/patrickwarner/openmediaplan/internal/validator"
)

func main() {
	var (
		client     = flag.String("client", "Client", "client name")
		budget     = flag.Float64("budget", 25000, "total budget in euros")
		objective  = flag.String("objective", string(models.ObjectiveAwareness), "notoriete, trafic or engagement")
		startMonth = flag.String("start-month", "Mars", "campaign start month")
		duration   = flag.Int("duration", 4, "campaign length in weeks")
		targetAge  = flag.String("target-age", string(models.Age25To45), "target age bracket")
		region     = flag.String("region", string(models.RegionBrusselsWallonia), "target region")
		sector     = flag.String("sector", string(models.SectorRetail), "advertiser sector")
		videoNeed  = flag.String("video", string(models.VideoNone), "production, existant or none")
		configFile = flag.String("config", "", "planning config YAML")
		asJSON     = flag.Bool("json", false, "print JSON")
	)
	flag.Parse()

	b := models.BriefingData{
		ClientName: *client,
		Budget:     *budget,
		Objective:  models.Objective(*objective),
		StartMonth: models.Month(*startMonth),
		Duration:   *duration,
		TargetAge:  models.TargetAge(*targetAge),
		Region:     models.Region(*region),
		Sector:     models.Sector(*sector),
		VideoNeed:  models.VideoNeed(*videoNeed),
	}
	if err := validator.New().Validate(b); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg := planning.DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = planning.LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	engine, err := planning.NewEngine(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	plan, err := engine.CalculatePlan(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}
	printPlan(os.Stdout, plan)
}

func printPlan(w io.Writer, p *models.MediaPlan) {
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, " PLAN MÉDIA - %s\n", p.Briefing.ClientName)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "Budget:      %s sur %d semaines\n", planning.FormatCurrency(p.Briefing.Budget), p.Briefing.Duration)
	fmt.Fprintf(w, "Objectif:    %s\n", p.Briefing.Objective)
	fmt.Fprintf(w, "Mix:         digital %s, print %s, vidéo %s\n\n",
		planning.FormatPercent(p.Mix.Digital), planning.FormatPercent(p.Mix.Print), planning.FormatPercent(p.Mix.Video))

	d := p.Channels.Digital
	fmt.Fprintf(w, "Digital      %12s  %s impressions, CPM %s\n",
		planning.FormatCurrency(d.Budget), planning.FormatNumber(d.Impressions), planning.FormatCurrency(d.CPM))
	pr := p.Channels.Print
	fmt.Fprintf(w, "Print        %12s  %d insertions à %s\n",
		planning.FormatCurrency(pr.Budget), pr.Insertions, planning.FormatCurrency(pr.CostPerInsertion))
	if v := p.Channels.Video; v != nil {
		fmt.Fprintf(w, "Vidéo        %12s  %s vues, production %s\n",
			planning.FormatCurrency(v.Budget), planning.FormatNumber(v.Views), planning.FormatCurrency(v.Production))
	}

	m := p.Metrics
	fmt.Fprintf(w, "\nPortée:      %s personnes (%.1f%% de la cible)\n", planning.FormatNumber(m.TotalReach), m.Coverage)
	fmt.Fprintf(w, "Fréquence:   %.1f\n", m.Frequency)
	fmt.Fprintf(w, "CPM moyen:   %s\n", planning.FormatCurrency(m.BlendedCPM))
	fmt.Fprintf(w, "Score:       %d/100 (%s)\n", p.Score.Score, p.Score.Level)

	if len(p.Recommendations) > 0 {
		fmt.Fprintf(w, "\nRecommandations:\n")
		for _, r := range p.Recommendations {
			fmt.Fprintf(w, "  • %s\n", r)
		}
	}
}
