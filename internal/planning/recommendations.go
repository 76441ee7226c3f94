package planning

import (
	"fmt"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

// Recommendation categories, types and impacts.
const (
	CategoryBudget      = "budget"
	CategoryTiming      = "timing"
	CategoryTargeting   = "targeting"
	CategoryPerformance = "performance"
	CategoryStrategy    = "strategy"

	TypeOptimization = "optimization"
	TypeWarning      = "warning"
	TypeSuccess      = "success"
	TypeInsight      = "insight"

	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// RuleContext is the read-only input every rule is evaluated against.
type RuleContext struct {
	Briefing models.BriefingData
	Mix      models.MixSplit
	Metrics  models.PlanMetrics
}

// Rule is one independent piece of advice. When decides whether the rule
// fires; Message renders its text. Rules never see each other's output.
type Rule struct {
	ID       string
	Category string
	Type     string
	Impact   string
	Title    string
	Action   string
	When     func(RuleContext) bool
	Message  func(RuleContext) string
}

func text(s string) func(RuleContext) string {
	return func(RuleContext) string { return s }
}

func objectiveIs(o models.Objective) func(RuleContext) bool {
	return func(c RuleContext) bool { return c.Briefing.Objective == o }
}

func startsIn(month string) func(RuleContext) bool {
	return func(c RuleContext) bool { return string(c.Briefing.StartMonth) == month }
}

// EvaluateRules runs rules in order and returns one recommendation per rule
// that fires.
func EvaluateRules(rules []Rule, ctx RuleContext) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(rules))
	for _, r := range rules {
		if !r.When(ctx) {
			continue
		}
		out = append(out, models.Recommendation{
			ID:       r.ID,
			Category: r.Category,
			Type:     r.Type,
			Impact:   r.Impact,
			Title:    r.Title,
			Message:  r.Message(ctx),
			Action:   r.Action,
		})
	}
	return out
}

// DefaultRules returns the standard recommendation table.
func DefaultRules() []Rule {
	return []Rule{
		// Objective summary.
		{
			ID: "objective-notoriete", Category: CategoryStrategy, Type: TypeInsight, Impact: ImpactLow,
			Title:   "Stratégie notoriété",
			When:    objectiveIs(models.ObjectiveAwareness),
			Message: text("Mix optimisé pour maximiser la notoriété avec forte couverture print"),
		},
		{
			ID: "objective-trafic", Category: CategoryStrategy, Type: TypeInsight, Impact: ImpactLow,
			Title:   "Stratégie trafic",
			When:    objectiveIs(models.ObjectiveTraffic),
			Message: text("Mix digital-first pour générer du trafic qualifié"),
		},
		{
			ID: "objective-engagement", Category: CategoryStrategy, Type: TypeInsight, Impact: ImpactLow,
			Title:   "Stratégie engagement",
			When:    objectiveIs(models.ObjectiveEngagement),
			Message: text("Stratégie vidéo renforcée pour créer de l'engagement"),
		},

		// Frequency bands.
		{
			ID: "frequency-low", Category: CategoryPerformance, Type: TypeWarning, Impact: ImpactHigh,
			Title:   "Fréquence trop faible",
			Action:  "Réduire la durée de campagne ou concentrer sur moins de supports",
			When:    func(c RuleContext) bool { return c.Metrics.Frequency < 2 },
			Message: text("Fréquence faible - considérer concentrer sur une période plus courte"),
		},
		{
			ID: "frequency-high", Category: CategoryPerformance, Type: TypeWarning, Impact: ImpactMedium,
			Title:   "Risque de saturation",
			Action:  "Étaler sur une période plus longue ou élargir la cible",
			When:    func(c RuleContext) bool { return c.Metrics.Frequency > 5 },
			Message: text("Fréquence élevée - risque de saturation, étaler davantage"),
		},
		{
			ID: "frequency-optimal", Category: CategoryPerformance, Type: TypeSuccess, Impact: ImpactMedium,
			Title: "Fréquence optimale",
			When: func(c RuleContext) bool {
				return c.Metrics.Frequency >= 2 && c.Metrics.Frequency <= 5
			},
			Message: func(c RuleContext) string {
				return fmt.Sprintf("Fréquence %.1f× idéale pour mémorisation", c.Metrics.Frequency)
			},
		},

		// Coverage bands.
		{
			ID: "coverage-excellent", Category: CategoryTargeting, Type: TypeSuccess, Impact: ImpactHigh,
			Title: "Excellente couverture marché",
			When:  func(c RuleContext) bool { return c.Metrics.Coverage > 70 },
			Message: func(c RuleContext) string {
				return fmt.Sprintf("Excellente couverture %.0f%% du marché %s", c.Metrics.Coverage, c.Briefing.Region)
			},
		},
		{
			ID: "coverage-good", Category: CategoryTargeting, Type: TypeSuccess, Impact: ImpactMedium,
			Title: "Bonne couverture",
			When: func(c RuleContext) bool {
				return c.Metrics.Coverage > 40 && c.Metrics.Coverage <= 70
			},
			Message: func(c RuleContext) string {
				return fmt.Sprintf("Bonne couverture %.0f%% du marché cible", c.Metrics.Coverage)
			},
		},
		{
			ID: "coverage-low", Category: CategoryTargeting, Type: TypeWarning, Impact: ImpactHigh,
			Title:   "Couverture limitée",
			Action:  "Augmenter le budget ou réviser la stratégie de ciblage",
			When:    func(c RuleContext) bool { return c.Metrics.Coverage <= 40 },
			Message: text("Couverture limitée - considérer augmenter le budget ou réduire la cible"),
		},

		// Sector.
		{
			ID: "sector-formats", Category: CategoryStrategy, Type: TypeInsight, Impact: ImpactLow,
			Title: "Formats sectoriels",
			When:  func(RuleContext) bool { return true },
			Message: func(c RuleContext) string {
				return fmt.Sprintf("Formats adaptés au secteur %s", c.Briefing.Sector)
			},
		},

		// Budget efficiency.
		{
			ID: "cpm-competitive", Category: CategoryBudget, Type: TypeSuccess, Impact: ImpactMedium,
			Title:   "CPM très compétitif",
			When:    func(c RuleContext) bool { return c.Metrics.BlendedCPM < 8 },
			Message: text("CPM très compétitif pour le marché belge francophone"),
		},
		{
			ID: "cpm-high", Category: CategoryBudget, Type: TypeWarning, Impact: ImpactHigh,
			Title:  "CPM élevé détecté",
			Action: "Augmenter la part digital ou réduire les formats premium",
			When:   func(c RuleContext) bool { return c.Metrics.BlendedCPM > 10 },
			Message: func(c RuleContext) string {
				return fmt.Sprintf("Votre CPM blended de %.2f€ est supérieur à la moyenne du marché (8€). Considérez réajuster le mix média.", c.Metrics.BlendedCPM)
			},
		},

		// Objective versus mix.
		{
			ID: "notoriete-print", Category: CategoryStrategy, Type: TypeOptimization, Impact: ImpactMedium,
			Title:  "Renforcer le print pour la notoriété",
			Action: "Réallouer 5-10% du budget digital vers le print",
			When: func(c RuleContext) bool {
				return c.Briefing.Objective == models.ObjectiveAwareness && c.Mix.Print < 0.2
			},
			Message: text("Pour un objectif notoriété, une part print plus importante (25%+) renforce la crédibilité."),
		},
		{
			ID: "trafic-digital", Category: CategoryStrategy, Type: TypeOptimization, Impact: ImpactHigh,
			Title:  "Privilégier le digital pour le trafic",
			Action: "Augmenter la part digital avec des formats cliquables",
			When: func(c RuleContext) bool {
				return c.Briefing.Objective == models.ObjectiveTraffic && c.Mix.Digital < 0.6
			},
			Message: text("Pour générer du trafic, concentrez au moins 70% sur le digital."),
		},
		{
			ID: "engagement-video", Category: CategoryStrategy, Type: TypeOptimization, Impact: ImpactHigh,
			Title:  "Renforcer la vidéo pour l'engagement",
			Action: "Allouer au moins 25% du budget à la vidéo",
			When: func(c RuleContext) bool {
				return c.Briefing.Objective == models.ObjectiveEngagement && c.Mix.Video < 0.2
			},
			Message: text("La vidéo génère 3× plus d'engagement que les formats statiques."),
		},

		// Seasonality.
		{
			ID: "seasonal-august", Category: CategoryTiming, Type: TypeInsight, Impact: ImpactMedium,
			Title:   "Période saisonnière identifiée",
			Action:  "Profiter des tarifs réduits et CPM plus bas",
			When:    startsIn("Août"),
			Message: text("Août: audience réduite, mais moins de concurrence publicitaire."),
		},
		{
			ID: "seasonal-december", Category: CategoryTiming, Type: TypeInsight, Impact: ImpactMedium,
			Title:   "Période saisonnière identifiée",
			Action:  "Anticiper le lancement pour éviter la saturation",
			When:    startsIn("Décembre"),
			Message: text("Décembre: forte concurrence, considérez commencer mi-novembre."),
		},
		{
			ID: "retail-blackfriday", Category: CategoryStrategy, Type: TypeInsight, Impact: ImpactHigh,
			Title:  "Période Black Friday",
			Action: "Réserver les espaces en avance ou reporter sur début décembre",
			When: func(c RuleContext) bool {
				return c.Briefing.Sector == models.SectorRetail && c.Briefing.StartMonth == "Novembre"
			},
			Message: text("Forte concurrence retail en novembre. CPM digital +30% attendu."),
		},

		// Duration.
		{
			ID: "duration-short", Category: CategoryTiming, Type: TypeInsight, Impact: ImpactMedium,
			Title:  "Campagne courte détectée",
			Action: "Concentrer sur les formats à fort impact (vidéo, print premium)",
			When:   func(c RuleContext) bool { return c.Briefing.Duration < 4 },
			Message: func(c RuleContext) string {
				return fmt.Sprintf("%d semaines permettent un impact rapide mais limité pour la mémorisation.", c.Briefing.Duration)
			},
		},
		{
			ID: "duration-long", Category: CategoryTiming, Type: TypeInsight, Impact: ImpactLow,
			Title:  "Campagne longue durée",
			Action: "Planifier des vagues d'intensité variable",
			When:   func(c RuleContext) bool { return c.Briefing.Duration > 12 },
			Message: func(c RuleContext) string {
				return fmt.Sprintf("%d semaines permettent une montée en puissance progressive.", c.Briefing.Duration)
			},
		},

		// Audience.
		{
			ID: "young-target-digital", Category: CategoryTargeting, Type: TypeOptimization, Impact: ImpactHigh,
			Title:  "Cible jeune: renforcer le digital",
			Action: "Allouer au moins 70% au digital avec focus mobile",
			When: func(c RuleContext) bool {
				return c.Briefing.TargetAge == models.Age18To34 && c.Mix.Digital < 0.7
			},
			Message: text("Les 18-34 ans consomment 80% de leur média en digital."),
		},
		{
			ID: "senior-target-print", Category: CategoryTargeting, Type: TypeOptimization, Impact: ImpactMedium,
			Title:  "Cible senior: valoriser le print",
			Action: "Maintenir au moins 30% en print pour cette cible",
			When: func(c RuleContext) bool {
				return c.Briefing.TargetAge == models.Age45To65 && c.Mix.Print < 0.3
			},
			Message: text("Les 45-65 ans ont une forte affinité avec la presse (crédibilité +40%)."),
		},
	}
}
