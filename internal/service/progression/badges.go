package progression

import "github.com/mamadbah2/harvestguard/internal/domain/models"

// Badge is a one-line achievement shown on the farmer profile.
type Badge string

const (
	BadgeFirstHarvestLogged   Badge = "badge_first_harvest_logged"
	BadgeRiskMitigationExpert Badge = "badge_risk_mitigation_expert"
)

// Badges derives achievements from the registered batches and their current
// loss estimates. Like tiers, badges are recomputed and can be lost.
func Badges(batches []models.CropBatch, estimates []models.LossEstimate) []Badge {
	var badges []Badge
	if len(batches) == 0 {
		return badges
	}
	badges = append(badges, BadgeFirstHarvestLogged)

	if len(estimates) != len(batches) {
		return badges
	}
	for _, e := range estimates {
		if e.RiskLevel == models.RiskHigh || e.RiskLevel == models.RiskCritical {
			return badges
		}
	}
	return append(badges, BadgeRiskMitigationExpert)
}
