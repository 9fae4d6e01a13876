package presenter

import (
	"fmt"
	"strings"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

// Language tags with pre-authored strings.
const (
	LangEnglish = "en"
	LangBangla  = "bn"
)

var catalog = map[string]map[string]string{
	LangEnglish: {
		string(models.MessageConditionsOptimal): "Conditions are optimal (%.0f°C).",
		string(models.MessageHeatIrrigate):      "Temp rising to %.0f°C. Irrigate in the afternoon.",
		string(models.MessageRainCoverCrops):    "Rain predicted (%.0f%%). Cover crops immediately.",

		"alert_prefix":   "HarvestGuard critical alert",
		"etcl_label":     "Time to Critical Loss:",
		"hours":          "hours",
		"unavailable":    "Unavailable",
		"balance_title":  "Ledger balance",
		"income_saved":   "Income saved",
		"expense_saved":  "Expense saved",
		"command_help":   "Commands: income <amount> <category> [label], expense <amount> <category> [label], balance, advisory. Categories: harvest, seeds, storage, care, other.",
		"weekly_report":  "Weekly report",
		"tier_progress":  "progress to next tier",
		"no_next_tier":   "top tier reached",
		"net_profit":     "Net profit",
		"total_income":   "Income",
		"total_expense":  "Expense",
		"advisory_title": "Advisory",
		"not_registered": "This number is not registered with HarvestGuard. Please contact your extension officer.",

		string(models.RiskLow):      "Low",
		string(models.RiskMedium):   "Medium",
		string(models.RiskHigh):     "High",
		string(models.RiskCritical): "Critical",

		string(models.TierStruggling): "Struggling",
		string(models.TierBronze):     "Bronze",
		string(models.TierSilver):     "Silver",
		string(models.TierGold):       "Gold",
		string(models.TierPlatinum):   "Platinum",

		"badge_first_harvest_logged":   "First Harvest Logged",
		"badge_risk_mitigation_expert": "Risk Mitigation Expert",
	},
	LangBangla: {
		string(models.MessageConditionsOptimal): "অবস্থা অনুকূল (%.0f°C)।",
		string(models.MessageHeatIrrigate):      "তাপমাত্রা %.0f°C উঠবে → বিকেলের দিকে সেচ দিন",
		string(models.MessageRainCoverCrops):    "বৃষ্টির সম্ভাবনা %.0f%% → আজই ধান কাটুন অথবা ঢেকে রাখুন",

		"alert_prefix":   "হারভেস্টগার্ড জরুরি সতর্কতা",
		"etcl_label":     "ঝুঁকিপূর্ণ হতে বাকি:",
		"hours":          "ঘণ্টা",
		"unavailable":    "পাওয়া যায়নি",
		"balance_title":  "হিসাবের ব্যালেন্স",
		"income_saved":   "আয় সংরক্ষিত",
		"expense_saved":  "খরচ সংরক্ষিত",
		"command_help":   "কমান্ড: income <টাকা> <ধরন> [বিবরণ], expense <টাকা> <ধরন> [বিবরণ], balance, advisory। ধরন: harvest, seeds, storage, care, other।",
		"weekly_report":  "সাপ্তাহিক প্রতিবেদন",
		"tier_progress":  "পরবর্তী স্তরের অগ্রগতি",
		"no_next_tier":   "সর্বোচ্চ স্তরে পৌঁছেছেন",
		"net_profit":     "নিট লাভ",
		"total_income":   "আয়",
		"total_expense":  "খরচ",
		"advisory_title": "পরামর্শ",
		"not_registered": "এই নম্বরটি হারভেস্টগার্ডে নিবন্ধিত নয়। আপনার কৃষি কর্মকর্তার সাথে যোগাযোগ করুন।",

		string(models.RiskLow):      "নিম্ন",
		string(models.RiskMedium):   "মাঝারি",
		string(models.RiskHigh):     "উচ্চ",
		string(models.RiskCritical): "সংকটপূর্ণ",

		string(models.TierStruggling): "সংগ্রামী",
		string(models.TierBronze):     "ব্রোঞ্জ",
		string(models.TierSilver):     "সিলভার",
		string(models.TierGold):       "গোল্ড",
		string(models.TierPlatinum):   "প্লাটিনাম",

		"badge_first_harvest_logged":   "প্রথম ফসল যুক্ত করেছেন",
		"badge_risk_mitigation_expert": "ঝুঁকি নিরসন বিশেষজ্ঞ",
	},
}

// Normalize maps a language tag to a supported one, defaulting to English.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if _, ok := catalog[lang]; ok {
		return lang
	}
	return LangEnglish
}

// Text returns the pre-authored string for key, falling back to English and
// then to the key itself.
func Text(lang, key string) string {
	if s, ok := catalog[Normalize(lang)][key]; ok {
		return s
	}
	if s, ok := catalog[LangEnglish][key]; ok {
		return s
	}
	return key
}

// Advisory renders an advisory with its numeric context interpolated.
func Advisory(lang string, adv models.Advisory) string {
	return fmt.Sprintf(Text(lang, string(adv.MessageKey)), adv.NumericContext.Value)
}

// Alert renders the outbound text for a critical alert event.
func Alert(lang string, ev models.AlertEvent) string {
	body := fmt.Sprintf(Text(lang, string(ev.AdviceKey)), ev.Context.Value)
	return fmt.Sprintf("%s: %s", Text(lang, "alert_prefix"), body)
}

// Ledger renders a titled ledger summary with the tier line.
func Ledger(lang, title string, summary models.LedgerSummary, status models.TierStatus) string {
	var b strings.Builder
	b.WriteString(title)
	fmt.Fprintf(&b, "\n%s: %s", Text(lang, "total_income"), summary.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "\n%s: %s", Text(lang, "total_expense"), summary.TotalExpense.StringFixed(2))
	fmt.Fprintf(&b, "\n%s: %s", Text(lang, "net_profit"), summary.NetProfit.StringFixed(2))

	tier := Text(lang, string(status.Tier))
	if status.NextThreshold == nil {
		fmt.Fprintf(&b, "\n%s (%s)", tier, Text(lang, "no_next_tier"))
	} else {
		fmt.Fprintf(&b, "\n%s (%.0f%% %s)", tier, status.ProgressPct, Text(lang, "tier_progress"))
	}
	return b.String()
}
