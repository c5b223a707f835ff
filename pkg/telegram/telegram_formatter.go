package telegram

import (
	"fmt"
	"sort"
	"strings"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

const (
	maxMessageLen      = 4090
	maxNarrativeLength = 600
)

// FormatBatchSummaryForTelegram formats a finished batch into Markdown
// messages, each within the Telegram length limit. narratives holds the text
// shown under each succeeded symbol. Names, narratives and failure reasons
// are escaped and never placed inside an entity.
func FormatBatchSummaryForTelegram(task dto.BatchTask, narratives map[string]string) []string {
	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(fmt.Sprintf("📊 *Batch Analysis %s* 📊\n", task.Status))
			current.WriteString(fmt.Sprintf("✅ %d succeeded · ❌ %d failed · %d total\n\n", task.Completed, task.Failed, task.Total()))
		} else {
			current.WriteString(fmt.Sprintf("---*Batch Analysis Part %d*---\n\n", part))
		}
	}
	startNewPart()

	succeeded, failed := splitStatuses(task)
	for _, result := range succeeded {
		entry := formatResultEntry(result, narratives[result.Symbol.String()])
		if current.Len()+len(entry) > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}

	if len(failed) > 0 {
		var entry strings.Builder
		entry.WriteString("⚠️ *Failed*\n")
		for _, f := range failed {
			entry.WriteString(fmt.Sprintf("- %s %s: %s\n", escape(f.Symbol), f.Kind, escape(f.Reason)))
		}
		if current.Len()+entry.Len() > maxMessageLen {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry.String())
	}

	messages = append(messages, current.String())
	return messages
}

// splitStatuses orders succeeded results by overall score, best first, and
// failures by symbol.
func splitStatuses(task dto.BatchTask) ([]dto.AnalysisResult, []dto.Failure) {
	var succeeded []dto.AnalysisResult
	var failed []dto.Failure
	for symbol, st := range task.Statuses {
		switch {
		case st.Result != nil:
			succeeded = append(succeeded, *st.Result)
		case st.Failure != nil:
			failed = append(failed, *st.Failure)
		case st.State == dto.SymbolFailed:
			failed = append(failed, dto.Failure{Symbol: symbol})
		}
	}
	sort.Slice(succeeded, func(i, j int) bool {
		if succeeded[i].Scores.Overall != succeeded[j].Scores.Overall {
			return succeeded[i].Scores.Overall > succeeded[j].Scores.Overall
		}
		return succeeded[i].Symbol.String() < succeeded[j].Symbol.String()
	})
	sort.Slice(failed, func(i, j int) bool { return failed[i].Symbol < failed[j].Symbol })
	return succeeded, failed
}

func formatResultEntry(r dto.AnalysisResult, narrative string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 *%s* %s\n", r.Symbol, escape(r.Name)))
	b.WriteString(fmt.Sprintf("%s *Recommendation:* %s (%.1f)\n", recommendationIcon(r.Scores.Recommendation), r.Scores.Recommendation, r.Scores.Overall))
	b.WriteString(fmt.Sprintf("💰 *Price:* %s %s (%s%%)\n",
		decimal.NewFromFloat(r.PriceInfo.CurrentPrice).StringFixed(2),
		r.PriceInfo.Currency,
		signed(decimal.NewFromFloat(r.PriceInfo.ChangePercent).Round(2))))

	technical := "n/a"
	if r.Scores.Technical != nil {
		technical = fmt.Sprintf("%.1f", *r.Scores.Technical)
	}
	b.WriteString(fmt.Sprintf("🧮 *Scores:* T %s · F %.1f · S %.1f\n", technical, r.Scores.Fundamental, r.Scores.Sentiment))

	if narrative = strings.TrimSpace(narrative); narrative != "" {
		if runes := []rune(narrative); len(runes) > maxNarrativeLength {
			narrative = string(runes[:maxNarrativeLength]) + "…"
		}
		b.WriteString(fmt.Sprintf("💬 %s\n", escape(narrative)))
	}
	if !r.DataQuality.AllReal() {
		b.WriteString(fmt.Sprintf("🧪 _Data: price %s, fundamental %s, sentiment %s_\n", r.DataQuality.Price, r.DataQuality.Fundamental, r.DataQuality.Sentiment))
	}

	loc := utils.MarketLocation(string(r.Market))
	b.WriteString(fmt.Sprintf("🕒 %s\n\n", r.AnalyzedAt.In(loc).Format("2006-01-02 15:04 MST")))
	return b.String()
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}

func recommendationIcon(r dto.Recommendation) string {
	switch r {
	case dto.StrongBuy, dto.Buy:
		return "🟢"
	case dto.Sell, dto.StrongSell:
		return "🔴"
	default:
		return "🟡"
	}
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}
