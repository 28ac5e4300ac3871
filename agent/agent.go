package agent

import (
	"context"
	"fmt"
	"strings"

	"price-scout/models"
	"price-scout/storage"
	"price-scout/utils"
)

// Searcher is the slice of the aggregator the agent consumes.
type Searcher interface {
	SearchOnline(ctx context.Context, query string) []*models.Listing
}

// Forecaster provides historical trend advice for a listing URL.
type Forecaster interface {
	Forecast(ctx context.Context, url string) string
}

// Completer generates the natural-language reply from a rendered prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var greetings = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "sup": {}, "hii": {}, "hiii": {},
}

var shoppingKeywords = []string{"buy", "find", "price", "deal", "cheap", "expensive", "recommend", "best"}

const recentTurns = 8

// Agent wires the profile, the interaction log, the aggregator, and the
// tracker around one chat turn. It degrades gracefully: if the completion
// backend is unreachable it still answers from the blocks it already
// assembled, and still logs the turn.
type Agent struct {
	profile  storage.ProfileStore
	log      storage.InteractionLog
	searcher Searcher
	forecast Forecaster
	llm      Completer
	logger   *utils.Logger
	userID   string
}

func New(profile storage.ProfileStore, log storage.InteractionLog, searcher Searcher,
	forecast Forecaster, llm Completer, logger *utils.Logger, userID string) *Agent {
	return &Agent{
		profile:  profile,
		log:      log,
		searcher: searcher,
		forecast: forecast,
		llm:      llm,
		logger:   logger,
		userID:   userID,
	}
}

// Chat answers one user turn.
func (a *Agent) Chat(ctx context.Context, input string) string {
	if reply, ok := a.smalltalk(input); ok {
		return reply
	}

	profileBlock := a.profileSummary()
	historyBlock := a.recentHistory()

	marketBlock := ""
	if a.shouldSearch(input) {
		marketBlock = a.marketData(ctx, input)
	}

	prompt := renderPrompt(profileBlock, marketBlock, historyBlock, input)

	response, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		a.logger.Error("[agent] Completion failed, composing plain summary: %v", err)
		response = a.plainSummary(profileBlock, marketBlock)
	}

	a.logTurn("user", input)
	a.logTurn("assistant", response)
	return response
}

// TrainPreference records like/dislike feedback on a product or brand.
func (a *Agent) TrainPreference(product string, liked bool) error {
	key := "disliked_brands"
	if liked {
		key = "liked_brands"
	}
	return a.profile.UpdatePreference(key, product)
}

// smalltalk short-circuits greetings and tiny non-shopping messages so they
// never trigger scraping or a completion round-trip.
func (a *Agent) smalltalk(input string) (string, bool) {
	msg := strings.ToLower(strings.TrimSpace(input))
	if _, ok := greetings[msg]; ok {
		return "Hi! I am your shopping assistant. Tell me what you want to buy or your budget, and I will find options for you.", true
	}
	if len(strings.Fields(msg)) <= 3 && !containsAny(msg, shoppingKeywords) {
		return "Hi! I am your shopping assistant. Tell me what you want to buy or your budget, and I will find options for you.", true
	}
	return "", false
}

func (a *Agent) shouldSearch(input string) bool {
	return len(strings.Fields(input)) > 1 || containsAny(strings.ToLower(input), []string{"buy", "find"})
}

// marketData runs a search and renders the live-market block. The
// cold-start trend computed during aggregation wins; listings without one
// fall back to the tracker's historical forecast.
func (a *Agent) marketData(ctx context.Context, query string) string {
	listings := a.searcher.SearchOnline(ctx, query)
	if len(listings) == 0 {
		return "No live results found.\n"
	}

	var sb strings.Builder
	sb.WriteString("LIVE MARKET DATA:\n")
	for _, l := range listings {
		trend := l.Trend
		if trend == "" {
			trend = a.forecast.Forecast(ctx, l.URL)
		}
		sb.WriteString(fmt.Sprintf("- [%s] %s - %.2f %s\n  (%s) [Link: %s]\n",
			l.Source, l.Title, l.Price, l.Currency, trend, l.URL))
	}
	return sb.String()
}

func (a *Agent) profileSummary() string {
	profile, err := a.profile.Profile()
	if err != nil {
		a.logger.Warn("[agent] Profile unavailable: %v", err)
		return "User Profile: Guest"
	}

	name := profile.Name
	if name == "" {
		name = "User"
	}

	var sb strings.Builder
	sb.WriteString("User: " + name + "\n")
	sb.WriteString("- Budget: " + profile.BudgetRange + "\n")
	sb.WriteString("- Purpose: " + profile.Purpose + "\n")
	if len(profile.LikedBrands) > 0 {
		sb.WriteString("- Loves: " + strings.Join(profile.LikedBrands, ", ") + "\n")
	}
	if len(profile.DislikedBrands) > 0 {
		sb.WriteString("- Avoids: " + strings.Join(profile.DislikedBrands, ", ") + "\n")
	}
	if n := len(profile.PurchaseHistory); n > 0 {
		sb.WriteString("- Recent Buys:\n")
		start := n - 3
		if start < 0 {
			start = 0
		}
		for _, item := range profile.PurchaseHistory[start:] {
			sb.WriteString(fmt.Sprintf("  * %s (%.2f)\n", item.ProductName, item.Price))
		}
	}
	return sb.String()
}

// recentHistory renders the last few logged turns oldest-to-newest.
func (a *Agent) recentHistory() string {
	records, err := a.log.Recent(a.userID, recentTurns)
	if err != nil {
		a.logger.Warn("[agent] Interaction history unavailable: %v", err)
		return ""
	}

	var lines []string
	for i := len(records) - 1; i >= 0; i-- {
		lines = append(lines, records[i].Role+": "+records[i].Text)
	}
	return strings.Join(lines, "\n")
}

func (a *Agent) plainSummary(profileBlock, marketBlock string) string {
	if marketBlock == "" {
		marketBlock = "No live results found.\n"
	}
	return strings.Join([]string{
		"[AUTO RESPONSE - assistant model unavailable]",
		"Based on your profile and live market data:",
		"",
		"USER PROFILE:",
		profileBlock,
		"MARKET DATA:",
		marketBlock,
	}, "\n")
}

func (a *Agent) logTurn(role, text string) {
	if err := a.log.Append(a.userID, role, text); err != nil {
		a.logger.Error("[agent] Interaction log write failed: %v", err)
	}
}

func renderPrompt(profileBlock, marketBlock, historyBlock, input string) string {
	return fmt.Sprintf(`[USER PROFILE]
%s
[LIVE MARKET DATA & TRENDS]
%s
[CONTEXT]
%s
User query: %s

[GUIDANCE]
1. Use LIVE MARKET DATA to recommend.
2. Mention price trends (e.g. "Price dropping, good time to buy!").
3. Respect the user's budget and brands from USER PROFILE.
4. If they dislike a brand, DO NOT recommend it.
5. Use very clear, short bullet points.

Response:`, profileBlock, marketBlock, historyBlock, input)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
