package chat

import (
	"context"
	"sort"
	"strings"

	"github.com/finbot-app/finbot/internal/models"
	log "github.com/sirupsen/logrus"
)

// financialTerms is the keyword vocabulary used to mine topics out of a
// user's chat history.
var financialTerms = []string{
	"stock", "market", "invest", "portfolio", "dividend", "bond",
	"etf", "fund", "crypto", "inflation", "recession", "interest rate",
	"nasdaq", "dow", "s&p", "forex", "currency", "earnings", "sector",
}

// genericSuggestions pads the personalized list when the history yields
// too few candidates.
var genericSuggestions = []string{
	"Portfolio diversification strategies",
	"Best performing sectors this quarter",
	"How to hedge against market volatility",
	"Investment opportunities in emerging markets",
	"Long-term vs short-term investment strategies",
	"How to start investing in stocks",
}

// GetFrequentQueries returns the caller's most repeated user-authored
// messages, distinct, ordered by descending exact-string count with
// ties broken by first occurrence, truncated to limit.
func (s *Service) GetFrequentQueries(ctx context.Context, userID uint64, limit int) ([]string, error) {
	if userID == 0 {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = 4
	}

	chats, errList := s.GetUserChats(ctx, userID)
	if errList != nil {
		return nil, errList
	}

	counts := make(map[string]int)
	var order []string
	for i := range chats {
		for _, content := range userContents(chats[i]) {
			if counts[content] == 0 {
				order = append(order, content)
			}
			counts[content]++
		}
	}

	sort.SliceStable(order, func(a, b int) bool {
		return counts[order[a]] > counts[order[b]]
	})
	if len(order) > limit {
		order = order[:limit]
	}
	if order == nil {
		order = []string{}
	}
	return order, nil
}

// GetPersonalizedSuggestions assembles up to limit follow-up prompts
// from the caller's history: a recency follow-up on the latest query,
// topic prompts sampled from matched finance keywords, canned
// suggestions triggered by stock/crypto/inflation mentions, and random
// generic padding. Best-effort and non-deterministic; callers should
// rely only on length and uniqueness.
func (s *Service) GetPersonalizedSuggestions(ctx context.Context, userID uint64, limit int) ([]string, error) {
	if userID == 0 {
		return nil, ErrValidation
	}
	if limit <= 0 {
		limit = 4
	}

	chats, errList := s.GetUserChats(ctx, userID)
	if errList != nil {
		return nil, errList
	}

	var userMessages []string
	var topics []string
	seenTopic := make(map[string]bool)
	for i := range chats {
		for _, content := range userContents(chats[i]) {
			userMessages = append(userMessages, content)
			for _, word := range strings.Fields(strings.ToLower(content)) {
				if seenTopic[word] || !matchesFinancialTerm(word) {
					continue
				}
				seenTopic[word] = true
				topics = append(topics, word)
			}
		}
	}

	suggestions := make([]string, 0, limit)
	add := func(s string) {
		for _, existing := range suggestions {
			if existing == s {
				return
			}
		}
		suggestions = append(suggestions, s)
	}

	if len(userMessages) > 0 {
		last := strings.ToLower(userMessages[0])
		if strings.Contains(last, "stock") {
			add("What's the outlook for the stocks I asked about recently?")
		} else if strings.Contains(last, "market") {
			add("How have markets changed since my last search?")
		}
	}

	if len(topics) > 3 {
		topics = topics[:3]
	}
	if len(topics) > 0 {
		topic := topics[s.intn(len(topics))]
		add("Latest news about " + topic)
		add("How to analyze " + topic + " performance")
	}

	if anyMessageContains(userMessages, "stock", "share") {
		add("What stocks should I watch this week?")
	}
	if anyMessageContains(userMessages, "crypto", "bitcoin") {
		add("Latest cryptocurrency market analysis")
	}
	if anyMessageContains(userMessages, "inflation", "interest rate") {
		add("How is inflation affecting investment strategies?")
	}

	for len(suggestions) < limit {
		var pool []string
		for _, g := range genericSuggestions {
			skip := false
			for _, existing := range suggestions {
				if existing == g {
					skip = true
					break
				}
			}
			if !skip {
				pool = append(pool, g)
			}
		}
		if len(pool) == 0 {
			break
		}
		add(pool[s.intn(len(pool))])
	}

	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// userContents returns the user-authored message contents of one chat
// in insertion order. A corrupt message column is skipped, not fatal.
func userContents(doc models.Chat) []string {
	msgs, errDecode := models.DecodeMessages(doc.Messages)
	if errDecode != nil {
		log.WithError(errDecode).WithField("chat_id", doc.ID).Warn("chat: skipping undecodable messages")
		return nil
	}
	var out []string
	for i := range msgs {
		if msgs[i].Role == models.RoleUser && msgs[i].Content != "" {
			out = append(out, msgs[i].Content)
		}
	}
	return out
}

func matchesFinancialTerm(word string) bool {
	for _, term := range financialTerms {
		if strings.Contains(word, term) {
			return true
		}
	}
	return false
}

func anyMessageContains(msgs []string, terms ...string) bool {
	for _, msg := range msgs {
		lower := strings.ToLower(msg)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}
