// Package prompt renders the message sequence sent to the completion
// provider. Building is pure: missing market data degrades to "Unknown"
// placeholders, never to an error.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wavetrader/wave-backend/internal/models"
)

const unknown = "Unknown"

const systemTemplate = `You are a professional cryptocurrency trading analyst focused on concrete, actionable trade recommendations. Based on the market data you must state clearly:
1. Whether now is a good moment to buy or to sell
2. A specific entry price range
3. Explicit take-profit levels (multiple targets are fine)
4. An explicit stop-loss level
5. The expected holding period
6. The suggested position size

Make sure your advice is specific and actionable, with concrete numbers and percentages.

Market data:
%s`

const userTemplate = `Analyze the trading opportunity for the %s token. I need concrete recommendations:

1. Direction:
   - Is now a good time to buy or to sell?
   - Why?

2. Price levels:
   - Suggested entry price range
   - First target (take profit)
   - Second target (if any)
   - Stop-loss level

3. Trade plan:
   - Suggested holding period
   - Suggested position size (percent of total capital)
   - Whether to scale in/out in tranches

4. Risks:
   - What is the biggest risk right now
   - How to manage it

Give specific numbers, not vague advice.`

// Build produces the final conversation: one synthesized system message
// first, then every caller message that is not system-role. The first
// caller user message is replaced with the fixed trade-plan instruction;
// if the caller supplied none, one is appended.
func Build(pair *models.Pair, tokenAddress string, incoming []models.ChatMessage) []models.ChatMessage {
	system := fmt.Sprintf(systemTemplate, marketSummary(pair, tokenAddress))
	user := fmt.Sprintf(userTemplate, orUnknown(pair.BaseToken.Symbol))

	out := []models.ChatMessage{{Role: "system", Content: system}}

	replaced := false
	for _, msg := range incoming {
		if msg.Role == "system" {
			continue
		}
		if msg.Role == "user" && !replaced {
			msg.Content = user
			replaced = true
		}
		out = append(out, msg)
	}
	if !replaced {
		out = append(out, models.ChatMessage{Role: "user", Content: user})
	}
	return out
}

func marketSummary(pair *models.Pair, tokenAddress string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Token:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orUnknown(pair.BaseToken.Name))
	fmt.Fprintf(&b, "- Symbol: %s\n", orUnknown(pair.BaseToken.Symbol))
	fmt.Fprintf(&b, "- Contract address: %s\n", tokenAddress)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Market data (exchange: %s):\n", orUnknown(pair.DexID))
	fmt.Fprintf(&b, "- Current price:\n")
	fmt.Fprintf(&b, "  * USD: $%s\n", orUnknown(pair.PriceUsd))
	fmt.Fprintf(&b, "  * SOL: %s SOL\n", orUnknown(pair.PriceNative))
	fmt.Fprintf(&b, "- Transactions:\n")
	fmt.Fprintf(&b, "  * 1h: %d buys / %d sells\n", pair.Txns.H1.Buys, pair.Txns.H1.Sells)
	fmt.Fprintf(&b, "  * 6h: %d buys / %d sells\n", pair.Txns.H6.Buys, pair.Txns.H6.Sells)
	fmt.Fprintf(&b, "  * 24h: %d buys / %d sells\n", pair.Txns.H24.Buys, pair.Txns.H24.Sells)
	fmt.Fprintf(&b, "- Price change:\n")
	fmt.Fprintf(&b, "  * 1h: %s%%\n", window(pair.PriceChange.H1))
	fmt.Fprintf(&b, "  * 6h: %s%%\n", window(pair.PriceChange.H6))
	fmt.Fprintf(&b, "  * 24h: %s%%\n", window(pair.PriceChange.H24))
	fmt.Fprintf(&b, "- Volume:\n")
	fmt.Fprintf(&b, "  * 1h: $%s\n", window(pair.Volume.H1))
	fmt.Fprintf(&b, "  * 6h: $%s\n", window(pair.Volume.H6))
	fmt.Fprintf(&b, "  * 24h: $%s\n", window(pair.Volume.H24))
	fmt.Fprintf(&b, "- Liquidity:\n")
	if pair.Liquidity != nil {
		fmt.Fprintf(&b, "  * USD: $%s\n", number(float64(pair.Liquidity.Usd)))
		fmt.Fprintf(&b, "  * Token amount: %s\n", number(float64(pair.Liquidity.Base)))
		fmt.Fprintf(&b, "  * SOL amount: %s\n", number(float64(pair.Liquidity.Quote)))
	} else {
		fmt.Fprintf(&b, "  * USD: $%s\n", unknown)
		fmt.Fprintf(&b, "  * Token amount: %s\n", unknown)
		fmt.Fprintf(&b, "  * SOL amount: %s\n", unknown)
	}
	fmt.Fprintf(&b, "- Fully diluted valuation: $%s\n", optNumber(pair.Fdv))
	fmt.Fprintf(&b, "- Market cap: $%s\n", optNumber(pair.MarketCap))
	b.WriteString("\n")

	fmt.Fprintf(&b, "Exchange:\n")
	fmt.Fprintf(&b, "- DEX: %s\n", strings.ToUpper(orUnknown(pair.DexID)))
	fmt.Fprintf(&b, "- Pair: %s / %s\n", pair.BaseToken.Symbol, pair.QuoteToken.Symbol)
	fmt.Fprintf(&b, "- Pair address: %s\n", orUnknown(pair.PairAddress))
	fmt.Fprintf(&b, "- Created at: %s\n", createdAt(pair.PairCreatedAt))
	fmt.Fprintf(&b, "- Pair URL: %s", orUnknown(pair.URL))

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func window(v *models.LooseFloat) string {
	if v == nil {
		return unknown
	}
	return number(float64(*v))
}

func optNumber(v *float64) string {
	if v == nil {
		return unknown
	}
	return number(*v)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func createdAt(ms *int64) string {
	if ms == nil || *ms == 0 {
		return unknown
	}
	return strconv.FormatInt(*ms, 10)
}
