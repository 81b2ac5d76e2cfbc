package models

import (
	"bytes"
	"strconv"
)

// Pair is a single trading pair as reported by DexScreener.
type Pair struct {
	ChainID       string      `json:"chainId"`
	DexID         string      `json:"dexId"`
	URL           string      `json:"url"`
	PairAddress   string      `json:"pairAddress"`
	BaseToken     Token       `json:"baseToken"`
	QuoteToken    Token       `json:"quoteToken"`
	PriceNative   string      `json:"priceNative"`
	PriceUsd      string      `json:"priceUsd"`
	Txns          PairTxns    `json:"txns"`
	Volume        PairWindows `json:"volume"`
	PriceChange   PairWindows `json:"priceChange"`
	Liquidity     *Liquidity  `json:"liquidity"`
	Fdv           *float64    `json:"fdv"`
	MarketCap     *float64    `json:"marketCap"`
	PairCreatedAt *int64      `json:"pairCreatedAt"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Liquidity struct {
	Usd   LooseFloat `json:"usd"`
	Base  LooseFloat `json:"base"`
	Quote LooseFloat `json:"quote"`
}

type PairTxns struct {
	H1  TxnCounts `json:"h1"`
	H6  TxnCounts `json:"h6"`
	H24 TxnCounts `json:"h24"`
}

type TxnCounts struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// PairWindows holds a per-timeframe metric (volume, price change). Fields
// are pointers because DexScreener omits windows it has no data for.
type PairWindows struct {
	H1  *LooseFloat `json:"h1"`
	H6  *LooseFloat `json:"h6"`
	H24 *LooseFloat `json:"h24"`
}

// Volume24h returns the 24-hour volume, treating a missing window as zero.
func (p *Pair) Volume24h() float64 {
	if p.Volume.H24 == nil {
		return 0
	}
	return float64(*p.Volume.H24)
}

// LooseFloat decodes JSON numbers that DexScreener serves inconsistently:
// plain numbers, numeric strings, or null. Unparseable values decode to 0.
type LooseFloat float64

func (f *LooseFloat) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = LooseFloat(v)
	return nil
}
