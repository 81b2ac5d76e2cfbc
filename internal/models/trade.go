package models

type TradeParams struct {
	TokenAddress  string  `json:"token_address"`
	Amount        float64 `json:"amount"`
	Slippage      float64 `json:"slippage"`
	WalletAddress string  `json:"wallet_address"`
	TradeMode     string  `json:"trade_mode"` // "buy" or "sell"
	InputType     string  `json:"input_type"` // "sol", "token" or "usd"
}

type SignedTransaction struct {
	SignedTransaction string `json:"signed_transaction"`
}

type TradeResponse struct {
	Status               string `json:"status"`
	Transaction          string `json:"transaction"`
	LastValidBlockHeight *int64 `json:"lastValidBlockHeight"`
}

type ConfirmResponse struct {
	Status string `json:"status"`
	TxHash string `json:"tx_hash"`
}
