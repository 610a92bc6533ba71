package polymarket

import "time"

// Activity entry types as reported by the data-api.
const (
	ActivityTrade      = "TRADE"
	ActivitySplit      = "SPLIT"
	ActivityMerge      = "MERGE"
	ActivityRedeem     = "REDEEM"
	ActivityReward     = "REWARD"
	ActivityConversion = "CONVERSION"
)

// Trade sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Position represents an open outcome-token position for a wallet.
// Numeric fields the API may omit are pointers; use Float to read them.
type Position struct {
	ProxyWallet        string   `json:"proxyWallet"`
	Asset              string   `json:"asset"`
	ConditionID        string   `json:"conditionId"`
	Size               *float64 `json:"size,omitempty"`
	AvgPrice           *float64 `json:"avgPrice,omitempty"`
	InitialValue       *float64 `json:"initialValue,omitempty"`
	CurrentValue       *float64 `json:"currentValue,omitempty"`
	CashPnl            *float64 `json:"cashPnl,omitempty"`
	PercentPnl         *float64 `json:"percentPnl,omitempty"`
	TotalBought        *float64 `json:"totalBought,omitempty"`
	RealizedPnl        *float64 `json:"realizedPnl,omitempty"`
	PercentRealizedPnl *float64 `json:"percentRealizedPnl,omitempty"`
	CurPrice           *float64 `json:"curPrice,omitempty"`
	Redeemable         *bool    `json:"redeemable,omitempty"`
	Mergeable          *bool    `json:"mergeable,omitempty"`
	Title              string   `json:"title,omitempty"`
	Slug               string   `json:"slug,omitempty"`
	Icon               string   `json:"icon,omitempty"`
	EventSlug          string   `json:"eventSlug,omitempty"`
	Outcome            string   `json:"outcome,omitempty"`
	OutcomeIndex       *int     `json:"outcomeIndex,omitempty"`
	OppositeOutcome    string   `json:"oppositeOutcome,omitempty"`
	OppositeAsset      string   `json:"oppositeAsset,omitempty"`
	EndDate            string   `json:"endDate,omitempty"`
	NegativeRisk       *bool    `json:"negativeRisk,omitempty"`
}

// ClosedPosition represents a resolved position for a wallet.
type ClosedPosition struct {
	ProxyWallet     string   `json:"proxyWallet"`
	Asset           string   `json:"asset"`
	ConditionID     string   `json:"conditionId"`
	AvgPrice        *float64 `json:"avgPrice,omitempty"`
	TotalBought     *float64 `json:"totalBought,omitempty"`
	RealizedPnl     *float64 `json:"realizedPnl,omitempty"`
	CurPrice        *float64 `json:"curPrice,omitempty"`
	Timestamp       *int64   `json:"timestamp,omitempty"`
	Title           string   `json:"title,omitempty"`
	Slug            string   `json:"slug,omitempty"`
	Icon            string   `json:"icon,omitempty"`
	EventSlug       string   `json:"eventSlug,omitempty"`
	Outcome         string   `json:"outcome,omitempty"`
	OutcomeIndex    *int     `json:"outcomeIndex,omitempty"`
	OppositeOutcome string   `json:"oppositeOutcome,omitempty"`
	OppositeAsset   string   `json:"oppositeAsset,omitempty"`
	EndDate         string   `json:"endDate,omitempty"`
}

// ActivityEntry is one record from the wallet activity log.
type ActivityEntry struct {
	ProxyWallet     string   `json:"proxyWallet"`
	Timestamp       int64    `json:"timestamp"`
	ConditionID     string   `json:"conditionId,omitempty"`
	Type            string   `json:"type"`
	Size            *float64 `json:"size,omitempty"`
	UsdcSize        *float64 `json:"usdcSize,omitempty"`
	TransactionHash string   `json:"transactionHash,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Asset           string   `json:"asset,omitempty"`
	Side            string   `json:"side,omitempty"`
	OutcomeIndex    *int     `json:"outcomeIndex,omitempty"`
	Title           string   `json:"title,omitempty"`
	Slug            string   `json:"slug,omitempty"`
	Icon            string   `json:"icon,omitempty"`
	EventSlug       string   `json:"eventSlug,omitempty"`
	Outcome         string   `json:"outcome,omitempty"`
}

// OccurredAt returns the entry timestamp as UTC time.
func (e ActivityEntry) OccurredAt() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// SignedSize returns the holdings delta this entry carries: positive for
// BUY trades and splits, negative for SELL trades, merges and redeems.
// REWARD and CONVERSION entries move no holdings, only price.
func (e ActivityEntry) SignedSize() float64 {
	qty := Float(e.Size)
	if qty == 0 {
		return 0
	}
	switch e.Type {
	case ActivityTrade:
		if e.Side == SideBuy {
			return qty
		}
		return -qty
	case ActivitySplit:
		return qty
	case ActivityMerge, ActivityRedeem:
		return -qty
	}
	return 0
}

// Float reads an optional numeric field, treating absent values as zero.
func Float(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
