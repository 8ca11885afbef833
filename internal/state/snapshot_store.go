package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HotpotFunds/HotpotFunds/internal/amm"
	"github.com/HotpotFunds/HotpotFunds/internal/fund"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
)

// FundPosition is one allocation slot as captured in a snapshot.
type FundPosition struct {
	Token      string `json:"token"`
	Proportion int64  `json:"proportion"`
	HeldLP     string `json:"held_lp"`
	StakedLP   string `json:"staked_lp"`
}

// FundSnapshot is the persisted point-in-time state of one fund. Amounts are
// decimal strings of the raw integer units.
type FundSnapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	FundSymbol  string    `json:"fund_symbol"`
	FundAddress string    `json:"fund_address"`
	BaseToken   string    `json:"base_token"`

	TotalSupply         string `json:"total_supply"`
	TotalAssets         string `json:"total_assets"`
	TotalInvestment     string `json:"total_investment"`
	IdleBalance         string `json:"idle_balance"`
	TotalDebts          string `json:"total_debts"`
	MiningRewardBalance string `json:"mining_reward_balance"`

	Positions []FundPosition `json:"positions"`
}

// CaptureFundSnapshot reads the fund's current state into a snapshot.
func CaptureFundSnapshot(symbol string, f *fund.Fund, baseTok, uni *token.Token, factory *amm.Factory) FundSnapshot {
	snapshot := FundSnapshot{
		Timestamp:           time.Now().UTC(),
		FundSymbol:          symbol,
		FundAddress:         string(f.Address()),
		BaseToken:           string(baseTok.Address()),
		TotalSupply:         f.TotalSupply().String(),
		TotalAssets:         f.TotalAssets().String(),
		TotalInvestment:     f.TotalInvestment().String(),
		IdleBalance:         baseTok.BalanceOf(f.Address()).String(),
		TotalDebts:          f.TotalDebts().String(),
		MiningRewardBalance: uni.BalanceOf(f.Address()).String(),
	}
	for i := 0; i < f.PairsLength(); i++ {
		tokenAddr, proportion, err := f.PoolAt(i)
		if err != nil {
			continue
		}
		pair := factory.GetPair(baseTok.Address(), tokenAddr)
		snapshot.Positions = append(snapshot.Positions, FundPosition{
			Token:      string(tokenAddr),
			Proportion: proportion,
			HeldLP:     pair.BalanceOf(f.Address()).String(),
			StakedLP:   f.StakingLPOf(pair.Address()).String(),
		})
	}
	return snapshot
}

// SaveFundSnapshot saves a fund snapshot to the database.
func SaveFundSnapshot(snapshot FundSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	positionsJSON, err := json.Marshal(snapshot.Positions)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal positions: %w", err)
	}

	query := `
		INSERT INTO fund_snapshots (
			snapshot_timestamp, fund_symbol, fund_address, base_token,
			total_supply, total_assets, total_investment, idle_balance,
			total_debts, mining_reward_balance, positions
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING snapshot_id;
	`

	var snapshotID int64
	err = DB.QueryRow(
		query,
		snapshot.Timestamp, snapshot.FundSymbol, snapshot.FundAddress, snapshot.BaseToken,
		snapshot.TotalSupply, snapshot.TotalAssets, snapshot.TotalInvestment, snapshot.IdleBalance,
		snapshot.TotalDebts, snapshot.MiningRewardBalance, positionsJSON,
	).Scan(&snapshotID)

	if err != nil {
		return 0, fmt.Errorf("failed to save fund snapshot: %w", err)
	}

	log.Info().
		Int64("snapshot_id", snapshotID).
		Str("fund", snapshot.FundSymbol).
		Str("total_assets", snapshot.TotalAssets).
		Msg("Fund snapshot saved to database")

	return snapshotID, nil
}

// GetRecentFundSnapshots returns the latest snapshots for one fund, newest
// first.
func GetRecentFundSnapshots(symbol string, limit int) ([]FundSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT snapshot_timestamp, fund_symbol, fund_address, base_token,
			total_supply, total_assets, total_investment, idle_balance,
			total_debts, mining_reward_balance, positions
		FROM fund_snapshots
		WHERE fund_symbol = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT $2;
	`
	rows, err := DB.Query(query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fund snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []FundSnapshot
	for rows.Next() {
		var s FundSnapshot
		var positionsJSON []byte
		if err := rows.Scan(
			&s.Timestamp, &s.FundSymbol, &s.FundAddress, &s.BaseToken,
			&s.TotalSupply, &s.TotalAssets, &s.TotalInvestment, &s.IdleBalance,
			&s.TotalDebts, &s.MiningRewardBalance, &positionsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan fund snapshot: %w", err)
		}
		if len(positionsJSON) > 0 {
			if err := json.Unmarshal(positionsJSON, &s.Positions); err != nil {
				return nil, fmt.Errorf("failed to unmarshal positions: %w", err)
			}
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
