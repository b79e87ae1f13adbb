package pnl

import (
	"math"
	"sort"
	"time"

	"tradejournal/internal/domain"
)

// Summary holds aggregate statistics over a set of priced trades.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64

	TotalNetProfit   float64
	TotalGrossProfit float64
	AvgNetProfit     float64
	BestTrade        float64
	WorstTrade       float64

	// ProfitFactor is the sum of winning net profits over the absolute sum
	// of losing net profits. +Inf when there are wins and no losses, 0 for
	// an empty trade set.
	ProfitFactor float64
	// SharpeRatio is mean(netProfit)/stdev(netProfit); 0 with fewer than
	// two trades or zero variance.
	SharpeRatio float64
	// MaxDrawdown is the deepest peak-to-trough fall of the cumulative
	// net-profit running sum, in dollars. Always >= 0.
	MaxDrawdown float64

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AvgDuration          time.Duration
}

// Summarize computes aggregate statistics from priced trades. Streaks and
// drawdown are taken over chronological (exit time) order. An empty input
// yields an all-zero summary, never an error.
func Summarize(trades []domain.Trade) Summary {
	var s Summary
	if len(trades) == 0 {
		return s
	}

	ordered := make([]domain.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ExitTime.Before(ordered[j].ExitTime)
	})

	var (
		winSum, lossSum                    float64
		cumulative, peak                   float64
		consecutiveWins, consecutiveLosses int
		totalDuration                      time.Duration
	)

	s.BestTrade = ordered[0].NetProfit
	s.WorstTrade = ordered[0].NetProfit

	for _, t := range ordered {
		s.TotalTrades++
		s.TotalNetProfit += t.NetProfit
		s.TotalGrossProfit += t.GrossProfit
		totalDuration += t.Duration

		if t.NetProfit > s.BestTrade {
			s.BestTrade = t.NetProfit
		}
		if t.NetProfit < s.WorstTrade {
			s.WorstTrade = t.NetProfit
		}

		if t.NetProfit > 0 {
			s.Wins++
			winSum += t.NetProfit
			consecutiveWins++
			consecutiveLosses = 0
		} else {
			s.Losses++
			lossSum += t.NetProfit
			consecutiveLosses++
			consecutiveWins = 0
		}
		if consecutiveWins > s.MaxConsecutiveWins {
			s.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > s.MaxConsecutiveLosses {
			s.MaxConsecutiveLosses = consecutiveLosses
		}

		cumulative += t.NetProfit
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > s.MaxDrawdown {
			s.MaxDrawdown = dd
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.TotalTrades)
	s.AvgNetProfit = s.TotalNetProfit / float64(s.TotalTrades)
	s.AvgDuration = totalDuration / time.Duration(s.TotalTrades)

	switch {
	case lossSum != 0:
		s.ProfitFactor = winSum / math.Abs(lossSum)
	case winSum > 0:
		s.ProfitFactor = math.Inf(1)
	}

	s.SharpeRatio = sharpe(ordered, s.AvgNetProfit)
	return s
}

// sharpe computes mean/stdev of net profits using the sample standard
// deviation. Returns 0 for fewer than two trades or zero variance.
func sharpe(trades []domain.Trade, mean float64) float64 {
	if len(trades) < 2 {
		return 0
	}
	var sumSq float64
	for _, t := range trades {
		d := t.NetProfit - mean
		sumSq += d * d
	}
	variance := sumSq / float64(len(trades)-1)
	if variance == 0 {
		return 0
	}
	return mean / math.Sqrt(variance)
}
