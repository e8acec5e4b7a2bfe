package winprob

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/blazesportsintel/forecast/internal/models"
)

// DefaultEdgeThreshold is the model-versus-market gap above which a side is
// recommended and the analysis flagged for review.
const DefaultEdgeThreshold = 0.05

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// AnalyzeEdge compares the model's home win probability against cached market
// lines. Implied probabilities are de-vigged by normalizing the two-way
// market; edges are model minus market per side. The expected value per
// dollar is quoted for the recommended side at the posted moneyline.
func AnalyzeEdge(modelHomeProb float64, lines *models.MarketLines, threshold float64) (*models.BettingEdge, error) {
	if lines.HomeMoneyline == 0 || lines.AwayMoneyline == 0 {
		return nil, fmt.Errorf("%w: missing moneyline for %s", models.ErrInvalid, lines.GameID)
	}
	if threshold <= 0 {
		threshold = DefaultEdgeThreshold
	}

	homeImplied := impliedProbability(lines.HomeMoneyline)
	awayImplied := impliedProbability(lines.AwayMoneyline)

	// strip the vig: the two-way implied probabilities overround past 1
	total := homeImplied.Add(awayImplied)
	marketHome := homeImplied.Div(total)
	marketAway := awayImplied.Div(total)

	model := decimal.NewFromFloat(modelHomeProb)
	homeEdge := model.Sub(marketHome)
	awayEdge := one.Sub(model).Sub(marketAway)

	edge := &models.BettingEdge{
		ModelHomeProb:  modelHomeProb,
		MarketHomeProb: marketHome.InexactFloat64(),
		MarketAwayProb: marketAway.InexactFloat64(),
		HomeEdge:       homeEdge.InexactFloat64(),
		AwayEdge:       awayEdge.InexactFloat64(),
	}

	thresholdDec := decimal.NewFromFloat(threshold)
	switch {
	case homeEdge.GreaterThanOrEqual(thresholdDec):
		edge.Recommended = "home"
		edge.Flagged = true
		edge.EVPerDollar = expectedValue(model, lines.HomeMoneyline).InexactFloat64()
	case awayEdge.GreaterThanOrEqual(thresholdDec):
		edge.Recommended = "away"
		edge.Flagged = true
		edge.EVPerDollar = expectedValue(one.Sub(model), lines.AwayMoneyline).InexactFloat64()
	}

	return edge, nil
}

// impliedProbability converts an American moneyline to its implied win
// probability, vig included.
func impliedProbability(moneyline int) decimal.Decimal {
	ml := decimal.NewFromInt(int64(moneyline))
	if moneyline > 0 {
		return hundred.Div(ml.Add(hundred))
	}
	abs := ml.Neg()
	return abs.Div(abs.Add(hundred))
}

// expectedValue is the profit per staked dollar for a side with win
// probability p at the given American moneyline.
func expectedValue(p decimal.Decimal, moneyline int) decimal.Decimal {
	var payout decimal.Decimal
	if moneyline > 0 {
		payout = one.Add(decimal.NewFromInt(int64(moneyline)).Div(hundred))
	} else {
		payout = one.Add(hundred.Div(decimal.NewFromInt(int64(-moneyline))))
	}
	return p.Mul(payout).Sub(one)
}
