// Package outcome resolves randomized game results. Resolution is a pure
// function of (variant, prediction, entropy): no state is carried between
// rounds, and no balances are touched here.
package outcome

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

var (
	ErrUnknownVariant    = errors.New("unknown game variant")
	ErrInvalidPrediction = errors.New("invalid prediction for variant")
)

type Variant string

const (
	VariantColor   Variant = "color"
	VariantOddEven Variant = "oddeven"
	VariantMines   Variant = "mines"
)

// Multipliers in integer percent: winnings = amount * multiplier / 100.
const (
	multiplierColorPct   = 193
	multiplierOddEvenPct = 193
	multiplierMinesPct   = 200
)

var (
	colorOutcomes   = []string{"green", "red", "violet"}
	oddEvenOutcomes = []string{"odd", "even"}
)

// Result is a resolved round.
type Result struct {
	Outcome       string
	Win           bool
	MultiplierPct int64
}

// Resolve draws a result for a generated variant. Mines rounds carry a
// precomputed result and must go through ResolveMines instead.
func Resolve(variant Variant, prediction string) (Result, error) {
	switch variant {
	case VariantColor:
		return drawUniform(colorOutcomes, prediction, multiplierColorPct)
	case VariantOddEven:
		return drawUniform(oddEvenOutcomes, prediction, multiplierOddEvenPct)
	case VariantMines:
		return Result{}, fmt.Errorf("mines outcome is caller-supplied: %w", ErrInvalidPrediction)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}
}

// ResolveMines wraps a caller-supplied mines result. The cell-reveal logic
// lives outside the engine; only the payout contract is owned here.
func ResolveMines(won bool) Result {
	out := "loss"
	if won {
		out = "win"
	}

	return Result{Outcome: out, Win: won, MultiplierPct: multiplierMinesPct}
}

// Validate checks that the variant is known and the prediction belongs to
// its outcome set. Mines takes no prediction.
func Validate(variant Variant, prediction string) error {
	switch variant {
	case VariantColor:
		if !contains(colorOutcomes, prediction) {
			return fmt.Errorf("%w: %q", ErrInvalidPrediction, prediction)
		}
	case VariantOddEven:
		if !contains(oddEvenOutcomes, prediction) {
			return fmt.Errorf("%w: %q", ErrInvalidPrediction, prediction)
		}
	case VariantMines:
		if prediction != "" {
			return fmt.Errorf("%w: mines takes no prediction", ErrInvalidPrediction)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
	}

	return nil
}

func drawUniform(outcomes []string, prediction string, multiplierPct int64) (Result, error) {
	if !contains(outcomes, prediction) {
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidPrediction, prediction)
	}

	// crypto/rand.Int is uniform over [0, n); no modulo bias.
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(outcomes))))
	if err != nil {
		return Result{}, fmt.Errorf("draw outcome: %w", err)
	}

	actual := outcomes[n.Int64()]

	return Result{
		Outcome:       actual,
		Win:           actual == prediction,
		MultiplierPct: multiplierPct,
	}, nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
