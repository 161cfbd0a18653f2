package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/walkscape/internal/game/gearset"
	"github.com/cory-johannsen/walkscape/internal/game/item"
	"github.com/cory-johannsen/walkscape/internal/game/optimizer"
)

// SearchObserver logs optimizer progress.
type SearchObserver struct {
	logger *zap.Logger
}

var _ optimizer.Observer = (*SearchObserver)(nil)

// NewSearchObserver returns an observer logging through logger.
//
// Precondition: logger must be non-nil.
func NewSearchObserver(logger *zap.Logger) *SearchObserver {
	return &SearchObserver{logger: logger.Named("optimizer")}
}

func itemName(it *item.Item) string {
	if it == nil {
		return "(empty)"
	}
	return it.Name
}

// PhaseChanged logs a phase transition at Debug.
func (o *SearchObserver) PhaseChanged(p optimizer.Phase) {
	o.logger.Debug("search phase", zap.String("phase", string(p)))
}

// SlotFilled logs a greedy pick at Debug.
func (o *SearchObserver) SlotFilled(slot gearset.SlotName, it *item.Item, primary float64) {
	if it == nil {
		o.logger.Debug("no candidate for slot", zap.String("slot", string(slot)))
		return
	}
	o.logger.Debug("greedy pick",
		zap.String("slot", string(slot)),
		zap.String("item", it.Name),
		zap.Float64("score", primary),
	)
}

// SwapAccepted logs an improving swap at Debug.
func (o *SearchObserver) SwapAccepted(iteration int, slot gearset.SlotName, from, to *item.Item, metrics map[string]float64) {
	o.logger.Debug("swap accepted",
		zap.Int("iteration", iteration),
		zap.String("slot", string(slot)),
		zap.String("from", itemName(from)),
		zap.String("to", itemName(to)),
		zap.Any("metrics", metrics),
	)
}

// Finished logs the search outcome at Info.
func (o *SearchObserver) Finished(r *optimizer.Result) {
	o.logger.Info("search finished",
		zap.Int("iterations", r.Iterations),
		zap.Bool("converged", r.Converged),
		zap.Bool("valid", r.Valid),
		zap.Bool("repaired", r.Repaired),
		zap.Int("items", r.Gearset.Len()),
	)
}
