package condition

import (
	"log/slog"

	"github.com/alexanderramin/muse/internal/domain"
)

// SetSatisfied reports whether every condition of a rule holds against
// the snapshot. Logical AND, order-independent; short-circuits on the
// first failing condition. A missing metric key or unparseable
// expression is a configuration defect: it fails that condition to
// false and is logged, but never aborts evaluation of other rules.
func SetSatisfied(conditions map[domain.MetricKey]string, m domain.WritingMetrics, logger *slog.Logger) bool {
	if logger == nil {
		logger = slog.Default()
	}
	for key, expression := range conditions {
		value, err := m.Value(key)
		if err != nil {
			logger.Warn("condition references unknown metric key",
				"key", string(key), "expression", expression)
			return false
		}
		expr, err := Parse(expression)
		if err != nil {
			logger.Warn("malformed condition expression",
				"key", string(key), "expression", expression, "error", err.Error())
			return false
		}
		if !expr.Eval(value) {
			return false
		}
	}
	return true
}
