package menu

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts plan mutations. The zero value is disabled.
type Metrics struct {
	actions       *prometheus.CounterVec
	shoppingItems prometheus.Gauge
	checkedItems  prometheus.Gauge
}

// NewMetrics registers the planner metrics on reg. A nil reg creates
// unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		actions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menu_planner",
			Name:      "actions_total",
			Help:      "Plan mutations by action and outcome",
		}, []string{"action", "outcome"}),
		shoppingItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "menu_planner",
			Name:      "shopping_items",
			Help:      "Items in the current shopping list",
		}),
		checkedItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "menu_planner",
			Name:      "shopping_items_checked",
			Help:      "Checked items in the current shopping list",
		}),
	}
}

func (m *Metrics) observe(action string, err error) {
	if m == nil || m.actions == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.actions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) observeState(s *State) {
	if m == nil || m.shoppingItems == nil || s == nil {
		return
	}
	checked := 0
	for _, item := range s.ShoppingList.Main {
		if item.Checked {
			checked++
		}
	}
	m.shoppingItems.Set(float64(len(s.ShoppingList.Main)))
	m.checkedItems.Set(float64(checked))
}
