package detect

import (
	"fmt"

	"logguard/internal/model"
)

// Rule pairs a predicate with an alert builder. Rules never mutate the
// record they inspect.
type Rule struct {
	Name  string
	Match func(model.AggregatedRecord) bool
	Build func(model.AggregatedRecord) model.Alert
}

type RuleEngine struct {
	rules []Rule
}

// NewRuleEngine builds the default rule set: a single brute-force rule
// firing on strictly more than threshold failed logins.
func NewRuleEngine(bruteForceThreshold int) *RuleEngine {
	e := &RuleEngine{}
	e.Register(BruteForceRule(bruteForceThreshold))
	return e
}

func BruteForceRule(threshold int) Rule {
	return Rule{
		Name: "brute_force",
		Match: func(rec model.AggregatedRecord) bool {
			return rec.FailedLogins > threshold
		},
		Build: func(rec model.AggregatedRecord) model.Alert {
			return model.Alert{
				Type:         model.AlertBruteForce,
				IP:           rec.IP,
				FailedLogins: rec.FailedLogins,
			}
		},
	}
}

// Register appends a rule. Evaluation order follows registration order.
func (e *RuleEngine) Register(r Rule) {
	if r.Match == nil || r.Build == nil {
		panic(fmt.Sprintf("rule %q missing predicate or builder", r.Name))
	}
	e.rules = append(e.rules, r)
}

// Evaluate runs every rule over every record, in record order. Each
// firing rule produces its own alert.
func (e *RuleEngine) Evaluate(records []model.AggregatedRecord) []model.Alert {
	alerts := make([]model.Alert, 0)
	for _, rec := range records {
		for _, r := range e.rules {
			if r.Match(rec) {
				alerts = append(alerts, r.Build(rec))
			}
		}
	}
	return alerts
}
