package types

// Attribute keys shared by every liquidity mining event that references the
// corresponding record. Indexers rely on them.
const (
	AttrGlobalFarmID = "globalFarmId"
	AttrYieldFarmID  = "yieldFarmId"
	AttrDepositID    = "depositId"
	AttrWho          = "who"
)

// Event represents a typed event emitted during state transitions.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Attr returns the attribute stored under key, or "" when absent.
func (e *Event) Attr(key string) string {
	if e == nil {
		return ""
	}
	return e.Attributes[key]
}
