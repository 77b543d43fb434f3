package redis

import "fmt"

const ns = "bookix:v1"

// KeySeatLayout holds the rendered seat grid of one showing. Deleted on every
// seat-state change; never consulted for write decisions.
func KeySeatLayout(showingID int64) string {
	return fmt.Sprintf("%s:showing:%d:layout", ns, showingID)
}

func KeyShowingCounts(showingID int64) string {
	return fmt.Sprintf("%s:showing:%d:counts", ns, showingID)
}

func KeyEventSummary(eventID int64) string {
	return fmt.Sprintf("%s:event:%d:summary", ns, eventID)
}

func KeyCityEvents(city string) string {
	return fmt.Sprintf("%s:city:%s:events", ns, city)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func KeyIdemReserve(showingID int64, idemKey string) string {
	return fmt.Sprintf("%s:idem:reserve:%d:%s", ns, showingID, idemKey)
}

func ChannelShowingsChanged() string {
	return ns + ":showings:changed"
}
