package pipeline

import "fmt"

// Window is the daily active period, in whole local hours. It is half-open:
// Start is inside the window, End is not. A window with Start >= End is
// never active; it does not wrap past midnight.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Active reports whether hour (0-23) falls in the window.
func (w Window) Active(hour int) bool {
	return hour >= w.Start && hour < w.End
}

func (w Window) String() string {
	return fmt.Sprintf("%02d:00-%02d:00", w.Start, w.End)
}
