package models

import "fmt"

// Digital pin range available on the controller board.
const (
	MinDigitalPin = 2
	MaxDigitalPin = 13
)

// Default pin assignment at workspace creation.
const (
	DefaultLedPin    = 10
	DefaultButtonPin = 2
)

// DigitalPins returns the ordered set of assignable pins (2..13).
func DigitalPins() []int {
	pins := make([]int, 0, MaxDigitalPin-MinDigitalPin+1)
	for p := MinDigitalPin; p <= MaxDigitalPin; p++ {
		pins = append(pins, p)
	}
	return pins
}

// CircuitState is the pin assignment and part presence snapshot sent to
// clients. The option lists are what the pin dropdowns may offer: each
// excludes the pin held by the other role.
type CircuitState struct {
	LedPin           int   `json:"ledPin"`
	ButtonPin        int   `json:"buttonPin"`
	LedPinOptions    []int `json:"ledPinOptions"`
	ButtonPinOptions []int `json:"buttonPinOptions"`
	HasController    bool  `json:"hasController"`
	HasLed           bool  `json:"hasLed"`
	HasButton        bool  `json:"hasButton"`
}

// Anchor names resolvable by the line-routing overlay.
const (
	LedAnchor    = "led-node"
	ButtonAnchor = "button-node"
)

// PinAnchor returns the anchor name of a controller pin.
func PinAnchor(pin int) string {
	return fmt.Sprintf("pin-%d", pin)
}

// Connection is one line the overlay should draw between two named anchors.
type Connection struct {
	From string `json:"from"`
	To   string `json:"to"`
}
