package circuit

import (
	"errors"

	"github.com/circuitbench/backend/internal/models"
)

var (
	// ErrInvalidPin means the requested pin is outside the offered option set.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrPartNotPlaced means the pin's part is not on the canvas yet.
	ErrPartNotPlaced = errors.New("part not placed")
)

// Assignment holds the mutually exclusive LED and button pin selection.
// Each role's option list excludes the pin held by the other role while
// always re-including its own, so an accepted set call can never produce
// ledPin == buttonPin.
type Assignment struct {
	placement *Placement
	ledPin    int
	buttonPin int
}

// NewAssignment creates an assignment with the default pins over the given
// placement.
func NewAssignment(p *Placement) *Assignment {
	return &Assignment{
		placement: p,
		ledPin:    models.DefaultLedPin,
		buttonPin: models.DefaultButtonPin,
	}
}

// LedPin returns the pin currently assigned to the LED.
func (a *Assignment) LedPin() int {
	return a.ledPin
}

// ButtonPin returns the pin currently assigned to the button.
func (a *Assignment) ButtonPin() int {
	return a.buttonPin
}

// LedPinOptions returns the pins selectable for the LED: every digital pin
// except the one the button holds, with the current LED pin always offered.
func (a *Assignment) LedPinOptions() []int {
	return pinOptions(a.ledPin, a.buttonPin)
}

// ButtonPinOptions is the symmetric option list for the button.
func (a *Assignment) ButtonPinOptions() []int {
	return pinOptions(a.buttonPin, a.ledPin)
}

func pinOptions(own, taken int) []int {
	options := make([]int, 0, models.MaxDigitalPin-models.MinDigitalPin+1)
	for _, pin := range models.DigitalPins() {
		if pin == taken && pin != own {
			continue
		}
		options = append(options, pin)
	}
	return options
}

// SetLedPin assigns the LED pin. Rejected while no LED part is placed, and
// for any pin outside the current LED option set.
func (a *Assignment) SetLedPin(pin int) error {
	if !a.placement.Has(models.PartLed) {
		return ErrPartNotPlaced
	}
	if !containsPin(a.LedPinOptions(), pin) {
		return ErrInvalidPin
	}
	a.ledPin = pin
	return nil
}

// SetButtonPin assigns the button pin, symmetric to SetLedPin.
func (a *Assignment) SetButtonPin(pin int) error {
	if !a.placement.Has(models.PartButton) {
		return ErrPartNotPlaced
	}
	if !containsPin(a.ButtonPinOptions(), pin) {
		return ErrInvalidPin
	}
	a.buttonPin = pin
	return nil
}

func containsPin(pins []int, pin int) bool {
	for _, p := range pins {
		if p == pin {
			return true
		}
	}
	return false
}

// State returns the circuit snapshot sent to clients.
func (a *Assignment) State() models.CircuitState {
	return models.CircuitState{
		LedPin:           a.ledPin,
		ButtonPin:        a.buttonPin,
		LedPinOptions:    a.LedPinOptions(),
		ButtonPinOptions: a.ButtonPinOptions(),
		HasController:    a.placement.Has(models.PartController),
		HasLed:           a.placement.Has(models.PartLed),
		HasButton:        a.placement.Has(models.PartButton),
	}
}
