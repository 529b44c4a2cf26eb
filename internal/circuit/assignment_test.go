// assignment_test.go - Tests for the LED/button pin assignment
package circuit

import (
	"errors"
	"testing"

	"github.com/circuitbench/backend/internal/models"
)

func newTestAssignment(t *testing.T, place ...models.PartType) (*Placement, *Assignment) {
	t.Helper()
	p := newTestPlacement()
	for _, pt := range place {
		if _, err := p.Place(pt, models.Point{X: 0, Y: 0}); err != nil {
			t.Fatalf("Failed to place %s: %v", pt, err)
		}
	}
	return p, NewAssignment(p)
}

func TestAssignment_Defaults(t *testing.T) {
	_, a := newTestAssignment(t)

	if a.LedPin() != 10 {
		t.Errorf("Expected default led pin 10, got %d", a.LedPin())
	}
	if a.ButtonPin() != 2 {
		t.Errorf("Expected default button pin 2, got %d", a.ButtonPin())
	}
}

func TestAssignment_PinOptions(t *testing.T) {
	t.Run("led options exclude the button pin", func(t *testing.T) {
		_, a := newTestAssignment(t)

		options := a.LedPinOptions()

		// 12 digital pins minus the button's pin 2.
		if len(options) != 11 {
			t.Fatalf("Expected 11 led options, got %d", len(options))
		}
		for _, pin := range options {
			if pin == a.ButtonPin() {
				t.Errorf("Expected led options to exclude button pin %d", a.ButtonPin())
			}
		}
	})

	t.Run("button options exclude the led pin", func(t *testing.T) {
		_, a := newTestAssignment(t)

		options := a.ButtonPinOptions()

		if len(options) != 11 {
			t.Fatalf("Expected 11 button options, got %d", len(options))
		}
		for _, pin := range options {
			if pin == a.LedPin() {
				t.Errorf("Expected button options to exclude led pin %d", a.LedPin())
			}
		}
	})

	t.Run("each role's own pin is always offered", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartLed, models.PartButton)

		if err := a.SetLedPin(7); err != nil {
			t.Fatalf("Failed to set led pin: %v", err)
		}
		if err := a.SetButtonPin(7); !errors.Is(err, ErrInvalidPin) {
			t.Fatalf("Expected ErrInvalidPin moving button onto led pin, got %v", err)
		}

		// The led options must still contain 7 itself.
		found := false
		for _, pin := range a.LedPinOptions() {
			if pin == 7 {
				found = true
			}
		}
		if !found {
			t.Error("Expected led options to include the led's own pin")
		}
	})

	t.Run("options stay in ascending pin order", func(t *testing.T) {
		_, a := newTestAssignment(t)

		options := a.LedPinOptions()
		for i := 1; i < len(options); i++ {
			if options[i] <= options[i-1] {
				t.Fatalf("Expected ascending options, got %v", options)
			}
		}
		if options[0] != 3 {
			t.Errorf("Expected first led option 3 (pin 2 held by button), got %d", options[0])
		}
		if options[len(options)-1] != 13 {
			t.Errorf("Expected last option 13, got %d", options[len(options)-1])
		}
	})
}

func TestAssignment_SetLedPin(t *testing.T) {
	t.Run("rejected while no led is placed", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartController)

		err := a.SetLedPin(5)
		if !errors.Is(err, ErrPartNotPlaced) {
			t.Fatalf("Expected ErrPartNotPlaced, got %v", err)
		}
		if a.LedPin() != 10 {
			t.Errorf("Expected led pin unchanged at 10, got %d", a.LedPin())
		}
	})

	t.Run("accepts a free pin once the led is placed", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartLed)

		if err := a.SetLedPin(5); err != nil {
			t.Fatalf("Failed to set led pin: %v", err)
		}
		if a.LedPin() != 5 {
			t.Errorf("Expected led pin 5, got %d", a.LedPin())
		}
	})

	t.Run("rejects the button's pin", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartLed)

		err := a.SetLedPin(a.ButtonPin())
		if !errors.Is(err, ErrInvalidPin) {
			t.Fatalf("Expected ErrInvalidPin, got %v", err)
		}
		if a.LedPin() != 10 {
			t.Errorf("Expected led pin unchanged at 10, got %d", a.LedPin())
		}
	})

	t.Run("rejects pins outside the digital range", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartLed)

		for _, pin := range []int{0, 1, 14, -3, 100} {
			if err := a.SetLedPin(pin); !errors.Is(err, ErrInvalidPin) {
				t.Errorf("Expected ErrInvalidPin for pin %d, got %v", pin, err)
			}
		}
	})

	t.Run("setting the current pin again succeeds", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartLed)

		if err := a.SetLedPin(a.LedPin()); err != nil {
			t.Fatalf("Expected re-set of own pin to succeed, got %v", err)
		}
	})
}

func TestAssignment_SetButtonPin(t *testing.T) {
	t.Run("rejected while no button is placed", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartController, models.PartLed)

		err := a.SetButtonPin(5)
		if !errors.Is(err, ErrPartNotPlaced) {
			t.Fatalf("Expected ErrPartNotPlaced, got %v", err)
		}
		if a.ButtonPin() != 2 {
			t.Errorf("Expected button pin unchanged at 2, got %d", a.ButtonPin())
		}
	})

	t.Run("accepts a free pin once the button is placed", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartButton)

		if err := a.SetButtonPin(3); err != nil {
			t.Fatalf("Failed to set button pin: %v", err)
		}
		if a.ButtonPin() != 3 {
			t.Errorf("Expected button pin 3, got %d", a.ButtonPin())
		}
	})

	t.Run("rejects the led's pin", func(t *testing.T) {
		_, a := newTestAssignment(t, models.PartButton)

		if err := a.SetButtonPin(a.LedPin()); !errors.Is(err, ErrInvalidPin) {
			t.Fatalf("Expected ErrInvalidPin, got %v", err)
		}
	})
}

func TestAssignment_PinsNeverCollide(t *testing.T) {
	// Walk a sequence of valid reassignments and check the exclusion
	// invariant after each accepted call.
	_, a := newTestAssignment(t, models.PartLed, models.PartButton)

	steps := []struct {
		setLed bool
		pin    int
	}{
		{true, 5},
		{false, 10}, // old led pin, now free
		{true, 2},   // old button pin, now free
		{false, 13},
		{true, 12},
	}

	for i, step := range steps {
		var err error
		if step.setLed {
			err = a.SetLedPin(step.pin)
		} else {
			err = a.SetButtonPin(step.pin)
		}
		if err != nil {
			t.Fatalf("Step %d: failed to assign pin %d: %v", i, step.pin, err)
		}
		if a.LedPin() == a.ButtonPin() {
			t.Fatalf("Step %d: led and button share pin %d", i, a.LedPin())
		}
	}
}

func TestAssignment_State(t *testing.T) {
	p, a := newTestAssignment(t, models.PartController, models.PartLed)

	state := a.State()

	if state.LedPin != 10 || state.ButtonPin != 2 {
		t.Errorf("Expected pins 10/2, got %d/%d", state.LedPin, state.ButtonPin)
	}
	if !state.HasController || !state.HasLed || state.HasButton {
		t.Errorf("Expected presence flags true/true/false, got %v/%v/%v",
			state.HasController, state.HasLed, state.HasButton)
	}
	if len(state.LedPinOptions) != 11 || len(state.ButtonPinOptions) != 11 {
		t.Errorf("Expected 11 options per role, got %d/%d",
			len(state.LedPinOptions), len(state.ButtonPinOptions))
	}

	if _, err := p.Place(models.PartButton, models.Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("Failed to place button: %v", err)
	}
	if !a.State().HasButton {
		t.Error("Expected HasButton after placing the button")
	}
}
