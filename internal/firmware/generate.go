// Package firmware renders the Arduino sketch for the designed circuit.
package firmware

import "fmt"

// sketch is the fixed firmware shape: pin constants, pin direction setup,
// then a loop mirroring the button level onto the LED.
const sketch = `const int LED_PIN = %d;
const int BUTTON_PIN = %d;

void setup() {
  pinMode(LED_PIN, OUTPUT);
  pinMode(BUTTON_PIN, INPUT);
}

void loop() {
  if (digitalRead(BUTTON_PIN) == HIGH) {
    digitalWrite(LED_PIN, HIGH);
  } else {
    digitalWrite(LED_PIN, LOW);
  }
}
`

// Generate renders the sketch for the given pins. It is total and
// deterministic: the same pins always yield byte-identical output, and no
// pin value is rejected here. Pin validation belongs to the assignment
// layer.
func Generate(ledPin, buttonPin int) string {
	return fmt.Sprintf(sketch, ledPin, buttonPin)
}
