package store

import (
	"fmt"
	"os"

	"songcal/internal/calendar"
	"songcal/internal/shared"
)

// LoadPins reads the pins file. A missing file yields an empty set.
func LoadPins(path string) (calendar.PinSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return calendar.PinSet{}, nil
		}
		return nil, fmt.Errorf("reading pins: %w", err)
	}

	pins := calendar.PinSet{}
	if err := shared.UnmarshalJSON(raw, &pins); err != nil {
		return nil, fmt.Errorf("parsing pins %s: %w", path, err)
	}
	return pins, nil
}

// SavePins writes the pin set atomically.
func SavePins(path string, pins calendar.PinSet) error {
	data, err := shared.MarshalJSON(pins, true)
	if err != nil {
		return fmt.Errorf("encoding pins: %w", err)
	}
	return writeAtomic(path, data)
}
