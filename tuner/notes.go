package tuner

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
)

// Equal-tempered note naming relative to A4 = 440 Hz.

const referenceA4 = 440.0

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NearestNote maps a frequency to the closest equal-tempered note and the
// signed cents deviation from it.
func NearestNote(frequency float64) (TuningTarget, float64) {
	if frequency <= 0 {
		return TuningTarget{}, 0
	}

	semitones := 12.0 * math.Log2(frequency/referenceA4)
	rounded := math.Round(semitones)
	cents := 100.0 * (semitones - rounded)

	// A4 sits 9 semitones above C4
	noteIdx := int(math.Mod(rounded+9, 12))
	if noteIdx < 0 {
		noteIdx += 12
	}
	octave := 4 + int(math.Floor((rounded+9)/12))

	target := TuningTarget{
		Note:      fmt.Sprintf("%s%d", noteNames[noteIdx], octave),
		Frequency: referenceA4 * math.Pow(2, rounded/12.0),
	}
	return target, cents
}

// NoteFrequency resolves a note name like "A4" or "F#3" to its
// equal-tempered frequency.
func NoteFrequency(name string) (float64, error) {
	if len(name) < 2 {
		return 0, fmt.Errorf("invalid note name %q", name)
	}

	letter := name[:1]
	rest := name[1:]
	if len(rest) > 1 && rest[0] == '#' {
		letter = name[:2]
		rest = name[2:]
	}

	noteIdx := -1
	for i, n := range noteNames {
		if n == letter {
			noteIdx = i
			break
		}
	}
	if noteIdx == -1 {
		return 0, fmt.Errorf("invalid note name %q", name)
	}

	var octave int
	if _, err := fmt.Sscanf(rest, "%d", &octave); err != nil {
		return 0, fmt.Errorf("invalid octave in note name %q", name)
	}

	// Semitone distance from A4 (note index 9, octave 4)
	semitones := float64((octave-4)*12 + noteIdx - 9)
	return referenceA4 * math.Pow(2, semitones/12.0), nil
}

// CentsOff returns the signed cents deviation of a measured frequency from
// a target frequency.
func CentsOff(measured, target float64) float64 {
	return common.CentsBetween(measured, target)
}
