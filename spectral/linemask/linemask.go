package linemask

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrInvalidWindow is returned when a window ends before it starts.
var ErrInvalidWindow = errors.New("linemask: window end before start")

// Window is a rest-frame wavelength interval, inclusive on both ends.
type Window struct {
	Start float64
	End   float64
}

// Set is a collection of exclusion windows.
type Set []Window

// MaskObserved marks every wavelength that falls inside one of the
// windows after shifting them to redshift z.
func (s Set) MaskObserved(wave []float64, z float64) []bool {
	mask := make([]bool, len(wave))
	for _, w := range s {
		lo := w.Start * (1 + z)
		hi := w.End * (1 + z)
		for i, wl := range wave {
			if wl >= lo && wl <= hi {
				mask[i] = true
			}
		}
	}
	return mask
}

// Load reads a window set from a two-column text table of start and end
// wavelengths. Blank lines and lines starting with '#' are skipped.
func Load(r io.Reader) (Set, error) {
	var set Set

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, fmt.Errorf("linemask: line %d: need start and end wavelength", line)
		}
		start, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("linemask: line %d: %w", line, err)
		}
		end, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("linemask: line %d: %w", line, err)
		}
		if end < start {
			return nil, fmt.Errorf("linemask: line %d: %w", line, ErrInvalidWindow)
		}
		set = append(set, Window{Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("linemask: %w", err)
	}
	return set, nil
}
