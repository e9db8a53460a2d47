package spectrum

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadText reads a spectrum from a whitespace-separated table with
// columns wave, data, and optionally error and mask (nonzero = masked).
// Lines starting with # are skipped. Missing error columns default to
// 1, missing mask columns to unmasked.
func LoadText(r io.Reader) (*Spectrum, error) {
	var wave, data, errs []float64
	var mask []bool

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("spectrum: line %d: need at least wave and data columns", lineNo)
		}

		w, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("spectrum: line %d: %w", lineNo, err)
		}
		d, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("spectrum: line %d: %w", lineNo, err)
		}

		e := 1.0
		if len(fields) > 2 {
			e, err = strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return nil, fmt.Errorf("spectrum: line %d: %w", lineNo, err)
			}
		}

		m := false
		if len(fields) > 3 {
			mv, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, fmt.Errorf("spectrum: line %d: %w", lineNo, err)
			}
			m = mv != 0
		}

		wave = append(wave, w)
		data = append(data, d)
		errs = append(errs, e)
		mask = append(mask, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("spectrum: %w", err)
	}

	return New(wave, data, WithError(errs), WithMask(mask))
}

// WriteText writes the spectrum as a whitespace-separated table with
// columns wave, data, error, and mask, readable by [LoadText]. Missing
// errors are written as 1, missing masks as 0.
func (s *Spectrum) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "# wave data error mask"); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}
	for i := range s.wave {
		e := 1.0
		if s.errs != nil {
			e = s.errs[i]
		}
		m := 0
		if s.mask != nil && s.mask[i] {
			m = 1
		}
		if _, err := fmt.Fprintf(bw, "%.8g %.8g %.8g %d\n", s.wave[i], s.data[i], e, m); err != nil {
			return fmt.Errorf("spectrum: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("spectrum: %w", err)
	}
	return nil
}
