package engine

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// readCoeffFile reads a plain text FIR coefficient file: one decimal
// floating point value per line, whitespace trimmed. Empty lines are
// rejected (spec.md §6 FIR-coefficient file).
func readCoeffFile(filename string) ([]float64, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("reading coefficient file %s: %w", filename, err)
	}
	defer f.Close()

	var coeffs []float64
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil, fmt.Errorf("coefficient file %s: empty line at %d", filename, lineNo)
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("coefficient file %s: line %d: %w", filename, lineNo, err)
		}
		coeffs = append(coeffs, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading coefficient file %s: %w", filename, err)
	}
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("coefficient file %s: no coefficients", filename)
	}
	return coeffs, nil
}
