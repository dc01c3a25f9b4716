package model

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FirstReceiptNumber выдаётся, когда чеков ещё нет.
	FirstReceiptNumber = "B001-00001"

	receiptSeqDigits = 5
	receiptSeqMax    = 99999
)

// ParseReceiptNumber разбирает номер вида SERIES-SEQUENCE.
// Серия: буква и три цифры, последовательность: ровно пять цифр.
func ParseReceiptNumber(number string) (series string, seq int, err error) {
	series, rawSeq, ok := strings.Cut(number, "-")
	if !ok || len(series) != 4 || len(rawSeq) != receiptSeqDigits {
		return "", 0, fmt.Errorf("%w: malformed receipt number %q", ErrValidation, number)
	}
	if _, err := strconv.Atoi(series[1:]); err != nil || series[0] < 'A' || series[0] > 'Z' {
		return "", 0, fmt.Errorf("%w: malformed receipt series %q", ErrValidation, series)
	}
	seq, err = strconv.Atoi(rawSeq)
	if err != nil || seq <= 0 {
		return "", 0, fmt.Errorf("%w: malformed receipt sequence %q", ErrValidation, rawSeq)
	}
	return series, seq, nil
}

// NextReceiptNumber возвращает номер, следующий за last.
// Пустой last означает, что чеков ещё не было. После 99999 серия увеличивается: B001-99999 → B002-00001.
func NextReceiptNumber(last string) (string, error) {
	if last == "" {
		return FirstReceiptNumber, nil
	}

	series, seq, err := ParseReceiptNumber(last)
	if err != nil {
		return "", err
	}

	if seq < receiptSeqMax {
		return formatReceiptNumber(series, seq+1), nil
	}

	n, _ := strconv.Atoi(series[1:])
	if n >= 999 {
		return "", fmt.Errorf("%w: receipt series %q exhausted", ErrValidation, series)
	}
	return formatReceiptNumber(fmt.Sprintf("%c%03d", series[0], n+1), 1), nil
}

func formatReceiptNumber(series string, seq int) string {
	return fmt.Sprintf("%s-%0*d", series, receiptSeqDigits, seq)
}
