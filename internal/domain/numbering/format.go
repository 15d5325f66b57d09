package numbering

import (
	"fmt"
	"strconv"
)

const (
	// "20"-"29": внутренний диапазон EAN для своих товаров
	barcodePrefix = "BC"
	barcodeRange  = "20"
	barcodeWidth  = 10
)

// Format: CI + 42 -> CI000042. Последовательность длиннее width не обрезается.
func Format(prefix string, seq int64, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, seq)
}

// EAN13 собирает штрихкод из порядкового номера: 20 + 10 цифр + контрольная.
func EAN13(seq int64) (string, error) {
	body := fmt.Sprintf("%s%0*d", barcodeRange, barcodeWidth, seq)
	if len(body) != 12 {
		return "", fmt.Errorf("numbering: barcode sequence %d overflows EAN-13", seq)
	}
	return body + strconv.Itoa(ean13CheckDigit(body)), nil
}

// ean13CheckDigit по 12 цифрам: нечётные позиции ×1, чётные ×3.
func ean13CheckDigit(body string) int {
	sum := 0
	for i, r := range body {
		n := int(r - '0')
		if i%2 == 1 {
			n *= 3
		}
		sum += n
	}
	return (10 - sum%10) % 10
}

// ValidEAN13 проверяет длину, цифры и контрольный разряд.
func ValidEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return ean13CheckDigit(code[:12]) == int(code[12]-'0')
}
