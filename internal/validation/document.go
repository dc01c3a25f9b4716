// Package validation содержит функции валидации входных данных.
package validation

var rucWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// IsValidDocument проверяет документ клиента: DNI (8 цифр) или RUC (11 цифр с контрольной цифрой).
func IsValidDocument(doc string) bool {
	switch len(doc) {
	case 8:
		return allDigits(doc)
	case 11:
		return IsValidRUC(doc)
	}
	return false
}

// IsValidRUC проверяет RUC по префиксу типа налогоплательщика и контрольной цифре по модулю 11.
func IsValidRUC(ruc string) bool {
	if len(ruc) != 11 || !allDigits(ruc) {
		return false
	}

	switch ruc[:2] {
	case "10", "15", "17", "20":
	default:
		return false
	}

	sum := 0
	for i, w := range rucWeights {
		sum += int(ruc[i]-'0') * w
	}

	check := 11 - sum%11
	switch check {
	case 10:
		check = 0
	case 11:
		check = 1
	}

	return int(ruc[10]-'0') == check
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
