package validation

import "testing"

func TestIsValidDocument(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		valid bool
	}{
		{
			name:  "dni",
			doc:   "45781236",
			valid: true,
		},
		{
			name:  "ruc company",
			doc:   "20131312955",
			valid: true,
		},
		{
			name:  "ruc with check digit zero",
			doc:   "20100070970",
			valid: true,
		},
		{
			name:  "ruc invalid checksum",
			doc:   "20131312956",
			valid: false,
		},
		{
			name:  "ruc unknown prefix",
			doc:   "30131312955",
			valid: false,
		},
		{
			name:  "dni with letters",
			doc:   "4578123A",
			valid: false,
		},
		{
			name:  "wrong length",
			doc:   "123456789",
			valid: false,
		},
		{
			name:  "dni in arabic-indic digits",
			doc:   "١٢٣٤",
			valid: false,
		},
		{
			name:  "ruc with non-ascii digits",
			doc:   "20١٢٣٤5",
			valid: false,
		},
		{
			name:  "empty string",
			doc:   "",
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidDocument(tt.doc)
			if got != tt.valid {
				t.Fatalf("IsValidDocument(%q) = %v, want %v", tt.doc, got, tt.valid)
			}
		})
	}
}
