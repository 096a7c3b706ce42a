package services

import "testing"

func TestAdjustForInflation(t *testing.T) {
	tests := []struct {
		name       string
		price      float64
		baseYear   int
		targetYear int
		want       float64
		wantOK     bool
	}{
		{"2020 to 2025", 100, 2020, 2025, 126.41, true},
		{"base year 2015", 50, 2015, 2025, 68.39, true},
		{"same year", 80, 2025, 2025, 80, true},
		{"half cent rounds away from zero", 10.005, 2025, 2025, 10.01, true},
		{"base year before table", 100, 1999, 2025, 0, false},
		{"target year after table", 100, 2020, 2030, 0, false},
	}

	for _, tt := range tests {
		got, ok := AdjustForInflation(tt.price, tt.baseYear, tt.targetYear, AustrianCPI)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: AdjustForInflation(%.3f, %d, %d) = %.2f, %v; want %.2f, %v",
				tt.name, tt.price, tt.baseYear, tt.targetYear, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAustrianCPIStartsAtBaseYear(t *testing.T) {
	if AustrianCPI[2015] != 100 {
		t.Errorf("CPI 2015 = %.2f; want 100", AustrianCPI[2015])
	}
	if _, ok := AustrianCPI[ReferenceYear]; !ok {
		t.Errorf("CPI table has no entry for reference year %d", ReferenceYear)
	}
}
