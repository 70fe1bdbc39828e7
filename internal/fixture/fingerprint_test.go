package fixture

import "testing"

func sampleBatch() []Raw {
	return []Raw{
		{Day: "7", MonthLabel: "אוג", Time: "19:00", HomeTeam: "מכבי", AwayTeam: "ראקוב", Venue: "סמי עופר", Competition: "קונפרנס"},
		{Day: "14", MonthLabel: "אוג", Time: "21:30", HomeTeam: "הפועל", AwayTeam: "מכבי", Venue: "בלומפילד", Competition: "ליגה"},
		{Day: "2", MonthLabel: "ספט", Time: "20:00", HomeTeam: "מכבי", AwayTeam: "בית\"ר", Venue: "סמי עופר", Competition: "ליגה", Tentative: "(לא סופי)"},
	}
}

func TestFingerprint_orderIndependent(t *testing.T) {
	batch := sampleBatch()
	want := Fingerprint(batch)

	permutations := [][]Raw{
		{batch[2], batch[0], batch[1]},
		{batch[1], batch[2], batch[0]},
		{batch[2], batch[1], batch[0]},
	}
	for i, perm := range permutations {
		if got := Fingerprint(perm); got != want {
			t.Errorf("permutation %d: fingerprint = %s, want %s", i, got, want)
		}
	}
}

func TestFingerprint_fieldSensitive(t *testing.T) {
	base := Fingerprint(sampleBatch())

	mutations := []struct {
		name   string
		mutate func(batch []Raw)
	}{
		{"time changed", func(b []Raw) { b[0].Time = "20:00" }},
		{"venue changed", func(b []Raw) { b[1].Venue = "אצטדיון אחר" }},
		{"tentative cleared", func(b []Raw) { b[2].Tentative = "" }},
		{"competition changed", func(b []Raw) { b[0].Competition = "גביע" }},
		{"team changed", func(b []Raw) { b[1].HomeTeam = "עירוני" }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			batch := sampleBatch()
			tt.mutate(batch)
			if got := Fingerprint(batch); got == base {
				t.Error("fingerprint unchanged after field mutation")
			}
		})
	}
}

func TestFingerprint_doesNotMutateInput(t *testing.T) {
	batch := sampleBatch()
	first := batch[0]
	Fingerprint(batch)
	if batch[0] != first {
		t.Error("Fingerprint reordered the caller's slice")
	}
}

func TestFingerprint_emptyBatch(t *testing.T) {
	if Fingerprint(nil) != Fingerprint([]Raw{}) {
		t.Error("nil and empty batches should hash identically")
	}
}
