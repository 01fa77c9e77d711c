package domain

import "fmt"

// Preference is a ranking criterion chosen in the questionnaire.
type Preference string

const (
	PrefEfficiency Preference = "efficiency"
	PrefPrice      Preference = "price"
	PrefRating     Preference = "rating"
	PrefSize       Preference = "size"
	PrefHorsepower Preference = "horsepower"
)

// ValidPreferences returns every preference in questionnaire order.
func ValidPreferences() []Preference {
	return []Preference{PrefEfficiency, PrefPrice, PrefRating, PrefSize, PrefHorsepower}
}

// ParsePreference validates s as a Preference.
func ParsePreference(s string) (Preference, error) {
	for _, p := range ValidPreferences() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preference %q", s)
}

// Preferences are the three ranked preferences of a profile.
type Preferences struct {
	First  Preference `json:"first"`
	Second Preference `json:"second"`
	Third  Preference `json:"third"`
}

// Validate checks that the set ranks are known and pairwise distinct.
func (p Preferences) Validate() error {
	seen := make(map[Preference]string, 3)
	for _, rank := range []struct {
		name string
		pref Preference
	}{{"first", p.First}, {"second", p.Second}, {"third", p.Third}} {
		if rank.pref == "" {
			continue
		}
		if _, err := ParsePreference(string(rank.pref)); err != nil {
			return err
		}
		if other, dup := seen[rank.pref]; dup {
			return fmt.Errorf("preference %q chosen for both %s and %s", rank.pref, other, rank.name)
		}
		seen[rank.pref] = rank.name
	}
	return nil
}

// Ordered returns the set preferences from first to third.
func (p Preferences) Ordered() []Preference {
	out := make([]Preference, 0, 3)
	for _, pref := range []Preference{p.First, p.Second, p.Third} {
		if pref != "" {
			out = append(out, pref)
		}
	}
	return out
}
