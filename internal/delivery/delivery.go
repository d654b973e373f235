// Package delivery implements the Delivery Configuration (DC): postcode
// zone fees and the service-level timing used to compute pickup/delivery
// ETAs, loaded once from a JSON file at startup.
package delivery

import (
	"encoding/json"
	"os"
	"strings"
)

// Zone is spec.md §3's DeliveryZone entity: a postcode-prefix match and its
// flat delivery fee.
type Zone struct {
	PostcodePrefixes []string `json:"postcode_prefixes"`
	Fee              float64  `json:"fee"`
}

// SLA is spec.md §3's SLA entity: the fixed minute offsets added to "now"
// to produce a spoken ETA.
type SLA struct {
	PickupMinutes      int `json:"pickup_minutes"`
	PickupComboMinutes int `json:"pickup_combo_minutes"`
	DeliveryMinutes    int `json:"delivery_minutes"`
}

// Config is the DC component: the loaded zone list and SLA, immutable for
// the process lifetime.
type Config struct {
	Zones []Zone `json:"zones"`
	SLA   SLA    `json:"sla"`
}

// Default matches original_source's DELIVERY_CFG fallback constants, used
// when no delivery config file is present.
func Default() Config {
	return Config{
		Zones: []Zone{
			{PostcodePrefixes: []string{"1871", "1872", "1873"}, Fee: 0},
			{PostcodePrefixes: []string{"1861", "1862", "1865"}, Fee: 1.5},
		},
		SLA: SLA{PickupMinutes: 20, PickupComboMinutes: 30, DeliveryMinutes: 35},
	}
}

// Load reads and parses the delivery config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FeeFor returns the delivery fee for a postcode and whether any zone
// matched. A postcode with no matching zone prefix is out of area.
func (c Config) FeeFor(postcode string) (fee float64, inZone bool) {
	norm := strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
	for _, z := range c.Zones {
		for _, prefix := range z.PostcodePrefixes {
			if strings.HasPrefix(norm, strings.ToUpper(prefix)) {
				return z.Fee, true
			}
		}
	}
	return 0, false
}

// ETAMinutes computes the spoken ETA offset per spec.md §4.4's totals/ETA
// rules: SLA base + max(delay_pasta, delay_schotels). kind is "pickup" or
// "delivery".
func (c Config) ETAMinutes(kind string, delayPastaMinutes, delaySchotelsMinutes int) int {
	var base int
	switch kind {
	case "delivery":
		base = c.SLA.DeliveryMinutes
	default:
		base = c.SLA.PickupMinutes
	}
	return base + max(delayPastaMinutes, delaySchotelsMinutes)
}
