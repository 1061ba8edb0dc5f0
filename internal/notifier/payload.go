package notifier

import "math"

// PriceToMicros converts a decimal price to the integer micros the vendor
// schema transmits: round(price * 1,000,000).
func PriceToMicros(price float64) int64 {
	return int64(math.Round(price * 1_000_000))
}

// ApplyConditionalFields copies profile and billing fields from user meta
// into the payload. Each rule is independent: compound fields ($name and the
// billing name) need both source fields, single fields are added on their
// own.
func ApplyConditionalFields(data map[string]any, meta map[string]any) map[string]any {
	billing := map[string]any{}

	if first, last, ok := metaPair(meta, "first_name", "last_name"); ok {
		data["$name"] = first + " " + last
	}
	if first, last, ok := metaPair(meta, "billing_first_name", "billing_last_name"); ok {
		billing["$name"] = first + " " + last
	}
	if v, ok := metaString(meta, "billing_phone"); ok {
		billing["$phone"] = v
	}
	if v, ok := metaString(meta, "billing_address_1"); ok {
		billing["$address_1"] = v
	}
	if v, ok := metaString(meta, "billing_address_2"); ok {
		billing["$address_2"] = v
	}
	if v, ok := metaString(meta, "billing_city"); ok {
		billing["$city"] = v
	}
	if v, ok := metaString(meta, "billing_state"); ok {
		billing["$region"] = v
	}
	if v, ok := metaString(meta, "billing_country"); ok {
		billing["$country"] = v
	}
	if v, ok := metaString(meta, "billing_postcode"); ok {
		billing["$zipcode"] = v
	}

	if len(billing) > 0 {
		data["$billing_address"] = billing
	}

	return data
}

func metaString(meta map[string]any, key string) (string, bool) {
	v, exists := meta[key]
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func metaPair(meta map[string]any, first, second string) (string, string, bool) {
	a, okA := metaString(meta, first)
	b, okB := metaString(meta, second)
	if !okA || !okB {
		return "", "", false
	}
	return a, b, true
}
