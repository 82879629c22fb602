package format

import (
	"encoding/json"
	"net"
	"strings"
)

type redactor func(string) string

var redactorsByKey = map[string]redactor{
	"number":           maskCardNumber,
	"cardnumber":       maskCardNumber,
	"creditcardnumber": maskCardNumber,
	"creditcardtoken":  maskCardNumber,
	"ccv":              maskAll,
	"cvv":              maskAll,
	"cvc":              maskAll,
	"securitycode":     maskAll,
	"cpfcnpj":          maskTaxIDValue,
	"taxid":            maskTaxIDValue,
	"tax_id":           maskTaxIDValue,
	"cpf":              maskTaxIDValue,
	"cnpj":             maskTaxIDValue,
	"remoteip":         maskIP,
	"remote_ip":        maskIP,
	"ip":               maskIP,
	"ipaddress":        maskIP,
	"access_token":     maskAll,
	"apikey":           maskAll,
}

// RedactSensitive returns a deep copy of v with card data, tax ids and IP
// addresses masked. Structs are converted through their JSON form. The result
// is meant for logs only.
func RedactSensitive(v any) any {
	switch typed := v.(type) {
	case nil:
		return nil
	case map[string]any:
		return redactMap(typed)
	case []any:
		return redactSlice(typed)
	case string, bool, float64, int, int64, json.Number:
		return typed
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "[unserializable]"
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "[unserializable]"
	}
	return RedactSensitive(generic)
}

func redactMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if fn, ok := redactorsByKey[strings.ToLower(k)]; ok {
			if s, isString := v.(string); isString {
				out[k] = fn(s)
				continue
			}
		}
		out[k] = RedactSensitive(v)
	}
	return out
}

func redactSlice(in []any) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = RedactSensitive(v)
	}
	return out
}

func maskAll(string) string {
	return "***"
}

func maskCardNumber(value string) string {
	if len(value) < 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

func maskTaxIDValue(value string) string {
	if len(value) < 5 {
		return strings.Repeat("*", len(value))
	}
	return value[:3] + strings.Repeat("*", len(value)-5) + value[len(value)-2:]
}

func maskIP(value string) string {
	ip := net.ParseIP(strings.TrimSpace(value))
	if ip == nil {
		return "***"
	}
	if v4 := ip.To4(); v4 != nil {
		parts := strings.Split(v4.String(), ".")
		return parts[0] + ".***.***.***"
	}
	groups := strings.Split(ip.String(), ":")
	return groups[0] + ":****"
}
