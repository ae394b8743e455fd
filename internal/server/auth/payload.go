package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Registered fields the issuer sets itself. Claims with these types are not
// copied from the claim sequence.
var reservedTypes = map[string]struct{}{
	"iss": {}, "aud": {}, "exp": {}, "iat": {}, "nbf": {},
}

// payload is the JWT body. Claims of one type are grouped under the key of
// their first appearance, a single value is written as a string and repeated
// values as an array. Values keep their order within a type, but types that
// interleave (a, b, a) parse back grouped (a, a, b).
type payload struct {
	claims    []Claim
	issuer    string
	audience  jwt.ClaimStrings
	issuedAt  *jwt.NumericDate
	expiresAt *jwt.NumericDate
	notBefore *jwt.NumericDate
}

func (p *payload) GetExpirationTime() (*jwt.NumericDate, error) { return p.expiresAt, nil }
func (p *payload) GetIssuedAt() (*jwt.NumericDate, error)       { return p.issuedAt, nil }
func (p *payload) GetNotBefore() (*jwt.NumericDate, error)      { return p.notBefore, nil }
func (p *payload) GetIssuer() (string, error)                   { return p.issuer, nil }
func (p *payload) GetAudience() (jwt.ClaimStrings, error)       { return p.audience, nil }

func (p *payload) GetSubject() (string, error) {
	if v := ValuesOf(p.claims, ClaimSubject); len(v) > 0 {
		return v[0], nil
	}
	return "", nil
}

func (p *payload) MarshalJSON() ([]byte, error) {
	var order []string
	grouped := make(map[string][]string)
	for _, c := range p.claims {
		if _, reserved := reservedTypes[c.Type]; reserved {
			continue
		}
		if _, seen := grouped[c.Type]; !seen {
			order = append(order, c.Type)
		}
		grouped[c.Type] = append(grouped[c.Type], c.Value)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(key string, value any) error {
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	for _, t := range order {
		var value any = grouped[t]
		if len(grouped[t]) == 1 {
			value = grouped[t][0]
		}
		if err := field(t, value); err != nil {
			return nil, err
		}
	}

	if p.issuer != "" {
		if err := field("iss", p.issuer); err != nil {
			return nil, err
		}
	}
	switch len(p.audience) {
	case 0:
	case 1:
		if err := field("aud", p.audience[0]); err != nil {
			return nil, err
		}
	default:
		if err := field("aud", []string(p.audience)); err != nil {
			return nil, err
		}
	}
	for _, d := range []struct {
		key  string
		date *jwt.NumericDate
	}{{"exp", p.expiresAt}, {"iat", p.issuedAt}, {"nbf", p.notBefore}} {
		if d.date == nil {
			continue
		}
		if err := field(d.key, d.date); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *payload) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("token payload is not a JSON object")
	}

	*p = payload{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("claim %q: %w", key, err)
		}

		switch key {
		case "iss":
			err = json.Unmarshal(raw, &p.issuer)
		case "aud":
			err = json.Unmarshal(raw, &p.audience)
		case "exp":
			p.expiresAt = new(jwt.NumericDate)
			err = json.Unmarshal(raw, p.expiresAt)
		case "iat":
			p.issuedAt = new(jwt.NumericDate)
			err = json.Unmarshal(raw, p.issuedAt)
		case "nbf":
			p.notBefore = new(jwt.NumericDate)
			err = json.Unmarshal(raw, p.notBefore)
		default:
			var values []string
			values, err = claimValues(raw)
			for _, v := range values {
				p.claims = append(p.claims, Claim{Type: key, Value: v})
			}
		}
		if err != nil {
			return fmt.Errorf("claim %q: %w", key, err)
		}
	}

	_, err = dec.Token()
	return err
}

// claimValues flattens a claim value: a string yields itself, an array yields
// its elements, and any other JSON scalar its literal text.
func claimValues(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		var out []string
		for _, item := range items {
			vs, err := claimValues(item)
			if err != nil {
				return nil, err
			}
			out = append(out, vs...)
		}
		return out, nil
	default:
		return []string{strings.TrimSpace(string(trimmed))}, nil
	}
}
