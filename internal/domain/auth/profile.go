package auth

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Profile is a user object as returned by the marketplace API. Different endpoints
// disagree on field names and types, so decoding is lenient:
//   - id is a string or a number
//   - name is "name", or "first_name" + "last_name"
//   - the role is a string "role", a numeric "role", "role_id" or "roleId"
//   - the phone is "phone_number" or "phone"
type Profile struct {
	ID        ID
	Name      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      RoleClaim
}

// UnmarshalJSON implements lenient decoding of API user objects.
func (p *Profile) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*p = ProfileFromMap(raw)
	return nil
}

// ProfileFromMap builds a Profile from an already decoded JSON object.
func ProfileFromMap(raw map[string]any) Profile {
	p := Profile{
		ID:        ID(scalarString(raw["id"])),
		FirstName: stringField(raw, "first_name"),
		LastName:  stringField(raw, "last_name"),
		Email:     stringField(raw, "email"),
		Phone:     firstNonEmpty(stringField(raw, "phone_number"), stringField(raw, "phone")),
	}

	p.Name = stringField(raw, "name")
	if p.Name == "" {
		p.Name = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}

	switch v := raw["role"].(type) {
	case string:
		p.Role.Name = strings.TrimSpace(v)
	case json.Number, float64:
		p.Role.ID = intField(v)
	}
	if p.Role.ID == nil {
		p.Role.ID = intField(raw["role_id"])
	}
	if p.Role.ID == nil {
		p.Role.ID = intField(raw["roleId"])
	}
	return p
}

// User maps the profile to a local user, resolving the role with hint as the last fallback.
func (p Profile) User(hint Role) *User {
	return &User{
		ID:    p.ID,
		Name:  p.Name,
		Email: p.Email,
		Role:  CanonicalRole(p.Role, hint),
		Phone: p.Phone,
	}
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func intField(v any) *int {
	var (
		n   int64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		n, err = t.Int64()
	case float64:
		n = int64(t)
		if float64(n) != t {
			return nil
		}
	case string:
		n, err = strconv.ParseInt(strings.TrimSpace(t), 10, 64)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	i := int(n)
	return &i
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
