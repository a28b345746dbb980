package security

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rentops/internal/app/policies"
)

var ErrUnknownToken = errors.New("security: unknown token")

// TokenRegistry resolves opaque bearer tokens to principals. Entries whose
// token is a bcrypt hash are matched by comparison instead of lookup.
type TokenRegistry struct {
	byToken map[string]policies.Principal
	hashed  []hashedToken
}

type hashedToken struct {
	hash      []byte
	principal policies.Principal
}

// HashToken returns the bcrypt form of a token for use in AUTH_TOKENS.
func HashToken(token string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(token), cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func isBcryptHash(token string) bool {
	_, err := bcrypt.Cost([]byte(token))
	return err == nil
}

// ParseTokens reads comma separated entries of the form token:user:role[:prop1|prop2].
func ParseTokens(raw string) (*TokenRegistry, error) {
	reg := &TokenRegistry{byToken: make(map[string]policies.Principal)}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("security: malformed token entry %q", entry)
		}
		token, user, role := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.ToLower(strings.TrimSpace(parts[2]))
		if token == "" || user == "" {
			return nil, fmt.Errorf("security: token entry %q needs token and user", entry)
		}
		switch role {
		case policies.RoleAdmin, policies.RoleManager:
		default:
			return nil, fmt.Errorf("security: token entry %q has unsupported role %q", entry, role)
		}
		p := policies.Principal{ID: user, Role: role}
		if len(parts) == 4 {
			for _, pid := range strings.Split(parts[3], "|") {
				if pid = strings.TrimSpace(pid); pid != "" {
					p.Properties = append(p.Properties, pid)
				}
			}
		}
		if isBcryptHash(token) {
			reg.hashed = append(reg.hashed, hashedToken{hash: []byte(token), principal: p})
			continue
		}
		if _, dup := reg.byToken[token]; dup {
			return nil, fmt.Errorf("security: duplicate token for user %q", user)
		}
		reg.byToken[token] = p
	}
	return reg, nil
}

func (r *TokenRegistry) Resolve(token string) (policies.Principal, error) {
	if r == nil {
		return policies.Principal{}, ErrUnknownToken
	}
	if p, ok := r.byToken[token]; ok {
		return p, nil
	}
	for _, h := range r.hashed {
		if bcrypt.CompareHashAndPassword(h.hash, []byte(token)) == nil {
			return h.principal, nil
		}
	}
	return policies.Principal{}, ErrUnknownToken
}

func (r *TokenRegistry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byToken) + len(r.hashed)
}
