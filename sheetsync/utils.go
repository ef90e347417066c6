package sheetsync

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func toString(intf any) (result string, ok bool) {
	if intf == nil {
		return
	}
	result, ok = intf.(string)
	return
}

func toInt64(intf any) (result int64, ok bool) {
	if intf == nil {
		return
	}
	ok = true
	switch iv := intf.(type) {
	case int:
		result = int64(iv)
	case int32:
		result = int64(iv)
	case int64:
		result = iv
	case float64:
		result = int64(iv)
	case string:
		if irv, err := strconv.ParseInt(iv, 10, 64); err == nil {
			result = irv
		} else {
			ok = false
		}
	default:
		ok = false
	}
	return
}

type Set[K comparable] map[K]struct{}

func NewSet[K comparable]() Set[K] {
	return make(Set[K])
}
func MakeSet[K comparable](keys []K) Set[K] {
	var ns = NewSet[K]()
	for _, k := range keys {
		ns.Add(k)
	}
	return ns
}
func (s Set[K]) Has(key K) (ok bool) {
	_, ok = s[key]
	return
}
func (s Set[K]) Add(key K) {
	s[key] = struct{}{}
}
func (s Set[K]) ToArray() (result []K) {
	for k := range s {
		result = append(result, k)
	}
	return
}

// normalizeRoles lower-cases, trims, and splits role identifiers that may
// arrive as newline- or comma-separated blobs.
func normalizeRoles(roles []string) Set[string] {
	var result = NewSet[string]()
	for _, x := range roles {
		x = strings.TrimSpace(x)
		if len(x) == 0 {
			continue
		}
		for _, y := range strings.Split(x, "\n") {
			for _, z := range strings.Split(y, ",") {
				z = strings.TrimSpace(z)
				if len(z) == 0 {
					continue
				}
				result.Add(strings.ToLower(z))
			}
		}
	}
	return result
}

var loginFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// sanitizeLogin reduces arbitrary text to the directory's login charset:
// lower-case letters, digits, and ".-_". Diacritics are folded to their base
// letters first so "rené" sanitizes to "rene" rather than "ren".
func sanitizeLogin(raw string) string {
	folded, _, err := transform.String(loginFolder, raw)
	if err != nil {
		folded = raw
	}
	folded = strings.ToLower(folded)
	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// loginFromEmail derives a login candidate from the local part of an email.
func loginFromEmail(email string) string {
	var local = email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	return sanitizeLogin(local)
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()"

// generatePassword returns a random password for newly created accounts.
func generatePassword(length int) string {
	var b = make([]byte, length)
	var max = big.NewInt(int64(len(passwordAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b)
}
