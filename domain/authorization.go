package domain

import (
	"sort"
	"strings"
	"time"
)

// IssuedDateLayout is the layout used when an authorization's issue time is
// shown to users.
const IssuedDateLayout = "2006-01-02"

// Authorization is a grant that lets a named client application access a
// user's account. It exists for as long as the user holds at least one
// active token issued to the client.
type Authorization struct {
	ClientID   string    `json:"client_id"`
	ClientName string    `json:"client_name"`
	Scope      string    `json:"scope,omitempty"`
	IssuedAt   time.Time `json:"issued_at"`
}

// Issued returns the issue date in display form.
func (a Authorization) Issued() string {
	return a.IssuedAt.UTC().Format(IssuedDateLayout)
}

// AuthorizationsFromTokens groups the active tokens of one user by client.
// The issue time of each authorization is the earliest token creation time,
// scopes are merged. Client names are resolved through names; clients without
// a name fall back to their id. The result is sorted by issue time, then id.
func AuthorizationsFromTokens(tokens []*Token, names map[string]string, now time.Time) []Authorization {
	byClient := make(map[string]*Authorization)
	scopes := make(map[string][]string)

	for _, t := range tokens {
		if t == nil || !t.IsActive(now) {
			continue
		}

		auth, ok := byClient[t.ClientID]
		if !ok {
			auth = &Authorization{ClientID: t.ClientID, IssuedAt: t.CreatedAt}
			byClient[t.ClientID] = auth
		}
		if t.CreatedAt.Before(auth.IssuedAt) {
			auth.IssuedAt = t.CreatedAt
		}
		scopes[t.ClientID] = append(scopes[t.ClientID], t.Scope)
	}

	out := make([]Authorization, 0, len(byClient))
	for id, auth := range byClient {
		auth.ClientName = names[id]
		if auth.ClientName == "" {
			auth.ClientName = id
		}
		auth.Scope = MergeScopes(scopes[id]...)
		out = append(out, *auth)
	}

	SortAuthorizations(out)

	return out
}

// SortAuthorizations orders authorizations by issue time, oldest first,
// breaking ties by client id.
func SortAuthorizations(auths []Authorization) {
	sort.SliceStable(auths, func(i, j int) bool {
		if !auths[i].IssuedAt.Equal(auths[j].IssuedAt) {
			return auths[i].IssuedAt.Before(auths[j].IssuedAt)
		}
		return auths[i].ClientID < auths[j].ClientID
	})
}

// MergeScopes merges space separated scope lists into one sorted list
// without duplicates.
func MergeScopes(scopes ...string) string {
	set := make(map[string]struct{})
	for _, list := range scopes {
		for _, s := range strings.Fields(list) {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return ""
	}

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, " ")
}
