package authlist

// State is the view state of a List. Values are immutable: every Apply
// method returns a new State and leaves the receiver untouched.
type State struct {
	// Authorizations in server order. Client ids are unique.
	Authorizations []Record

	// LoadErr is the error of the last failed load, cleared by a successful one.
	LoadErr error

	// RevokeErrs holds the last revoke failure per client id.
	RevokeErrs map[string]error
}

// ApplyLoad replaces the records wholesale.
func (s State) ApplyLoad(records []Record) State {
	next := State{
		Authorizations: append([]Record(nil), records...),
	}

	// Failures for ids that are no longer listed are dropped.
	for _, r := range next.Authorizations {
		if err, ok := s.RevokeErrs[r.ClientID]; ok {
			if next.RevokeErrs == nil {
				next.RevokeErrs = make(map[string]error)
			}
			next.RevokeErrs[r.ClientID] = err
		}
	}
	return next
}

// ApplyRevoke removes every record with clientID. An unknown id leaves the
// records as they are.
func (s State) ApplyRevoke(clientID string) State {
	next := State{
		Authorizations: make([]Record, 0, len(s.Authorizations)),
		LoadErr:        s.LoadErr,
		RevokeErrs:     copyErrs(s.RevokeErrs, clientID),
	}
	for _, r := range s.Authorizations {
		if r.ClientID != clientID {
			next.Authorizations = append(next.Authorizations, r)
		}
	}
	return next
}

// ApplyLoadError records a failed load. The records are kept.
func (s State) ApplyLoadError(err error) State {
	return State{
		Authorizations: append([]Record(nil), s.Authorizations...),
		LoadErr:        err,
		RevokeErrs:     copyErrs(s.RevokeErrs, ""),
	}
}

// ApplyRevokeError records a failed revocation of clientID. The record is kept.
func (s State) ApplyRevokeError(clientID string, err error) State {
	errs := copyErrs(s.RevokeErrs, "")
	if errs == nil {
		errs = make(map[string]error)
	}
	errs[clientID] = err

	return State{
		Authorizations: append([]Record(nil), s.Authorizations...),
		LoadErr:        s.LoadErr,
		RevokeErrs:     errs,
	}
}

// RevokeErr returns the last revoke failure for clientID, if any.
func (s State) RevokeErr(clientID string) error {
	return s.RevokeErrs[clientID]
}

func copyErrs(errs map[string]error, skip string) map[string]error {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]error, len(errs))
	for id, err := range errs {
		if id != skip {
			out[id] = err
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
