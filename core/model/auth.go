package model

import "time"

// AuthToken is the RFID UID presented at a charge point, upper-case hex.
type AuthToken string

func (t AuthToken) String() string { return string(t) }

// IsZero reports whether the token consists only of '0' characters.
func (t AuthToken) IsZero() bool {
	if len(t) == 0 {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != '0' {
			return false
		}
	}
	return true
}

// AuthMethod enumerates the identity carriers a charging request may present.
type AuthMethod int

const (
	AuthMethodToken AuthMethod = iota
	AuthMethodQRCode
	AuthMethodPlugAndCharge
	AuthMethodRemote
	AuthMethodPublicKey
)

// String returns a human-readable representation of the auth method.
func (m AuthMethod) String() string {
	switch m {
	case AuthMethodToken:
		return "token"
	case AuthMethodQRCode:
		return "qr_code"
	case AuthMethodPlugAndCharge:
		return "plug_and_charge"
	case AuthMethodRemote:
		return "remote"
	case AuthMethodPublicKey:
		return "public_key"
	default:
		return "unknown"
	}
}

// LocalAuthentication carries whichever identity the charge point captured.
// At most one field per method is set; Identities lists the methods present
// in cascade order.
type LocalAuthentication struct {
	Token     AuthToken
	QRCodeID  string
	PnCID     string
	RemoteID  string
	PublicKey string
}

// Methods returns the identity methods present on the authentication, in the
// order the resolution cascade tries them.
func (a LocalAuthentication) Methods() []AuthMethod {
	var ms []AuthMethod
	if a.Token != "" {
		ms = append(ms, AuthMethodToken)
	}
	if a.QRCodeID != "" {
		ms = append(ms, AuthMethodQRCode)
	}
	if a.PnCID != "" {
		ms = append(ms, AuthMethodPlugAndCharge)
	}
	if a.RemoteID != "" {
		ms = append(ms, AuthMethodRemote)
	}
	if a.PublicKey != "" {
		ms = append(ms, AuthMethodPublicKey)
	}
	return ms
}

// IsEmpty reports whether no identity is present at all.
func (a LocalAuthentication) IsEmpty() bool { return len(a.Methods()) == 0 }

// AuthDecision is the verdict of an authorization backend.
type AuthDecision int

const (
	DecisionAuthorized AuthDecision = iota
	DecisionNotAuthorized
	DecisionBlocked
	DecisionInvalidToken
	DecisionRateLimited
	DecisionUnknownLocation
	DecisionError
)

// String returns a human-readable representation of the decision.
func (d AuthDecision) String() string {
	switch d {
	case DecisionAuthorized:
		return "authorized"
	case DecisionNotAuthorized:
		return "not_authorized"
	case DecisionBlocked:
		return "blocked"
	case DecisionInvalidToken:
		return "invalid_token"
	case DecisionRateLimited:
		return "rate_limited"
	case DecisionUnknownLocation:
		return "unknown_location"
	case DecisionError:
		return "error"
	default:
		return "unknown"
	}
}

// Decisive reports whether the decision settles the request. Unknown-location
// answers keep the fallback chain going; everything else stops it.
func (d AuthDecision) Decisive() bool {
	return d != DecisionUnknownLocation && d != DecisionError
}

// AuthResult is the outcome of an AuthorizeStart or AuthorizeStop call as
// produced by a single backend.
type AuthResult struct {
	Decision          AuthDecision
	ProviderID        ProviderID
	RoamingProviderID RoamingProviderID
	SessionID         SessionID
	Description       string
	CachedAt          time.Time
	Runtime           time.Duration
}

// Authorized reports whether the backend accepted the token.
func (r AuthResult) Authorized() bool { return r.Decision == DecisionAuthorized }
