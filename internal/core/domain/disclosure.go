package domain

import "strings"

// DisclosureView is the computed, possibly redacted projection of an Identity
// for one viewer. It is never persisted; every read recomputes it.
type DisclosureView struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	FullName    string `json:"full_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Location    string `json:"location,omitempty"`
	Unlocked    bool   `json:"unlocked"`
}

// Redact decides how much of an identity a viewer may see. It is a pure
// function: no lookups, no I/O, deterministic for a given input. Callers
// resolve the unlock state before calling.
//
// Rules:
//   - the owner always sees their own full identity;
//   - a professional sees a client's full identity only with an unlock grant;
//   - everything else, including a client viewing a professional and any
//     unknown role, gets the restricted view: first name token only, no
//     email, phone, or location.
//
// Missing or ambiguous inputs fall through to the restricted view. The asset
// is personal data, so the function fails closed.
func Redact(identity Identity, viewerRole string, isOwnIdentity bool, unlockGranted bool) DisclosureView {
	if isOwnIdentity {
		return fullView(identity, false)
	}
	if viewerRole == RoleProfessional && unlockGranted {
		return fullView(identity, true)
	}
	return DisclosureView{
		UserID:      identity.UserID,
		DisplayName: firstNameToken(identity.FullName),
	}
}

func fullView(identity Identity, unlocked bool) DisclosureView {
	return DisclosureView{
		UserID:      identity.UserID,
		DisplayName: firstNameToken(identity.FullName),
		FullName:    identity.FullName,
		Email:       identity.Email,
		Phone:       identity.Phone,
		Location:    identity.Location,
		Unlocked:    unlocked,
	}
}

// firstNameToken returns the first whitespace-separated token of a full name.
func firstNameToken(fullName string) string {
	fields := strings.Fields(fullName)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
