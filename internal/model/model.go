// Package model defines domain entities used by services and repositories.
package model

// User is a registered account. PasswordHash is the digest the client computed
// before transmission (historically MD5 hex); the server stores and compares
// it verbatim and never sees the plaintext.
type User struct {
	Username     string
	PasswordHash string
}

// Progress is the last known reading position for one document of one user.
// Progress and Percentage are opaque to sync logic and are returned exactly
// as received. Timestamp is the unix second the record was last written,
// stamped by the sync service on push.
type Progress struct {
	Document   string  `json:"document"`
	Progress   string  `json:"progress,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	Device     string  `json:"device,omitempty"`
	DeviceID   string  `json:"device_id,omitempty"`
	Timestamp  int64   `json:"timestamp,omitempty"`
}

// ProgressUpdate is a client push intent, before the server assigns the
// write timestamp.
type ProgressUpdate struct {
	Document   string
	Progress   string
	Percentage float64
	Device     string
	DeviceID   string
}
