package model

// Session represents one logged-in client. Sessions are keyed by an opaque
// bearer token in the session table; the token itself is never stored inside
// the value. There is no expiry: a session lives until it is revoked.
//
// Fields:
//  UserID    – stable identifier derived from the user's email.
//  Email     – the email the session was created with (may be empty for
//              sessions written by older builds that stored a bare user id).
//  CreatedAt – ISO-8601 creation timestamp.
type Session struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}
