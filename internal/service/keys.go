package service

// Usernames and document ids become storage keys verbatim, so they must be
// safe as a single path segment.

const maxKeyLen = 255

func validKey(s string) bool {
	if s == "" || len(s) > maxKeyLen {
		return false
	}
	if s == "." || s == ".." {
		return false
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '/', '\\', 0:
			return false
		}
	}
	return true
}

// validDocumentID additionally rejects "auth", which the filesystem layout
// reserves for the user's credential record.
func validDocumentID(s string) bool {
	return validKey(s) && s != "auth"
}
