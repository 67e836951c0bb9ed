package domain

import "strings"

// DefaultMessagingServer is the JID server suffix used for direct chats.
const DefaultMessagingServer = "s.whatsapp.net"

// NormalizeRecipient converts a recipient address into its canonical JID
// form. An address that already carries a domain qualifier is passed
// through unchanged. Anything else is treated as a bare phone number:
// non-digit characters are stripped, a bare 10-digit national number gets
// the NANP country code prepended, and the messaging server suffix is
// appended. The function is pure and idempotent.
func NormalizeRecipient(recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", ErrInvalidRecipient("recipient cannot be empty")
	}

	if strings.Contains(recipient, "@") {
		return recipient, nil
	}

	var digits strings.Builder
	for _, r := range recipient {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if number == "" {
		return "", ErrInvalidRecipient("no digits in recipient")
	}
	if len(number) == 10 {
		number = "1" + number
	}

	return number + "@" + DefaultMessagingServer, nil
}
