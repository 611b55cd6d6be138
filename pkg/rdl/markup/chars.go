package markup

// Character classes. Only ASCII name characters are recognised; the wider XML
// name ranges never occur in report definitions.

func isWhiteSpace(c byte) bool {
	return c == '\t' || c == '\n' || c == '\r' || c == ' '
}

func isNameStart(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		c == ':' ||
		c == '_'
}

func isNameChar(c byte) bool {
	return isNameStart(c) ||
		(c >= '0' && c <= '9') ||
		c == '-' ||
		c == '.'
}

func isQuote(c byte) bool {
	return c == '"' || c == '\''
}

// isIllegalStringChar reports characters that may not appear in an attribute value.
// Entity references are not decoded, so & is rejected along with <.
func isIllegalStringChar(c byte) bool {
	return c == '&' || c == '<'
}
