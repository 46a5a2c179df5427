package iso8601

import "time"

// Format outputs an ISO-8601 datetime string from the given time, in the
// form the instance-metadata service and the AWS SDKs exchange.
func Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Parse reads an ISO-8601 datetime string, such as the Expiration field of
// a metadata credential document.
func Parse(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
