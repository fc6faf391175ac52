package providers

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultAPIBase is the public WAQI endpoint.
const DefaultAPIBase = "https://api.waqi.info"

// FeedURL builds {base}/feed/{city}/?token={token}. The city is kept as a raw
// path so station ids ("@1234") and geo queries ("geo:51.4;-3.1") survive.
func FeedURL(base, city, token string) (string, error) {
	if strings.TrimSpace(city) == "" {
		return "", fmt.Errorf("city is required")
	}

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid api base %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid api base %q: scheme and host are required", base)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/feed/" + strings.Trim(city, "/") + "/"
	u.RawPath = ""
	u.RawQuery = url.Values{"token": {token}}.Encode()

	return u.String(), nil
}
