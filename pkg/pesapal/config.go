package pesapal

import (
	"strings"
	"time"
)

const (
	SandboxBaseURL = "https://cybqa.pesapal.com/pesapalv3"
	LiveBaseURL    = "https://pay.pesapal.com/v3"
)

type Config struct {
	ConsumerKey    string        `mapstructure:"consumer_key"`
	ConsumerSecret string        `mapstructure:"consumer_secret"`
	Sandbox        bool          `mapstructure:"sandbox"`
	BaseURL        string        `mapstructure:"base_url"`
	CallbackURL    string        `mapstructure:"callback_url"`
	IPNID          string        `mapstructure:"ipn_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
	CountryCode    string        `mapstructure:"country_code"`
	City           string        `mapstructure:"city"`
}

// Endpoint is the API root every request path is appended to. An explicit BaseURL wins over
// the sandbox/live selection.
func (c Config) Endpoint() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}

	if c.Sandbox {
		return SandboxBaseURL
	}

	return LiveBaseURL
}
