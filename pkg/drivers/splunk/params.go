package splunk

import (
	"github.com/pkg/errors"

	"github.com/strix-project/strix/internal/splunkapi"
	"github.com/strix-project/strix/pkg/drivers"
)

// ConnectArgs describes all recognized connection parameters. The
// descriptions are surfaced when no parameters are supplied at all.
var ConnectArgs = map[string]string{
	"host":      "(string) The host name of the Splunk instance",
	"port":      "(integer) The management port number (the default is 8089)",
	"scheme":    "('https' or 'http') The scheme for accessing the service (the default is 'https')",
	"verify":    "(boolean) Enable or disable SSL verification for https connections (the default is false)",
	"owner":     "(string) The owner context of the namespace (optional)",
	"app":       "(string) The app context of the namespace (optional)",
	"sharing":   "('global', 'system', 'app', or 'user') The sharing mode for the namespace (optional)",
	"token":     "(string) A session token, reusable across service instances (optional)",
	"cookie":    "(string) A session cookie, makes login unnecessary (optional)",
	"autologin": "(boolean) Log in again automatically when the session terminates",
	"username":  "(string) The Splunk account username used to authenticate",
	"password":  "(string) The password for the Splunk account",
}

var requiredArgs = []string{"host", "username", "password"}

// connectDefaults is never mutated; Connect merges supplied values
// into a fresh map.
var connectDefaults = map[string]interface{}{
	"port":   8089,
	"scheme": "https",
	"verify": false,
}

func buildConfig(params map[string]interface{}) (splunkapi.Config, error) {
	cfg := splunkapi.Config{
		Host:     toString(params["host"]),
		Scheme:   toString(params["scheme"]),
		Owner:    toString(params["owner"]),
		App:      toString(params["app"]),
		Sharing:  toString(params["sharing"]),
		Token:    toString(params["token"]),
		Cookie:   toString(params["cookie"]),
		Username: toString(params["username"]),
		Password: toString(params["password"]),
	}

	port, err := drivers.CoerceInt(params["port"])
	if err != nil {
		return cfg, errors.Wrap(err, "invalid 'port' parameter")
	}
	cfg.Port = port

	cfg.Verify = drivers.CoerceBool(params["verify"])
	cfg.Autologin = drivers.CoerceBool(params["autologin"])

	return cfg, nil
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
