package splunkapi

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Config is the set of session parameters of the management API.
type Config struct {
	Host      string
	Port      int
	Scheme    string
	Verify    bool
	Owner     string
	App       string
	Sharing   string
	Token     string
	Cookie    string
	Autologin bool
	Username  string
	Password  string
}

// Service is the capability contract consumed by the splunk driver.
// *Client is the real binding, tests substitute their own.
type Service interface {
	Oneshot(query string) ([]map[string]interface{}, error)
	SavedSearches() ([]SavedSearch, error)
	FiredAlerts() ([]FiredAlert, error)
}

// SavedSearch is a persisted query definition on the service.
type SavedSearch struct {
	Name  string
	Query string
}

// FiredAlert is a triggered alert with its occurrence count.
type FiredAlert struct {
	Name  string
	Count int
}

// Client talks to the Splunk management API over REST. It holds one
// session key obtained at construction and is not safe for concurrent
// use, matching the one-session-per-driver ownership model.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	sessionKey string
}

// New authenticates and returns a ready-to-use client. A token or
// cookie in cfg skips the login call.
func New(cfg Config) (*Client, error) {
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Port == 0 {
		cfg.Port = 8089
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.Verify},
	}

	client := &Client{
		cfg:     cfg,
		baseURL: fmt.Sprintf("%s://%s:%d", cfg.Scheme, cfg.Host, cfg.Port),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   60 * time.Second,
		},
	}

	switch {
	case cfg.Cookie != "":
		// Session cookie is sent as is, no login required.
	case cfg.Token != "":
		client.sessionKey = cfg.Token
	default:
		if err := client.login(); err != nil {
			return nil, err
		}
	}

	return client, nil
}

func (x *Client) login() error {
	form := url.Values{}
	form.Set("username", x.cfg.Username)
	form.Set("password", x.cfg.Password)
	form.Set("output_mode", "json")

	resp, err := x.httpClient.PostForm(x.baseURL+"/services/auth/login", form)
	if err != nil {
		return errors.Wrap(err, "fail to request login")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("login failed: %s", readAPIError(resp))
	}

	var body struct {
		SessionKey string `json:"sessionKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return errors.Wrap(err, "fail to parse login response")
	}
	if body.SessionKey == "" {
		return errors.New("login response has no session key")
	}

	x.sessionKey = body.SessionKey
	return nil
}

// namespacePath maps owner/app/sharing to the endpoint prefix the way
// the vendor SDK resolves namespaces.
func (x *Client) namespacePath() string {
	owner, app := x.cfg.Owner, x.cfg.App

	switch x.cfg.Sharing {
	case "system":
		owner, app = "nobody", "system"
	case "global", "app":
		owner = "nobody"
	}

	if owner == "" && app == "" {
		return "/services"
	}
	if owner == "" {
		owner = "-"
	}
	if app == "" {
		app = "-"
	}
	return fmt.Sprintf("/servicesNS/%s/%s", url.PathEscape(owner), url.PathEscape(app))
}

func (x *Client) do(method, path string, form url.Values) (*http.Response, error) {
	send := func() (*http.Response, error) {
		var req *http.Request
		var err error
		if method == http.MethodGet {
			req, err = http.NewRequest(method, x.baseURL+path+"?"+form.Encode(), nil)
		} else {
			req, err = http.NewRequest(method, x.baseURL+path, strings.NewReader(form.Encode()))
			if req != nil {
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			}
		}
		if err != nil {
			return nil, errors.Wrap(err, "fail to build request")
		}

		if x.cfg.Cookie != "" {
			req.Header.Set("Cookie", x.cfg.Cookie)
		} else {
			req.Header.Set("Authorization", "Splunk "+x.sessionKey)
		}

		return x.httpClient.Do(req)
	}

	resp, err := send()
	if err != nil {
		return nil, errors.Wrap(err, "fail to request Splunk API")
	}

	// One re-login retry when the session expired.
	if resp.StatusCode == http.StatusUnauthorized && x.cfg.Autologin && x.cfg.Password != "" {
		resp.Body.Close()
		if err := x.login(); err != nil {
			return nil, err
		}
		if resp, err = send(); err != nil {
			return nil, errors.Wrap(err, "fail to request Splunk API")
		}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		defer resp.Body.Close()
		return nil, errors.Errorf("Splunk API error (%s): %s", path, readAPIError(resp))
	}

	return resp, nil
}

// Oneshot runs query in blocking oneshot mode and returns all result
// records. The query text is passed through unmodified.
func (x *Client) Oneshot(query string) ([]map[string]interface{}, error) {
	form := url.Values{}
	form.Set("search", query)
	form.Set("exec_mode", "oneshot")
	form.Set("output_mode", "json")
	form.Set("count", "0")

	resp, err := x.do(http.MethodPost, x.namespacePath()+"/search/jobs", form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "fail to parse oneshot response")
	}

	return body.Results, nil
}

type entryList struct {
	Entry []struct {
		Name    string                 `json:"name"`
		Content map[string]interface{} `json:"content"`
	} `json:"entry"`
}

func (x *Client) listEntries(path string) (*entryList, error) {
	form := url.Values{}
	form.Set("output_mode", "json")
	form.Set("count", "0")

	resp, err := x.do(http.MethodGet, path, form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body entryList
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrapf(err, "fail to parse entries of %s", path)
	}
	return &body, nil
}

// SavedSearches enumerates persisted searches in service order.
func (x *Client) SavedSearches() ([]SavedSearch, error) {
	body, err := x.listEntries(x.namespacePath() + "/saved/searches")
	if err != nil {
		return nil, err
	}

	var searches []SavedSearch
	for _, entry := range body.Entry {
		search := SavedSearch{Name: entry.Name}
		if v, ok := entry.Content["search"].(string); ok {
			search.Query = v
		}
		searches = append(searches, search)
	}
	return searches, nil
}

// FiredAlerts enumerates triggered alerts in service order.
func (x *Client) FiredAlerts() ([]FiredAlert, error) {
	body, err := x.listEntries(x.namespacePath() + "/alerts/fired_alerts")
	if err != nil {
		return nil, err
	}

	var alerts []FiredAlert
	for _, entry := range body.Entry {
		alert := FiredAlert{Name: entry.Name}
		alert.Count = toCount(entry.Content["triggered_alert_count"])
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

// toCount accepts the number or numeric string the API returns
// depending on version.
func toCount(v interface{}) int {
	switch value := v.(type) {
	case float64:
		return int(value)
	case string:
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return 0
}

func readAPIError(resp *http.Response) string {
	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.Status
	}

	var body struct {
		Messages []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && len(body.Messages) > 0 {
		return fmt.Sprintf("%s (%s)", body.Messages[0].Text, resp.Status)
	}
	return resp.Status
}
