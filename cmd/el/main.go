package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type loginResp struct {
	Name      string `json:"name"`
	Privilege int    `json:"privilege"`
	Token     string `json:"token"`
}

type sendTimesRow struct {
	Station   string    `json:"station"`
	FirstSend time.Time `json:"firstSend"`
	LastSend  time.Time `json:"lastSend"`
}

type hourlyCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

type hourlyBrightness struct {
	Hour       int     `json:"hour"`
	Brightness float64 `json:"brightness"`
}

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

type profile struct {
	BaseURL   string `yaml:"baseUrl"`
	Token     string `yaml:"token"`
	Name      string `yaml:"name"`
	Privilege int    `yaml:"privilege"`
}

type cliConfig struct {
	CurrentProfile string             `yaml:"currentProfile"`
	Profiles       map[string]profile `yaml:"profiles"`
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

func (c *client) request(method, path string, body any, hdrs map[string]string) (int, []byte, error) {
	var buf *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.baseURL+path, buf)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range hdrs {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

func main() {
	baseURL := getenv("EL_BASE_URL", "http://localhost:8080")
	token := getenv("EL_TOKEN", "")
	profileName := getenv("EL_PROFILE", "")
	ui := newUI()

	root := &cobra.Command{
		Use:   "el",
		Short: "el CLI",
		Long:  "el CLI for station telemetry statistics.",
	}
	root.SetHelpTemplate(helpTemplate(ui))
	root.SilenceUsage = true

	root.PersistentFlags().StringVar(&baseURL, "base-url", baseURL, "Base URL for the backend")
	root.PersistentFlags().StringVar(&token, "token", token, "Access token")
	root.PersistentFlags().StringVar(&profileName, "profile", profileName, "Config profile")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, _, _ := loadConfig()
		active := resolveProfileName(profileName, cfg)
		prof := cfg.Profiles[active]

		flags := cmd.Flags()
		if !flags.Changed("base-url") {
			if v := strings.TrimSpace(os.Getenv("EL_BASE_URL")); v != "" {
				baseURL = v
			} else if prof.BaseURL != "" {
				baseURL = prof.BaseURL
			}
		}
		if !flags.Changed("token") {
			if v := strings.TrimSpace(os.Getenv("EL_TOKEN")); v != "" {
				token = v
			} else if prof.Token != "" {
				token = prof.Token
			}
		}
		if !flags.Changed("profile") && profileName == "" && active != "" {
			profileName = active
		}
		return nil
	}

	root.AddCommand(loginCmd(&baseURL, &profileName, ui))
	root.AddCommand(authCmd(&profileName, ui))
	root.AddCommand(stationsCmd(&baseURL, &token, ui))
	root.AddCommand(sendTimesCmd(&baseURL, &token, ui))
	root.AddCommand(imagesCmd(&baseURL, &token, ui))
	root.AddCommand(brightnessCmd(&baseURL, &token, ui))
	root.AddCommand(exportCmd(&baseURL, &token, ui))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.err("[ERROR]"), err.Error())
		os.Exit(1)
	}
}

func loginCmd(baseURL *string, profileName *string, ui *ui) *cobra.Command {
	var (
		username string
		password string
		noPrompt bool
	)
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Authenticate and store the token",
		Example: "el login --username admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := strings.TrimSpace(username)
			pass := strings.TrimSpace(password)
			if user == "" && !noPrompt {
				reader := bufio.NewReader(os.Stdin)
				user = prompt(reader, "Username", "")
			}
			if pass == "" && !noPrompt {
				p, err := promptSecret("Password")
				if err != nil {
					return err
				}
				pass = p
			}
			if user == "" || pass == "" {
				return errors.New("username and password are required")
			}

			c := newClient(*baseURL, "")
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Authenticating..."
			spin.Start()
			status, resp, err := c.request("POST", "/Authenticate",
				map[string]string{"username": user, "password": pass}, nil)
			spin.Stop()
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("login failed (%d): %s", status, string(resp))
			}
			var out loginResp
			if err := json.Unmarshal(resp, &out); err != nil {
				return err
			}
			if out.Token == "" {
				return errors.New("login returned empty token")
			}

			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			if *profileName == "" {
				active = profileFromUsername(user)
			}
			prof := cfg.Profiles[active]
			prof.BaseURL = strings.TrimRight(*baseURL, "/")
			prof.Token = out.Token
			prof.Name = out.Name
			prof.Privilege = out.Privilege
			if cfg.Profiles == nil {
				cfg.Profiles = map[string]profile{}
			}
			cfg.Profiles[active] = prof
			cfg.CurrentProfile = active
			if err := saveConfig(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Printf("%s Logged in as %s (privilege %d). Token stored for '%s'\n",
				ui.ok("[OK]"), out.Name, out.Privilege, active)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Disable interactive prompts")
	return cmd
}

func authCmd(profileName *string, ui *ui) *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show stored credentials (masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			prof := cfg.Profiles[active]
			fmt.Printf("%s Profile: %s\n", ui.title("el"), active)
			fmt.Printf("%s Base URL:  %s\n", ui.info("•"), emptyOr(prof.BaseURL, "<unset>"))
			fmt.Printf("%s Name:      %s\n", ui.info("•"), emptyOr(prof.Name, "<unset>"))
			fmt.Printf("%s Privilege: %d\n", ui.info("•"), prof.Privilege)
			fmt.Printf("%s Token:     %s\n", ui.info("•"), maskToken(prof.Token))
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			prof := cfg.Profiles[active]
			prof.Token = ""
			cfg.Profiles[active] = prof
			if err := saveConfig(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Printf("%s Token cleared for '%s'\n", ui.ok("[OK]"), active)
			return nil
		},
	}

	auth.AddCommand(show, clear)
	return auth
}

func stationsCmd(baseURL, token *string, ui *ui) *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List station names (privilege 0 only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(*token) == "" {
				return errors.New("token is required (run `el login`)")
			}
			c := newClient(*baseURL, *token)
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Fetching stations..."
			spin.Start()
			status, resp, err := c.request("GET", "/StationNames", nil, nil)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return fmt.Errorf("error (%d): %s", status, string(resp))
			}
			var names []string
			if err := json.Unmarshal(resp, &names); err != nil {
				fmt.Println(string(resp))
				return nil
			}
			for _, n := range names {
				fmt.Printf("%s %s\n", ui.info("•"), n)
			}
			return nil
		},
	}
}

func sendTimesCmd(baseURL, token *string, ui *ui) *cobra.Command {
	var (
		date   string
		offset int
	)
	cmd := &cobra.Command{
		Use:     "sendtimes",
		Short:   "First/last send per station for a day",
		Example: "el sendtimes --date 2024-03-10 --offset 60",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := fetchSendTimes(*baseURL, *token, date, offset)
			if err != nil {
				return err
			}
			for _, r := range rows {
				fmt.Printf("%s %-20s %s %s %s %s\n",
					ui.info("•"), r.Station,
					ui.dim("first"), r.FirstSend.Format("15:04:05"),
					ui.dim("last"), r.LastSend.Format("15:04:05"))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to query (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Timezone offset in minutes")
	return cmd
}

func imagesCmd(baseURL, token *string, ui *ui) *cobra.Command {
	var (
		date   string
		offset int
	)
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Images per hour for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(*token) == "" {
				return errors.New("token is required (run `el login`)")
			}
			hdrs, err := windowHeaders(date, offset, false)
			if err != nil {
				return err
			}
			c := newClient(*baseURL, *token)
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Fetching image counts..."
			spin.Start()
			status, resp, err := c.request("GET", "/ImagesPerHour", nil, hdrs)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return fmt.Errorf("error (%d): %s", status, string(resp))
			}
			var buckets []hourlyCount
			if err := json.Unmarshal(resp, &buckets); err != nil {
				fmt.Println(string(resp))
				return nil
			}
			for _, b := range buckets {
				fmt.Printf("%s %02d:00 %s %d\n", ui.info("•"), b.Hour, bar(b.Count, ui), b.Count)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to query (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Timezone offset in minutes")
	return cmd
}

func brightnessCmd(baseURL, token *string, ui *ui) *cobra.Command {
	var (
		date   string
		offset int
	)
	cmd := &cobra.Command{
		Use:   "brightness",
		Short: "Mean brightness per hour for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(*token) == "" {
				return errors.New("token is required (run `el login`)")
			}
			hdrs, err := windowHeaders(date, offset, false)
			if err != nil {
				return err
			}
			c := newClient(*baseURL, *token)
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Fetching brightness..."
			spin.Start()
			status, resp, err := c.request("GET", "/BrightnessValues", nil, hdrs)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return fmt.Errorf("error (%d): %s", status, string(resp))
			}
			var buckets []hourlyBrightness
			if err := json.Unmarshal(resp, &buckets); err != nil {
				fmt.Println(string(resp))
				return nil
			}
			for _, b := range buckets {
				fmt.Printf("%s %02d:00 %.1f\n", ui.info("•"), b.Hour, b.Brightness)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day to query (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Timezone offset in minutes")
	return cmd
}

func exportCmd(baseURL, token *string, ui *ui) *cobra.Command {
	var (
		from   string
		to     string
		outDir string
		offset int
	)
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export daily send times over a date range",
		Example: "el export --from 2024-03-01 --to 2024-03-10 --out ./export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(*token) == "" {
				return errors.New("token is required (run `el login`)")
			}
			start, err := time.Parse("2006-01-02", from)
			if err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
			end, err := time.Parse("2006-01-02", to)
			if err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
			if end.Before(start) {
				return errors.New("--to must not be before --from")
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			days := int(end.Sub(start).Hours()/24) + 1
			pb := progressbar.NewOptions(days,
				progressbar.OptionSetDescription("Exporting send times"),
				progressbar.OptionSetWidth(18),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			exported := 0
			for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
				dateStr := day.Format("2006-01-02")
				rows, err := fetchSendTimes(*baseURL, *token, dateStr, offset)
				if err != nil {
					if strings.Contains(err.Error(), "no data found") {
						_ = pb.Add(1)
						continue
					}
					return err
				}
				data, err := json.MarshalIndent(rows, "", "  ")
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, dateStr+".json")
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return err
				}
				exported++
				_ = pb.Add(1)
			}
			fmt.Printf("%s Exported %d day(s) to %s\n", ui.ok("[OK]"), exported, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&outDir, "out", "./export", "Output directory")
	cmd.Flags().IntVar(&offset, "offset", 0, "Timezone offset in minutes")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func fetchSendTimes(baseURL, token, date string, offset int) ([]sendTimesRow, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("token is required (run `el login`)")
	}
	hdrs, err := windowHeaders(date, offset, true)
	if err != nil {
		return nil, err
	}
	c := newClient(baseURL, token)
	status, resp, err := c.request("GET", "/SendTimes", nil, hdrs)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("error (%d): %s", status, string(resp))
	}
	var rows []sendTimesRow
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// windowHeaders builds the time-window headers for one statistics request.
// Each endpoint accepts exactly one variant: /SendTimes wants clientdatetime
// (withClient), /ImagesPerHour and /BrightnessValues want timezoneoffset.
// Midday anchors the day so small offsets cannot tip the truncation into a
// neighboring date; for the client variant the offset shifts the client
// timestamp instead of riding as a separate header.
func windowHeaders(date string, offset int, withClient bool) (map[string]string, error) {
	day := time.Now().UTC()
	if strings.TrimSpace(date) != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("invalid --date: %w", err)
		}
		day = parsed
	}
	anchor := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	hdrs := map[string]string{"referencedatetime": anchor.Format(time.RFC3339)}
	if withClient {
		hdrs["clientdatetime"] = anchor.Add(time.Duration(offset) * time.Minute).Format(time.RFC3339)
	} else {
		hdrs["timezoneoffset"] = strconv.Itoa(offset)
	}
	return hdrs, nil
}

func bar(count int64, ui *ui) string {
	n := int(count)
	if n > 40 {
		n = 40
	}
	return ui.dim(strings.Repeat("#", n))
}

func newClient(baseURL, token string) *client {
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func helpTemplate(ui *ui) string {
	title := ui.title("el")
	return fmt.Sprintf(`%s — CLI for station telemetry statistics

Usage:
  {{.UseLine}}

Commands:
{{range .Commands}}{{if (or .IsAvailableCommand .IsAdditionalHelpTopicCommand)}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

Flags:
  {{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

Global Flags:
  {{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

Config:
  %s

Examples:
  el login --username admin
  el stations
  el sendtimes --date 2024-03-10
  el images --date 2024-03-10 --offset 60
  el export --from 2024-03-01 --to 2024-03-10 --out ./export

`, title, configPath())
}

func configPath() string {
	if v := strings.TrimSpace(os.Getenv("EL_CONFIG_DIR")); v != "" {
		return filepath.Join(v, "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".el", "config.yaml")
}

func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)
	b, err := termReadPassword()
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func termReadPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		return []byte(strings.TrimSpace(line)), err
	}
	return term.ReadPassword(fd)
}

func loadConfig() (cliConfig, string, error) {
	path := configPath()
	var cfg cliConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cliConfig{Profiles: map[string]profile{}}, path, nil
		}
		return cfg, path, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, path, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]profile{}
	}
	return cfg, path, nil
}

func saveConfig(cfg cliConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func resolveProfileName(flag string, cfg cliConfig) string {
	if strings.TrimSpace(flag) != "" {
		return strings.TrimSpace(flag)
	}
	if v := strings.TrimSpace(os.Getenv("EL_PROFILE")); v != "" {
		return v
	}
	if cfg.CurrentProfile != "" {
		return cfg.CurrentProfile
	}
	return "default"
}

func profileFromUsername(username string) string {
	username = strings.TrimSpace(strings.ToLower(username))
	username = strings.ReplaceAll(username, "@", "_")
	username = strings.ReplaceAll(username, ".", "_")
	if username == "" {
		return "default"
	}
	return username
}

func prompt(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func maskToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "<unset>"
	}
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "..." + v[len(v)-4:]
}

func emptyOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
