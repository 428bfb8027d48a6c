package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memojo/memojo/internal/config"
	"github.com/memojo/memojo/internal/content"
	"github.com/memojo/memojo/internal/feed"
	"github.com/memojo/memojo/internal/intent"
	"github.com/memojo/memojo/internal/markdown"
	"github.com/memojo/memojo/internal/preferences"
	"github.com/memojo/memojo/internal/profile"
	"github.com/memojo/memojo/internal/voice"
)

// --- route ---

var routeCmd = &cobra.Command{
	Use:   "route <text>",
	Short: "Show how a command would be understood, without running it",
	Long: `Classify a typed command the same way a spoken one is classified.

Examples:
  memojo route "recipe for shakshuka"
  memojo route "take me to my music"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/route", map[string]string{
			"transcript": strings.Join(args, " "),
		})
		if err != nil {
			return err
		}

		var d intent.Decision
		if err := decodeJSON(resp, &d); err != nil {
			return err
		}
		fmt.Fprintln(stdout, describeDecision(d))
		return nil
	},
}

func describeDecision(d intent.Decision) string {
	switch d.Kind {
	case intent.KindGenerate:
		topic := d.Generate.Topic
		if topic == "" {
			topic = "(none)"
		}
		return fmt.Sprintf("%s %s, topic %s, then open %s",
			colorize(colorBold, "generate"), d.Generate.Kind, topic, d.Generate.TargetSection)
	case intent.KindNavigate:
		return fmt.Sprintf("%s to %s: %s",
			colorize(colorBold, "navigate"), d.Navigate.TargetSection, d.Navigate.ConfirmationMessage)
	case intent.KindConverse:
		return fmt.Sprintf("%s: %s", colorize(colorBold, "reply"), d.Converse.ReplyText)
	}
	return string(d.Kind)
}

// --- voice ---

var voiceCmd = &cobra.Command{
	Use:   "voice <file>",
	Short: "Send a recorded audio file as a voice command",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		audio, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		if len(audio) == 0 {
			return fmt.Errorf("%s is empty", args[0])
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Transcribing %s...", args[0])
		resp, err := client.post(cmd.Context(), "/voice", audio)
		if err != nil {
			return err
		}

		var out voice.Outcome
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}
		printOutcome(out)
		return nil
	},
}

func printOutcome(out voice.Outcome) {
	printStatus("Heard", "%q", out.Transcript)
	if out.Failed {
		printError("%s", out.Message)
		return
	}
	if out.Title != "" {
		printSuccess("%s", out.Title)
	}
	fmt.Fprintln(stdout, out.Message)
	if out.Section != "" {
		printStatus("Open", "%s", out.Section)
	}
	if out.Result != nil {
		printJSON(out.Result)
	}
}

// --- feed ---

var feedCmd = &cobra.Command{
	Use:   "feed <section>",
	Short: "Show a section of today's feed",
	Long: `Show a section of today's feed, generating it when the cached copy is
older than the feed TTL.

Sections: ` + sectionNames(),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")
		mood, _ := cmd.Flags().GetString("mood")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		section := url.PathEscape(strings.ToLower(args[0]))
		params := url.Values{}
		if mood != "" {
			params.Set("mood", mood)
		}

		var resp *http.Response
		if refresh {
			printStep("Regenerating %s...", args[0])
			resp, err = client.post(cmd.Context(), withQuery("/feed/"+section+"/refresh", params), nil)
		} else {
			resp, err = client.get(cmd.Context(), withQuery("/feed/"+section, params))
		}
		if err != nil {
			return err
		}

		var page struct {
			Section feed.Section       `json:"section"`
			Items   []feed.ContentItem `json:"items"`
		}
		if err := decodeJSON(resp, &page); err != nil {
			return err
		}
		renderFeed(stdout, page.Items)
		return nil
	},
}

func sectionNames() string {
	names := make([]string, len(feed.Sections))
	for i, s := range feed.Sections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

func renderFeed(w io.Writer, items []feed.ContentItem) {
	for i, it := range items {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s\n", colorize(colorBold, it.Title), colorize(colorCyan, it.ID))
		fmt.Fprintln(w, markdown.PlainText(it.BodyHTML))
		if len(it.Tags) > 0 {
			fmt.Fprintf(w, "Tags: %s\n", strings.Join(it.Tags, ", "))
		}
		if it.ImageURL != "" {
			fmt.Fprintf(w, "Image: %s\n", it.ImageURL)
		}
	}
}

func init() {
	feedCmd.Flags().Bool("refresh", false, "discard the cached section and generate it again")
	feedCmd.Flags().String("mood", "", "current mood, overrides the profile's desired moods")
}

// --- generate ---

var generateCmd = &cobra.Command{
	Use:   "generate <kind> [topic]",
	Short: "Generate a recipe, playlist, travel plan, journal prompt or memory reflection",
	Long: `Generate structured content tailored to your profile.

Examples:
  memojo generate recipe pad thai
  memojo generate playlist rainy sunday
  memojo generate journal`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := content.ParseKind(args[0])
		if err != nil {
			return err
		}
		topic := strings.Join(args[1:], " ")
		if topic == "" && kind != content.KindJournal {
			return fmt.Errorf("a topic is required for %s", kind)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Generating %s...", kind)
		resp, err := client.post(cmd.Context(), "/generate/"+string(kind), map[string]string{"topic": topic})
		if err != nil {
			return err
		}

		var out struct {
			Section string          `json:"section"`
			Result  json.RawMessage `json:"result"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}
		printSuccess("%s ready for %s", kind.Title(), out.Section)
		return printJSON(out.Result)
	},
}

var captionCmd = &cobra.Command{
	Use:   "caption",
	Short: "Write a photo caption that reflects your interests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/caption", nil)
		if err != nil {
			return err
		}
		var out struct {
			Caption string `json:"caption"`
		}
		if err := decodeJSON(resp, &out); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%q\n", out.Caption)
		return nil
	},
}

// --- profile ---

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or replace your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current profile as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profile")
		if err != nil {
			return err
		}

		var p profile.UserProfile
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}
		return printJSON(p)
	},
}

var profileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the profile with the contents of a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := readProfile(args[0])
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/profile", p)
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}

		printSuccess("Profile saved for %s", p.Name)
		return nil
	},
}

// readProfile loads and validates an onboarding JSON file.
func readProfile(path string) (profile.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return profile.UserProfile{}, fmt.Errorf("reading profile: %w", err)
	}
	var p profile.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return profile.UserProfile{}, fmt.Errorf("invalid profile JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return profile.UserProfile{}, err
	}
	return p, nil
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileImportCmd)
}

// --- keys ---

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage third-party service API keys",
}

var keysSetCmd = &cobra.Command{
	Use:   "set <service> <key>",
	Short: "Store an API key for a service",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/keys/"+url.PathEscape(args[0]), map[string]string{"key": args[1]})
		if err != nil {
			return err
		}
		if err := decodeJSON(resp, nil); err != nil {
			return err
		}

		printSuccess("Stored key for %s", args[0])
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored API keys (masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/keys")
		if err != nil {
			return err
		}

		var keys []profile.MaskedKey
		if err := decodeJSON(resp, &keys); err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(stdout, "No keys stored.")
			return nil
		}
		for _, k := range keys {
			fmt.Fprintf(stdout, "  %s = %s\n", colorize(colorBold, k.Service), k.Key)
		}
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd)
	keysCmd.AddCommand(keysListCmd)
}

// --- loves ---

var lovesCmd = &cobra.Command{
	Use:   "loves",
	Short: "Show what you have loved",
}

var lovesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show love counts per content type and recent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/loves/stats")
		if err != nil {
			return err
		}

		var st preferences.Stats
		if err := decodeJSON(resp, &st); err != nil {
			return err
		}
		printStats(stdout, st)
		return nil
	},
}

func printStats(w io.Writer, st preferences.Stats) {
	fmt.Fprintf(w, "%s %d\n", colorize(colorBold, "Loved:"), st.TotalLoved)
	for _, t := range sortedTypes(st.TypePreferences) {
		fmt.Fprintf(w, "  %-12s %d\n", t, st.TypePreferences[t])
	}
	if len(st.RecentActivity) == 0 {
		return
	}
	fmt.Fprintln(w, colorize(colorBold, "Recent:"))
	for _, ev := range st.RecentActivity {
		fmt.Fprintf(w, "  %s  %-5s %-10s %s\n",
			ev.Timestamp.Local().Format("Jan 02 15:04"), ev.Action, ev.ItemType, truncate(ev.Content, 60))
	}
}

// sortedTypes orders content types by count, then name.
func sortedTypes(counts map[string]int) []string {
	types := slices.Collect(maps.Keys(counts))
	slices.SortFunc(types, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return types
}

func init() {
	lovesCmd.AddCommand(lovesStatsCmd)
}

// --- journal ---

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Read or write journal entries",
}

type journalPage struct {
	Entries []struct {
		ID        string   `json:"id"`
		Title     string   `json:"title"`
		BodyHTML  string   `json:"body_html"`
		Tags      []string `json:"tags"`
		CreatedAt string   `json:"created_at"`
	} `json:"entries"`
	Total int `json:"total"`
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/journal?limit="+strconv.Itoa(limit))
		if err != nil {
			return err
		}

		var page journalPage
		if err := decodeJSON(resp, &page); err != nil {
			return err
		}
		if len(page.Entries) == 0 {
			fmt.Fprintln(stdout, "No journal entries.")
			return nil
		}

		for _, e := range page.Entries {
			id := e.ID
			if len(id) > 8 {
				id = id[:8]
			}
			title := e.Title
			if title == "" {
				title = truncate(markdown.PlainText(e.BodyHTML), 60)
			}
			fmt.Fprintf(stdout, "%s  %s  %s\n", colorize(colorCyan, id), e.CreatedAt, title)
		}
		if page.Total > len(page.Entries) {
			fmt.Fprintf(stdout, "(%d of %d)\n", len(page.Entries), page.Total)
		}
		return nil
	},
}

var journalAddCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a journal entry (markdown)",
	Long: `Add a journal entry. The body is markdown and comes from the arguments,
from --file, or from stdin when neither is given.

Examples:
  memojo journal add --title "Sunday" "Walked to the **lake** with Sam."
  memojo journal add --file ./today.md --tags gratitude,family`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		file, _ := cmd.Flags().GetString("file")
		tagsStr, _ := cmd.Flags().GetString("tags")

		body, err := journalBody(args, file, cmd.InOrStdin())
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/journal", map[string]any{
			"title":  title,
			"body":   body,
			"tags":   splitTags(tagsStr),
			"source": "cli",
		})
		if err != nil {
			return err
		}

		var entry struct {
			ID string `json:"id"`
		}
		if err := decodeJSON(resp, &entry); err != nil {
			return err
		}

		printSuccess("Saved entry %s", entry.ID)
		return nil
	},
}

func journalBody(args []string, file string, stdin io.Reader) (string, error) {
	var body string
	switch {
	case len(args) > 0:
		body = strings.Join(args, " ")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		body = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		body = string(data)
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("entry text is required")
	}
	return body, nil
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func init() {
	journalListCmd.Flags().Int("limit", 20, "maximum number of entries to list")
	journalAddCmd.Flags().String("title", "", "entry title")
	journalAddCmd.Flags().String("file", "", "read the entry from a markdown file")
	journalAddCmd.Flags().String("tags", "", "comma-separated tags")
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalAddCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			src := colorize(colorCyan, "$"+k.EnvVar)
			if k.FromEnv {
				src = colorize(colorYellow, "from $"+k.EnvVar)
			}
			fmt.Fprintf(stdout, "  %s = %s  %s\n", colorize(colorBold, k.Key), k.Value, src)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Valid keys: " + strings.Join(config.ValidKeys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a stored value so the default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

var configSetAPIKeyCmd = &cobra.Command{
	Use:   "set-api-key <key>",
	Short: "Store the OpenAI API key in the platform secret store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetAPIKey(config.NewKeychain(), args[0]); err != nil {
			return err
		}
		printSuccess("API key stored")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configSetAPIKeyCmd)
}
