package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haukened/rr-callblock/internal/callblock/common/log"
	"github.com/haukened/rr-callblock/internal/callblock/domain"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rulefiles"
	"github.com/haukened/rr-callblock/internal/callblock/repos/rules"
)

// runFunc is a command body that receives a freshly built Application.
type runFunc func(app *Application, cmd *cobra.Command, args []string) error

// withApp builds the Application for a single command and always closes it,
// so the Bolt file lock is released even when the command fails.
func withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := loadApplication()
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				log.Warn(map[string]any{"error": err}, "Failed to close rule store")
			}
		}()
		if err := applyOverrides(app, cmd); err != nil {
			return err
		}
		return fn(app, cmd, args)
	}
}

// settingKeys are the keys --set accepts.
var settingKeys = map[string]bool{
	domain.SettingEnabled:           true,
	domain.SettingNotifyEnabled:     true,
	domain.SettingPrivateNumberMode: true,
	domain.SettingUnknownNumberMode: true,
	domain.SettingRegexEnabled:      true,
}

// applyOverrides applies the root --set and --contact flags for this invocation.
func applyOverrides(app *Application, cmd *cobra.Command) error {
	sets, err := cmd.Flags().GetStringArray("set")
	if err != nil {
		return err
	}
	for _, kv := range sets {
		if err := applySetting(app, kv); err != nil {
			return err
		}
	}
	extra, err := cmd.Flags().GetStringArray("contact")
	if err != nil {
		return err
	}
	for _, c := range extra {
		number, name, _ := strings.Cut(c, ",")
		if !app.contacts.Add(number, name) {
			return fmt.Errorf("invalid contact %q", c)
		}
	}
	return nil
}

// applySetting parses key=value. Boolean values are stored as 0/1, anything
// else must be an integer mask.
func applySetting(app *Application, kv string) error {
	key, value, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || !settingKeys[key] {
		return fmt.Errorf("invalid setting %q (want key=value with a known key)", kv)
	}
	value = strings.TrimSpace(value)
	if b, err := strconv.ParseBool(value); err == nil {
		return app.settings.SetBool(key, b)
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || domain.ModeMask(n)&^domain.MaskAll != 0 {
		return fmt.Errorf("invalid value for %s: %q", key, value)
	}
	return app.settings.SetInt(key, n)
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Decide whether calls and messages from a number are blocked",
		Version:      version,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringArray("set", nil, "override a setting for this run, e.g. phone_blacklist_regex_enabled=1")
	root.PersistentFlags().StringArray("contact", nil, "add a contact for this run as <number>[,name]")
	root.AddCommand(
		newCheckCmd(),
		newAddCmd(),
		newRemoveCmd(),
		newValidateCmd(),
		newImportCmd(),
		newListCmd(),
		newStatsCmd(),
		newSettingsCmd(),
	)
	return root
}

func newCheckCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "check [number]",
		Short: "Classify a caller number; omit it to check a withheld number",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			m, err := domain.ParseCheckMode(mode)
			if err != nil {
				return err
			}
			var number string
			if len(args) == 1 {
				number = args[0]
			}
			res := app.service.IsListed(number, m)
			if res.IsBlocked() && app.service.NotifyEnabled() {
				log.Info(map[string]any{
					"number": log.MaskNumber(number),
					"mode":   m.String(),
					"reason": res.String(),
				}, "Blocked "+m.String())
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		}),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "calls", "check mode: calls or messages")
	return cmd
}

// addMasks maps the add command's --mode to the requested flags and the
// subset of flags the update may write.
func addMasks(mode string) (flags, valid domain.ModeMask, err error) {
	switch strings.ToLower(mode) {
	case "calls":
		return domain.MaskCalls, domain.MaskCalls, nil
	case "messages":
		return domain.MaskMessages, domain.MaskMessages, nil
	case "both":
		return domain.MaskAll, domain.MaskAll, nil
	case "allow":
		return domain.MaskNone, domain.MaskAll, nil
	default:
		return 0, 0, fmt.Errorf("invalid mode %q (want calls, messages, both or allow)", mode)
	}
}

func newAddCmd() *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "add <number-or-pattern>",
		Short: "Block or allow a number; '*' matches any digits and '.' exactly one",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			flags, valid, err := addMasks(mode)
			if err != nil {
				return err
			}
			number, ok := app.service.IsValidInput(args[0])
			if !ok || number == "" {
				return fmt.Errorf("invalid number %q", args[0])
			}
			if !app.service.AddOrUpdate(args[0], flags, valid) {
				return errors.New("rule not updated (is the blacklist enabled?)")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", number, strings.ToLower(mode))
			return nil
		}),
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", "both", "calls, messages, both or allow")
	return cmd
}

func newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <number-or-pattern>",
		Short: "Delete the rule for a number",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			ok, err := app.service.Remove(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no rule for %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed")
			return nil
		}),
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <input>",
		Short: "Show the normalized form of an input and whether it can be stored",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			number, ok := app.service.IsValidInput(args[0])
			status := "valid"
			if !ok {
				status = "invalid"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", number, status)
			if !ok {
				return fmt.Errorf("invalid input %q", args[0])
			}
			return nil
		}),
	}
}

func newImportCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import <file-or-directory>",
		Short: "Import rules from text, YAML, JSON or TOML files",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			entries, err := loadRuleFiles(app, args[0])
			if err != nil {
				return err
			}
			if replace {
				if err := app.repo.ReplaceAll(entries); err != nil {
					return fmt.Errorf("replace rules: %w", err)
				}
			} else {
				for _, e := range entries {
					if _, err := app.repo.Update(rules.Update{
						Number:  e.Number,
						IsRegex: e.IsRegex,
						Fields:  domain.FieldsFromMask(e.Mask(), domain.MaskAll),
						Source:  e.Source,
					}); err != nil {
						return fmt.Errorf("import %s: %w", log.MaskNumber(e.Number), err)
					}
				}
			}
			log.Info(map[string]any{"path": args[0], "rules": len(entries), "replace": replace}, "Rules imported")
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rules\n", len(entries))
			return nil
		}),
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace every stored rule instead of merging")
	return cmd
}

func loadRuleFiles(app *Application, path string) ([]domain.RuleEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	now := app.clock.Now()
	if info.IsDir() {
		return rulefiles.LoadDirectory(path, app.service.IsValidInput, app.logger, now)
	}
	return rulefiles.LoadFile(path, app.service.IsValidInput, app.logger, now)
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every stored rule",
		Args:  cobra.NoArgs,
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			return app.repo.List(func(e domain.RuleEntry) bool {
				kind := "literal"
				if e.IsRegex {
					kind = "pattern"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Number, kind, e.Mask(), e.Source)
				return true
			})
		}),
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print rule store, cache and policy statistics",
		Args:  cobra.NoArgs,
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			st := app.repo.RepoStats()
			p := app.service.Policy()
			fmt.Fprintf(w, "version\t%d\n", st.Store.Version)
			fmt.Fprintf(w, "literals\t%d\n", st.Store.LiteralKeys)
			fmt.Fprintf(w, "patterns\t%d\n", st.Store.PatternKeys)
			fmt.Fprintf(w, "bloom\t%t\n", st.BloomLoaded)
			fmt.Fprintf(w, "cache\t%d/%d\n", st.Cache.Size, st.Cache.Capacity)
			fmt.Fprintf(w, "contacts\t%d\n", app.contacts.Len())
			fmt.Fprintf(w, "region\t%s\n", app.normalizer.Region())
			fmt.Fprintf(w, "enabled\t%t\n", p.Enabled)
			fmt.Fprintf(w, "notify\t%t\n", p.Notify)
			fmt.Fprintf(w, "private\t%s\n", p.PrivateMask())
			fmt.Fprintf(w, "unknown\t%s\n", p.UnknownMask())
			fmt.Fprintf(w, "regex\t%t\n", p.RegexEnabled)
			return nil
		}),
	}
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective blacklist settings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(app *Application, cmd *cobra.Command, args []string) error {
			all := app.settings.All()
			keys := make([]string, 0, len(all))
			for k := range all {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", k, all[k])
			}
			return nil
		}),
	}
}
