package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gcint/internal/browse"
	"github.com/san-kum/gcint/internal/config"
	"github.com/san-kum/gcint/internal/dict"
	"github.com/san-kum/gcint/internal/discover"
	"github.com/san-kum/gcint/internal/logging"
	"github.com/san-kum/gcint/internal/republish"
	"github.com/san-kum/gcint/internal/rootfile"
	"github.com/san-kum/gcint/internal/runopt"
	"github.com/san-kum/gcint/internal/session"
	"github.com/san-kum/gcint/internal/shell"
)

// main registers the gcint commands and executes the root command, which
// bootstraps a session from its arguments and opens the prompt.
// It exits with status 1 if the command returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "gcint [args...]",
		Short: "interactive GENIE session over ROOT files",
		Long: "gcint attaches the .root files among its arguments as _file0, _file1, ...,\n" +
			"binds the genie class scope and run options, and opens a prompt.\n" +
			"Other arguments are ignored. Settings come from GENIE and GCINT_* variables.",
		Args: cobra.ArbitraryArgs,
		// ROOT-style options such as -b or -l pass through untouched.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE:               runInteractive,
	}

	classesCmd := &cobra.Command{
		Use:   "classes [files...]",
		Short: "warm and export the toolkit classes, then list them",
		RunE:  listClasses,
	}

	browseCmd := &cobra.Command{
		Use:   "browse [files...]",
		Short: "browse session bindings full-screen",
		RunE:  browseSession,
	}

	tunesCmd := &cobra.Command{
		Use:   "tunes",
		Short: "list known tunes",
		Args:  cobra.NoArgs,
		RunE:  listTunes,
	}

	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "list configuration profiles",
		Args:  cobra.NoArgs,
		RunE:  listProfiles,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "print the resolved configuration, or save it to path",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showConfig,
	}

	rootCmd.AddCommand(classesCmd, browseCmd, tunesCmd, profilesCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every session-building command starts from.
type env struct {
	cfg    *config.Config
	logger *log.Logger
	dict   *dict.Registry
}

func setup() (*env, error) {
	cfg, err := config.Resolve()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	reg := dict.NewRegistry()
	for _, path := range cfg.Dictionaries {
		n, err := reg.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("load dictionary %s: %w", path, err)
		}
		logger.Debug("dictionary loaded", "path", path, "classes", n)
	}
	return &env{cfg: cfg, logger: logger, dict: reg}, nil
}

func (e *env) bootstrap(ctx context.Context, strategy republish.Strategy, args []string) (*session.Session, error) {
	ro, err := runopt.New(e.cfg.Tune, false)
	if err != nil {
		return nil, err
	}
	b := &session.Bootstrapper{
		Opener:     rootfile.Opener{Dict: e.dict},
		RunOpt:     ro,
		Root:       e.dict.Scope(""),
		Scope:      e.dict.Scope(e.cfg.Scope),
		SourceRoot: e.cfg.SourceRoot(),
		Strategy:   strategy,
		DataExt:    e.cfg.DataExt,
		Discover: discover.Options{
			Suffix:  e.cfg.SourceSuffix,
			Workers: e.cfg.Workers,
		},
		Logger: e.logger,
	}
	return b.Run(ctx, args)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	strategy, err := republish.ParseStrategy(e.cfg.Strategy)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sess, err := e.bootstrap(ctx, strategy, args)
	if err != nil {
		return err
	}
	defer sess.Close()

	sh := shell.New(sess, e.dict, os.Stdout)
	sh.History = e.cfg.HistoryPath()
	sh.Logger = e.logger
	fmt.Print(sh.Banner())
	return sh.Run(ctx)
}

func listClasses(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := e.bootstrap(ctx, republish.WarmAndExport, args)
	if err != nil {
		return err
	}
	defer sess.Close()

	exported := sess.Exported
	if len(exported) == 0 {
		fmt.Printf("no classes found under %s\n", e.cfg.SourceRoot())
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCLASS\tVERSION\tMEMBERS")
	for _, name := range exported.Names() {
		switch c := exported[name].(type) {
		case *dict.Class:
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", name, c.Name, c.Version, len(c.Members))
		default:
			fmt.Fprintf(w, "%s\t%v\t-\t-\n", name, c)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d classes exported\n", len(exported))
	return nil
}

func browseSession(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	strategy, err := republish.ParseStrategy(e.cfg.Strategy)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	sess, err := e.bootstrap(ctx, strategy, args)
	if err != nil {
		return err
	}
	defer sess.Close()

	return browse.Run(sess.Bindings)
}

func listTunes(cmd *cobra.Command, args []string) error {
	active := runopt.DefaultTuneName
	if cfg, err := config.Resolve(); err == nil {
		active = cfg.Tune
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tTUNE\tMODEL\tDESCRIPTION")
	for _, entry := range runopt.List() {
		mark := ""
		if entry.Name == active {
			mark = "*"
		}
		model := "-"
		if t, err := runopt.ParseTune(entry.Name); err == nil {
			model = t.ModelID()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, entry.Name, model, entry.Description)
	}
	return w.Flush()
}

func listProfiles(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PROFILE\tSTRATEGY\tWORKERS\tLOG")
	for _, name := range config.ListProfiles() {
		p := config.GetProfile(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", name, p.Strategy, p.Workers, p.LogLevel)
	}
	return w.Flush()
}

func showConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Printf("config saved to %s\n", args[0])
		return nil
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
