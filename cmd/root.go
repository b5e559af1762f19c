package cmd

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/josephlewis42/jsh/core"
	"github.com/josephlewis42/jsh/core/config"
	"github.com/josephlewis42/jsh/core/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgPath    string
	command    string
	jobControl string
	logLevel   string

	// exitStatus is the status the process exits with once cobra returns.
	exitStatus int

	appLog = newLogger(os.Stderr, config.Default().LogLevel)
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "jsh")
}

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		appLog.Debug("couldn't load config, using defaults: did you run init?", "path", cfgPath)
		return config.Default(), nil
	}

	return configuration, err
}

func newLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "jsh"})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

// reexec tells the shell to start subshells through the hidden subshell
// command of this binary.
func reexec() core.Reexec {
	exe, err := os.Executable()
	if err != nil {
		appLog.Warn("subshells disabled", "err", err)
		return core.Reexec{}
	}
	return core.Reexec{Path: exe, Args: []string{"jsh", subshellCmd.Name()}}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jsh",
	Short: "A job control shell",
	Long: `An interactive POSIX-style shell with pipelines, redirection, subshells
and job control. Without -c it reads commands from standard input.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("job-control") {
			configuration.JobControl = jobControl
		}
		if cmd.Flags().Changed("log-level") {
			configuration.LogLevel = logLevel
		}
		if err := configuration.Validate(); err != nil {
			return err
		}
		appLog = newLogger(cmd.ErrOrStderr(), configuration.LogLevel)

		events := logger.NewDiscardLogger().Sessionless()
		eventLog, err := configuration.OpenEventLog()
		if err != nil {
			return err
		}
		if eventLog != nil {
			defer eventLog.Close()
			events = logger.NewJsonLinesLogRecorder(eventLog).NewSession()
		}

		interactive := command == "" && term.IsTerminal(int(os.Stdin.Fd()))
		shell, err := core.NewShell(core.Options{
			Interactive: interactive,
			JobControl:  configuration.JobControl,
			Reexec:      reexec(),
			Config:      configuration,
			Log:         appLog,
			Events:      events,
		})
		if err != nil {
			return err
		}
		defer shell.Close()

		ctx := context.Background()
		if command != "" {
			exitStatus = shell.RunCommand(ctx, command)
			return nil
		}

		exitStatus = shell.RunInteractive(ctx)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitStatus)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config path")
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run the command line and exit")
	rootCmd.Flags().StringVar(&jobControl, "job-control", config.JobControlAuto, "job control mode (auto|on|off)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", config.Default().LogLevel, "diagnostic log level (debug|info|warn|error)")
}
