package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/RichardoC/Chat-i/internal/chat"
	"github.com/RichardoC/Chat-i/internal/config"
	"github.com/RichardoC/Chat-i/internal/ident"
	"github.com/RichardoC/Chat-i/internal/qa"
	"github.com/RichardoC/Chat-i/internal/session"
	"github.com/RichardoC/Chat-i/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configFile string
	verbose    bool

	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Terminal client for the QA chat assistant",
	Long: `chat talks to a remote question-answering backend: it keeps a local
list of conversations, reconciles it with the history the backend holds for
the configured user, and sends questions over the backend's session-id
mechanism.

Configuration comes from CHAT_* environment variables (CHAT_BASE_URL,
CHAT_TOKEN, CHAT_USER_ID) or a config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context())
	},
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive chat session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runREPL(cmd.Context())
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Send a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()
		msg, err := svc.Send(cmd.Context(), strings.Join(args, " "))
		if msg.Content != "" {
			fmt.Println(msg.Content)
		}
		return err
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or delete backend conversation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured user's history records",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		records, err := client.History(cmd.Context(), fmt.Sprintf("%d", cfg.UserID))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no history")
			return nil
		}
		for _, rec := range records {
			id := rec.SessionID
			if id == "" {
				id = rec.ID
			}
			fmt.Printf("%s\t%s\t%s\n", id, rec.CreateTime, rec.Question)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <conversation-id...>",
	Short: "Delete history conversations on the backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()
		var failed bool
		for _, id := range args {
			if err := svc.DeleteConversation(cmd.Context(), id); err != nil {
				fmt.Fprintf(os.Stderr, "delete %s: %v\n", id, err)
				failed = true
				continue
			}
			fmt.Printf("deleted %s\n", id)
		}
		if failed {
			return fmt.Errorf("some deletions failed")
		}
		return nil
	},
}

func newClient() *qa.Client {
	return qa.New(cfg.BaseURL, cfg.Token, cfg.Timeout, logger)
}

func newService() *chat.Service {
	idgen := ident.New()
	st := store.New(idgen, logger)
	binder := session.NewBinder(idgen)
	return chat.New(st, binder, newClient(), cfg, logger)
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	historyCmd.AddCommand(historyListCmd, historyDeleteCmd)
	rootCmd.AddCommand(replCmd, askCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
