package foodlens

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wisdomie/foodlens/internal/chat"
	"github.com/wisdomie/foodlens/internal/router"
	"github.com/wisdomie/foodlens/internal/store"
	"github.com/wisdomie/foodlens/internal/tui"
)

var chatSendNew bool

var chatCmd = &cobra.Command{
	Use:         "chat",
	Short:       "Talk to the diet advisor",
	Long:        "Without a subcommand, chat opens an interactive session that continues the active conversation.",
	Args:        cobra.NoArgs,
	Annotations: routeAnnotation(router.Chat),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			ctx := commandContext(cmd)
			mgr := a.ChatManager()
			defer mgr.Close()
			restoreChat(a, mgr, cmd)
			return tui.Run(ctx, mgr, a.Session.Snapshot().User.Username)
		})
	},
}

var chatSendCmd = &cobra.Command{
	Use:   "send <message...>",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("message is empty")
		}
		return withApp(cmd, func(a *App) error {
			mgr := a.ChatManager()
			defer mgr.Close()
			if chatSendNew {
				mgr.StartNewConversation()
			} else {
				restoreChat(a, mgr, cmd)
			}

			before := len(mgr.Snapshot().Messages)
			err := mgr.SendMessage(commandContext(cmd), text)
			state := mgr.Snapshot()
			if err != nil {
				if state.Error != "" {
					return errors.New(state.Error)
				}
				return userError(err, "Failed to send message. Please try again.")
			}
			if jsonOutput {
				return jsonOut(cmd, state.Messages[before:])
			}
			for _, m := range state.Messages[before:] {
				a.View.Message(m)
			}
			if state.ActiveID != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "(conversation #%d)\n", *state.ActiveID)
			}
			return nil
		})
	},
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *App) error {
			list, err := a.Client.Conversations(commandContext(cmd))
			if err != nil {
				return userError(err, "Failed to load conversations")
			}
			if jsonOutput {
				return jsonOut(cmd, list)
			}
			active, err := store.NewChatState(a.DB).ActiveConversation()
			if err != nil {
				a.Logger.Warn("read active conversation", slog.String("error", err.Error()))
			}
			a.View.Conversations(list, active)
			return nil
		})
	},
}

var chatOpenCmd = &cobra.Command{
	Use:   "open <id>",
	Short: "Make a conversation active and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("conversation id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *App) error {
			mgr := a.ChatManager()
			defer mgr.Close()
			if err := mgr.LoadConversation(commandContext(cmd), id); err != nil {
				return userError(err, mgr.Snapshot().Error)
			}
			state := mgr.Snapshot()
			if jsonOutput {
				return jsonOut(cmd, state.Messages)
			}
			a.View.Transcript(state.Messages, false)
			return nil
		})
	},
}

var chatNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Start a new conversation",
	Long:  "Without a title the conversation is created by the next message. With a title it is created on the server right away.",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.TrimSpace(strings.Join(args, " "))
		return withApp(cmd, func(a *App) error {
			mgr := a.ChatManager()
			defer mgr.Close()
			if title == "" {
				mgr.StartNewConversation()
				fmt.Fprintln(cmd.OutOrStdout(), "Started a new conversation")
				return nil
			}
			conv, err := mgr.CreateConversation(commandContext(cmd), title)
			if err != nil {
				return userError(err, "Failed to create conversation")
			}
			if jsonOutput {
				return jsonOut(cmd, conv)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created conversation #%d\n", conv.ID)
			return nil
		})
	},
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("conversation id", args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *App) error {
			mgr := a.ChatManager()
			defer mgr.Close()
			restoreChat(a, mgr, cmd)
			if err := mgr.DeleteConversation(commandContext(cmd), id); err != nil {
				return userError(err, "Failed to delete conversation")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted conversation #%d\n", id)
			return nil
		})
	},
}

// restoreChat reopens the persisted conversation. A conversation that can no
// longer be loaded is forgotten so the next message starts a fresh one.
func restoreChat(a *App, mgr *chat.Manager, cmd *cobra.Command) {
	if err := mgr.Restore(commandContext(cmd)); err != nil {
		a.Logger.Warn("restore conversation", slog.String("error", err.Error()))
		mgr.StartNewConversation()
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.AddCommand(chatSendCmd, chatListCmd, chatOpenCmd, chatNewCmd, chatDeleteCmd)

	chatSendCmd.Flags().BoolVar(&chatSendNew, "new", false, "Start a new conversation with this message")
	addJSONFlag(chatSendCmd, chatListCmd, chatOpenCmd, chatNewCmd)
}
