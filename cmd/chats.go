package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List or delete saved chats",
	RunE:  runChatsList,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved chats, oldest first",
	RunE:  runChatsList,
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete <chat-id>",
	Short: "Delete a saved chat",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		ok, err := chatExists(cmd.Context(), e, args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("chat %q not found", args[0])
		}
		if err := e.chats.DeleteChat(cmd.Context(), e.user(), args[0]); err != nil {
			return fmt.Errorf("delete chat: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted chat %s.\n", args[0])
		return nil
	},
}

func init() {
	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)
}

func runChatsList(cmd *cobra.Command, args []string) error {
	e, err := newEnv(cmd, envOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	chats, err := e.chats.ListChats(cmd.Context(), e.user())
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(chats) == 0 {
		fmt.Fprintln(out, "No saved chats.")
		return nil
	}
	for _, c := range chats {
		fmt.Fprintf(out, "%-36s  %s\n", c.ID, c.Title)
	}
	return nil
}

func chatExists(ctx context.Context, e *env, chatID string) (bool, error) {
	chats, err := e.chats.ListChats(ctx, e.user())
	if err != nil {
		return false, fmt.Errorf("list chats: %w", err)
	}
	for _, c := range chats {
		if c.ID == chatID {
			return true, nil
		}
	}
	return false, nil
}
