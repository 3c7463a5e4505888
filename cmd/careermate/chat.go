package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/AntonAveryan/careermate/internal/errors"
)

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to the AI career coach",
	}
	cmd.AddCommand(newChatSendCmd(a), newChatHistoryCmd(a), newChatClearCmd(a))
	return cmd
}

func newChatSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send a message and print the answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			answer, err := a.chat.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				if apperrors.Is(err, apperrors.ErrUnauthenticated) {
					return fmt.Errorf("sign in to chat")
				}
				return err
			}
			fmt.Println(answer)
			return nil
		},
	}
}

func newChatHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print the stored conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := a.chat.History(cmd.Context())
			if err != nil {
				if apperrors.Is(err, apperrors.ErrUnauthenticated) {
					return fmt.Errorf("sign in to view chat history")
				}
				return err
			}
			if len(history) == 0 {
				fmt.Println("No messages yet.")
				return nil
			}
			for _, msg := range history {
				fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
			}
			return nil
		},
	}
}

func newChatClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.chat.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Chat history cleared")
			return nil
		},
	}
}
