package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonAveryan/careermate/favorites"
	apperrors "github.com/AntonAveryan/careermate/internal/errors"
	"github.com/AntonAveryan/careermate/internal/utils"
)

func newFavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fav",
		Short: "Manage favorite jobs",
	}
	cmd.AddCommand(newFavAddCmd(a), newFavRemoveCmd(a), newFavListCmd(a))
	return cmd
}

func newFavAddCmd(a *app) *cobra.Command {
	var rec favorites.Record
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Mark a job as favorite",
		RunE: func(cmd *cobra.Command, _ []string) error {
			saved, err := a.favorites.Add(cmd.Context(), rec)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrSaveFailed) {
					// The optimistic local entry survives a failed remote save.
					fmt.Printf("Saved %s locally; backend sync failed and will apply on next add\n", saved.URN)
					a.logger.Warn().Err(err).Msg("favorite sync failed")
					return nil
				}
				return err
			}
			switch saved.State {
			case favorites.StateConfirmed:
				fmt.Printf("Favorited %s (backend id %d)\n", saved.URN, utils.Value(saved.RemoteID))
			default:
				fmt.Printf("Favorited %s locally (sign in to sync)\n", saved.URN)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rec.URN, "urn", "", "job urn (required)")
	cmd.Flags().StringVar(&rec.Title, "title", "", "job title")
	cmd.Flags().StringVar(&rec.Company, "company", "", "company")
	cmd.Flags().StringVar(&rec.Location, "location", "", "location")
	cmd.Flags().StringVar(&rec.Description, "description", "", "description")
	cmd.Flags().StringVar(&rec.ApplyLink, "apply-link", "", "application link")
	cmd.Flags().StringVar(&rec.Source, "source", "", "job board source")
	_ = cmd.MarkFlagRequired("urn")
	return cmd
}

func newFavRemoveCmd(a *app) *cobra.Command {
	var remoteID int64
	cmd := &cobra.Command{
		Use:   "rm [urn]",
		Short: "Remove a favorite by urn or backend id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remoteID != 0 {
				if err := a.favorites.RemoveByRemoteID(cmd.Context(), remoteID); err != nil {
					return err
				}
				fmt.Printf("Removed favorite %d\n", remoteID)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("pass a urn or --id")
			}
			if err := a.favorites.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().Int64Var(&remoteID, "id", 0, "backend favorite id")
	return cmd
}

func newFavListCmd(a *app) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List favorites (backend view unless --local)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				list []favorites.Record
				err  error
			)
			if local {
				list, err = a.favorites.Cached()
			} else {
				list, err = a.favorites.List(cmd.Context())
			}
			if err != nil {
				if apperrors.Is(err, apperrors.ErrUnauthenticated) {
					return fmt.Errorf("sign in to view your favorite jobs")
				}
				return err
			}

			if len(list) == 0 {
				fmt.Println("No favorites yet.")
				return nil
			}
			for _, rec := range list {
				line := rec.Title
				if rec.Company != "" {
					line += ", " + rec.Company
				}
				if rec.Location != "" {
					line += ", " + rec.Location
				}
				fmt.Printf("%s\n  urn: %s", line, rec.URN)
				if rec.RemoteID != nil {
					fmt.Printf("  id: %d", *rec.RemoteID)
				}
				if rec.State == favorites.StatePendingRemote {
					fmt.Printf("  (not synced)")
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "show the local cache without contacting the backend")
	return cmd
}
