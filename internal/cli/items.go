package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"todosync/internal/format"
	"todosync/internal/session"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Create, list, edit and delete to-do items",
	}
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsEditCmd(app))
	cmd.AddCommand(newItemsDoneCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	cmd.AddCommand(newItemsAttachURLCmd(app))
	return cmd
}

func (app *App) opCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), app.cfg.RequestTimeout)
}

func (app *App) gateway() *session.Gateway {
	return session.NewGateway(app.backendClient(), app.storageClient(), app.log)
}

func newItemsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all items (one-shot, no subscription)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.opCtx(cmd)
			defer cancel()
			items, err := app.backendClient().ListItems(ctx)
			if err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"items": items}, app.PrettyJSON)
		},
	}
}

func newItemsAddCmd(app *App) *cobra.Command {
	var photo string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Create a new item, optionally uploading a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var s session.Session
			s.OpenCreate()
			s.SetContent(args[0])
			if strings.TrimSpace(photo) != "" {
				if _, err := os.Stat(photo); err != nil {
					return fmt.Errorf("photo: %w", err)
				}
				s.SetFile(photo)
			}

			ctx, cancel := app.opCtx(cmd)
			defer cancel()
			res, err := app.gateway().Commit(ctx, &s)
			if err != nil {
				return err
			}
			if res.Skipped {
				return errors.New("content is empty; nothing created")
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"item": res.Item}, app.PrettyJSON)
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "Path to an image to upload and attach")
	return cmd
}

func newItemsEditCmd(app *App) *cobra.Command {
	var photo string

	cmd := &cobra.Command{
		Use:   "edit <item-id> <content>",
		Short: "Replace an item's content, optionally uploading a new photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.opCtx(cmd)
			defer cancel()

			c := app.backendClient()
			items, err := c.ListItems(ctx)
			if err != nil {
				return err
			}
			item, ok := items.Find(strings.TrimSpace(args[0]))
			if !ok {
				return fmt.Errorf("item not found: %s", args[0])
			}

			var s session.Session
			s.OpenEdit(item)
			s.SetContent(args[1])
			if strings.TrimSpace(photo) != "" {
				if _, err := os.Stat(photo); err != nil {
					return fmt.Errorf("photo: %w", err)
				}
				s.SetFile(photo)
			}

			res, err := app.gateway().Commit(ctx, &s)
			if err != nil {
				return err
			}
			if res.Skipped {
				return errors.New("content is empty; nothing updated")
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"item": res.Item}, app.PrettyJSON)
		},
	}

	cmd.Flags().StringVar(&photo, "photo", "", "Path to an image to upload and attach (replaces the current one)")
	return cmd
}

func newItemsDoneCmd(app *App) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "done <item-id>",
		Short: "Mark an item done (or not done with --undo)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.opCtx(cmd)
			defer cancel()
			item, err := app.gateway().SetDone(ctx, strings.TrimSpace(args[0]), !undo)
			if err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]any{"item": item}, app.PrettyJSON)
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark the item as not done")
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item (requires --yes or an interactive confirmation)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if !yes {
				ok, err := confirmOnTerminal(cmd, fmt.Sprintf("Delete item %s? [y/N] ", id))
				if err != nil {
					return err
				}
				if !ok {
					// Declined: no request is issued.
					return format.WriteJSON(cmd.OutOrStdout(), map[string]string{"status": "aborted"}, app.PrettyJSON)
				}
			}
			ctx, cancel := app.opCtx(cmd)
			defer cancel()
			if err := app.gateway().Delete(ctx, id); err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]string{"status": "deleted", "id": id}, app.PrettyJSON)
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

func newItemsAttachURLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "attach-url <item-id>",
		Short: "Resolve an item's attachment to a time-limited URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := app.opCtx(cmd)
			defer cancel()

			items, err := app.backendClient().ListItems(ctx)
			if err != nil {
				return err
			}
			item, ok := items.Find(strings.TrimSpace(args[0]))
			if !ok {
				return fmt.Errorf("item not found: %s", args[0])
			}
			if !item.HasAttachment() {
				return fmt.Errorf("item %s has no attachment", item.ID)
			}
			u, err := app.storageClient().ResolveURL(ctx, item.AttachmentRef)
			if err != nil {
				return err
			}
			return format.WriteJSON(cmd.OutOrStdout(), map[string]string{"id": item.ID, "url": u}, app.PrettyJSON)
		},
	}
}

// confirmOnTerminal asks a yes/no question on the command's streams. Anything
// but an explicit yes declines.
func confirmOnTerminal(cmd *cobra.Command, prompt string) (bool, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		// EOF or empty input counts as "no".
		return false, nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
