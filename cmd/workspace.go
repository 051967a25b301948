package cmd

import (
	"fmt"
	"time"

	"ignita/config"
	"ignita/internal/document/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// workspaceCommands seeds workspaces directly in the store. Users and
	// their workspaces are otherwise provisioned outside ignita.
	workspaceCommands = &cobra.Command{
		Use:   "workspace",
		Short: "Manage workspaces in the configured store",
	}

	workspaceCreateCmd = &cobra.Command{
		Use:   "create [userId] [name]",
		Short: "Creates a workspace owned by userId and prints its id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver == config.DriverMemory {
				return fmt.Errorf("the %s store does not outlive this command", cfg.StoreDriver)
			}
			if len(args[1]) > model.MaxNameLength {
				return fmt.Errorf("name must be at most %d characters", model.MaxNameLength)
			}

			repo, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			ws := &model.Workspace{ID: uuid.NewString(), UserID: args[0], Name: args[1], CreatedAt: time.Now().UTC()}
			if err := repo.CreateWorkspace(cmd.Context(), ws); err != nil {
				return err
			}
			fmt.Println(ws.ID)
			return nil
		},
	}
)

func init() {
	workspaceCommands.AddCommand(workspaceCreateCmd)
}
