package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"ignita/internal/board"
	"ignita/internal/client"
	"ignita/internal/document/model"

	"github.com/spf13/cobra"
)

var (
	gateway *client.Gateway

	// boardCommands represents the board client command group
	boardCommands = &cobra.Command{
		Use:   "board",
		Short: "Read and edit boards on a running server",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			server, _ := cmd.Flags().GetString("server")
			token, _ := cmd.Flags().GetString("token")
			if token == "" {
				return fmt.Errorf("a token is required (--token or IGNITA_TOKEN)")
			}
			gateway = client.NewGateway(client.NewHTTPTransport(server, token))
			return nil
		},
	}

	listCmd = &cobra.Command{
		Use:   "list [workspaceId]",
		Short: "Lists the documents of a workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := gateway.ListDocuments(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, doc := range docs {
				fmt.Printf("%s\t%s\t%s\tv%d\n", doc.ID, doc.Note.Type, doc.Name, doc.Version)
			}
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [documentId]",
		Short: "Prints a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printResult(gateway.Document(cmd.Context(), args[0]))
		},
	}
	createCmd = &cobra.Command{
		Use:   "create [workspaceId] [name]",
		Short: "Creates a document, a board with the default columns unless --type says otherwise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			noteType, _ := cmd.Flags().GetString("type")
			return printResult(gateway.CreateDocument(cmd.Context(), model.CreateDocumentRequest{
				WorkspaceID: args[0],
				Name:        args[1],
				Note:        &model.Note{Type: model.NoteType(noteType)},
			}))
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [documentId]",
		Short: "Deletes a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := gateway.DeleteDocument(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted successfully")
			return nil
		},
	}

	addContainerCmd = &cobra.Command{
		Use:   "add-container [documentId] [title]",
		Short: "Appends a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.AddContainerRequest{DocumentID: args[0]}
			req.Title = args[1]
			if cmd.Flags().Changed("color") {
				color, _ := cmd.Flags().GetString("color")
				req.Color = &color
			}
			return printResult(gateway.AddContainer(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	updateContainerCmd = &cobra.Command{
		Use:   "update-container [documentId] [containerId]",
		Short: "Changes the title or color of a container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.UpdateContainerRequest{DocumentID: args[0]}
			req.ContainerID = args[1]
			if cmd.Flags().Changed("title") {
				title, _ := cmd.Flags().GetString("title")
				req.Title = &title
			}
			if cmd.Flags().Changed("color") {
				color, _ := cmd.Flags().GetString("color")
				req.Color = &color
			}
			return printResult(gateway.UpdateContainer(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	deleteContainerCmd = &cobra.Command{
		Use:   "delete-container [documentId] [containerId]",
		Short: "Deletes a container and its items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.DeleteContainerRequest{DocumentID: args[0]}
			req.ContainerID = args[1]
			return printResult(gateway.DeleteContainer(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	reorderCmd = &cobra.Command{
		Use:   "reorder [documentId] [sourceIndex] [targetIndex]",
		Short: "Moves a container to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("sourceIndex must be a number: %w", err)
			}
			target, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("targetIndex must be a number: %w", err)
			}
			req := model.ReorderContainersRequest{DocumentID: args[0]}
			req.SourceIndex, req.TargetIndex = source, target
			req.IndexMode, err = indexMode(cmd)
			if err != nil {
				return err
			}
			return printResult(gateway.ReorderContainers(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}

	addItemCmd = &cobra.Command{
		Use:   "add-item [documentId] [containerId] [title]",
		Short: "Appends an item to a container",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.AddItemRequest{DocumentID: args[0]}
			req.ContainerID, req.Title = args[1], args[2]
			return printResult(gateway.AddItem(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	moveItemCmd = &cobra.Command{
		Use:   "move-item [documentId] [itemId] [sourceContainerId] [targetContainerId] [targetIndex]",
		Short: "Moves an item within or between containers",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[4])
			if err != nil {
				return fmt.Errorf("targetIndex must be a number: %w", err)
			}
			req := model.MoveItemRequest{DocumentID: args[0]}
			req.ItemID, req.SourceContainerID, req.TargetContainerID = args[1], args[2], args[3]
			req.TargetIndex = target
			req.IndexMode, err = indexMode(cmd)
			if err != nil {
				return err
			}
			return printResult(gateway.MoveItem(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	renameItemCmd = &cobra.Command{
		Use:   "rename-item [documentId] [itemId] [title]",
		Short: "Changes the title of an item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.UpdateItemTitleRequest{DocumentID: args[0]}
			req.ItemID, req.Title = args[1], args[2]
			return printResult(gateway.UpdateItemTitle(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	setBodyCmd = &cobra.Command{
		Use:   "set-body [documentId] [itemId] [json]",
		Short: "Replaces the body of an item with a JSON value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(args[2])) {
				return fmt.Errorf("body must be valid JSON")
			}
			req := model.UpdateItemBodyRequest{DocumentID: args[0]}
			req.ItemID, req.Body = args[1], json.RawMessage(args[2])
			return printResult(gateway.UpdateItemBody(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
	deleteItemCmd = &cobra.Command{
		Use:   "delete-item [documentId] [itemId]",
		Short: "Deletes an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.DeleteItemRequest{DocumentID: args[0]}
			req.ItemID = args[1]
			return printResult(gateway.DeleteItem(cmd.Context(), req, client.WithOptimistic(false)))
		},
	}
)

func init() {
	boardCommands.PersistentFlags().String("server", envOr("IGNITA_SERVER", "http://localhost:8080"), "Base URL of the ignita server")
	boardCommands.PersistentFlags().String("token", os.Getenv("IGNITA_TOKEN"), "Bearer token sent with every call")

	createCmd.Flags().String("type", string(model.NoteTypeBoard), "Note type (board, text, latex, directory)")
	addContainerCmd.Flags().String("color", "", "Container color, "+board.DefaultColor+" when omitted")
	updateContainerCmd.Flags().String("title", "", "New title")
	updateContainerCmd.Flags().String("color", "", "New color")
	for _, c := range []*cobra.Command{reorderCmd, moveItemCmd} {
		c.Flags().String("index-mode", string(board.IndexFinal), "How targetIndex is read (final, slot)")
	}

	boardCommands.AddCommand(listCmd)
	boardCommands.AddCommand(getCmd)
	boardCommands.AddCommand(createCmd)
	boardCommands.AddCommand(deleteCmd)
	boardCommands.AddCommand(addContainerCmd)
	boardCommands.AddCommand(updateContainerCmd)
	boardCommands.AddCommand(deleteContainerCmd)
	boardCommands.AddCommand(reorderCmd)
	boardCommands.AddCommand(addItemCmd)
	boardCommands.AddCommand(moveItemCmd)
	boardCommands.AddCommand(renameItemCmd)
	boardCommands.AddCommand(setBodyCmd)
	boardCommands.AddCommand(deleteItemCmd)
}

func indexMode(cmd *cobra.Command) (board.IndexMode, error) {
	mode, _ := cmd.Flags().GetString("index-mode")
	switch m := board.IndexMode(mode); m {
	case board.IndexFinal, board.IndexSlot:
		return m, nil
	}
	return "", fmt.Errorf("unknown index mode %q", mode)
}

func printResult(doc *model.Document, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
