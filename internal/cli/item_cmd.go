package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/alexanderramin/kurva/internal/domain"
	"github.com/alexanderramin/kurva/internal/worktree"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"pekerjaan"},
		Short:   "Manage the work breakdown tree",
	}
	cmd.AddCommand(
		newItemAddCmd(app),
		newItemTreeCmd(app),
		newItemRemoveCmd(app),
	)
	return cmd
}

func newItemAddCmd(app *App) *cobra.Command {
	var (
		projectRef string
		name       string
		kind       string
		parentRef  string
		volume     float64
		satuan     string
		order      int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a klasifikasi, sub-klasifikasi or pekerjaan node",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}

			n := &domain.WorkNode{
				ProjectID:  p.ID,
				Kind:       domain.NodeKind(strings.ToLower(strings.TrimSpace(kind))),
				Name:       strings.TrimSpace(name),
				Volume:     volume,
				Satuan:     strings.TrimSpace(satuan),
				OrderIndex: order,
			}
			if parentRef != "" {
				nodes, err := app.Nodes.ListByProject(ctx, p.ID)
				if err != nil {
					return err
				}
				parent, err := resolveNode(nodes, parentRef)
				if err != nil {
					return err
				}
				n.ParentID = &parent.ID
			}
			if err := app.Nodes.Create(ctx, n); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s\n",
				n.Kind, formatter.Bold(n.Name), formatter.Dim("("+formatter.TruncID(n.ID)+")"))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&name, "name", "", "Node name")
	cmd.Flags().StringVar(&kind, "kind", string(domain.NodePekerjaan), "klasifikasi, sub-klasifikasi or pekerjaan")
	cmd.Flags().StringVar(&parentRef, "parent", "", "Parent node ID, ID prefix or name")
	cmd.Flags().Float64Var(&volume, "volume", 0, "Planned volume (pekerjaan only)")
	cmd.Flags().StringVar(&satuan, "satuan", "", "Unit of the volume, e.g. m3")
	cmd.Flags().IntVar(&order, "order", 0, "Sort position among siblings")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newItemTreeCmd(app *App) *cobra.Command {
	var (
		projectRef string
		collapse   []string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the work breakdown tree",
		Long: `Show the work breakdown tree with each pekerjaan's volume and planned share.
--collapse hides everything below the named group and may be repeated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProject(cmd.Context(), app, projectRef)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(cmd, app, p.ID)
			if err != nil {
				return err
			}

			var nodes []*domain.WorkNode
			worktree.Walk(ws.Roots, func(n *domain.WorkNode, _ int) { nodes = append(nodes, n) })
			for _, ref := range collapse {
				n, err := resolveNode(nodes, ref)
				if err != nil {
					return err
				}
				if n.IsLeaf() {
					return fmt.Errorf("%s is a pekerjaan and has nothing to collapse", n.Name)
				}
				ws.Expansion.SetExpanded(n.ID, false)
			}

			planned := make(map[string]float64, len(ws.Items))
			for _, it := range ws.Items {
				var total float64
				for _, c := range ws.Store.Row(it.ID) {
					total += c.Proportion
				}
				planned[it.ID] = domain.Round2(total)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.RenderWorkTree(ws.Roots, ws.Expansion, planned))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	cmd.Flags().StringArrayVar(&collapse, "collapse", nil, "Group ID, ID prefix or name to collapse (repeatable)")
	return cmd
}

func newItemRemoveCmd(app *App) *cobra.Command {
	var projectRef string

	cmd := &cobra.Command{
		Use:     "remove <item>",
		Aliases: []string{"rm"},
		Short:   "Delete a node and everything below it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, app, projectRef)
			if err != nil {
				return err
			}
			nodes, err := app.Nodes.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			n, err := resolveNode(nodes, args[0])
			if err != nil {
				return err
			}
			if err := app.Nodes.Delete(ctx, n.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", n.Kind, n.Name)
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	return cmd
}
