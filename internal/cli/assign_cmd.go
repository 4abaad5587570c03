package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/kurva/internal/app"
	"github.com/alexanderramin/kurva/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newAssignCmd(a *App) *cobra.Command {
	var (
		projectRef string
		itemRef    string
		phaseRef   string
		value      float64
	)

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Set the share of a work item's volume planned in a phase",
		Long: `Set the share (0-100%) of a pekerjaan's volume planned in one phase and save.
A value of 0 clears the assignment. When --value is omitted in a terminal,
a form asks for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := resolveProject(ctx, a, projectRef)
			if err != nil {
				return err
			}
			nodes, err := a.Nodes.ListByProject(ctx, p.ID)
			if err != nil {
				return err
			}
			node, err := resolveNode(nodes, itemRef)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd, a, p.ID)
			if err != nil {
				return err
			}
			phase, err := resolvePhase(ws.Phases, phaseRef)
			if err != nil {
				return err
			}
			col, ok := ws.Model.ColumnForPhase(phase.ID)
			if !ok {
				return fmt.Errorf("phase %d has no start date; set one before assigning", phase.Urutan)
			}

			if !cmd.Flags().Changed("value") {
				if !a.interactive() {
					return fmt.Errorf("--value is required when not running in a terminal")
				}
				input := strconv.FormatFloat(ws.Store.Get(node.ID, col.ID), 'f', -1, 64)
				if err := proportionForm(node.Name, col.Label, &input).Run(); err != nil {
					return err
				}
				if value, err = parseProportionInput(input); err != nil {
					return err
				}
			}

			before := ws.Store.Saved(node.ID, col.ID)
			if err := ws.SetProportion(node.ID, phase.ID, value); err != nil {
				return err
			}
			resp, err := a.Schedule.Save(ctx, ws)
			if err != nil {
				return describeSaveError(err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s · %s: %s -> %s\n", node.Name, col.Label,
				strings.TrimSpace(formatter.FormatPercent(before)),
				strings.TrimSpace(formatter.FormatPercent(ws.Store.Saved(node.ID, col.ID))))
			fmt.Fprintln(out, formatter.FormatSaveResponse(resp))
			return nil
		},
	}

	addProjectFlag(cmd, &projectRef)
	cmd.Flags().StringVar(&itemRef, "item", "", "Work item ID, ID prefix or name")
	cmd.Flags().StringVar(&phaseRef, "phase", "", "Phase number or ID prefix")
	cmd.Flags().Float64Var(&value, "value", 0, "Proportion in percent (0-100)")
	_ = cmd.MarkFlagRequired("item")
	_ = cmd.MarkFlagRequired("phase")
	return cmd
}

// describeSaveError expands validation issues into one line each.
func describeSaveError(err error) error {
	var verr *app.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	lines := make([]string, 0, len(verr.Issues))
	for _, is := range verr.Issues {
		lines = append(lines, "  - "+is.Message)
	}
	return fmt.Errorf("schedule not saved:\n%s", strings.Join(lines, "\n"))
}
